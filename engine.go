// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package grimoire

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/grimoire/ai"
	"github.com/poiesic/grimoire/ai/openai"
	"github.com/poiesic/grimoire/classify"
	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/ingestion"
	"github.com/poiesic/grimoire/query"
	"github.com/poiesic/grimoire/search"
	"github.com/poiesic/grimoire/storage"
	"github.com/poiesic/grimoire/storage/badger"
	"github.com/poiesic/grimoire/suggest"
	"github.com/poiesic/grimoire/vocab"
)

// Engine wires storage, the AI provider, the vocabulary index, the
// classifier, query processing, search and suggestions into one handle.
// The vocabulary index is rebuilt from stored chunks at startup.
type Engine struct {
	backend     *badger.Backend
	chunkRepo   storage.ChunkRepository
	patternRepo storage.PatternRepository
	provider    ai.Provider
	vocabulary  *vocab.Index
	classifier  *classify.Classifier
	processor   *query.Processor
	searcher    *search.Searcher
	suggester   *suggest.Suggester
	pipeline    *ingestion.Pipeline
	logger      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig       *ai.Config
	provider       ai.Provider
	searchConfig   *search.Config
	classifyConfig *classify.Config
	inMemory       bool
	logger         *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider installs a pre-built AI provider instead of constructing one
// from the AI config. The engine takes ownership and closes it on Close.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithSearchConfig replaces the default ranking parameters.
func WithSearchConfig(config *search.Config) EngineOption {
	return func(o *engineOptions) {
		o.searchConfig = config
	}
}

// WithClassifierConfig replaces the default classifier parameters.
func WithClassifierConfig(config *classify.Config) EngineOption {
	return func(o *engineOptions) {
		o.classifyConfig = config
	}
}

// WithInMemory opens the storage backend in memory, discarding all data on
// Close. Intended for tests and throwaway sessions.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewEngine opens the storage backend at filePath and assembles the full
// search stack on top of it.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create pattern repository
	patternRepo, err := badger.NewPatternRepository(backend)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings unless one was injected
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			patternRepo.Close()
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	engine := &Engine{
		backend:     backend,
		chunkRepo:   chunkRepo,
		patternRepo: patternRepo,
		provider:    provider,
		logger:      options.logger,
	}

	if err := engine.assemble(options); err != nil {
		engine.Close()
		return nil, err
	}

	return engine, nil
}

// assemble builds the in-memory layers on top of the opened repositories.
func (e *Engine) assemble(options *engineOptions) error {
	vocabulary, err := vocab.NewIndex(vocab.WithLogger(e.logger))
	if err != nil {
		return err
	}
	e.vocabulary = vocabulary

	classifyOpts := []classify.Option{classify.WithLogger(e.logger)}
	if options.classifyConfig != nil {
		classifyOpts = append(classifyOpts, classify.WithConfig(options.classifyConfig))
	}
	classifier, err := classify.NewClassifier(e.patternRepo, classifyOpts...)
	if err != nil {
		return err
	}
	e.classifier = classifier

	ctx := context.Background()
	if err := e.classifier.Warm(ctx); err != nil {
		return err
	}
	if err := e.rebuildVocabulary(ctx); err != nil {
		return err
	}

	processor, err := query.NewProcessor(vocabulary, query.WithLogger(e.logger))
	if err != nil {
		return err
	}
	e.processor = processor

	searchOpts := []search.Option{search.WithLogger(e.logger)}
	if options.searchConfig != nil {
		searchOpts = append(searchOpts, search.WithConfig(options.searchConfig))
	}
	searcher, err := search.NewSearcher(e.chunkRepo, vocabulary, e.provider, searchOpts...)
	if err != nil {
		return err
	}
	e.searcher = searcher

	suggester, err := suggest.NewSuggester(vocabulary, suggest.WithLogger(e.logger))
	if err != nil {
		return err
	}
	e.suggester = suggester

	pipeline, err := ingestion.NewPipeline(e.chunkRepo, vocabulary, classifier, e.provider,
		ingestion.WithLogger(e.logger))
	if err != nil {
		return err
	}
	e.pipeline = pipeline

	return nil
}

// rebuildVocabulary replays every stored chunk into the vocabulary index.
func (e *Engine) rebuildVocabulary(ctx context.Context) error {
	count := 0
	err := e.chunkRepo.ForEachChunk(ctx, storage.ChunkFilter{}, func(chunk *core.ContentChunk) error {
		e.vocabulary.IngestChunk(chunk)
		count++
		return nil
	})
	if err != nil {
		return err
	}
	if count > 0 {
		e.logger.Info("rebuilt vocabulary index", "chunks", count, "terms", e.vocabulary.Size())
	}
	return nil
}

// Close releases the engine's resources. The engine must not be used
// afterwards.
func (e *Engine) Close() error {
	if e.pipeline != nil {
		e.pipeline.Release()
	}

	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := e.patternRepo.Close(); err != nil {
		e.logger.Error("error closing pattern repository", "err", err)
		return err
	}
	if err := e.chunkRepo.Close(); err != nil {
		e.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	// Close backend
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// SearchOptions narrows a search and caps its result count.
type SearchOptions struct {
	System      string
	Source      string
	SourceKind  core.SourceKind  // 0 matches any kind
	ContentType core.ContentType // 0 matches any type
	MaxResults  int              // 0 uses the ranker's default
}

func (o SearchOptions) filter() storage.ChunkFilter {
	return storage.ChunkFilter{
		Source:      o.Source,
		System:      o.System,
		SourceKind:  o.SourceKind,
		ContentType: o.ContentType,
	}
}

// SearchResponse is the outcome of one full search: ranked results plus the
// suggestions and signal statistics a caller needs to present them.
type SearchResponse struct {
	Results     []*core.ScoredResult
	Suggestions []core.Suggestion
	// Corrected is the spelling-corrected query when it differs from the
	// input, else empty.
	Corrected       string
	Intent          query.Intent
	TotalCandidates int
	SearchType      core.MatchType
}

// Search runs the full hybrid search over the indexed corpus: query
// processing, concurrent retrieval, fusion, explanations and suggestions.
// A query that normalizes to nothing searchable returns zero results with
// completion suggestions rather than an error.
func (e *Engine) Search(ctx context.Context, rawQuery string, opts SearchOptions) (*SearchResponse, error) {
	processed, err := e.processor.Process(rawQuery, &query.Context{System: opts.System, Source: opts.Source})
	if err != nil {
		if errors.Is(err, query.ErrEmptyQuery) {
			return e.emptyQueryResponse(rawQuery), nil
		}
		return nil, err
	}

	ranked, err := e.searcher.Search(ctx, processed, opts.filter(), opts.MaxResults)
	if err != nil {
		return nil, err
	}

	var suggestions []core.Suggestion
	if len(ranked.Results) < suggest.LowResultThreshold {
		suggestions = e.suggester.Alternatives(processed, len(ranked.Results))
	} else {
		suggestions = e.suggester.Related(processed, ranked.Results)
	}

	return &SearchResponse{
		Results:         ranked.Results,
		Suggestions:     suggestions,
		Corrected:       processed.Corrected,
		Intent:          processed.Intent,
		TotalCandidates: ranked.TotalCandidates,
		SearchType:      ranked.SearchType,
	}, nil
}

// QuickSearch runs the search without explanation or suggestion work.
// Queries with nothing searchable return an empty result set.
func (e *Engine) QuickSearch(ctx context.Context, rawQuery string, maxResults int) ([]*core.ScoredResult, error) {
	processed, err := e.processor.Process(rawQuery, nil)
	if err != nil {
		if errors.Is(err, query.ErrEmptyQuery) {
			return nil, nil
		}
		return nil, err
	}
	return e.searcher.Quick(ctx, processed, storage.ChunkFilter{}, maxResults)
}

// SuggestCompletions returns up to limit vocabulary completions for a
// partially typed query.
func (e *Engine) SuggestCompletions(partial string, limit int) []string {
	return e.suggester.Completions(partial, limit)
}

// ExplainSearch reports how a query would be processed and weighted without
// executing the retrieval signals.
func (e *Engine) ExplainSearch(ctx context.Context, rawQuery string) (*search.QueryExplanation, error) {
	processed, err := e.processor.Process(rawQuery, nil)
	if err != nil {
		return nil, err
	}
	return e.searcher.Explain(processed), nil
}

// EngineStats summarizes the engine's index and classifier state.
type EngineStats struct {
	VocabularyTerms int
	IndexedChunks   int
	ChunksBySystem  map[string]int
	CachedPatterns  map[string]int
}

// Stats reports vocabulary, corpus and pattern-cache sizes.
func (e *Engine) Stats(ctx context.Context) (*EngineStats, error) {
	bySystem, err := e.chunkRepo.CountBySystem(ctx)
	if err != nil {
		return nil, err
	}

	return &EngineStats{
		VocabularyTerms: e.vocabulary.Size(),
		IndexedChunks:   e.vocabulary.ChunkCount(),
		ChunksBySystem:  bySystem,
		CachedPatterns:  e.classifier.CachedPatternCounts(),
	}, nil
}

// ClassifyChunk classifies a text fragment for a game system without storing
// anything.
func (e *Engine) ClassifyChunk(ctx context.Context, text, system string) (core.ContentType, float64) {
	return e.classifier.Classify(ctx, text, system)
}

// ReinforceClassification applies a human correction to a stored chunk. The
// classifier learns from the corrected label and the chunk is restored with
// the corrected type at full confidence.
func (e *Engine) ReinforceClassification(ctx context.Context, chunkID core.ID, corrected core.ContentType) error {
	chunk, err := e.chunkRepo.GetChunk(ctx, chunkID)
	if err != nil {
		return err
	}

	if err := e.classifier.Reinforce(ctx, chunk.Content, chunk.System, corrected); err != nil {
		return err
	}

	chunk.ContentType = corrected
	chunk.Confidence = 1.0 // human-corrected
	delete(chunk.Metadata, "needs_review")
	return e.chunkRepo.AddChunks(ctx, chunk)
}

// IngestChunks classifies, stores and indexes the given inputs.
// See ingestion.Pipeline.IngestChunks.
func (e *Engine) IngestChunks(ctx context.Context, inputs ...*ingestion.ChunkInput) ([]*core.ContentChunk, error) {
	return e.pipeline.IngestChunks(ctx, inputs...)
}

// IngestSource replaces the indexed content of the named source.
// See ingestion.Pipeline.IngestSource.
func (e *Engine) IngestSource(ctx context.Context, source string, inputs ...*ingestion.ChunkInput) ([]*core.ContentChunk, error) {
	return e.pipeline.IngestSource(ctx, source, inputs...)
}

// ChunkRepository exposes the underlying chunk storage.
func (e *Engine) ChunkRepository() storage.ChunkRepository {
	return e.chunkRepo
}

// PatternRepository exposes the underlying pattern storage.
func (e *Engine) PatternRepository() storage.PatternRepository {
	return e.patternRepo
}

// emptyQueryResponse builds the zero-result response for queries with no
// searchable terms, offering completions when the vocabulary has any.
func (e *Engine) emptyQueryResponse(rawQuery string) *SearchResponse {
	var suggestions []core.Suggestion
	for _, completion := range e.suggester.Completions(rawQuery, suggest.LowResultThreshold+1) {
		suggestions = append(suggestions, core.Suggestion{
			Query:      completion,
			Confidence: 0.3,
			Kind:       "completion",
			Rationale:  "query has no searchable terms",
		})
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, core.Suggestion{
			Confidence: 0.2,
			Kind:       "broadening",
			Rationale:  "query contains only common words; add a rules term or name",
		})
	}

	return &SearchResponse{
		Results:     []*core.ScoredResult{},
		Suggestions: suggestions,
		Intent:      query.IntentGeneral,
		SearchType:  core.MatchKeyword,
	}
}
