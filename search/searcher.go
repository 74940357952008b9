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

package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/grimoire/ai"
	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/query"
	"github.com/poiesic/grimoire/storage"
	"github.com/poiesic/grimoire/vocab"
)

// Ranked is the outcome of one hybrid search.
type Ranked struct {
	Results []*core.ScoredResult
	// TotalCandidates is the size of the fused candidate pool before
	// truncation.
	TotalCandidates int
	// SearchType reports which signals contributed: hybrid when both ran,
	// keyword-only or semantic-only after degradation.
	SearchType core.MatchType
}

// QueryExplanation breaks a query down into its per-term weights and the
// signal weighting the ranker would apply.
type QueryExplanation struct {
	Raw            string
	Normalized     string
	Intent         query.Intent
	SemanticWeight float64
	KeywordWeight  float64
	TermWeights    []core.TermWeight
}

// Searcher fuses semantic similarity and BM25 keyword relevance into one
// ranked, explainable result list. The two retrieval signals run
// concurrently and are joined before fusion; a signal that times out is
// dropped rather than failing the query.
type Searcher struct {
	chunks     storage.ChunkRepository
	vectors    storage.VectorIndex
	vocabulary *vocab.Index
	embedder   ai.Embedder
	config     *Config
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithConfig replaces the default ranking parameters.
func WithConfig(config *Config) Option {
	return func(s *Searcher) error {
		if config == nil {
			return ErrInvalidConfig
		}
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = config
		return nil
	}
}

// WithVectorIndex overrides the vector index, which defaults to the chunk
// repository itself.
func WithVectorIndex(vectors storage.VectorIndex) Option {
	return func(s *Searcher) error {
		if vectors == nil {
			return ErrChunkRepositoryRequired
		}
		s.vectors = vectors
		return nil
	}
}

// NewSearcher creates a hybrid searcher.
func NewSearcher(
	chunks storage.ChunkRepository,
	vocabulary *vocab.Index,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if vocabulary == nil {
		return nil, ErrVocabularyRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		chunks:     chunks,
		vectors:    chunks,
		vocabulary: vocabulary,
		embedder:   provider.Embedder(),
		config:     DefaultConfig(),
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search ranks chunks against the processed query, truncated to k results.
func (s *Searcher) Search(ctx context.Context, processed *query.Processed, filter storage.ChunkFilter, k int) (*Ranked, error) {
	return s.search(ctx, processed, filter, k, nil, true)
}

// SearchWithMonitor is Search with observation hooks.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, processed *query.Processed, filter storage.ChunkFilter, k int, monitor SearchMonitor) (*Ranked, error) {
	return s.search(ctx, processed, filter, k, monitor, true)
}

// Quick is Search with explanation generation skipped for latency.
func (s *Searcher) Quick(ctx context.Context, processed *query.Processed, filter storage.ChunkFilter, k int) ([]*core.ScoredResult, error) {
	ranked, err := s.search(ctx, processed, filter, k, nil, false)
	if err != nil {
		return nil, err
	}
	return ranked.Results, nil
}

func (s *Searcher) search(ctx context.Context, processed *query.Processed, filter storage.ChunkFilter, k int, monitor SearchMonitor, explain bool) (*Ranked, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if k <= 0 {
		k = s.config.MaxResults
	}
	monitor.Start(processed.Normalized)

	var (
		semScores  map[core.ID]float64
		semErr     error
		kwScores   map[core.ID]float64
		kwContribs map[core.ID]map[string]float64
		kwChunks   map[core.ID]*core.ContentChunk
		kwErr      error
	)

	// The two signals run concurrently and are joined before fusion, so
	// query latency is bounded by the slower signal rather than the sum.
	// Signal failures degrade instead of propagating through the group.
	var g errgroup.Group
	g.Go(func() error {
		semScores, semErr = s.semanticSignal(ctx, processed, filter, monitor)
		if semErr != nil {
			monitor.SignalDegraded("semantic", semErr)
		}
		return nil
	})
	g.Go(func() error {
		kwScores, kwContribs, kwChunks, kwErr = s.keywordSignal(ctx, processed, filter)
		if kwErr != nil {
			monitor.SignalDegraded("keyword", kwErr)
		}
		return nil
	})
	g.Wait()
	monitor.AfterKeywordSearch(sortedIDs(kwScores))

	// Caller cancellation aborts with no ranking performed.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if semErr != nil && kwErr != nil {
		return nil, fmt.Errorf("%w: both signals failed: %v; %v", ErrUpstreamUnavailable, semErr, kwErr)
	}
	if semErr != nil {
		s.logger.Warn("degrading to keyword-only search", "query", processed.Normalized, "err", semErr)
	}
	if kwErr != nil {
		s.logger.Warn("degrading to semantic-only search", "query", processed.Normalized, "err", kwErr)
	}

	// Fetch semantic-only candidates and apply the filter to them as well.
	chunks := kwChunks
	if chunks == nil {
		chunks = make(map[core.ID]*core.ContentChunk)
	}
	var missing []core.ID
	for id := range semScores {
		if _, exists := chunks[id]; !exists {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		fetched, err := s.chunks.GetChunks(ctx, missing...)
		if err != nil {
			return nil, err
		}
		for _, chunk := range fetched {
			if filter.Matches(chunk) {
				chunks[chunk.Id] = chunk
			}
		}
	}
	retrieved := make([]*core.ContentChunk, 0, len(chunks))
	for _, chunk := range chunks {
		retrieved = append(retrieved, chunk)
	}
	monitor.AfterChunkRetrieval(retrieved)

	ranked := s.fuse(processed, chunks, semScores, kwScores, kwContribs, semErr, kwErr, explain)
	if len(ranked.Results) > k {
		ranked.Results = ranked.Results[:k]
	}
	monitor.Finish(ranked.Results)
	return ranked, nil
}

// semanticSignal embeds the normalized query and retrieves the nearest
// chunks from the vector index, bounded by the signal timeout.
func (s *Searcher) semanticSignal(ctx context.Context, processed *query.Processed, filter storage.ChunkFilter, monitor SearchMonitor) (map[core.ID]float64, error) {
	sigCtx, cancel := context.WithTimeout(ctx, s.config.SignalTimeout)
	defer cancel()

	vector, err := s.embedder.EmbedText(sigCtx, processed.Normalized)
	if err != nil {
		return nil, signalError("embed query", err)
	}
	matches, err := s.vectors.QueryVectors(sigCtx, vector, filter, s.config.CandidatePoolSize)
	if err != nil {
		return nil, signalError("query vectors", err)
	}
	monitor.AfterSemanticSearch(matches)

	scores := make(map[core.ID]float64, len(matches))
	for _, match := range matches {
		scores[match.ChunkId] = match.Score
	}
	return scores, nil
}

// keywordSignal computes BM25 scores over the filtered chunk set. The filter
// is applied before scoring so excluded chunks never distort the ranking.
func (s *Searcher) keywordSignal(ctx context.Context, processed *query.Processed, filter storage.ChunkFilter) (map[core.ID]float64, map[core.ID]map[string]float64, map[core.ID]*core.ContentChunk, error) {
	sigCtx, cancel := context.WithTimeout(ctx, s.config.SignalTimeout)
	defer cancel()

	scorer := newBM25Scorer(s.vocabulary, s.config.BM25K1, s.config.BM25B)
	terms := scoringTerms(processed)
	candidates := scorer.candidates(terms)
	if len(candidates) == 0 {
		return nil, nil, nil, nil
	}

	fetched, err := s.chunks.GetChunks(sigCtx, candidates...)
	if err != nil {
		return nil, nil, nil, signalError("fetch keyword candidates", err)
	}

	chunks := make(map[core.ID]*core.ContentChunk, len(fetched))
	allowed := make(map[core.ID]bool, len(fetched))
	for _, chunk := range fetched {
		if filter.Matches(chunk) {
			chunks[chunk.Id] = chunk
			allowed[chunk.Id] = true
		}
	}

	scores, contributions := scorer.score(terms, allowed)

	// Keep the strongest candidates, ties broken by lower ID.
	if len(scores) > s.config.CandidatePoolSize {
		ids := sortedIDs(scores)
		sort.Slice(ids, func(i, j int) bool {
			if scores[ids[i]] != scores[ids[j]] {
				return scores[ids[i]] > scores[ids[j]]
			}
			return ids[i] < ids[j]
		})
		for _, id := range ids[s.config.CandidatePoolSize:] {
			delete(scores, id)
			delete(contributions, id)
			delete(chunks, id)
		}
	}

	return scores, contributions, chunks, nil
}

// fuse min-max normalizes each signal within the candidate pool, combines
// them with intent-dependent weights, applies query-specific boosts, and
// sorts deterministically.
func (s *Searcher) fuse(
	processed *query.Processed,
	chunks map[core.ID]*core.ContentChunk,
	semScores, kwScores map[core.ID]float64,
	kwContribs map[core.ID]map[string]float64,
	semErr, kwErr error,
	explain bool,
) *Ranked {
	keywordWeight := s.config.keywordWeight(processed.Intent)
	semanticWeight := 1 - keywordWeight
	searchType := core.MatchHybrid
	var note string
	switch {
	case semErr != nil:
		searchType = core.MatchKeywordOnly
		keywordWeight, semanticWeight = 1, 0
		note = degradationNote("semantic", semErr)
	case kwErr != nil:
		searchType = core.MatchSemanticOnly
		keywordWeight, semanticWeight = 0, 1
		note = degradationNote("keyword", kwErr)
	}

	normSem := minMaxNormalize(semScores)
	normKw := minMaxNormalize(kwScores)

	results := make([]*core.ScoredResult, 0, len(chunks))
	for id, chunk := range chunks {
		rawSem, inSem := semScores[id]
		rawKw, inKw := kwScores[id]
		if !inSem && !inKw {
			continue
		}

		fused := keywordWeight*normKw[id] + semanticWeight*normSem[id]
		fused = applyBoosts(fused, chunk, processed)

		result := &core.ScoredResult{
			Chunk:         chunk,
			SemanticScore: rawSem,
			KeywordScore:  rawKw,
			Score:         fused,
			MatchType:     matchType(searchType, inSem, inKw),
		}
		if explain {
			result.Explanation = s.explainResult(id, kwContribs[id], inSem, semanticWeight, keywordWeight, note)
		}
		results = append(results, result)
	}

	// Fused score descending; ties by higher raw semantic score, then lower
	// chunk ID, so identical queries always return identical orderings.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].SemanticScore != results[j].SemanticScore {
			return results[i].SemanticScore > results[j].SemanticScore
		}
		return results[i].Chunk.Id < results[j].Chunk.Id
	})

	return &Ranked{
		Results:         results,
		TotalCandidates: len(results),
		SearchType:      searchType,
	}
}

// applyBoosts sharpens the fused score with query-specific signals: focus
// terms appearing in the title, intent agreeing with the chunk's content
// type, and early pages, which tend to hold fundamental rules. Capped at 1.0
// so fusion stays monotonic in both signals.
func applyBoosts(score float64, chunk *core.ContentChunk, processed *query.Processed) float64 {
	title := strings.ToLower(chunk.Title)
	for _, term := range processed.FocusTerms {
		if strings.Contains(title, term) {
			score *= 1.1
		}
	}

	switch processed.Intent {
	case query.IntentRuleLookup:
		if chunk.ContentType == core.ContentTypeRule {
			score *= 1.2
		}
	case query.IntentStatLookup:
		if chunk.ContentType == core.ContentTypeMonster || chunk.ContentType == core.ContentTypeItem {
			score *= 1.2
		}
	}

	if chunk.PageNumber > 0 && chunk.PageNumber <= 50 {
		score *= 1.05
	}

	if score > 1 {
		score = 1
	}
	return score
}

func (s *Searcher) explainResult(id core.ID, contributions map[string]float64, inSemantic bool, semanticWeight, keywordWeight float64, note string) *core.Explanation {
	type contribution struct {
		term   string
		weight float64
	}
	ranked := make([]contribution, 0, len(contributions))
	for term, weight := range contributions {
		ranked = append(ranked, contribution{term: term, weight: weight})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].term < ranked[j].term
	})
	if len(ranked) > s.config.ExplanationTerms {
		ranked = ranked[:s.config.ExplanationTerms]
	}

	terms := make([]core.TermWeight, len(ranked))
	for i, c := range ranked {
		terms[i] = core.TermWeight{
			Term:              c.term,
			Weight:            c.weight,
			InSemanticContext: inSemantic,
		}
	}
	return &core.Explanation{
		Terms:          terms,
		SemanticWeight: semanticWeight,
		KeywordWeight:  keywordWeight,
		Note:           note,
	}
}

// Explain reports the per-term weights and signal breakdown the ranker
// would apply to the processed query, without running a search.
func (s *Searcher) Explain(processed *query.Processed) *QueryExplanation {
	scorer := newBM25Scorer(s.vocabulary, s.config.BM25K1, s.config.BM25B)
	terms := scoringTerms(processed)

	weights := make([]core.TermWeight, 0, len(terms))
	for _, term := range terms {
		weights = append(weights, core.TermWeight{
			Term:   term.Text,
			Weight: term.Weight * scorer.idf(term.Text),
		})
	}
	sort.Slice(weights, func(i, j int) bool {
		if weights[i].Weight != weights[j].Weight {
			return weights[i].Weight > weights[j].Weight
		}
		return weights[i].Term < weights[j].Term
	})

	keywordWeight := s.config.keywordWeight(processed.Intent)
	return &QueryExplanation{
		Raw:            processed.Raw,
		Normalized:     processed.Normalized,
		Intent:         processed.Intent,
		SemanticWeight: 1 - keywordWeight,
		KeywordWeight:  keywordWeight,
		TermWeights:    weights,
	}
}

func matchType(searchType core.MatchType, inSemantic, inKeyword bool) core.MatchType {
	if searchType != core.MatchHybrid {
		return searchType
	}
	switch {
	case inSemantic && inKeyword:
		return core.MatchHybrid
	case inSemantic:
		return core.MatchSemantic
	default:
		return core.MatchKeyword
	}
}

func signalError(stage string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrUpstreamTimeout, stage, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, stage, err)
}

func degradationNote(signal string, err error) string {
	if errors.Is(err, ErrUpstreamTimeout) {
		return signal + " signal timed out"
	}
	return signal + " signal unavailable"
}

// minMaxNormalize rescales scores to [0, 1] within the candidate set so one
// signal's scale cannot dominate the other. A set with a single distinct
// value maps to 1.
func minMaxNormalize(scores map[core.ID]float64) map[core.ID]float64 {
	normalized := make(map[core.ID]float64, len(scores))
	if len(scores) == 0 {
		return normalized
	}

	first := true
	var lowest, highest float64
	for _, score := range scores {
		if first {
			lowest, highest = score, score
			first = false
			continue
		}
		if score < lowest {
			lowest = score
		}
		if score > highest {
			highest = score
		}
	}

	spread := highest - lowest
	for id, score := range scores {
		if spread == 0 {
			normalized[id] = 1
			continue
		}
		normalized[id] = (score - lowest) / spread
	}
	return normalized
}

func sortedIDs(scores map[core.ID]float64) []core.ID {
	ids := make([]core.ID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
