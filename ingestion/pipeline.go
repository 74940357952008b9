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

package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/grimoire/ai"
	"github.com/poiesic/grimoire/classify"
	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/storage"
	"github.com/poiesic/grimoire/vocab"
)

// reviewFlagKey marks chunks whose classification confidence fell below the
// classifier's floor and were stored as plain text pending review.
const reviewFlagKey = "needs_review"

// Pipeline orchestrates the ingestion of content chunks.
// Classification runs concurrently within a batch; embedding generation is
// deferred to a background worker pool so ingestion returns as soon as the
// chunks are stored and searchable by keyword.
type Pipeline struct {
	chunkRepository storage.ChunkRepository
	vectorIndex     storage.VectorIndex
	vocabulary      *vocab.Index
	classifier      *classify.Classifier
	classifyPool    *ants.Pool
	embeddingPool   *ants.Pool
	embeddingProc   processor
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.classifyPool != nil {
			p.classifyPool.Release()
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		// Create new pools
		classifyPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			classifyPool.Release()
			return err
		}

		p.classifyPool = classifyPool
		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithVectorIndex routes embedding upserts to a dedicated vector index
// instead of the chunk repository's built-in scan index.
func WithVectorIndex(index storage.VectorIndex) Option {
	return func(p *Pipeline) error {
		if index != nil {
			p.vectorIndex = index
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunkRepository storage.ChunkRepository,
	vocabulary *vocab.Index,
	classifier *classify.Classifier,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if vocabulary == nil {
		return nil, ErrVocabularyRequired
	}
	if classifier == nil {
		return nil, ErrClassifierRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default logger
	logger := slog.Default()

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	classifyPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		classifyPool.Release()
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		chunkRepository: chunkRepository,
		vectorIndex:     chunkRepository,
		vocabulary:      vocabulary,
		classifier:      classifier,
		classifyPool:    classifyPool,
		embeddingPool:   embeddingPool,
		logger:          logger,
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied (so it gets final config)
	embeddingProc, err := newEmbeddingProcessor(chunkRepository, p.vectorIndex, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// ChunkInput describes one unit of content to be ingested. The content type
// is assigned by the classifier, never by the caller.
type ChunkInput struct {
	Source      string
	System      string
	SourceKind  core.SourceKind // defaults to SourceKindRulebook
	Title       string
	Content     string
	PageNumber  int
	SectionPath []string
	Metadata    map[string]string
}

// IngestChunks classifies, stores and indexes the given inputs, then submits
// them for asynchronous embedding. Inputs that classify below the
// classifier's confidence floor are stored as plain text and flagged for
// review in their metadata. Returns the stored chunks in input order.
// Errors during async embedding are logged but do not fail the ingestion.
func (p *Pipeline) IngestChunks(ctx context.Context, inputs ...*ChunkInput) ([]*core.ContentChunk, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	for _, input := range inputs {
		if strings.TrimSpace(input.Content) == "" {
			return nil, ErrEmptyContent
		}
		if input.Source == "" {
			return nil, ErrSourceRequired
		}
	}

	chunks := make([]*core.ContentChunk, len(inputs))

	// Classify the batch concurrently. Classification is pure CPU work and
	// each input is independent.
	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			chunks[i] = p.buildChunk(ctx, input)
		}
		if err := p.classifyPool.Submit(task); err != nil {
			// Pool released or saturated; classify inline.
			task()
		}
	}
	wg.Wait()

	if err := p.chunkRepository.AddChunks(ctx, chunks...); err != nil {
		return nil, err
	}

	ids := make([]core.ID, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.Id
		p.vocabulary.IngestChunk(chunk)
	}

	// Submit for async embedding
	err := p.embeddingPool.Submit(func() {
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
		}
	})
	if err != nil {
		p.logger.Error("error submitting embedding work", "err", err)
	}

	return chunks, nil
}

// IngestSource replaces the indexed content of the named source. All stored
// chunks belonging to the source are retired, their vocabulary terms
// retracted, and the new inputs ingested in their place. Unchanged content
// keeps its content-derived identity across versions.
func (p *Pipeline) IngestSource(ctx context.Context, source string, inputs ...*ChunkInput) ([]*core.ContentChunk, error) {
	if source == "" {
		return nil, ErrSourceRequired
	}

	previous, err := p.chunkRepository.GetChunksBySource(ctx, source)
	if err != nil {
		return nil, err
	}

	if len(previous) > 0 {
		ids := make([]core.ID, len(previous))
		for i, chunk := range previous {
			ids[i] = chunk.Id
			p.vocabulary.RetractChunk(chunk.Id)
		}
		if err := p.chunkRepository.DeleteChunks(ctx, ids...); err != nil {
			return nil, err
		}
		p.logger.Info("retired previous source version", "source", source, "chunks", len(previous))
	}

	for _, input := range inputs {
		input.Source = source
	}

	return p.IngestChunks(ctx, inputs...)
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.classifyPool != nil {
		p.classifyPool.Release()
	}
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}

// buildChunk classifies one input and assembles its stored representation.
func (p *Pipeline) buildChunk(ctx context.Context, input *ChunkInput) *core.ContentChunk {
	contentType, confidence := p.classifier.Classify(ctx, input.Content, input.System)

	metadata := input.Metadata
	if confidence < p.classifier.MinConfidence() {
		metadata = cloneMetadata(metadata)
		metadata[reviewFlagKey] = "true"
		p.logger.Debug("classification below confidence floor",
			"system", input.System, "type", contentType, "confidence", confidence)
		contentType = core.ContentTypeText
	}

	sourceKind := input.SourceKind
	if sourceKind == 0 {
		sourceKind = core.SourceKindRulebook
	}

	chunk := &core.ContentChunk{
		Source:      input.Source,
		System:      input.System,
		SourceKind:  sourceKind,
		ContentType: contentType,
		Confidence:  confidence,
		Title:       input.Title,
		Content:     input.Content,
		PageNumber:  input.PageNumber,
		SectionPath: input.SectionPath,
		Metadata:    metadata,
		InsertedAt:  time.Now().UTC(),
	}
	chunk.Id = core.IDFromContent(chunk.ContentKey())
	return chunk
}

func cloneMetadata(metadata map[string]string) map[string]string {
	clone := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		clone[k] = v
	}
	return clone
}
