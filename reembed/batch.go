package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/grimoire/ai"
	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/storage"
)

// BatchProcessor generates fresh embeddings for batches of chunks.
type BatchProcessor struct {
	vectorIndex    storage.VectorIndex
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(vectorIndex storage.VectorIndex, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		vectorIndex:    vectorIndex,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of chunks and upserts them into
// the vector index at unit length.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.ContentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		if chunk.Title == "" {
			texts[i] = chunk.Content
		} else {
			texts[i] = chunk.Title + "\n" + chunk.Content
		}
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	for i, chunk := range chunks {
		if err := bp.vectorIndex.UpsertVector(ctx, chunk.Id, NormalizeVector(embeddings[i])); err != nil {
			return fmt.Errorf("failed to store vector for chunk %d: %w", chunk.Id, err)
		}
	}

	return nil
}
