package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/grimoire/ai"
	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/storage"
)

// embeddingProcessor generates embedding vectors for stored chunks and
// attaches them to the vector index.
type embeddingProcessor struct {
	chunkRepository storage.ChunkRepository
	vectorIndex     storage.VectorIndex
	embedder        ai.Embedder
	logger          *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(chunkRepository storage.ChunkRepository, vectorIndex storage.VectorIndex, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if vectorIndex == nil {
		vectorIndex = chunkRepository
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		chunkRepository: chunkRepository,
		vectorIndex:     vectorIndex,
		embedder:        embedder,
		logger:          logger.With("processor", "embeddings"),
	}, nil
}

// process generates embeddings for the specified chunks.
// Chunks deleted between submission and processing are skipped.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}

	ep.logger.Info("processing chunks for embeddings", "chunks", len(ids))

	slices.Sort(ids)

	chunks, err := ep.chunkRepository.GetChunks(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving chunks", "err", err)
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = embeddingText(chunk)
	}

	ep.logger.Debug("generating embeddings for chunks", "chunks", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(embeddings))
	}

	// One bad chunk must not strand the rest of the batch keyword-only.
	failed := 0
	for i, chunk := range chunks {
		err := ep.vectorIndex.UpsertVector(ctx, chunk.Id, embeddings[i])
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// Chunk retired while its embedding was in flight.
			ep.logger.Debug("skipping vector for deleted chunk", "chunkID", chunk.Id)
		case err != nil:
			ep.logger.Error("error storing vector", "chunkID", chunk.Id, "err", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to store %d of %d vectors", failed, len(chunks))
	}

	return nil
}

// embeddingText builds the text a chunk is embedded from. The title carries
// strong topical signal, so it is prepended to the body.
func embeddingText(chunk *core.ContentChunk) string {
	if chunk.Title == "" {
		return chunk.Content
	}
	return chunk.Title + "\n" + chunk.Content
}
