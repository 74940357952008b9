package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/grimoire/ai/mock"
	"github.com/poiesic/grimoire/storage"
)

func TestReembedder_Run(t *testing.T) {
	repo := setupChunkRepo(t)
	chunks := seedChunks(t, repo, 12, "D&D 5e")
	ctx := context.Background()

	var progress bytes.Buffer
	config := &Config{BatchSize: 5, ReportInterval: 5, MaxRetries: 2, RetryDelay: time.Millisecond}
	reembedder := NewReembedder(repo, mock.NewEmbedder(), config, &progress)

	require.NoError(t, reembedder.Run(ctx))

	for _, chunk := range chunks {
		stored, err := repo.GetChunk(ctx, chunk.Id)
		require.NoError(t, err)
		require.NotEmpty(t, stored.Vector)
		assert.InDelta(t, 1.0, magnitude(stored.Vector), 1e-5, "vectors come out normalized")
	}

	output := progress.String()
	assert.Contains(t, output, "Starting reembedding of 12 chunks")
	assert.Contains(t, output, "Reembedding complete")
}

func TestReembedder_Run_Filtered(t *testing.T) {
	repo := setupChunkRepo(t)
	kept := seedChunks(t, repo, 4, "Pathfinder")
	skipped := seedChunks(t, repo, 4, "D&D 5e")
	ctx := context.Background()

	var progress bytes.Buffer
	config := DefaultConfig()
	config.Filter = storage.ChunkFilter{System: "Pathfinder"}
	reembedder := NewReembedder(repo, mock.NewEmbedder(), config, &progress)

	require.NoError(t, reembedder.Run(ctx))

	for _, chunk := range kept {
		stored, err := repo.GetChunk(ctx, chunk.Id)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.Vector)
	}
	for _, chunk := range skipped {
		stored, err := repo.GetChunk(ctx, chunk.Id)
		require.NoError(t, err)
		assert.Empty(t, stored.Vector)
	}
}

func TestReembedder_Run_EmptyDatabase(t *testing.T) {
	repo := setupChunkRepo(t)

	var progress bytes.Buffer
	reembedder := NewReembedder(repo, mock.NewEmbedder(), nil, &progress)

	require.NoError(t, reembedder.Run(context.Background()))
	assert.Contains(t, progress.String(), "No chunks found")
}

func TestReembedder_Run_EmbedderFailure(t *testing.T) {
	repo := setupChunkRepo(t)
	seedChunks(t, repo, 3, "D&D 5e")

	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	var progress bytes.Buffer
	config := &Config{BatchSize: 5, ReportInterval: 5, MaxRetries: 2, RetryDelay: time.Millisecond}
	reembedder := NewReembedder(repo, embedder, config, &progress)

	err := reembedder.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service down")
}
