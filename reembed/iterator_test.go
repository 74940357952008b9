package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/storage"
	"github.com/poiesic/grimoire/storage/badger"
)

func setupChunkRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()
	chunkRepo, patternRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		patternRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})
	return chunkRepo
}

func seedChunks(t *testing.T, repo storage.ChunkRepository, n int, system string) []*core.ContentChunk {
	t.Helper()
	chunks := make([]*core.ContentChunk, n)
	for i := range chunks {
		chunks[i] = &core.ContentChunk{
			Source:      "Test Source",
			System:      system,
			SourceKind:  core.SourceKindRulebook,
			ContentType: core.ContentTypeText,
			Title:       fmt.Sprintf("Section %d", i),
			Content:     fmt.Sprintf("Content of section %d describes an obscure rule.", i),
		}
		chunks[i].Id = core.IDFromContent(chunks[i].ContentKey())
	}
	require.NoError(t, repo.AddChunks(context.Background(), chunks...))
	return chunks
}

func TestChunkIterator_Batches(t *testing.T) {
	repo := setupChunkRepo(t)
	seedChunks(t, repo, 25, "D&D 5e")

	iterator := NewChunkIterator(repo, storage.ChunkFilter{}, 10)

	var batchSizes []int
	total := 0
	err := iterator.ForEach(context.Background(), func(batch []*core.ContentChunk) error {
		batchSizes = append(batchSizes, len(batch))
		total += len(batch)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 25, total)
	assert.Equal(t, []int{10, 10, 5}, batchSizes)
}

func TestChunkIterator_Count(t *testing.T) {
	repo := setupChunkRepo(t)
	seedChunks(t, repo, 7, "D&D 5e")
	seedChunks(t, repo, 3, "Pathfinder")

	all := NewChunkIterator(repo, storage.ChunkFilter{}, 10)
	count, err := all.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	filtered := NewChunkIterator(repo, storage.ChunkFilter{System: "Pathfinder"}, 10)
	count, err = filtered.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestChunkIterator_FilterRestrictsBatches(t *testing.T) {
	repo := setupChunkRepo(t)
	seedChunks(t, repo, 5, "D&D 5e")
	seedChunks(t, repo, 5, "Pathfinder")

	iterator := NewChunkIterator(repo, storage.ChunkFilter{System: "Pathfinder"}, 100)

	err := iterator.ForEach(context.Background(), func(batch []*core.ContentChunk) error {
		for _, chunk := range batch {
			assert.Equal(t, "Pathfinder", chunk.System)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestChunkIterator_StopsOnError(t *testing.T) {
	repo := setupChunkRepo(t)
	seedChunks(t, repo, 20, "D&D 5e")

	boom := errors.New("boom")
	iterator := NewChunkIterator(repo, storage.ChunkFilter{}, 5)

	batches := 0
	err := iterator.ForEach(context.Background(), func([]*core.ContentChunk) error {
		batches++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, batches)
}

func TestChunkIterator_Empty(t *testing.T) {
	repo := setupChunkRepo(t)
	iterator := NewChunkIterator(repo, storage.ChunkFilter{}, 10)

	called := false
	err := iterator.ForEach(context.Background(), func([]*core.ContentChunk) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestChunkIterator_DefaultBatchSize(t *testing.T) {
	repo := setupChunkRepo(t)
	iterator := NewChunkIterator(repo, storage.ChunkFilter{}, 0)
	assert.Equal(t, DefaultBatchSize, iterator.batchSize)
}
