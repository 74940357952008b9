package badger

import (
	"context"
	"testing"

	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunk(source, title, content string) *core.ContentChunk {
	chunk := &core.ContentChunk{
		Source:      source,
		System:      "D&D 5e",
		SourceKind:  core.SourceKindRulebook,
		ContentType: core.ContentTypeRule,
		Confidence:  0.9,
		Title:       title,
		Content:     content,
	}
	chunk.Id = core.IDFromContent(chunk.ContentKey())
	return chunk
}

func TestChunkRepository_AddAndGet(t *testing.T) {
	chunkRepo, patternRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		patternRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	chunk := newTestChunk("PHB", "Armor Class", "Armor Class represents how hard it is to hit a creature")

	require.NoError(t, chunkRepo.AddChunks(ctx, chunk))

	got, err := chunkRepo.GetChunk(ctx, chunk.Id)
	require.NoError(t, err)
	assert.Equal(t, chunk.Id, got.Id)
	assert.Equal(t, chunk.Title, got.Title)
	assert.Equal(t, chunk.Content, got.Content)
	assert.False(t, got.InsertedAt.IsZero())

	t.Run("missing chunk returns ErrNotFound", func(t *testing.T) {
		_, err := chunkRepo.GetChunk(ctx, core.ID(12345))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("GetChunks skips missing ids", func(t *testing.T) {
		chunks, err := chunkRepo.GetChunks(ctx, chunk.Id, core.ID(12345))
		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})
}

func TestChunkRepository_GetChunksBySource(t *testing.T) {
	chunkRepo, patternRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		patternRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	require.NoError(t, chunkRepo.AddChunks(ctx,
		newTestChunk("PHB", "Armor Class", "armor class rules"),
		newTestChunk("PHB", "Hit Points", "hit point rules"),
		newTestChunk("Monster Manual", "Goblin", "goblin stat block"),
	))

	phb, err := chunkRepo.GetChunksBySource(ctx, "PHB")
	require.NoError(t, err)
	assert.Len(t, phb, 2)

	mm, err := chunkRepo.GetChunksBySource(ctx, "Monster Manual")
	require.NoError(t, err)
	assert.Len(t, mm, 1)

	none, err := chunkRepo.GetChunksBySource(ctx, "Unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestChunkRepository_DeleteChunks(t *testing.T) {
	chunkRepo, patternRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		patternRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	chunk := newTestChunk("PHB", "Armor Class", "armor class rules")
	require.NoError(t, chunkRepo.AddChunks(ctx, chunk))

	require.NoError(t, chunkRepo.DeleteChunks(ctx, chunk.Id))

	_, err = chunkRepo.GetChunk(ctx, chunk.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Source index entry is gone too
	bySource, err := chunkRepo.GetChunksBySource(ctx, "PHB")
	require.NoError(t, err)
	assert.Empty(t, bySource)

	t.Run("deleting missing chunk returns ErrNotFound", func(t *testing.T) {
		assert.ErrorIs(t, chunkRepo.DeleteChunks(ctx, chunk.Id), storage.ErrNotFound)
	})
}

func TestChunkRepository_ForEachChunkFilter(t *testing.T) {
	chunkRepo, patternRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		patternRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	spell := newTestChunk("PHB", "Fireball", "8d6 fire damage in a 20-foot radius")
	spell.ContentType = core.ContentTypeSpell
	rule := newTestChunk("PHB", "Grappling", "grappling rules")
	require.NoError(t, chunkRepo.AddChunks(ctx, spell, rule))

	var seen []core.ID
	err = chunkRepo.ForEachChunk(ctx, storage.ChunkFilter{ContentType: core.ContentTypeSpell}, func(c *core.ContentChunk) error {
		seen = append(seen, c.Id)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, spell.Id, seen[0])
}

func TestChunkRepository_Vectors(t *testing.T) {
	chunkRepo, patternRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		patternRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	near := newTestChunk("PHB", "Fireball", "fireball spell")
	far := newTestChunk("PHB", "Grappling", "grappling rules")
	noVec := newTestChunk("PHB", "Blank", "no vector yet")
	require.NoError(t, chunkRepo.AddChunks(ctx, near, far, noVec))

	require.NoError(t, chunkRepo.UpsertVector(ctx, near.Id, []float32{0.9, 0.1, 0.0}))
	require.NoError(t, chunkRepo.UpsertVector(ctx, far.Id, []float32{0.0, 0.1, 0.9}))

	matches, err := chunkRepo.QueryVectors(ctx, []float32{1, 0, 0}, storage.ChunkFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2) // chunk without a vector is skipped
	assert.Equal(t, near.Id, matches[0].ChunkId)
	assert.Greater(t, matches[0].Score, matches[1].Score)

	t.Run("topN truncation", func(t *testing.T) {
		matches, err := chunkRepo.QueryVectors(ctx, []float32{1, 0, 0}, storage.ChunkFilter{}, 1)
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("empty query vector rejected", func(t *testing.T) {
		_, err := chunkRepo.QueryVectors(ctx, nil, storage.ChunkFilter{}, 10)
		assert.ErrorIs(t, err, storage.ErrEmptyVector)
	})

	t.Run("upsert on missing chunk", func(t *testing.T) {
		err := chunkRepo.UpsertVector(ctx, core.ID(999), []float32{1})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("magnitude does not distort similarity", func(t *testing.T) {
		// Scale the stored and query vectors far out of unit length;
		// cosine scores must stay in [-1, 1] with the aligned chunk
		// still scoring 1.
		require.NoError(t, chunkRepo.UpsertVector(ctx, near.Id, []float32{90, 10, 0}))
		require.NoError(t, chunkRepo.UpsertVector(ctx, far.Id, []float32{0, 10, 90}))

		matches, err := chunkRepo.QueryVectors(ctx, []float32{450, 50, 0}, storage.ChunkFilter{}, 10)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, near.Id, matches[0].ChunkId)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
		for _, match := range matches {
			assert.LessOrEqual(t, match.Score, 1.0+1e-9)
			assert.GreaterOrEqual(t, match.Score, -1.0-1e-9)
		}
	})

	t.Run("zero magnitude scores zero", func(t *testing.T) {
		matches, err := chunkRepo.QueryVectors(ctx, []float32{0, 0, 0}, storage.ChunkFilter{}, 10)
		require.NoError(t, err)
		for _, match := range matches {
			assert.Zero(t, match.Score)
		}
	})
}

func TestChunkRepository_CountBySystem(t *testing.T) {
	chunkRepo, patternRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		patternRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	a := newTestChunk("PHB", "Armor Class", "armor class rules")
	b := newTestChunk("PHB", "Hit Points", "hit point rules")
	c := newTestChunk("Core Rulebook", "Attacks", "attack rules")
	c.System = "Pathfinder"
	require.NoError(t, chunkRepo.AddChunks(ctx, a, b, c))

	counts, err := chunkRepo.CountBySystem(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts["D&D 5e"])
	assert.Equal(t, 1, counts["Pathfinder"])
}
