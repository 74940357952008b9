package grimoire

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/grimoire/ai/mock"
	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/ingestion"
	"github.com/poiesic/grimoire/query"
)

const testSystem = "D&D 5e"

const spellContent = `Fireball
3rd-level evocation
A bright streak flashes to a point you choose and blossoms into flame.
Each creature in the area takes 8d6 fire damage on a failed save.`

const statBlockContent = `Goblin
STR 8 DEX 14 CON 10
AC 15
HP 7 (2d6)`

const proseContent = `The village of Barovia sits in the shadow of the castle.
Its people rarely speak to outsiders, and the mists close in at night.`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine("", WithInMemory(), WithProvider(mock.NewProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

// seedCorpus ingests a small mixed corpus and waits for the embeddings to
// land so both retrieval signals are live.
func seedCorpus(t *testing.T, engine *Engine) []*core.ContentChunk {
	t.Helper()
	ctx := context.Background()

	chunks, err := engine.IngestChunks(ctx,
		&ingestion.ChunkInput{
			Source: "Player's Handbook", System: testSystem,
			Title: "Fireball", Content: spellContent, PageNumber: 241,
		},
		&ingestion.ChunkInput{
			Source: "Monster Manual", System: testSystem,
			Title: "Goblin", Content: statBlockContent, PageNumber: 166,
		},
		&ingestion.ChunkInput{
			Source: "Curse of Strahd", System: testSystem,
			Title: "Barovia", Content: proseContent, PageNumber: 41,
		},
	)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for _, chunk := range chunks {
		waitForVector(t, engine, chunk.Id)
	}
	return chunks
}

func waitForVector(t *testing.T, engine *Engine, id core.ID) {
	t.Helper()
	require.Eventually(t, func() bool {
		chunk, err := engine.ChunkRepository().GetChunk(context.Background(), id)
		return err == nil && len(chunk.Vector) > 0
	}, 2*time.Second, 10*time.Millisecond, "embedding never arrived for chunk %d", id)
}

func TestEngineSearch(t *testing.T) {
	engine := newTestEngine(t)
	seedCorpus(t, engine)
	ctx := context.Background()

	response, err := engine.Search(ctx, "fireball damage rules", SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, response.Results)

	assert.Equal(t, "Fireball", response.Results[0].Chunk.Title)
	assert.Equal(t, query.IntentRuleLookup, response.Intent)
	assert.Equal(t, core.MatchHybrid, response.SearchType)
	assert.Empty(t, response.Corrected)
	assert.Greater(t, response.TotalCandidates, 0)

	for _, result := range response.Results {
		assert.NotNil(t, result.Explanation)
	}
}

func TestEngineSearch_CorrectsSpelling(t *testing.T) {
	engine := newTestEngine(t)
	seedCorpus(t, engine)

	response, err := engine.Search(context.Background(), "fyrebal rules", SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, response.Results)

	assert.Equal(t, "fireball rules", response.Corrected)
	assert.Equal(t, "Fireball", response.Results[0].Chunk.Title)
}

func TestEngineSearch_FilteredBySource(t *testing.T) {
	engine := newTestEngine(t)
	seedCorpus(t, engine)

	response, err := engine.Search(context.Background(), "goblin rules", SearchOptions{
		Source: "Monster Manual",
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.Results)

	for _, result := range response.Results {
		assert.Equal(t, "Monster Manual", result.Chunk.Source)
	}
}

func TestEngineSearch_NothingSearchable(t *testing.T) {
	engine := newTestEngine(t)
	seedCorpus(t, engine)

	response, err := engine.Search(context.Background(), "  ?!  ", SearchOptions{})
	require.NoError(t, err)

	assert.Empty(t, response.Results)
	assert.NotEmpty(t, response.Suggestions, "degenerate queries still get guidance")
}

func TestEngineQuickSearch(t *testing.T) {
	engine := newTestEngine(t)
	seedCorpus(t, engine)
	ctx := context.Background()

	results, err := engine.QuickSearch(ctx, "fireball damage rules", 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 2)

	for _, result := range results {
		assert.Nil(t, result.Explanation, "quick search skips explanation work")
	}

	empty, err := engine.QuickSearch(ctx, "", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEngineSuggestCompletions(t *testing.T) {
	engine := newTestEngine(t)
	seedCorpus(t, engine)

	completions := engine.SuggestCompletions("fire", 5)
	assert.Contains(t, completions, "fireball")
}

func TestEngineExplainSearch(t *testing.T) {
	engine := newTestEngine(t)
	seedCorpus(t, engine)
	ctx := context.Background()

	explanation, err := engine.ExplainSearch(ctx, "fireball damage rules")
	require.NoError(t, err)

	assert.Equal(t, query.IntentRuleLookup, explanation.Intent)
	assert.InDelta(t, 0.65, explanation.KeywordWeight, 0.001)
	assert.InDelta(t, 0.35, explanation.SemanticWeight, 0.001)
	assert.NotEmpty(t, explanation.TermWeights)

	_, err = engine.ExplainSearch(ctx, "")
	assert.ErrorIs(t, err, query.ErrEmptyQuery)
}

func TestEngineStats(t *testing.T) {
	engine := newTestEngine(t)
	seedCorpus(t, engine)

	stats, err := engine.Stats(context.Background())
	require.NoError(t, err)

	assert.Greater(t, stats.VocabularyTerms, 0)
	assert.Equal(t, 3, stats.IndexedChunks)
	assert.Equal(t, 3, stats.ChunksBySystem[testSystem])
	assert.Greater(t, stats.CachedPatterns[testSystem], 0, "ingestion promotes patterns")
}

func TestEngineClassifyChunk(t *testing.T) {
	engine := newTestEngine(t)

	contentType, confidence := engine.ClassifyChunk(context.Background(), statBlockContent, testSystem)
	assert.Equal(t, core.ContentTypeMonster, contentType)
	assert.GreaterOrEqual(t, confidence, 0.6)
}

func TestEngineReinforceClassification(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	chunks, err := engine.IngestChunks(ctx, &ingestion.ChunkInput{
		Source: "Curse of Strahd", System: testSystem,
		Title: "Barovia", Content: proseContent,
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, core.ContentTypeText, chunks[0].ContentType)
	require.Equal(t, "true", chunks[0].Metadata["needs_review"])

	err = engine.ReinforceClassification(ctx, chunks[0].Id, core.ContentTypeRule)
	require.NoError(t, err)

	stored, err := engine.ChunkRepository().GetChunk(ctx, chunks[0].Id)
	require.NoError(t, err)
	assert.Equal(t, core.ContentTypeRule, stored.ContentType)
	assert.Equal(t, 1.0, stored.Confidence)
	assert.NotContains(t, stored.Metadata, "needs_review")

	// The classifier learned from the correction
	contentType, confidence := engine.ClassifyChunk(ctx, proseContent, testSystem)
	assert.Equal(t, core.ContentTypeRule, contentType)
	assert.GreaterOrEqual(t, confidence, 0.6)
}

func TestEngineReinforceClassification_UnknownChunk(t *testing.T) {
	engine := newTestEngine(t)

	err := engine.ReinforceClassification(context.Background(), core.ID(99999), core.ContentTypeRule)
	assert.Error(t, err)
}

func TestEngineIngestSource_Replace(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	v1, err := engine.IngestSource(ctx, "Monster Manual",
		&ingestion.ChunkInput{System: testSystem, Title: "Goblin", Content: statBlockContent},
		&ingestion.ChunkInput{System: testSystem, Title: "Displacer Beast", Content: "The displacer beast projects illusory duplicates of itself."},
	)
	require.NoError(t, err)
	require.Len(t, v1, 2)

	v2, err := engine.IngestSource(ctx, "Monster Manual",
		&ingestion.ChunkInput{System: testSystem, Title: "Goblin", Content: statBlockContent},
	)
	require.NoError(t, err)
	require.Len(t, v2, 1)

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.IndexedChunks)
	assert.Empty(t, engine.SuggestCompletions("displacer", 5))
}

func TestEnginePersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	engine, err := NewEngine(dir, WithProvider(mock.NewProvider()))
	require.NoError(t, err)
	chunks := seedCorpus(t, engine)
	require.NoError(t, engine.Close())

	reopened, err := NewEngine(dir, WithProvider(mock.NewProvider()))
	require.NoError(t, err)
	defer reopened.Close()

	stats, err := reopened.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.IndexedChunks, "vocabulary rebuilt from stored chunks")
	assert.Greater(t, stats.CachedPatterns[testSystem], 0, "patterns warmed from storage")

	response, err := reopened.Search(ctx, "fireball damage rules", SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, response.Results)
	assert.Equal(t, chunks[0].Id, response.Results[0].Chunk.Id)
}
