package suggest

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/query"
	"github.com/poiesic/grimoire/vocab"
)

func newFixture(t *testing.T, texts ...string) (*Suggester, *query.Processor) {
	t.Helper()
	vocabulary, err := vocab.NewIndex()
	require.NoError(t, err)
	for i, text := range texts {
		chunk := &core.ContentChunk{
			Source:  "Test Handbook",
			System:  "D&D 5e",
			Title:   "Entry",
			Content: text,
		}
		chunk.Id = core.IDFromContent(chunk.ContentKey()) + core.ID(i)
		vocabulary.IngestChunk(chunk)
	}

	suggester, err := NewSuggester(vocabulary)
	require.NoError(t, err)
	processor, err := query.NewProcessor(vocabulary)
	require.NoError(t, err)
	return suggester, processor
}

func TestNewSuggester(t *testing.T) {
	_, err := NewSuggester(nil)
	assert.ErrorIs(t, err, ErrVocabularyRequired)
}

func TestCompletions(t *testing.T) {
	suggester, _ := newFixture(t,
		"fireball explodes in a sphere of fire",
		"fire bolt is a cantrip hurling fire",
	)

	t.Run("completes the last token", func(t *testing.T) {
		completions := suggester.Completions("cast fireb", 5)
		require.NotEmpty(t, completions)
		assert.Equal(t, "cast fireball", completions[0])
	})

	t.Run("single token query", func(t *testing.T) {
		completions := suggester.Completions("fireb", 5)
		require.NotEmpty(t, completions)
		assert.Equal(t, "fireball", completions[0])
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, suggester.Completions("  ", 5))
		assert.Nil(t, suggester.Completions("fire", 0))
	})
}

func TestAlternatives(t *testing.T) {
	suggester, processor := newFixture(t, "fireball explodes in a sphere of fire")

	t.Run("no suggestions when results are plentiful", func(t *testing.T) {
		processed, err := processor.Process("fireball", nil)
		require.NoError(t, err)
		assert.Nil(t, suggester.Alternatives(processed, LowResultThreshold))
	})

	t.Run("corrected form suggested", func(t *testing.T) {
		processed, err := processor.Process("fyrebal", nil)
		require.NoError(t, err)
		require.NotEmpty(t, processed.Corrected)

		suggestions := suggester.Alternatives(processed, 0)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "fireball", suggestions[0].Query)
		assert.Equal(t, "spelling", suggestions[0].Kind)
		assert.NotEmpty(t, suggestions[0].Rationale)
	})

	t.Run("broadening suggested when filters applied", func(t *testing.T) {
		qctx := &query.Context{System: "D&D 5e"}
		processed, err := processor.Process("fireball", qctx)
		require.NoError(t, err)

		suggestions := suggester.Alternatives(processed, 1)
		var kinds []string
		for _, suggestion := range suggestions {
			kinds = append(kinds, suggestion.Kind)
		}
		assert.Contains(t, kinds, "broadening")
	})

	t.Run("vocabulary terms for uncertain tokens", func(t *testing.T) {
		// "firezz" is too far from anything for correction but shares a prefix.
		processed, err := processor.Process("firezzqq", nil)
		require.NoError(t, err)
		require.NotEmpty(t, processed.Uncertain)

		suggestions := suggester.Alternatives(processed, 0)
		require.NotEmpty(t, suggestions)
		var vocabCount int
		for _, suggestion := range suggestions {
			if suggestion.Kind == "vocabulary" {
				vocabCount++
				assert.NotEqual(t, processed.Normalized, suggestion.Query)
			}
		}
		assert.Positive(t, vocabCount)
		assert.LessOrEqual(t, vocabCount, maxVocabularySuggestions)
	})
}

func TestRelated(t *testing.T) {
	suggester, processor := newFixture(t, "fireball explodes in a sphere of fire")
	processed, err := processor.Process("fire", nil)
	require.NoError(t, err)

	t.Run("topics mined from result titles", func(t *testing.T) {
		results := []*core.ScoredResult{
			{Chunk: &core.ContentChunk{Title: "Evocation Spells"}},
			{Chunk: &core.ContentChunk{Title: "Fire Damage"}},
		}
		suggestions := suggester.Related(processed, results)
		require.NotEmpty(t, suggestions)
		assert.LessOrEqual(t, len(suggestions), maxRelatedSuggestions)
		assert.Equal(t, "fire evocation", suggestions[0].Query)
		assert.Equal(t, "related", suggestions[0].Kind)
	})

	t.Run("no results yields nothing", func(t *testing.T) {
		assert.Nil(t, suggester.Related(processed, nil))
	})
}

func TestPrefixAnchor(t *testing.T) {
	assert.Equal(t, "fire", prefixAnchor("fireball"))
	assert.Equal(t, "orc", prefixAnchor("orc"))

	// Rune-counted truncation never cuts a multi-byte rune in half.
	anchor := prefixAnchor("eldörmr")
	assert.Equal(t, "eldö", anchor)
	assert.True(t, utf8.ValidString(anchor))
}
