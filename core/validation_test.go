package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validChunk() *ContentChunk {
	return &ContentChunk{
		Source:      "Player's Handbook",
		System:      "D&D 5e",
		SourceKind:  SourceKindRulebook,
		ContentType: ContentTypeRule,
		Confidence:  0.9,
		Title:       "Armor Class",
		Content:     "Armor Class (AC) represents how hard it is to hit a creature",
		PageNumber:  14,
	}
}

func TestValidateContentChunk(t *testing.T) {
	t.Run("valid chunk", func(t *testing.T) {
		require.NoError(t, ValidateContentChunk(validChunk()))
	})

	t.Run("nil chunk", func(t *testing.T) {
		err := ValidateContentChunk(nil)
		assert.ErrorIs(t, err, ErrInvalidChunk)
	})

	t.Run("empty content", func(t *testing.T) {
		chunk := validChunk()
		chunk.Content = ""
		err := ValidateContentChunk(chunk)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("empty source", func(t *testing.T) {
		chunk := validChunk()
		chunk.Source = ""
		assert.ErrorIs(t, ValidateContentChunk(chunk), ErrEmptySource)
	})

	t.Run("empty system", func(t *testing.T) {
		chunk := validChunk()
		chunk.System = ""
		assert.ErrorIs(t, ValidateContentChunk(chunk), ErrEmptySystem)
	})

	t.Run("invalid source kind", func(t *testing.T) {
		chunk := validChunk()
		chunk.SourceKind = 0
		assert.ErrorIs(t, ValidateContentChunk(chunk), ErrInvalidSourceKind)
	})

	t.Run("invalid content type", func(t *testing.T) {
		chunk := validChunk()
		chunk.ContentType = 99
		assert.ErrorIs(t, ValidateContentChunk(chunk), ErrInvalidContentType)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		chunk := validChunk()
		chunk.Confidence = 1.5
		assert.ErrorIs(t, ValidateContentChunk(chunk), ErrInvalidConfidence)
	})
}

func TestValidatePatternEntry(t *testing.T) {
	valid := func() *PatternEntry {
		return &PatternEntry{
			System:      "D&D 5e",
			Kind:        MatcherKeywordSet,
			Keywords:    []string{"casting time", "duration"},
			ContentType: ContentTypeSpell,
			Confidence:  0.8,
		}
	}

	t.Run("valid entry", func(t *testing.T) {
		require.NoError(t, ValidatePatternEntry(valid()))
	})

	t.Run("nil entry", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePatternEntry(nil), ErrInvalidPattern)
	})

	t.Run("empty system", func(t *testing.T) {
		entry := valid()
		entry.System = ""
		assert.ErrorIs(t, ValidatePatternEntry(entry), ErrEmptySystem)
	})

	t.Run("keyword-set without keywords", func(t *testing.T) {
		entry := valid()
		entry.Keywords = nil
		assert.ErrorIs(t, ValidatePatternEntry(entry), ErrEmptyKeywords)
	})

	t.Run("stat-line matcher needs no keywords", func(t *testing.T) {
		entry := valid()
		entry.Kind = MatcherStatLine
		entry.Keywords = nil
		entry.Threshold = 2
		require.NoError(t, ValidatePatternEntry(entry))
	})

	t.Run("invalid matcher kind", func(t *testing.T) {
		entry := valid()
		entry.Kind = 42
		assert.ErrorIs(t, ValidatePatternEntry(entry), ErrInvalidMatcherKind)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		entry := valid()
		entry.Confidence = -0.1
		assert.ErrorIs(t, ValidatePatternEntry(entry), ErrInvalidConfidence)
	})
}
