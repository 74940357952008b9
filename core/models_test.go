package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := IDFromContent("fireball deals 8d6 fire damage")
		b := IDFromContent("fireball deals 8d6 fire damage")
		assert.Equal(t, a, b)
	})

	t.Run("distinct content yields distinct ids", func(t *testing.T) {
		a := IDFromContent("fireball")
		b := IDFromContent("firebolt")
		assert.NotEqual(t, a, b)
	})

	t.Run("empty content produces an id", func(t *testing.T) {
		assert.NotPanics(t, func() { _ = IDFromContent("") })
	})
}

func TestContentChunkContentKey(t *testing.T) {
	a := &ContentChunk{Source: "PHB", Title: "Fireball", Content: "8d6 fire damage"}
	b := &ContentChunk{Source: "PHB", Title: "Fireball", Content: "8d6 fire damage"}
	assert.Equal(t, a.ContentKey(), b.ContentKey())

	// Field boundaries must not collapse: "a"+"bc" differs from "ab"+"c".
	c := &ContentChunk{Source: "PH", Title: "BFireball", Content: "8d6 fire damage"}
	assert.NotEqual(t, a.ContentKey(), c.ContentKey())

	t.Run("system separates identity", func(t *testing.T) {
		dnd := &ContentChunk{System: "D&D 5e", Source: "SRD", Title: "Grappling", Content: "shared wording"}
		pf := &ContentChunk{System: "Pathfinder", Source: "SRD", Title: "Grappling", Content: "shared wording"}
		assert.NotEqual(t, dnd.ContentKey(), pf.ContentKey())
		assert.NotEqual(t, IDFromContent(dnd.ContentKey()), IDFromContent(pf.ContentKey()))
	})

	t.Run("page separates identity", func(t *testing.T) {
		p1 := &ContentChunk{System: "D&D 5e", Source: "PHB", Title: "Sidebar", Content: "repeated note", PageNumber: 12}
		p2 := &ContentChunk{System: "D&D 5e", Source: "PHB", Title: "Sidebar", Content: "repeated note", PageNumber: 98}
		assert.NotEqual(t, p1.ContentKey(), p2.ContentKey())
	})
}

func TestParseContentType(t *testing.T) {
	for _, ct := range []ContentType{
		ContentTypeText, ContentTypeRule, ContentTypeSpell,
		ContentTypeMonster, ContentTypeItem, ContentTypeTable,
	} {
		parsed, ok := ParseContentType(ct.String())
		assert.True(t, ok, ct.String())
		assert.Equal(t, ct, parsed)
	}

	parsed, ok := ParseContentType("narrative")
	assert.False(t, ok)
	assert.Equal(t, ContentTypeText, parsed)
}

func TestParseSourceKind(t *testing.T) {
	for _, k := range []SourceKind{SourceKindRulebook, SourceKindFlavor} {
		parsed, ok := ParseSourceKind(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}

	_, ok := ParseSourceKind("homebrew")
	assert.False(t, ok)
}

func TestPatternEntryKey(t *testing.T) {
	a := &PatternEntry{System: "D&D 5e", Kind: MatcherKeywordSet, Keywords: []string{"casting", "duration"}, ContentType: ContentTypeSpell}
	b := &PatternEntry{System: "D&D 5e", Kind: MatcherKeywordSet, Keywords: []string{"casting", "duration"}, ContentType: ContentTypeSpell}
	assert.Equal(t, a.Key(), b.Key())

	c := &PatternEntry{System: "Pathfinder", Kind: MatcherKeywordSet, Keywords: []string{"casting", "duration"}, ContentType: ContentTypeSpell}
	assert.NotEqual(t, a.Key(), c.Key())
}
