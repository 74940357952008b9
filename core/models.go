package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so identical content
// always maps to the same identity.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceKind identifies the nature of an indexed source.
type SourceKind int

const (
	// SourceKindRulebook represents official rules content.
	SourceKindRulebook SourceKind = iota + 1
	// SourceKindFlavor represents narrative or setting material.
	SourceKindFlavor
)

// String returns the lowercase name of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceKindRulebook:
		return "rulebook"
	case SourceKindFlavor:
		return "flavor"
	default:
		return "unknown"
	}
}

// ParseSourceKind parses a source kind name. Unrecognized names return
// SourceKindRulebook and false.
func ParseSourceKind(s string) (SourceKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rulebook":
		return SourceKindRulebook, true
	case "flavor":
		return SourceKindFlavor, true
	default:
		return SourceKindRulebook, false
	}
}

// ContentType labels the kind of content a chunk holds.
type ContentType int

const (
	// ContentTypeText is the safe default for prose that matches nothing else.
	ContentTypeText ContentType = iota + 1
	// ContentTypeRule is rules and mechanics prose.
	ContentTypeRule
	// ContentTypeSpell is a spell or power description.
	ContentTypeSpell
	// ContentTypeMonster is a creature stat block.
	ContentTypeMonster
	// ContentTypeItem is an equipment or treasure entry.
	ContentTypeItem
	// ContentTypeTable is tabular reference material.
	ContentTypeTable
)

// String returns the lowercase name of the content type.
func (t ContentType) String() string {
	switch t {
	case ContentTypeText:
		return "text"
	case ContentTypeRule:
		return "rule"
	case ContentTypeSpell:
		return "spell"
	case ContentTypeMonster:
		return "monster"
	case ContentTypeItem:
		return "item"
	case ContentTypeTable:
		return "table"
	default:
		return "unknown"
	}
}

// ParseContentType parses a content type name. Unrecognized names return
// ContentTypeText and false.
func ParseContentType(s string) (ContentType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return ContentTypeText, true
	case "rule":
		return ContentTypeRule, true
	case "spell":
		return ContentTypeSpell, true
	case "monster":
		return ContentTypeMonster, true
	case "item":
		return ContentTypeItem, true
	case "table":
		return ContentTypeTable, true
	default:
		return ContentTypeText, false
	}
}

// ContentChunk is an immutable unit of indexed text.
// Chunks are created once at ingestion time and never mutated afterwards;
// re-ingestion of changed content produces a new chunk with a new identity
// and the old version is retired.
type ContentChunk struct {
	Id          ID
	Source      string // owning source name, e.g. "Player's Handbook"
	System      string // game system, e.g. "D&D 5e"
	SourceKind  SourceKind
	ContentType ContentType
	Confidence  float64 // classifier confidence for ContentType
	Title       string
	Content     string
	PageNumber  int
	SectionPath []string // heading hierarchy, outermost first
	Metadata    map[string]string
	Vector      []float32 // embedding vector (populated by the pipeline)
	InsertedAt  time.Time
}

// ContentKey returns the canonical string the chunk's ID is derived from.
// Identical system, source, location and text always yield the same
// identity, which keeps re-ingestion of unchanged content idempotent. The
// same passage in two game systems or on two pages stays distinct.
func (c *ContentChunk) ContentKey() string {
	var b strings.Builder
	b.WriteString(c.System)
	b.WriteByte('\x00')
	b.WriteString(c.Source)
	b.WriteByte('\x00')
	b.WriteString(strconv.Itoa(c.PageNumber))
	b.WriteByte('\x00')
	b.WriteString(c.Title)
	b.WriteByte('\x00')
	b.WriteString(c.Content)
	return b.String()
}

// MatcherKind discriminates the closed set of pattern matcher variants.
type MatcherKind int

const (
	// MatcherKeywordSet fires when enough of its keywords appear in the text.
	MatcherKeywordSet MatcherKind = iota + 1
	// MatcherStatLine fires on stat-block shaped lines ("STR 18", "AC: 15").
	MatcherStatLine
	// MatcherDelimiterDensity fires when tabular delimiters exceed a density threshold.
	MatcherDelimiterDensity
)

// String returns the lowercase name of the matcher kind.
func (k MatcherKind) String() string {
	switch k {
	case MatcherKeywordSet:
		return "keyword-set"
	case MatcherStatLine:
		return "stat-line"
	case MatcherDelimiterDensity:
		return "delimiter-density"
	default:
		return "unknown"
	}
}

// PatternEntry is a learned classification rule owned by the per-system
// pattern cache. Confidence may rise and fall under reinforcement; the use
// counter only ever grows. Entries are never deleted automatically, only
// evicted on cache overflow or superseded by corrective entries.
type PatternEntry struct {
	Id          ID
	System      string
	Kind        MatcherKind
	Keywords    []string // matcher terms for MatcherKeywordSet
	Threshold   float64  // trigger level for shape/density matchers
	ContentType ContentType
	Confidence  float64 // in [0, 1]
	UseCount    uint64
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Key returns the canonical string the entry's ID is derived from.
func (p *PatternEntry) Key() string {
	var b strings.Builder
	b.WriteString(p.System)
	b.WriteByte('\x00')
	b.WriteString(p.Kind.String())
	b.WriteByte('\x00')
	b.WriteString(strings.Join(p.Keywords, ","))
	b.WriteByte('\x00')
	b.WriteString(p.ContentType.String())
	return b.String()
}

// MatchType identifies which retrieval signal produced a result.
type MatchType string

const (
	MatchSemantic     MatchType = "semantic"
	MatchKeyword      MatchType = "keyword"
	MatchHybrid       MatchType = "hybrid"
	MatchSemanticOnly MatchType = "semantic-only" // keyword signal unavailable
	MatchKeywordOnly  MatchType = "keyword-only"  // semantic signal unavailable
)

// TermWeight records one term's contribution to a result's keyword score.
type TermWeight struct {
	Term string
	// Weight is the term's BM25 contribution for this chunk.
	Weight float64
	// InSemanticContext reports whether the term also appeared in the text
	// the semantic match embedded. Approximate, informational only.
	InSemanticContext bool
}

// Explanation is a human-readable relevance breakdown attached to a result.
type Explanation struct {
	Terms          []TermWeight // top contributing terms, best first
	SemanticWeight float64      // fusion weight applied to the semantic signal
	KeywordWeight  float64      // fusion weight applied to the keyword signal
	Note           string       // degradation or boost notes, empty when clean
}

// ScoredResult is a ranked search hit. Created per query, never persisted.
type ScoredResult struct {
	Chunk         *ContentChunk
	SemanticScore float64 // raw cosine similarity, 0 when absent
	KeywordScore  float64 // raw BM25 score, 0 when absent
	Score         float64 // fused relevance in [0, 1]
	MatchType     MatchType
	Explanation   *Explanation // nil for quick searches
}

// Suggestion proposes an alternative or completed query.
type Suggestion struct {
	Query      string
	Confidence float64
	// Kind is one of "spelling", "broadening", "vocabulary", "related",
	// "completion".
	Kind      string
	Rationale string
}
