package classify

import (
	"time"

	"github.com/poiesic/grimoire/core"
)

// matches evaluates a pattern entry's matcher against extracted features.
// The matcher kinds form a closed set so entries stay serializable.
func matches(entry *core.PatternEntry, f *features) bool {
	switch entry.Kind {
	case core.MatcherKeywordSet:
		if len(entry.Keywords) == 0 {
			return false
		}
		hits := 0
		for _, keyword := range entry.Keywords {
			if f.hasTerm(keyword) {
				hits++
			}
		}
		return float64(hits)/float64(len(entry.Keywords)) >= entry.Threshold
	case core.MatcherStatLine:
		return float64(f.statHits) >= entry.Threshold
	case core.MatcherDelimiterDensity:
		return f.tableRatio >= entry.Threshold
	default:
		return false
	}
}

// synthesizePattern builds a new entry from the signal that drove a
// classification, so the same shape is recognized from the cache next time.
func synthesizePattern(f *features, system string, contentType core.ContentType, confidence float64) *core.PatternEntry {
	entry := &core.PatternEntry{
		System:      system,
		ContentType: contentType,
		Confidence:  confidence,
		UseCount:    1,
		UpdatedAt:   time.Now(),
	}

	switch {
	case f.statHits >= statHitFloor && (contentType == core.ContentTypeMonster || contentType == core.ContentTypeItem):
		entry.Kind = core.MatcherStatLine
		entry.Threshold = float64(statHitFloor)
	case f.tableRatio >= tableRatioFloor && contentType == core.ContentTypeTable:
		entry.Kind = core.MatcherDelimiterDensity
		entry.Threshold = tableRatioFloor
	default:
		entry.Kind = core.MatcherKeywordSet
		entry.Keywords = f.topKeywords(maxPatternKeywords)
		entry.Threshold = keywordSetThreshold
	}

	entry.Id = core.IDFromContent(entry.Key())
	return entry
}
