package classify

import (
	"github.com/poiesic/grimoire/core"
)

const (
	// statHitFloor is the stat-line count at which a chunk reads as a stat block.
	statHitFloor = 3
	// tableRatioFloor is the tabular-line fraction at which a chunk reads as a table.
	tableRatioFloor = 0.3

	maxPatternKeywords  = 8
	keywordSetThreshold = 0.5

	// fallbackConfidence is reported for prose that matches no heuristic.
	fallbackConfidence = 0.3
)

// classifyHeuristics produces a best-effort type and confidence from generic
// structural signals when no cached pattern matches. Deterministic for a
// given text.
func classifyHeuristics(f *features) (core.ContentType, float64) {
	if f.statHits >= statHitFloor {
		contentType := core.ContentTypeMonster
		if f.itemScore >= 2 {
			contentType = core.ContentTypeItem
		}
		return contentType, clamp(0.6 + 0.1*float64(f.statHits))
	}

	if f.tableRatio >= tableRatioFloor {
		return core.ContentTypeTable, clamp(0.5 + f.tableRatio)
	}

	if f.spellScore >= 2 {
		return core.ContentTypeSpell, clamp(0.5 + 0.15*float64(f.spellScore))
	}

	if f.itemScore >= 3 {
		return core.ContentTypeItem, clamp(0.5 + 0.1*float64(f.itemScore))
	}

	if f.ruleScore >= 2 {
		return core.ContentTypeRule, clamp(0.45 + 0.15*float64(f.ruleScore))
	}

	return core.ContentTypeText, fallbackConfidence
}

func clamp(score float64) float64 {
	if score > 0.95 {
		return 0.95
	}
	return score
}
