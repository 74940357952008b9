package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/grimoire/vocab"
)

// statLinePattern matches stat-block shaped fragments like "STR 18",
// "AC: 15" or "Hit Points 45".
var statLinePattern = regexp.MustCompile(`(?i)\b(?:str|strength|dex|dexterity|con|constitution|int|intelligence|wis|wisdom|cha|charisma|ac|armor class|hp|hit points)\b[\s:]*\d+`)

// tableRowPattern matches a plain numeric table row like "3  Goblin  25".
var tableRowPattern = regexp.MustCompile(`^\s*\d+\s+\S+.*\s\d+\s*$`)

var spellMarkers = []string{
	"casting time", "components", "duration", "range", "cantrip",
	"ritual", "level spell", "concentration",
}

var ruleMarkers = []string{
	"saving throw", "ability check", "advantage", "disadvantage",
	"bonus action", "difficulty class", "modifier", "proficiency",
}

var itemMarkers = []string{
	"gp", "rarity", "attunement", "wondrous", "weight", "equipment",
}

// features holds the signals extracted once per chunk text. All matchers and
// heuristics evaluate against this rather than re-scanning the text.
type features struct {
	text        string // case-folded original
	termCounts  map[string]int
	tokenCount  int
	statHits    int
	tableRatio  float64 // fraction of non-empty lines shaped like table rows
	spellScore  int     // distinct spell markers present
	ruleScore   int
	itemScore   int
}

func extractFeatures(text string) *features {
	lowered := strings.ToLower(text)
	terms := vocab.Terms(text)

	f := &features{
		text:       lowered,
		termCounts: make(map[string]int, len(terms)),
		tokenCount: len(terms),
		statHits:   len(statLinePattern.FindAllString(text, -1)),
	}
	for _, term := range terms {
		f.termCounts[term]++
	}

	var lines, tabular int
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines++
		if strings.Contains(line, "|") || tableRowPattern.MatchString(line) {
			tabular++
		}
	}
	if lines > 0 {
		f.tableRatio = float64(tabular) / float64(lines)
	}

	for _, marker := range spellMarkers {
		if strings.Contains(lowered, marker) {
			f.spellScore++
		}
	}
	for _, marker := range ruleMarkers {
		if strings.Contains(lowered, marker) {
			f.ruleScore++
		}
	}
	for _, marker := range itemMarkers {
		if f.hasTerm(marker) {
			f.itemScore++
		}
	}

	return f
}

// hasTerm reports whether the text contains the keyword, as a whole token
// for single words and as a substring for phrases.
func (f *features) hasTerm(keyword string) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(f.text, keyword)
	}
	return f.termCounts[keyword] > 0
}

// topKeywords returns the most frequent distinctive terms, for synthesizing
// keyword-set patterns. Stop words and very short terms are skipped.
func (f *features) topKeywords(limit int) []string {
	type kw struct {
		term  string
		count int
	}
	candidates := make([]kw, 0, len(f.termCounts))
	for term, count := range f.termCounts {
		if len(term) < 3 || vocab.IsStopWord(term) {
			continue
		}
		candidates = append(candidates, kw{term: term, count: count})
	}

	// Frequency first, alphabetical for determinism.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].term < candidates[j].term
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	keywords := make([]string, len(candidates))
	for i, c := range candidates {
		keywords[i] = c.term
	}
	return keywords
}
