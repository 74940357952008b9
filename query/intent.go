package query

import "regexp"

// Intent is the inferred purpose of a query. It steers the fusion weights in
// the ranker: exact-terminology intents lean on the keyword signal,
// conceptual intents on the semantic one.
type Intent string

const (
	IntentRuleLookup Intent = "rule_lookup"
	IntentDefinition Intent = "definition"
	IntentStatLookup Intent = "stat_lookup"
	IntentGeneral    Intent = "general"
)

var diceToken = regexp.MustCompile(`^\d+d\d+$`)
var numericToken = regexp.MustCompile(`^\d+$`)

// detectIntent runs a small decision table over the normalized tokens,
// first match wins: rule phrasing, then definition phrasing, then
// stat-bearing tokens, else general.
func detectIntent(tokens []string) Intent {
	for i, token := range tokens {
		if (token == "rules" || token == "rule" || token == "mechanics") ||
			(token == "how" && i+1 < len(tokens) && (tokens[i+1] == "does" || tokens[i+1] == "do")) {
			return IntentRuleLookup
		}
	}

	if len(tokens) >= 2 && tokens[0] == "what" && (tokens[1] == "is" || tokens[1] == "are") {
		return IntentDefinition
	}
	if len(tokens) >= 1 && (tokens[0] == "define" || tokens[0] == "meaning" || tokens[0] == "definition") {
		return IntentDefinition
	}

	for _, token := range tokens {
		if statMarkers[token] || diceToken.MatchString(token) || numericToken.MatchString(token) {
			return IntentStatLookup
		}
	}

	return IntentGeneral
}
