package vocab

import (
	"regexp"
	"strings"
)

// Stop words are indexed (so completions can still offer them) but carry no
// keyword-scoring weight.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "were": true, "to": true, "of": true, "and": true, "or": true,
	"in": true, "that": true, "have": true, "it": true, "for": true,
	"not": true, "on": true, "with": true, "as": true, "you": true,
	"do": true, "at": true, "this": true, "but": true, "by": true,
	"from": true, "how": true, "what": true,
}

// IsStopWord reports whether a term is excluded from keyword scoring.
func IsStopWord(term string) bool {
	return stopWords[term]
}

var (
	diceNotation = regexp.MustCompile(`(\d+)d(\d+)`)
	plusNumber   = regexp.MustCompile(`\+(\d+)`)
	minusNumber  = regexp.MustCompile(`-(\d+)`)
	wordPattern  = regexp.MustCompile(`[a-z0-9]+`)
)

// Tokenize splits text into search terms. Game notation is rewritten first
// so that "2d6" matches "dice roll" queries and "+3" matches "plus 3", then
// the text is case-folded and split on punctuation. Adjacent token pairs are
// appended as underscore-joined bigrams for phrase matching.
func Tokenize(text string) []string {
	tokens := Terms(text)
	n := len(tokens)
	for i := 0; i+1 < n; i++ {
		tokens = append(tokens, tokens[i]+"_"+tokens[i+1])
	}
	return tokens
}

// Terms splits text into single search terms without bigram expansion.
func Terms(text string) []string {
	text = strings.ToLower(text)
	text = diceNotation.ReplaceAllString(text, "$1 d $2 dice roll")
	text = plusNumber.ReplaceAllString(text, "plus $1")
	text = minusNumber.ReplaceAllString(text, "minus $1")
	return wordPattern.FindAllString(text, -1)
}

// isBigram reports whether a term is an underscore-joined token pair. Bigrams
// score phrase matches but are never surfaced as completions.
func isBigram(term string) bool {
	return strings.ContainsRune(term, '_')
}
