// Package query turns raw natural-language queries into normalized,
// weighted term lists with a detected intent. Normalization expands game
// shorthand, corrects near-miss spellings against the live vocabulary, and
// adds reduced-weight synonyms for salient tokens.
package query
