// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package query

import (
	"log/slog"
	"strings"

	"github.com/poiesic/grimoire/vocab"
)

const (
	// maxCorrectionDistance bounds spelling correction to near misses.
	maxCorrectionDistance = 2
	// minCorrectionLength keeps short tokens out of the corrector, where a
	// two-edit radius would reach half the vocabulary.
	minCorrectionLength = 4
	// maxSynonymTokens caps how many salient tokens receive expansions.
	maxSynonymTokens = 3
	// synonymWeight is the reduced weight expansion terms carry.
	synonymWeight = 0.5
)

// Context carries the caller's current filters into query processing.
type Context struct {
	System string
	Source string
}

// Term is one weighted query term. Original tokens carry weight 1.0,
// synonym expansions a reduced weight.
type Term struct {
	Text    string
	Weight  float64
	Synonym bool
}

// Processed is the result of normalizing a raw query.
type Processed struct {
	Raw        string
	Normalized string // corrected, expanded token sequence
	Terms      []Term
	Intent     Intent
	Corrected  string   // post-correction form when it differs from the input, else empty
	Uncertain  []string // unknown tokens with no unique correction
	FocusTerms []string // tokens that received synonym expansion
	Context    *Context
}

// Tokens returns the normalized original tokens without synonym expansions.
func (p *Processed) Tokens() []string {
	tokens := make([]string, 0, len(p.Terms))
	for _, term := range p.Terms {
		if !term.Synonym {
			tokens = append(tokens, term.Text)
		}
	}
	return tokens
}

// Processor normalizes raw queries against the live vocabulary: case
// folding, abbreviation expansion, spelling correction, intent detection,
// and weighted synonym expansion.
type Processor struct {
	vocabulary *vocab.Index
	logger     *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewProcessor creates a query processor backed by the vocabulary index.
func NewProcessor(vocabulary *vocab.Index, opts ...Option) (*Processor, error) {
	if vocabulary == nil {
		return nil, ErrVocabularyRequired
	}

	p := &Processor{
		vocabulary: vocabulary,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Process normalizes a raw query. Steps run in a fixed order: trim and case
// fold, expand whole-token abbreviations, correct unknown tokens against the
// vocabulary, detect intent, then expand synonyms for up to three salient
// tokens. An input with no usable terms yields ErrEmptyQuery.
func (p *Processor) Process(raw string, qctx *Context) (*Processed, error) {
	folded := strings.ToLower(strings.TrimSpace(raw))
	tokens := strings.Fields(folded)

	// Abbreviation expansion, whole tokens only.
	expanded := make([]string, 0, len(tokens))
	for _, token := range tokens {
		trimmed := strings.Trim(token, ".,!?;:'\"()")
		if trimmed == "" {
			continue
		}
		if full, ok := abbreviations[trimmed]; ok {
			expanded = append(expanded, strings.Fields(full)...)
		} else {
			expanded = append(expanded, trimmed)
		}
	}

	if len(expanded) == 0 {
		return nil, ErrEmptyQuery
	}

	// Spelling correction against the vocabulary.
	corrected := make([]string, len(expanded))
	var uncertain []string
	changed := false
	for i, token := range expanded {
		corrected[i] = token
		if len(token) < minCorrectionLength || p.vocabulary.Contains(token) || vocab.IsStopWord(token) {
			continue
		}
		replacement, unique := p.closestTerm(token)
		if replacement == "" {
			uncertain = append(uncertain, token)
			continue
		}
		if !unique {
			// Multiple equally close candidates: leave the token untouched.
			uncertain = append(uncertain, token)
			continue
		}
		corrected[i] = replacement
		changed = true
	}

	intent := detectIntent(corrected)

	// Synonym expansion for up to three salient tokens.
	terms := make([]Term, 0, len(corrected))
	var focus []string
	for _, token := range corrected {
		terms = append(terms, Term{Text: token, Weight: 1.0})
	}
	for _, token := range corrected {
		if len(focus) >= maxSynonymTokens {
			break
		}
		expansions, ok := synonyms[token]
		if !ok {
			continue
		}
		focus = append(focus, token)
		for _, expansion := range expansions {
			terms = append(terms, Term{Text: expansion, Weight: synonymWeight, Synonym: true})
		}
	}

	processed := &Processed{
		Raw:        raw,
		Normalized: strings.Join(corrected, " "),
		Terms:      terms,
		Intent:     intent,
		Uncertain:  uncertain,
		FocusTerms: focus,
		Context:    qctx,
	}
	if changed {
		processed.Corrected = processed.Normalized
	}

	p.logger.Debug("processed query",
		"raw", raw, "normalized", processed.Normalized,
		"intent", intent, "uncertain", len(uncertain))
	return processed, nil
}

// closestTerm finds the vocabulary term nearest to the token within the
// correction radius. The second return is false when several terms tie at
// the minimum distance.
func (p *Processor) closestTerm(token string) (string, bool) {
	best := ""
	bestDistance := maxCorrectionDistance + 1
	unique := true

	p.vocabulary.ForEachTerm(func(term string, df int) bool {
		diff := len(term) - len(token)
		if diff > maxCorrectionDistance || diff < -maxCorrectionDistance {
			return true
		}
		d := editDistance(token, term)
		if d > maxCorrectionDistance {
			return true
		}
		switch {
		case d < bestDistance:
			best, bestDistance, unique = term, d, true
		case d == bestDistance && term != best:
			unique = false
		}
		return true
	})

	if best == "" {
		return "", false
	}
	return best, unique
}
