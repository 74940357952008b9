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

package suggest

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/query"
	"github.com/poiesic/grimoire/vocab"
)

const (
	// LowResultThreshold is the result count below which alternative-query
	// suggestions trigger.
	LowResultThreshold = 2

	// maxVocabularySuggestions caps the high-frequency vocabulary terms
	// offered for uncertain tokens.
	maxVocabularySuggestions = 2

	// maxRelatedSuggestions caps topics mined from result titles.
	maxRelatedSuggestions = 3

	// uncertainPrefixLength is how much of an uncertain token anchors the
	// vocabulary prefix match.
	uncertainPrefixLength = 4
)

// Suggester produces query completions and, for weak result sets,
// alternative-query suggestions.
type Suggester struct {
	vocabulary *vocab.Index
	logger     *slog.Logger
}

// Option configures a Suggester.
type Option func(*Suggester) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Suggester) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSuggester creates a suggester backed by the vocabulary index.
func NewSuggester(vocabulary *vocab.Index, opts ...Option) (*Suggester, error) {
	if vocabulary == nil {
		return nil, ErrVocabularyRequired
	}

	s := &Suggester{
		vocabulary: vocabulary,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Completions completes the last token of a partial query against the
// vocabulary, returning full queries ranked by term document frequency.
func (s *Suggester) Completions(partial string, limit int) []string {
	folded := strings.ToLower(strings.TrimSpace(partial))
	if folded == "" || limit <= 0 {
		return nil
	}

	tokens := strings.Fields(folded)
	last := tokens[len(tokens)-1]
	prefix := strings.Join(tokens[:len(tokens)-1], " ")

	terms := s.vocabulary.Completions(last, limit)
	completed := make([]string, 0, len(terms))
	for _, term := range terms {
		if prefix == "" {
			completed = append(completed, term)
		} else {
			completed = append(completed, prefix+" "+term)
		}
	}
	return completed
}

// Alternatives proposes replacement queries when a search produced fewer
// than LowResultThreshold results: the spelling-corrected form, a broadened
// query with filters removed, and high-frequency vocabulary terms sharing a
// prefix with tokens the corrector was uncertain about.
func (s *Suggester) Alternatives(processed *query.Processed, resultCount int) []core.Suggestion {
	if resultCount >= LowResultThreshold {
		return nil
	}

	var suggestions []core.Suggestion

	if processed.Corrected != "" && processed.Corrected != strings.ToLower(strings.TrimSpace(processed.Raw)) {
		suggestions = append(suggestions, core.Suggestion{
			Query:      processed.Corrected,
			Confidence: 0.8,
			Kind:       "spelling",
			Rationale:  "spelling-corrected form of the original query",
		})
	}

	if processed.Context != nil && (processed.Context.System != "" || processed.Context.Source != "") {
		suggestions = append(suggestions, core.Suggestion{
			Query:      processed.Normalized,
			Confidence: 0.5,
			Kind:       "broadening",
			Rationale:  "same query with source and system filters removed",
		})
	}

	added := 0
	for _, token := range processed.Uncertain {
		if added >= maxVocabularySuggestions {
			break
		}
		anchor := prefixAnchor(token)
		for _, term := range s.vocabulary.Completions(anchor, maxVocabularySuggestions-added) {
			if term == token {
				continue
			}
			suggestions = append(suggestions, core.Suggestion{
				Query:      replaceToken(processed.Normalized, token, term),
				Confidence: 0.4,
				Kind:       "vocabulary",
				Rationale:  "indexed term resembling the unrecognized token " + strconv.Quote(token),
			})
			added++
			if added >= maxVocabularySuggestions {
				break
			}
		}
	}

	s.logger.Debug("built alternative suggestions",
		"query", processed.Normalized, "resultCount", resultCount, "suggestions", len(suggestions))
	return suggestions
}

// Related mines follow-up queries from the titles of strong results,
// pairing the original query with topics it did not already mention.
func (s *Suggester) Related(processed *query.Processed, results []*core.ScoredResult) []core.Suggestion {
	if len(results) == 0 {
		return nil
	}

	mentioned := make(map[string]bool)
	for _, term := range processed.Terms {
		mentioned[term.Text] = true
	}

	seen := make(map[string]bool)
	var suggestions []core.Suggestion
	for _, result := range results {
		if len(suggestions) >= maxRelatedSuggestions {
			break
		}
		for _, topic := range vocab.Terms(result.Chunk.Title) {
			if len(topic) < 3 || vocab.IsStopWord(topic) || mentioned[topic] || seen[topic] {
				continue
			}
			seen[topic] = true
			suggestions = append(suggestions, core.Suggestion{
				Query:      processed.Normalized + " " + topic,
				Confidence: 0.4,
				Kind:       "related",
				Rationale:  "topic from a closely matching result title",
			})
			if len(suggestions) >= maxRelatedSuggestions {
				break
			}
		}
	}
	return suggestions
}

// prefixAnchor truncates an uncertain token to the completion anchor length,
// counting runes so multi-byte tokens are never cut mid-rune.
func prefixAnchor(token string) string {
	runes := []rune(token)
	if len(runes) <= uncertainPrefixLength {
		return token
	}
	return string(runes[:uncertainPrefixLength])
}

func replaceToken(text, old, new string) string {
	tokens := strings.Fields(text)
	for i, token := range tokens {
		if token == old {
			tokens[i] = new
		}
	}
	return strings.Join(tokens, " ")
}
