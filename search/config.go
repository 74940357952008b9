package search

import (
	"time"

	"github.com/poiesic/grimoire/query"
)

// Config names every fusion weight and threshold so the ranking algorithm
// stays testable under parameterized sweeps.
type Config struct {
	// CandidatePoolSize is how many nearest neighbors each signal retrieves
	// before fusion.
	CandidatePoolSize int
	// MaxResults is the default truncation after fusion.
	MaxResults int
	// KeywordWeightByIntent maps a query intent to the keyword signal's
	// fusion weight. The semantic weight is its complement.
	KeywordWeightByIntent map[query.Intent]float64
	// BM25K1 is the term-frequency saturation constant.
	BM25K1 float64
	// BM25B is the document-length normalization factor.
	BM25B float64
	// SignalTimeout bounds each retrieval signal. On expiry the ranker
	// degrades to the signal that completed.
	SignalTimeout time.Duration
	// ExplanationTerms is how many top contributing terms each result's
	// explanation carries.
	ExplanationTerms int
}

// DefaultConfig returns the standard ranking parameters. Exact-terminology
// intents lean on the keyword signal; conceptual intents on the semantic one.
func DefaultConfig() *Config {
	return &Config{
		CandidatePoolSize: 50,
		MaxResults:        5,
		KeywordWeightByIntent: map[query.Intent]float64{
			query.IntentStatLookup: 0.65,
			query.IntentRuleLookup: 0.65,
			query.IntentDefinition: 0.35,
			query.IntentGeneral:    0.35,
		},
		BM25K1:           1.2,
		BM25B:            0.75,
		SignalTimeout:    2 * time.Second,
		ExplanationTerms: 3,
	}
}

// Validate checks config invariants.
func (c *Config) Validate() error {
	if c.CandidatePoolSize < 1 || c.MaxResults < 1 || c.ExplanationTerms < 0 {
		return ErrInvalidConfig
	}
	if c.BM25K1 <= 0 || c.BM25B < 0 || c.BM25B > 1 {
		return ErrInvalidConfig
	}
	if c.SignalTimeout <= 0 {
		return ErrInvalidConfig
	}
	for _, weight := range c.KeywordWeightByIntent {
		if weight < 0 || weight > 1 {
			return ErrInvalidConfig
		}
	}
	return nil
}

// keywordWeight returns the keyword fusion weight for an intent, falling
// back to the general weight for unknown intents.
func (c *Config) keywordWeight(intent query.Intent) float64 {
	if weight, ok := c.KeywordWeightByIntent[intent]; ok {
		return weight
	}
	return c.KeywordWeightByIntent[query.IntentGeneral]
}
