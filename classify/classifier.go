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

package classify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/storage"
)

// Config holds the classifier's tunable thresholds.
type Config struct {
	// MinConfidence is the floor below which neither a cached pattern nor a
	// heuristic result is trusted; such chunks fall back to plain text.
	MinConfidence float64
	// PromoteThreshold is the heuristic confidence at which a new pattern
	// entry is synthesized and cached.
	PromoteThreshold float64
	// CacheSize bounds each per-system pattern cache.
	CacheSize int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() *Config {
	return &Config{
		MinConfidence:    0.6,
		PromoteThreshold: 0.8,
		CacheSize:        256,
	}
}

// Validate checks config invariants.
func (c *Config) Validate() error {
	if c.MinConfidence <= 0 || c.MinConfidence > 1 {
		return ErrInvalidConfig
	}
	if c.PromoteThreshold < c.MinConfidence || c.PromoteThreshold > 1 {
		return ErrInvalidConfig
	}
	if c.CacheSize < 4 {
		return ErrInvalidConfig
	}
	return nil
}

const (
	// reinforceStep is the fraction of the remaining headroom to 1.0 added
	// on a confirmed classification.
	reinforceStep = 0.2
	// demoteFactor shrinks a wrongly-firing entry's confidence on correction.
	demoteFactor = 0.75
)

// systemCache is the bounded pattern cache for one game system. The mutex
// covers composite cache operations; eviction picks the lowest-confidence
// entry among the least-recently-used quarter.
type systemCache struct {
	mu    sync.Mutex
	cache *lru.Cache[core.ID, *core.PatternEntry]
}

// Classifier assigns content-type labels to chunk text using learned,
// per-system pattern caches, falling back to generic structural heuristics
// and promoting high-confidence heuristic hits into new patterns.
type Classifier struct {
	config   *Config
	patterns storage.PatternRepository
	logger   *slog.Logger

	mu      sync.Mutex
	systems map[string]*systemCache
}

// Option configures a Classifier.
type Option func(*Classifier) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithConfig replaces the default thresholds.
func WithConfig(config *Config) Option {
	return func(c *Classifier) error {
		if config == nil {
			return ErrInvalidConfig
		}
		if err := config.Validate(); err != nil {
			return err
		}
		c.config = config
		return nil
	}
}

// NewClassifier creates a classifier. The pattern repository may be nil, in
// which case learned patterns live only in memory.
func NewClassifier(patterns storage.PatternRepository, opts ...Option) (*Classifier, error) {
	c := &Classifier{
		config:   DefaultConfig(),
		patterns: patterns,
		logger:   slog.Default(),
		systems:  make(map[string]*systemCache),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// MinConfidence returns the trust floor callers use to detect low-confidence
// classifications.
func (c *Classifier) MinConfidence() float64 {
	return c.config.MinConfidence
}

// Warm preloads the pattern caches for every system known to the repository.
func (c *Classifier) Warm(ctx context.Context) error {
	if c.patterns == nil {
		return nil
	}
	systems, err := c.patterns.ListSystems(ctx)
	if err != nil {
		return err
	}
	for _, system := range systems {
		if _, err := c.systemFor(ctx, system); err != nil {
			return err
		}
	}
	return nil
}

// Classify labels the chunk text for the given system. Cached patterns are
// evaluated in descending confidence order; the first match above the
// minimum confidence wins. Otherwise generic heuristics run, and a heuristic
// hit above the promote threshold is cached as a new pattern. The result is
// deterministic for a given cache state.
func (c *Classifier) Classify(ctx context.Context, text, system string) (core.ContentType, float64) {
	f := extractFeatures(text)

	sc, err := c.systemFor(ctx, system)
	if err != nil {
		c.logger.Warn("pattern cache load failed, using heuristics only", "system", system, "err", err)
		return classifyHeuristics(f)
	}

	sc.mu.Lock()
	if entry := sc.bestMatch(f, c.config.MinConfidence); entry != nil {
		entry.UseCount++
		entry.UpdatedAt = time.Now()
		sc.cache.Get(entry.Id) // mark recently used
		// Persist a snapshot: the cached entry keeps mutating under sc.mu.
		snapshot := *entry
		sc.mu.Unlock()
		c.save(ctx, &snapshot)
		return snapshot.ContentType, snapshot.Confidence
	}
	sc.mu.Unlock()

	contentType, confidence := classifyHeuristics(f)
	if confidence >= c.config.PromoteThreshold {
		entry := synthesizePattern(f, system, contentType, confidence)
		sc.mu.Lock()
		sc.insert(entry, c.config.CacheSize)
		snapshot := *entry
		sc.mu.Unlock()
		c.save(ctx, &snapshot)
		c.logger.Debug("promoted new pattern",
			"system", system, "kind", entry.Kind.String(),
			"contentType", contentType.String(), "confidence", confidence)
	}
	return contentType, confidence
}

// Reinforce records a downstream confirmation or correction. A confirming
// reinforcement bumps the matching entry's usage counter and nudges its
// confidence toward 1.0. A correction demotes the wrongly-firing entry and
// inserts a corrective entry seeded just above the trust floor; the
// corrective entry must outrank the entry it supersedes.
func (c *Classifier) Reinforce(ctx context.Context, text, system string, chosen core.ContentType) error {
	f := extractFeatures(text)

	sc, err := c.systemFor(ctx, system)
	if err != nil {
		return err
	}

	sc.mu.Lock()
	matched := sc.bestMatch(f, 0)

	if matched != nil && matched.ContentType == chosen {
		matched.UseCount++
		matched.Confidence += (1 - matched.Confidence) * reinforceStep
		matched.UpdatedAt = time.Now()
		sc.cache.Get(matched.Id)
		snapshot := *matched
		sc.mu.Unlock()
		return c.persist(ctx, &snapshot)
	}

	corrective := synthesizePattern(f, system, chosen, c.config.MinConfidence+0.05)

	var demoted *core.PatternEntry
	if matched != nil {
		// Drop the superseded entry below the trust floor so it can never
		// outrank or tie the corrective entry again.
		matched.Confidence *= demoteFactor
		if matched.Confidence >= c.config.MinConfidence {
			matched.Confidence = c.config.MinConfidence - 0.05
		}
		matched.UpdatedAt = time.Now()
		snapshot := *matched
		demoted = &snapshot
	}
	sc.insert(corrective, c.config.CacheSize)
	correctiveSnapshot := *corrective
	sc.mu.Unlock()

	if demoted != nil {
		if err := c.persist(ctx, demoted); err != nil {
			return err
		}
	}
	return c.persist(ctx, &correctiveSnapshot)
}

// CachedPatternCounts returns the number of cached patterns per system.
func (c *Classifier) CachedPatternCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[string]int, len(c.systems))
	for system, sc := range c.systems {
		counts[system] = sc.cache.Len()
	}
	return counts
}

// systemFor returns the cache for a system, loading persisted patterns on
// first use.
func (c *Classifier) systemFor(ctx context.Context, system string) (*systemCache, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sc, exists := c.systems[system]; exists {
		return sc, nil
	}

	cache, err := lru.New[core.ID, *core.PatternEntry](c.config.CacheSize)
	if err != nil {
		return nil, err
	}
	sc := &systemCache{cache: cache}

	if c.patterns != nil {
		entries, err := c.patterns.GetPatternsBySystem(ctx, system)
		if err != nil {
			return nil, err
		}
		// Entries arrive in descending confidence order; insert lowest first
		// so the weakest patterns sit at the cold end of the cache.
		for i := len(entries) - 1; i >= 0; i-- {
			sc.cache.Add(entries[i].Id, entries[i])
		}
	}

	c.systems[system] = sc
	return sc, nil
}

// bestMatch evaluates cached entries in descending confidence order (ties by
// ID for determinism) and returns the first matcher that fires with
// confidence at or above the floor. Caller holds sc.mu.
func (sc *systemCache) bestMatch(f *features, floor float64) *core.PatternEntry {
	keys := sc.cache.Keys()
	entries := make([]*core.PatternEntry, 0, len(keys))
	for _, key := range keys {
		if entry, ok := sc.cache.Peek(key); ok {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Confidence != entries[j].Confidence {
			return entries[i].Confidence > entries[j].Confidence
		}
		return entries[i].Id < entries[j].Id
	})

	for _, entry := range entries {
		if entry.Confidence < floor {
			return nil
		}
		if matches(entry, f) {
			return entry
		}
	}
	return nil
}

// insert adds an entry, evicting the lowest-confidence pattern among the
// least-recently-used quarter when the cache is full. Caller holds sc.mu.
func (sc *systemCache) insert(entry *core.PatternEntry, capacity int) {
	if sc.cache.Contains(entry.Id) {
		sc.cache.Add(entry.Id, entry)
		return
	}

	if sc.cache.Len() >= capacity {
		keys := sc.cache.Keys() // oldest first
		quarter := len(keys) / 4
		if quarter < 1 {
			quarter = 1
		}
		victim := keys[0]
		lowest := 2.0
		for _, key := range keys[:quarter] {
			if candidate, ok := sc.cache.Peek(key); ok && candidate.Confidence < lowest {
				lowest = candidate.Confidence
				victim = key
			}
		}
		sc.cache.Remove(victim)
	}
	sc.cache.Add(entry.Id, entry)
}

// save persists an entry, logging instead of failing: classification is
// never fatal to the caller.
func (c *Classifier) save(ctx context.Context, entry *core.PatternEntry) {
	if err := c.persist(ctx, entry); err != nil {
		c.logger.Warn("failed to persist pattern", "patternID", entry.Id, "err", err)
	}
}

func (c *Classifier) persist(ctx context.Context, entry *core.PatternEntry) error {
	if c.patterns == nil {
		return nil
	}
	return c.patterns.SavePatterns(ctx, entry)
}
