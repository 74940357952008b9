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

package vocab

import (
	"iter"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/poiesic/grimoire/core"
)

// termEntry holds the statistics for one term. Entries are immutable once
// published in a snapshot; writers clone before modifying.
type termEntry struct {
	occurrences int
	postings    map[core.ID]int // chunk -> term frequency within that chunk
}

// chunkEntry remembers what a chunk contributed so it can be retracted.
type chunkEntry struct {
	length int // token count, used for BM25 length normalization
	terms  []string
}

// snapshot is an immutable view of the whole index. Readers load it once and
// see a consistent state for the duration of a query.
type snapshot struct {
	terms       map[string]*termEntry
	chunks      map[core.ID]*chunkEntry
	totalTokens int
}

var emptySnapshot = &snapshot{
	terms:  map[string]*termEntry{},
	chunks: map[core.ID]*chunkEntry{},
}

// Index maintains per-term document frequency, occurrence counts, and chunk
// membership over all indexed chunks. Reads are lock-free: each query loads
// the current snapshot and never blocks on concurrent ingestion. Writes
// serialize on a mutex, build the next snapshot, and publish it atomically.
type Index struct {
	mu     sync.Mutex
	snap   atomic.Pointer[snapshot]
	logger *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndex creates an empty vocabulary index.
func NewIndex(opts ...Option) (*Index, error) {
	ix := &Index{logger: slog.Default()}
	ix.snap.Store(emptySnapshot)

	// Apply options
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}

	return ix, nil
}

// IngestChunk indexes the chunk's title and body text. Ingestion is keyed by
// chunk identity: a chunk that is already indexed is skipped, so re-ingesting
// identical content never double-counts document frequency. Returns true when
// the chunk was newly indexed.
func (ix *Index) IngestChunk(chunk *core.ContentChunk) bool {
	tokens := Tokenize(chunk.Title + " " + chunk.Content)
	if len(tokens) == 0 {
		return false
	}

	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := ix.snap.Load()
	if _, exists := cur.chunks[chunk.Id]; exists {
		return false
	}

	next := &snapshot{
		terms:       make(map[string]*termEntry, len(cur.terms)+len(counts)),
		chunks:      make(map[core.ID]*chunkEntry, len(cur.chunks)+1),
		totalTokens: cur.totalTokens + len(tokens),
	}
	for term, entry := range cur.terms {
		next.terms[term] = entry
	}
	for id, entry := range cur.chunks {
		next.chunks[id] = entry
	}

	terms := make([]string, 0, len(counts))
	for term, count := range counts {
		terms = append(terms, term)
		next.terms[term] = cloneEntryWith(next.terms[term], chunk.Id, count)
	}
	next.chunks[chunk.Id] = &chunkEntry{length: len(tokens), terms: terms}

	ix.snap.Store(next)
	ix.logger.Debug("indexed chunk vocabulary", "chunkID", chunk.Id, "terms", len(terms))
	return true
}

// RetractChunk removes a chunk's contribution to every term it touched.
// Used when a source is re-ingested and its old chunk versions are retired.
// Returns true when the chunk was present.
func (ix *Index) RetractChunk(chunkID core.ID) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := ix.snap.Load()
	entry, exists := cur.chunks[chunkID]
	if !exists {
		return false
	}

	next := &snapshot{
		terms:       make(map[string]*termEntry, len(cur.terms)),
		chunks:      make(map[core.ID]*chunkEntry, len(cur.chunks)),
		totalTokens: cur.totalTokens - entry.length,
	}
	for term, te := range cur.terms {
		next.terms[term] = te
	}
	for id, ce := range cur.chunks {
		if id != chunkID {
			next.chunks[id] = ce
		}
	}

	for _, term := range entry.terms {
		te := next.terms[term]
		if te == nil {
			continue
		}
		count := te.postings[chunkID]
		if len(te.postings) == 1 {
			delete(next.terms, term)
			continue
		}
		clone := &termEntry{
			occurrences: te.occurrences - count,
			postings:    make(map[core.ID]int, len(te.postings)-1),
		}
		for id, freq := range te.postings {
			if id != chunkID {
				clone.postings[id] = freq
			}
		}
		next.terms[term] = clone
	}

	ix.snap.Store(next)
	ix.logger.Debug("retracted chunk vocabulary", "chunkID", chunkID, "terms", len(entry.terms))
	return true
}

func cloneEntryWith(entry *termEntry, chunkID core.ID, count int) *termEntry {
	if entry == nil {
		return &termEntry{
			occurrences: count,
			postings:    map[core.ID]int{chunkID: count},
		}
	}
	clone := &termEntry{
		occurrences: entry.occurrences + count,
		postings:    make(map[core.ID]int, len(entry.postings)+1),
	}
	for id, freq := range entry.postings {
		clone.postings[id] = freq
	}
	clone.postings[chunkID] = count
	return clone
}

// TermStats returns a term's document frequency and total occurrence count.
// Unknown terms report zero for both.
func (ix *Index) TermStats(term string) (df int, occurrences int) {
	entry := ix.snap.Load().terms[term]
	if entry == nil {
		return 0, 0
	}
	return len(entry.postings), entry.occurrences
}

// Contains reports whether the term appears in any indexed chunk.
func (ix *Index) Contains(term string) bool {
	_, exists := ix.snap.Load().terms[term]
	return exists
}

// Postings iterates the chunks containing the term with their per-chunk term
// frequency. The iteration sees a consistent snapshot even under concurrent
// ingestion.
func (ix *Index) Postings(term string) iter.Seq2[core.ID, int] {
	entry := ix.snap.Load().terms[term]
	return func(yield func(core.ID, int) bool) {
		if entry == nil {
			return
		}
		for id, freq := range entry.postings {
			if !yield(id, freq) {
				return
			}
		}
	}
}

// ForEachTerm iterates all indexed single terms with their document
// frequency. Bigrams are skipped. Return false from the callback to stop.
func (ix *Index) ForEachTerm(fn func(term string, df int) bool) {
	for term, entry := range ix.snap.Load().terms {
		if isBigram(term) {
			continue
		}
		if !fn(term, len(entry.postings)) {
			return
		}
	}
}

// ChunkLength returns the token count of an indexed chunk.
func (ix *Index) ChunkLength(chunkID core.ID) (int, bool) {
	entry, exists := ix.snap.Load().chunks[chunkID]
	if !exists {
		return 0, false
	}
	return entry.length, true
}

// AvgChunkLength returns the mean token count across indexed chunks.
func (ix *Index) AvgChunkLength() float64 {
	snap := ix.snap.Load()
	if len(snap.chunks) == 0 {
		return 0
	}
	return float64(snap.totalTokens) / float64(len(snap.chunks))
}

// ChunkCount returns the number of indexed chunks.
func (ix *Index) ChunkCount() int {
	return len(ix.snap.Load().chunks)
}

// Size returns the number of distinct terms, bigrams included.
func (ix *Index) Size() int {
	return len(ix.snap.Load().terms)
}

// Completions returns up to limit known terms starting with the prefix,
// ranked by descending document frequency with alphabetical tie-breaking.
func (ix *Index) Completions(prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || limit <= 0 {
		return nil
	}

	type candidate struct {
		term string
		df   int
	}
	var candidates []candidate
	for term, entry := range ix.snap.Load().terms {
		if isBigram(term) {
			continue
		}
		if strings.HasPrefix(term, prefix) {
			candidates = append(candidates, candidate{term: term, df: len(entry.postings)})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].df != candidates[j].df {
			return candidates[i].df > candidates[j].df
		}
		return candidates[i].term < candidates[j].term
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	terms := make([]string, len(candidates))
	for i, c := range candidates {
		terms[i] = c.term
	}
	return terms
}
