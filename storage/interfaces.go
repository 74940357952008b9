package storage

import (
	"context"

	"github.com/poiesic/grimoire/core"
)

// ChunkFilter narrows repository scans and vector queries to a subset of
// chunks. Zero-value fields match everything.
type ChunkFilter struct {
	Source      string
	System      string
	SourceKind  core.SourceKind  // 0 matches any kind
	ContentType core.ContentType // 0 matches any type
}

// Matches reports whether the chunk passes the filter.
func (f ChunkFilter) Matches(chunk *core.ContentChunk) bool {
	if chunk == nil {
		return false
	}
	if f.Source != "" && chunk.Source != f.Source {
		return false
	}
	if f.System != "" && chunk.System != f.System {
		return false
	}
	if f.SourceKind != 0 && chunk.SourceKind != f.SourceKind {
		return false
	}
	if f.ContentType != 0 && chunk.ContentType != f.ContentType {
		return false
	}
	return true
}

// VectorMatch is a single hit from a vector similarity query.
type VectorMatch struct {
	ChunkId core.ID
	Score   float64 // cosine similarity
}

// VectorIndex provides approximate or exact nearest-neighbor lookup by
// embedding vector. Implementations must be thread-safe.
type VectorIndex interface {
	// QueryVectors returns up to topN chunks most similar to the given
	// vector, restricted to chunks passing the filter, ordered by
	// similarity descending.
	QueryVectors(ctx context.Context, vector []float32, filter ChunkFilter, topN int) ([]VectorMatch, error)

	// UpsertVector attaches an embedding vector to a stored chunk.
	// Returns ErrNotFound if the chunk doesn't exist.
	UpsertVector(ctx context.Context, chunkID core.ID, vector []float32) error
}

// ChunkRepository provides operations for managing indexed content chunks.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	VectorIndex

	// AddChunks adds one or more content chunks to storage.
	// Chunk IDs must be assigned before insertion (content-derived).
	// Sets InsertedAt timestamp if not already set.
	// Adding an already-present ID overwrites the stored chunk in place.
	AddChunks(ctx context.Context, chunks ...*core.ContentChunk) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.ContentChunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.ContentChunk, error)

	// GetChunksBySource retrieves all chunks belonging to the named source.
	GetChunksBySource(ctx context.Context, source string) ([]*core.ContentChunk, error)

	// DeleteChunks removes chunks by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any chunk doesn't exist.
	DeleteChunks(ctx context.Context, ids ...core.ID) error

	// ForEachChunk calls fn for every stored chunk passing the filter.
	// Iteration stops early if fn returns an error, which is propagated.
	ForEachChunk(ctx context.Context, filter ChunkFilter, fn func(chunk *core.ContentChunk) error) error

	// CountBySystem returns the number of indexed chunks per game system.
	CountBySystem(ctx context.Context) (map[string]int, error)

	// Close closes the repository and releases resources.
	Close() error
}

// PatternRepository persists learned classification patterns so the
// per-system caches survive restarts.
type PatternRepository interface {
	// SavePatterns inserts or overwrites pattern entries.
	// Entry IDs must be assigned before insertion (content-derived).
	SavePatterns(ctx context.Context, entries ...*core.PatternEntry) error

	// GetPatternsBySystem retrieves all stored patterns for a game system,
	// ordered by confidence descending.
	GetPatternsBySystem(ctx context.Context, system string) ([]*core.PatternEntry, error)

	// DeletePatterns removes pattern entries by their IDs.
	// Missing IDs are ignored; eviction may race with persistence.
	DeletePatterns(ctx context.Context, ids ...core.ID) error

	// ListSystems returns every game system with at least one stored pattern.
	ListSystems(ctx context.Context) ([]string, error)

	// Close closes the repository and releases resources.
	Close() error
}
