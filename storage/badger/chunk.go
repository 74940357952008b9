package badger

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/storage"
)

// ChunkRepository implements storage.ChunkRepository backed by BadgerDB.
// Vector similarity queries are served by a filtered scan over the stored
// chunks.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a chunk repository on the given backend.
func NewChunkRepository(backend *Backend) (storage.ChunkRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ChunkRepository) Close() error {
	return nil
}

// AddChunks adds one or more content chunks to storage.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.ContentChunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = time.Now().UTC()
			}

			key := makeChunkKey(chunk.Id)
			value := storage.MarshalContentChunk(chunk)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update source index
			sourceKey := makeChunkSourceKey(chunk.Source, chunk.Id)
			if err := tx.Set(sourceKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.ContentChunk, error) {
	var result *core.ContentChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunks retrieves multiple chunks by their IDs.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.ContentChunk, error) {
	var result []*core.ContentChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := r.readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				result = append(result, chunk)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetChunksBySource retrieves all chunks belonging to the named source.
func (r *ChunkRepository) GetChunksBySource(ctx context.Context, source string) ([]*core.ContentChunk, error) {
	var result []*core.ContentChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkSourceScanPrefix(source)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			chunk, err := r.readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				result = append(result, chunk)
			}
		}
		return nil
	}, false)
	return result, err
}

// DeleteChunks removes chunks by their IDs.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeChunkKey(id)

			// Read chunk to get metadata for index cleanup
			chunk, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if chunk == nil {
				return storage.ErrNotFound
			}

			// Delete from source index
			if err := tx.Delete(makeChunkSourceKey(chunk.Source, chunk.Id)); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ForEachChunk calls fn for every stored chunk passing the filter.
func (r *ChunkRepository) ForEachChunk(ctx context.Context, filter storage.ChunkFilter, fn func(chunk *core.ContentChunk) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.ContentChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalContentChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil || !filter.Matches(chunk) {
				continue
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountBySystem returns the number of indexed chunks per game system.
func (r *ChunkRepository) CountBySystem(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := r.ForEachChunk(ctx, storage.ChunkFilter{}, func(chunk *core.ContentChunk) error {
		counts[chunk.System]++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// QueryVectors returns the chunks most similar to the given vector.
func (r *ChunkRepository) QueryVectors(ctx context.Context, vector []float32, filter storage.ChunkFilter, topN int) ([]storage.VectorMatch, error) {
	if len(vector) == 0 {
		return nil, storage.ErrEmptyVector
	}

	queryMagnitude := vectorMagnitude(vector)

	var matches []storage.VectorMatch
	err := r.ForEachChunk(ctx, filter, func(chunk *core.ContentChunk) error {
		// Skip chunks without embeddings
		if len(chunk.Vector) == 0 {
			return nil
		}

		matches = append(matches, storage.VectorMatch{
			ChunkId: chunk.Id,
			Score:   cosineSimilarity(vector, queryMagnitude, chunk.Vector),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending, ties by ascending ID for determinism
	slices.SortFunc(matches, func(a, b storage.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.ChunkId < b.ChunkId {
			return -1
		}
		if a.ChunkId > b.ChunkId {
			return 1
		}
		return 0
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches, nil
}

// UpsertVector attaches an embedding vector to a stored chunk.
func (r *ChunkRepository) UpsertVector(ctx context.Context, chunkID core.ID, vector []float32) error {
	if len(vector) == 0 {
		return storage.ErrEmptyVector
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeChunkKey(chunkID)
		chunk, err := r.readChunk(tx, key)
		if err != nil {
			return err
		}
		if chunk == nil {
			return storage.ErrNotFound
		}

		chunk.Vector = vector
		if err := tx.Set(key, storage.MarshalContentChunk(chunk)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readChunk reads and decodes a chunk inside a transaction.
// Returns nil without error when the key is absent.
func (r *ChunkRepository) readChunk(tx *badger.Txn, key []byte) (*core.ContentChunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.ContentChunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalContentChunk(val)
		return unmarshalErr
	})
	return chunk, err
}

// cosineSimilarity computes the cosine of the angle between a and b, given
// a's precomputed magnitude. Vectors of zero magnitude score 0, so stored
// embedding magnitude never distorts the ranking.
func cosineSimilarity(a []float32, aMagnitude float64, b []float32) float64 {
	bMagnitude := vectorMagnitude(b)
	if aMagnitude == 0 || bMagnitude == 0 {
		return 0
	}

	var dot float64
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aMagnitude * bMagnitude)
}

// vectorMagnitude returns the Euclidean length of a vector.
func vectorMagnitude(v []float32) float64 {
	var squares float64
	for _, val := range v {
		squares += float64(val) * float64(val)
	}
	return math.Sqrt(squares)
}
