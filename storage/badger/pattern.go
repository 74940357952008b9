package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/storage"
)

// PatternRepository implements storage.PatternRepository backed by BadgerDB.
type PatternRepository struct {
	backend *Backend
}

var _ storage.PatternRepository = (*PatternRepository)(nil)

// NewPatternRepository creates a pattern repository on the given backend.
func NewPatternRepository(backend *Backend) (storage.PatternRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &PatternRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *PatternRepository) Close() error {
	return nil
}

// SavePatterns inserts or overwrites pattern entries.
func (r *PatternRepository) SavePatterns(ctx context.Context, entries ...*core.PatternEntry) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			now := time.Now().UTC()
			if entry.InsertedAt.IsZero() {
				entry.InsertedAt = now
			}
			entry.UpdatedAt = now

			key := makePatternKey(entry.Id)
			if err := tx.Set(key, storage.MarshalPatternEntry(entry)); err != nil {
				return err
			}

			// Update system index
			systemKey := makePatternSystemKey(entry.System, entry.Id)
			if err := tx.Set(systemKey, storage.MarshalID(entry.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetPatternsBySystem retrieves all stored patterns for a game system,
// ordered by confidence descending.
func (r *PatternRepository) GetPatternsBySystem(ctx context.Context, system string) ([]*core.PatternEntry, error) {
	var result []*core.PatternEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePatternSystemScanPrefix(system)
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

			entry, err := r.readPattern(tx, makePatternKey(id))
			if err != nil {
				return err
			}
			if entry != nil {
				result = append(result, entry)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(result, func(a, b *core.PatternEntry) int {
		if a.Confidence > b.Confidence {
			return -1
		}
		if a.Confidence < b.Confidence {
			return 1
		}
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})
	return result, nil
}

// DeletePatterns removes pattern entries by their IDs. Missing IDs are
// ignored so cache eviction can race with persistence.
func (r *PatternRepository) DeletePatterns(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makePatternKey(id)
			entry, err := r.readPattern(tx, key)
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}

			if err := tx.Delete(makePatternSystemKey(entry.System, entry.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ListSystems returns every game system with at least one stored pattern.
func (r *PatternRepository) ListSystems(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var systems []string

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(patternSystemPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := string(iter.Item().Key())
			// Key format: patsys:<system>\x00<id>
			rest := strings.TrimPrefix(key, patternSystemPrefix+":")
			idx := strings.IndexByte(rest, '\x00')
			if idx < 0 {
				continue
			}
			system := rest[:idx]
			if !seen[system] {
				seen[system] = true
				systems = append(systems, system)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Sort(systems)
	return systems, nil
}

// readPattern reads and decodes a pattern entry inside a transaction.
// Returns nil without error when the key is absent.
func (r *PatternRepository) readPattern(tx *badger.Txn, key []byte) (*core.PatternEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.PatternEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalPatternEntry(val)
		return unmarshalErr
	})
	return entry, err
}
