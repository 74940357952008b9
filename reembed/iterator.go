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

package reembed

import (
	"context"

	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/storage"
)

const (
	// DefaultBatchSize is the default number of chunks per batch
	DefaultBatchSize = 100
)

// ChunkIterator streams stored chunks in batches, optionally restricted to
// one source or system.
type ChunkIterator struct {
	repo      storage.ChunkRepository
	filter    storage.ChunkFilter
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks in each batch (must be > 0)
func NewChunkIterator(repo storage.ChunkRepository, filter storage.ChunkFilter, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		repo:      repo,
		filter:    filter,
		batchSize: batchSize,
	}
}

// Count returns the number of chunks the iterator will visit.
func (it *ChunkIterator) Count(ctx context.Context) (int, error) {
	count := 0
	err := it.repo.ForEachChunk(ctx, it.filter, func(*core.ContentChunk) error {
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ForEach iterates over all matching chunks, calling fn for each batch.
// Iteration stops on the first error from fn. Context cancellation is
// checked between batches.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.ContentChunk) error) error {
	batch := make([]*core.ContentChunk, 0, it.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return ctx.Err()
	}

	err := it.repo.ForEachChunk(ctx, it.filter, func(chunk *core.ContentChunk) error {
		batch = append(batch, chunk)
		if len(batch) == it.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}

	return flush()
}
