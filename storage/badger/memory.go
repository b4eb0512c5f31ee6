// Copyright 2025 Elevated Movements
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

package badger

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// MemoryRepository implements storage.MemoryRepository for BadgerDB.
// Embedding rows are keyed by their memory item ID; a secondary
// pending index lets the worker pick up work without a full scan.
type MemoryRepository struct {
	backend *Backend
}

var _ storage.MemoryRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository(backend *Backend) *MemoryRepository {
	return &MemoryRepository{backend: backend}
}

// Close is a no-op; the repository owns no sequences.
func (r *MemoryRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *MemoryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertMemoryItems inserts the given items, skipping any whose
// content-derived ID already exists. Returns the number actually added.
func (r *MemoryRepository) UpsertMemoryItems(ctx context.Context, items ...*core.MemoryItem) (int, error) {
	added := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			if item.Id == 0 {
				item.Id = core.MemoryItemID(item.ContactId, item.Content)
			}

			existing, err := readMemoryItem(tx, makeMemoryItemKey(item.Id))
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}

			item.InsertedAt = time.Now().UTC()
			item.UpdatedAt = item.InsertedAt

			if err := writeMemoryItem(tx, item); err != nil {
				return err
			}
			added++
		}
		return tx.Commit()
	}, true)

	return added, err
}

// GetMemoryItem retrieves a single memory item by ID.
func (r *MemoryRepository) GetMemoryItem(ctx context.Context, id core.ID) (*core.MemoryItem, error) {
	var result *core.MemoryItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readMemoryItem(tx, makeMemoryItemKey(id))
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

// UpdateMemoryItem replaces a stored memory item.
func (r *MemoryRepository) UpdateMemoryItem(ctx context.Context, item *core.MemoryItem) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readMemoryItem(tx, makeMemoryItemKey(item.Id))
		if err != nil {
			return err
		}
		if existing == nil {
			return storage.ErrNotFound
		}
		item.UpdatedAt = time.Now().UTC()
		if err := writeMemoryItem(tx, item); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListMemoryItems returns items matching the filter, newest first.
func (r *MemoryRepository) ListMemoryItems(ctx context.Context, filter storage.MemoryFilter) ([]*core.MemoryItem, error) {
	items, err := r.collectMemoryItems(filter)
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].InsertedAt.After(items[j].InsertedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return nil, nil
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

// CountMemoryItems returns the number of items matching the filter.
func (r *MemoryRepository) CountMemoryItems(ctx context.Context, filter storage.MemoryFilter) (int, error) {
	filter.Limit = 0
	filter.Offset = 0
	items, err := r.collectMemoryItems(filter)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (r *MemoryRepository) collectMemoryItems(filter storage.MemoryFilter) ([]*core.MemoryItem, error) {
	var items []*core.MemoryItem

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(memoryItemPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var item *core.MemoryItem
			err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalMemoryItem(val)
				return err
			})
			if err != nil {
				return err
			}
			if item != nil && matchesMemoryFilter(item, filter) {
				items = append(items, item)
			}
		}
		return nil
	}, false)

	return items, err
}

func matchesMemoryFilter(item *core.MemoryItem, filter storage.MemoryFilter) bool {
	if filter.Status != 0 && item.Status != filter.Status {
		return false
	}
	if filter.ContactId != 0 && item.ContactId != filter.ContactId {
		return false
	}
	if filter.PinnedOnly && !item.IsPinned {
		return false
	}
	if filter.Query != "" {
		if !strings.Contains(strings.ToLower(item.Content), strings.ToLower(filter.Query)) {
			return false
		}
	}
	return true
}

// UpsertEmbedding creates or replaces the embedding row for a memory item.
// An existing row keeps its InsertedAt. The pending index entry is added or
// removed to match the new status.
func (r *MemoryRepository) UpsertEmbedding(ctx context.Context, embedding *core.MemoryEmbedding) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readEmbedding(tx, makeEmbeddingKey(embedding.MemoryItemId))
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if existing != nil {
			embedding.InsertedAt = existing.InsertedAt
		} else {
			embedding.InsertedAt = now
		}
		embedding.UpdatedAt = now

		if err := writeEmbedding(tx, embedding); err != nil {
			return err
		}
		if err := syncPendingIndex(tx, embedding); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEmbedding retrieves the embedding row for a memory item.
func (r *MemoryRepository) GetEmbedding(ctx context.Context, memoryItemID core.ID) (*core.MemoryEmbedding, error) {
	var result *core.MemoryEmbedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEmbedding(tx, makeEmbeddingKey(memoryItemID))
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

// UpdateEmbedding replaces an existing embedding row, keeping the pending
// index consistent with the new status.
func (r *MemoryRepository) UpdateEmbedding(ctx context.Context, embedding *core.MemoryEmbedding) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readEmbedding(tx, makeEmbeddingKey(embedding.MemoryItemId))
		if err != nil {
			return err
		}
		if existing == nil {
			return storage.ErrNotFound
		}

		embedding.InsertedAt = existing.InsertedAt
		embedding.UpdatedAt = time.Now().UTC()

		if err := writeEmbedding(tx, embedding); err != nil {
			return err
		}
		if err := syncPendingIndex(tx, embedding); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// PendingEmbeddings returns up to limit embeddings in pending status whose
// parent memory item is approved, in item-ID order.
func (r *MemoryRepository) PendingEmbeddings(ctx context.Context, limit int) ([]*core.MemoryEmbedding, error) {
	var results []*core.MemoryEmbedding

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPendingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var itemID core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				itemID, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			embedding, err := readEmbedding(tx, makeEmbeddingKey(itemID))
			if err != nil {
				return err
			}
			if embedding == nil || embedding.Status != core.EmbeddingPending {
				continue
			}

			memory, err := readMemoryItem(tx, makeMemoryItemKey(itemID))
			if err != nil {
				return err
			}
			if memory == nil || memory.Status != core.MemoryApproved {
				continue
			}

			results = append(results, embedding)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
		return nil
	}, false)

	return results, err
}

// Helper functions

func readMemoryItem(tx *badger.Txn, key []byte) (*core.MemoryItem, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var memory *core.MemoryItem
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		memory, unmarshalErr = storage.UnmarshalMemoryItem(val)
		return unmarshalErr
	})
	return memory, err
}

func writeMemoryItem(tx *badger.Txn, item *core.MemoryItem) error {
	return tx.Set(makeMemoryItemKey(item.Id), storage.MarshalMemoryItem(item))
}

func unmarshalEmbeddingValue(val []byte) (*core.MemoryEmbedding, error) {
	return storage.UnmarshalMemoryEmbedding(val)
}

func readEmbedding(tx *badger.Txn, key []byte) (*core.MemoryEmbedding, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var embedding *core.MemoryEmbedding
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		embedding, unmarshalErr = unmarshalEmbeddingValue(val)
		return unmarshalErr
	})
	return embedding, err
}

func writeEmbedding(tx *badger.Txn, embedding *core.MemoryEmbedding) error {
	return tx.Set(makeEmbeddingKey(embedding.MemoryItemId), storage.MarshalMemoryEmbedding(embedding))
}

// syncPendingIndex keeps the pending index entry in step with the
// embedding's status.
func syncPendingIndex(tx *badger.Txn, embedding *core.MemoryEmbedding) error {
	pendingKey := makeEmbeddingPendingKey(embedding.MemoryItemId)
	if embedding.Status == core.EmbeddingPending {
		return tx.Set(pendingKey, storage.MarshalID(embedding.MemoryItemId))
	}
	err := tx.Delete(pendingKey)
	if err == badger.ErrKeyNotFound {
		return nil
	}
	return err
}
