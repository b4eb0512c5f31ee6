package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// SavedViewRepository implements storage.SavedViewRepository for BadgerDB.
type SavedViewRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SavedViewRepository = (*SavedViewRepository)(nil)

// NewSavedViewRepository creates a new SavedViewRepository.
func NewSavedViewRepository(backend *Backend) (*SavedViewRepository, error) {
	idSeq, err := backend.GetSequence(savedViewIDSeq)
	if err != nil {
		return nil, err
	}

	return &SavedViewRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SavedViewRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *SavedViewRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddView adds a saved view, generating its ID from sequence.
func (r *SavedViewRepository) AddView(ctx context.Context, view *core.SavedView) (*core.SavedView, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if view.Id == 0 {
			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			view.Id = id
		}

		view.InsertedAt = time.Now().UTC()
		view.UpdatedAt = view.InsertedAt

		if err := writeSavedView(tx, view); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return view, err
}

// GetView retrieves a view by ID.
func (r *SavedViewRepository) GetView(ctx context.Context, id core.ID) (*core.SavedView, error) {
	var result *core.SavedView
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSavedView(tx, makeSavedViewKey(id))
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

// ListViews returns the views visible to an owner for an entity:
// the owner's own views plus shared ones. Empty entity means all entities.
func (r *SavedViewRepository) ListViews(ctx context.Context, ownerID core.ID, entity string) ([]*core.SavedView, error) {
	var views []*core.SavedView

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(savedViewPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var view *core.SavedView
			err := iter.Item().Value(func(val []byte) error {
				var err error
				view, err = storage.UnmarshalSavedView(val)
				return err
			})
			if err != nil {
				return err
			}
			if view == nil {
				continue
			}
			if entity != "" && view.Entity != entity {
				continue
			}
			if view.OwnerId != ownerID && !view.Shared {
				continue
			}
			views = append(views, view)
		}
		return nil
	}, false)

	return views, err
}

// UpdateView replaces a stored view.
func (r *SavedViewRepository) UpdateView(ctx context.Context, view *core.SavedView) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readSavedView(tx, makeSavedViewKey(view.Id))
		if err != nil {
			return err
		}
		if existing == nil {
			return storage.ErrNotFound
		}
		view.InsertedAt = existing.InsertedAt
		view.UpdatedAt = time.Now().UTC()
		if err := writeSavedView(tx, view); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteView removes a view.
func (r *SavedViewRepository) DeleteView(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSavedViewKey(id)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func readSavedView(tx *badger.Txn, key []byte) (*core.SavedView, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var view *core.SavedView
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		view, unmarshalErr = storage.UnmarshalSavedView(val)
		return unmarshalErr
	})
	return view, err
}

func writeSavedView(tx *badger.Txn, view *core.SavedView) error {
	return tx.Set(makeSavedViewKey(view.Id), storage.MarshalSavedView(view))
}
