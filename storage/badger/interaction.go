package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// InteractionRepository implements storage.InteractionRepository for BadgerDB.
// Interactions are immutable once stored; the per-contact index is keyed by
// occurredAt so a reverse scan yields most-recent-first.
type InteractionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.InteractionRepository = (*InteractionRepository)(nil)

// NewInteractionRepository creates a new InteractionRepository.
func NewInteractionRepository(backend *Backend) (*InteractionRepository, error) {
	idSeq, err := backend.GetSequence(interactionIDSeq)
	if err != nil {
		return nil, err
	}

	return &InteractionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *InteractionRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *InteractionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddInteractions adds one or more interactions to storage.
func (r *InteractionRepository) AddInteractions(ctx context.Context, interactions ...*core.Interaction) ([]*core.Interaction, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, interaction := range interactions {
			if interaction.Id == 0 {
				id, err := nextID(r.idSeq)
				if err != nil {
					return err
				}
				interaction.Id = id
			}

			interaction.InsertedAt = time.Now().UTC()

			value := storage.MarshalInteraction(interaction)
			if err := tx.Set(makeInteractionKey(interaction.Id), value); err != nil {
				return err
			}

			indexKey := makeInteractionContactKey(
				interaction.ContactId,
				interaction.OccurredAt.UnixMicro(),
				interaction.Id,
			)
			if err := tx.Set(indexKey, storage.MarshalID(interaction.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return interactions, err
}

// GetInteraction retrieves a single interaction by ID.
func (r *InteractionRepository) GetInteraction(ctx context.Context, id core.ID) (*core.Interaction, error) {
	var result *core.Interaction
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readInteraction(tx, makeInteractionKey(id))
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

// GetInteractionsByContact returns a contact's interactions, most recent
// occurredAt first, up to limit (0 means no limit).
func (r *InteractionRepository) GetInteractionsByContact(ctx context.Context, contactID core.ID, limit int) ([]*core.Interaction, error) {
	var results []*core.Interaction

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialInteractionContactKey(contactID)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration needs a seek key past the prefix range.
		seekKey := append(append([]byte{}, prefix...), 0xFF)

		for iter.Seek(seekKey); iter.ValidForPrefix(prefix); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			interaction, err := readInteraction(tx, makeInteractionKey(id))
			if err != nil {
				return err
			}
			if interaction == nil {
				continue
			}

			results = append(results, interaction)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
		return nil
	}, false)

	return results, err
}

func readInteraction(tx *badger.Txn, key []byte) (*core.Interaction, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var interaction *core.Interaction
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		interaction, unmarshalErr = storage.UnmarshalInteraction(val)
		return unmarshalErr
	})
	return interaction, err
}
