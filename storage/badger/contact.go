package badger

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// ContactRepository implements storage.ContactRepository for BadgerDB.
// The unique email and normalized-phone indexes are maintained inside the
// same transaction as the primary record, so a conflicting create fails
// atomically with ErrDuplicateKey.
type ContactRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ContactRepository = (*ContactRepository)(nil)

// NewContactRepository creates a new ContactRepository.
func NewContactRepository(backend *Backend) (*ContactRepository, error) {
	idSeq, err := backend.GetSequence(contactIDSeq)
	if err != nil {
		return nil, err
	}

	return &ContactRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ContactRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ContactRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddContacts adds one or more contacts to storage.
func (r *ContactRepository) AddContacts(ctx context.Context, contacts ...*core.Contact) ([]*core.Contact, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, contact := range contacts {
			if contact.Id == 0 {
				id, err := nextID(r.idSeq)
				if err != nil {
					return err
				}
				contact.Id = id
			}

			if err := checkIdentityFree(tx, contact); err != nil {
				return err
			}

			contact.InsertedAt = time.Now().UTC()
			contact.UpdatedAt = contact.InsertedAt

			if err := writeContact(tx, contact); err != nil {
				return err
			}
			if err := writeIdentityIndex(tx, contact); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return contacts, err
}

// UpdateContacts updates existing contacts, moving identity index entries
// when email or normalized phone changed.
func (r *ContactRepository) UpdateContacts(ctx context.Context, contacts ...*core.Contact) ([]*core.Contact, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, contact := range contacts {
			old, err := readContact(tx, makeContactKey(contact.Id))
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			if old.Email != contact.Email || old.PhoneNormalized != contact.PhoneNormalized {
				if err := checkIdentityFreeExcept(tx, contact, old); err != nil {
					return err
				}
				if err := deleteIdentityIndex(tx, old); err != nil {
					return err
				}
				if err := writeIdentityIndex(tx, contact); err != nil {
					return err
				}
			}

			contact.UpdatedAt = time.Now().UTC()

			if err := writeContact(tx, contact); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return contacts, err
}

// GetContact retrieves a single contact by ID.
func (r *ContactRepository) GetContact(ctx context.Context, id core.ID) (*core.Contact, error) {
	var result *core.Contact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readContact(tx, makeContactKey(id))
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

// FindContactByEmail looks a contact up through the unique email index.
func (r *ContactRepository) FindContactByEmail(ctx context.Context, email string) (*core.Contact, error) {
	return r.findByIndex(makeContactEmailKey(email))
}

// FindContactByPhone looks a contact up through the unique normalized-phone index.
func (r *ContactRepository) FindContactByPhone(ctx context.Context, phoneNormalized string) (*core.Contact, error) {
	return r.findByIndex(makeContactPhoneKey(phoneNormalized))
}

func (r *ContactRepository) findByIndex(indexKey []byte) (*core.Contact, error) {
	var result *core.Contact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := readIndexedID(tx, indexKey)
		if err != nil {
			return err
		}
		if id == 0 {
			return storage.ErrNotFound
		}
		result, err = readContact(tx, makeContactKey(id))
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

// ListContacts returns contacts matching the filter, ordered by ID.
func (r *ContactRepository) ListContacts(ctx context.Context, filter storage.ContactFilter) ([]*core.Contact, error) {
	var results []*core.Contact
	skipped := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(contactPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var contact *core.Contact
			err := iter.Item().Value(func(val []byte) error {
				var err error
				contact, err = storage.UnmarshalContact(val)
				return err
			})
			if err != nil {
				return err
			}
			if contact == nil || !matchesContactFilter(contact, filter) {
				continue
			}
			if skipped < filter.Offset {
				skipped++
				continue
			}
			results = append(results, contact)
			if filter.Limit > 0 && len(results) >= filter.Limit {
				break
			}
		}
		return nil
	}, false)

	return results, err
}

// CountContacts returns the number of contacts matching the filter.
// Limit and Offset are ignored for counting.
func (r *ContactRepository) CountContacts(ctx context.Context, filter storage.ContactFilter) (int, error) {
	count := 0
	filter.Limit = 0
	filter.Offset = 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(contactPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var contact *core.Contact
			err := iter.Item().Value(func(val []byte) error {
				var err error
				contact, err = storage.UnmarshalContact(val)
				return err
			})
			if err != nil {
				return err
			}
			if contact != nil && matchesContactFilter(contact, filter) {
				count++
			}
		}
		return nil
	}, false)

	return count, err
}

// TouchContact sets the contact's LastTouchAt.
func (r *ContactRepository) TouchContact(ctx context.Context, id core.ID, when time.Time) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		contact, err := readContact(tx, makeContactKey(id))
		if err != nil {
			return err
		}
		if contact == nil {
			return storage.ErrNotFound
		}
		contact.LastTouchAt = when.UTC()
		contact.UpdatedAt = time.Now().UTC()
		if err := writeContact(tx, contact); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// BulkUpdateContacts applies one update to every listed contact in a
// single transaction. Missing IDs are skipped. None of the bulk fields
// touch email or phone, so the identity indexes stay put.
func (r *ContactRepository) BulkUpdateContacts(ctx context.Context, ids []core.ID, update storage.ContactBulkUpdate) (int, error) {
	updated := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			contact, err := readContact(tx, makeContactKey(id))
			if err != nil {
				return err
			}
			if contact == nil {
				continue
			}

			if update.SetOwnerId != nil {
				contact.OwnerId = *update.SetOwnerId
			}
			if update.SetStage != nil {
				contact.Stage = *update.SetStage
			}
			if update.SetNextFollowUpAt != nil {
				contact.NextFollowUpAt = *update.SetNextFollowUpAt
			}
			if len(update.AddTags) > 0 || len(update.RemoveTags) > 0 {
				contact.Tags = applyTagChanges(contact.Tags, update.AddTags, update.RemoveTags)
			}

			contact.UpdatedAt = time.Now().UTC()
			if err := writeContact(tx, contact); err != nil {
				return err
			}
			updated++
		}
		return tx.Commit()
	}, true)

	return updated, err
}

// applyTagChanges adds then removes tags, keeping order and dropping
// duplicates.
func applyTagChanges(tags, add, remove []string) []string {
	removing := make(map[string]bool, len(remove))
	for _, t := range remove {
		removing[t] = true
	}

	seen := make(map[string]bool, len(tags)+len(add))
	result := make([]string, 0, len(tags)+len(add))
	for _, t := range append(append([]string{}, tags...), add...) {
		if removing[t] || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	return result
}

// Helper functions

func matchesContactFilter(contact *core.Contact, filter storage.ContactFilter) bool {
	if filter.Stage != 0 && contact.Stage != filter.Stage {
		return false
	}
	if filter.OwnerId != 0 && contact.OwnerId != filter.OwnerId {
		return false
	}
	if filter.Tag != "" {
		found := false
		for _, tag := range contact.Tags {
			if tag == filter.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		haystack := strings.ToLower(contact.FirstName + " " + contact.LastName + " " + contact.Email)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	if !filter.NextFollowUpAfter.IsZero() {
		if contact.NextFollowUpAt.IsZero() || contact.NextFollowUpAt.Before(filter.NextFollowUpAfter) {
			return false
		}
	}
	if !filter.NextFollowUpBefore.IsZero() {
		if contact.NextFollowUpAt.IsZero() || !contact.NextFollowUpAt.Before(filter.NextFollowUpBefore) {
			return false
		}
	}
	return true
}

func readContact(tx *badger.Txn, key []byte) (*core.Contact, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var contact *core.Contact
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		contact, unmarshalErr = storage.UnmarshalContact(val)
		return unmarshalErr
	})
	return contact, err
}

func writeContact(tx *badger.Txn, contact *core.Contact) error {
	return tx.Set(makeContactKey(contact.Id), storage.MarshalContact(contact))
}

// readIndexedID reads a contact ID from an identity index entry.
// Returns 0 when no entry exists.
func readIndexedID(tx *badger.Txn, indexKey []byte) (core.ID, error) {
	item, err := tx.Get(indexKey)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}
	var id core.ID
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		id, unmarshalErr = storage.UnmarshalID(val)
		return unmarshalErr
	})
	return id, err
}

// checkIdentityFree returns ErrDuplicateKey if the contact's email or
// normalized phone already belongs to any contact.
func checkIdentityFree(tx *badger.Txn, contact *core.Contact) error {
	if contact.Email != "" {
		id, err := readIndexedID(tx, makeContactEmailKey(contact.Email))
		if err != nil {
			return err
		}
		if id != 0 {
			return storage.ErrDuplicateKey
		}
	}
	if contact.PhoneNormalized != "" {
		id, err := readIndexedID(tx, makeContactPhoneKey(contact.PhoneNormalized))
		if err != nil {
			return err
		}
		if id != 0 {
			return storage.ErrDuplicateKey
		}
	}
	return nil
}

// checkIdentityFreeExcept is checkIdentityFree but tolerates index entries
// that already point at the contact being updated.
func checkIdentityFreeExcept(tx *badger.Txn, contact, old *core.Contact) error {
	if contact.Email != "" && contact.Email != old.Email {
		id, err := readIndexedID(tx, makeContactEmailKey(contact.Email))
		if err != nil {
			return err
		}
		if id != 0 && id != contact.Id {
			return storage.ErrDuplicateKey
		}
	}
	if contact.PhoneNormalized != "" && contact.PhoneNormalized != old.PhoneNormalized {
		id, err := readIndexedID(tx, makeContactPhoneKey(contact.PhoneNormalized))
		if err != nil {
			return err
		}
		if id != 0 && id != contact.Id {
			return storage.ErrDuplicateKey
		}
	}
	return nil
}

func writeIdentityIndex(tx *badger.Txn, contact *core.Contact) error {
	idValue := storage.MarshalID(contact.Id)
	if contact.Email != "" {
		if err := tx.Set(makeContactEmailKey(contact.Email), idValue); err != nil {
			return err
		}
	}
	if contact.PhoneNormalized != "" {
		if err := tx.Set(makeContactPhoneKey(contact.PhoneNormalized), idValue); err != nil {
			return err
		}
	}
	return nil
}

func deleteIdentityIndex(tx *badger.Txn, contact *core.Contact) error {
	if contact.Email != "" {
		if err := tx.Delete(makeContactEmailKey(contact.Email)); err != nil {
			return err
		}
	}
	if contact.PhoneNormalized != "" {
		if err := tx.Delete(makeContactPhoneKey(contact.PhoneNormalized)); err != nil {
			return err
		}
	}
	return nil
}
