package importer

import (
	"context"
	"errors"

	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// rowFacts are the mapped fields of one row plus the derived phone form.
// The validator and the executor both classify from this so preview and
// execution can never diverge on a given mapping and row.
type rowFacts struct {
	normalized map[string]string
	phoneNorm  string
}

func buildRowFacts(raw, mapping map[string]string) *rowFacts {
	normalized := ApplyMapping(raw, mapping)
	return &rowFacts{
		normalized: normalized,
		phoneNorm:  NormalizePhone(normalized[FieldPhone]),
	}
}

// hasIdentity reports whether the row carries any signal usable for
// matching or for creating a contact.
func (f *rowFacts) hasIdentity() bool {
	return f.normalized[FieldEmail] != "" ||
		f.phoneNorm != "" ||
		f.normalized[FieldFirstName] != "" ||
		f.normalized[FieldLastName] != ""
}

// matchContact finds an existing contact for the row. Email takes
// precedence over normalized phone; a row whose email matches one contact
// and whose phone matches another always reports the email match.
func matchContact(ctx context.Context, contacts storage.ContactRepository, f *rowFacts) (*core.Contact, core.MatchType, error) {
	if email := f.normalized[FieldEmail]; email != "" {
		contact, err := contacts.FindContactByEmail(ctx, email)
		if err == nil {
			return contact, core.MatchEmail, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, core.MatchNone, err
		}
	}

	if f.phoneNorm != "" {
		contact, err := contacts.FindContactByPhone(ctx, f.phoneNorm)
		if err == nil {
			return contact, core.MatchPhone, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, core.MatchNone, err
		}
	}

	return nil, core.MatchNone, nil
}
