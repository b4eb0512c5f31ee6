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


package core

import (
	"fmt"
	"time"
)

// ValidateContact validates a Contact according to domain rules.
//
// Validation rules:
//   - at least one of email, normalized phone, first name, last name must be set
//
// NOT validated (populated elsewhere):
//   - PhoneNormalized (derived by the importer's phone normalizer)
//   - ID (0 is valid from database sequences)
func ValidateContact(contact *Contact) error {
	if contact == nil {
		return fmt.Errorf("%w: contact is nil", ErrInvalidContact)
	}

	if contact.Email == "" && contact.PhoneNormalized == "" &&
		contact.FirstName == "" && contact.LastName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContact, ErrNoIdentity)
	}

	return nil
}

// ValidateInteraction validates an Interaction according to domain rules.
//
// Validation rules:
//   - ContactId must be set
//   - Type must be a known interaction type
//   - OccurredAt must not be in the future
func ValidateInteraction(interaction *Interaction) error {
	if interaction == nil {
		return fmt.Errorf("%w: interaction is nil", ErrInvalidInteraction)
	}

	if interaction.ContactId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInteraction, ErrMissingContact)
	}

	if err := ValidateInteractionType(interaction.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInteraction, err)
	}

	if !IsValidTimestamp(interaction.OccurredAt) {
		return fmt.Errorf("%w: %w", ErrInvalidInteraction, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateMemoryItem validates a MemoryItem according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - ContactId must be set
//   - Confidence must be within [0, 1]
func ValidateMemoryItem(item *MemoryItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidMemoryItem)
	}

	if item.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMemoryItem, ErrEmptyContent)
	}

	if item.ContactId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMemoryItem, ErrMissingContact)
	}

	if item.Confidence < 0 || item.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidMemoryItem, ErrInvalidConfidence)
	}

	return nil
}

// ValidateInteractionType validates that an InteractionType has a valid value.
func ValidateInteractionType(t InteractionType) error {
	if t < InteractionCall || t > InteractionOther {
		return fmt.Errorf("%w: value %d", ErrInvalidInteractionType, t)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
