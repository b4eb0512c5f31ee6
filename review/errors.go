package review

import "errors"

var (
	// ErrMemoryRepositoryRequired is returned when a memory repository is not provided.
	ErrMemoryRepositoryRequired = errors.New("memory repository required")

	// ErrUnknownAction is returned for review actions other than approve,
	// approve_pin or reject.
	ErrUnknownAction = errors.New("unknown review action")

	// ErrNotApproved is returned when pinning an item that is not approved.
	ErrNotApproved = errors.New("memory item not approved")
)
