package storage

import (
	"context"
	"time"

	"github.com/darnellt0/em-crm-core/core"
)

// Repository provides operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ContactFilter selects contacts for List and Count.
// Zero-valued fields are ignored.
type ContactFilter struct {
	Query              string              // Case-insensitive substring over name and email
	Stage              core.LifecycleStage // Equality
	Tag                string              // Set membership
	OwnerId            core.ID             // Equality
	NextFollowUpBefore time.Time           // Range upper bound (exclusive)
	NextFollowUpAfter  time.Time           // Range lower bound (inclusive)
	Limit              int                 // 0 means no limit
	Offset             int
}

// ContactBulkUpdate is one bulk action applied to many contacts.
// Nil/empty fields are left untouched; SetNextFollowUpAt pointing at a
// zero time clears the follow-up.
type ContactBulkUpdate struct {
	SetOwnerId        *core.ID
	SetStage          *core.LifecycleStage
	AddTags           []string
	RemoveTags        []string
	SetNextFollowUpAt *time.Time
}

// ContactRepository provides operations for managing contacts.
type ContactRepository interface {
	Repository

	// AddContacts adds one or more contacts to storage.
	// For contacts with ID=0, generates new IDs from sequence.
	// Maintains the unique email and normalized-phone indexes; returns
	// ErrDuplicateKey if either value already belongs to another contact.
	AddContacts(ctx context.Context, contacts ...*core.Contact) ([]*core.Contact, error)

	// UpdateContacts updates existing contacts, moving index entries when
	// email or normalized phone changed. Returns ErrNotFound if any contact
	// doesn't exist, ErrDuplicateKey on an identity collision.
	UpdateContacts(ctx context.Context, contacts ...*core.Contact) ([]*core.Contact, error)

	// GetContact retrieves a single contact by ID.
	// Returns ErrNotFound if the contact doesn't exist.
	GetContact(ctx context.Context, id core.ID) (*core.Contact, error)

	// FindContactByEmail looks a contact up by its unique email.
	// Returns ErrNotFound if no contact has the email.
	FindContactByEmail(ctx context.Context, email string) (*core.Contact, error)

	// FindContactByPhone looks a contact up by its unique normalized phone.
	// Returns ErrNotFound if no contact has the phone.
	FindContactByPhone(ctx context.Context, phoneNormalized string) (*core.Contact, error)

	// ListContacts returns contacts matching the filter, ordered by ID.
	ListContacts(ctx context.Context, filter ContactFilter) ([]*core.Contact, error)

	// CountContacts returns the number of contacts matching the filter.
	CountContacts(ctx context.Context, filter ContactFilter) (int, error)

	// TouchContact sets the contact's LastTouchAt.
	// Returns ErrNotFound if the contact doesn't exist.
	TouchContact(ctx context.Context, id core.ID, when time.Time) error

	// BulkUpdateContacts applies one update to every listed contact in a
	// single transaction. Missing IDs are skipped, not errors. Returns
	// the number of contacts actually updated.
	BulkUpdateContacts(ctx context.Context, ids []core.ID, update ContactBulkUpdate) (int, error)
}

// InteractionRepository provides operations for managing interaction records.
// Interactions are immutable once created.
type InteractionRepository interface {
	Repository

	// AddInteractions adds one or more interactions, generating IDs from sequence.
	AddInteractions(ctx context.Context, interactions ...*core.Interaction) ([]*core.Interaction, error)

	// GetInteraction retrieves a single interaction by ID.
	// Returns ErrNotFound if the interaction doesn't exist.
	GetInteraction(ctx context.Context, id core.ID) (*core.Interaction, error)

	// GetInteractionsByContact returns a contact's interactions,
	// most recent occurredAt first, up to limit (0 means no limit).
	GetInteractionsByContact(ctx context.Context, contactID core.ID, limit int) ([]*core.Interaction, error)
}

// MemoryFilter selects memory items for List and Count.
type MemoryFilter struct {
	Status     core.MemoryStatus // Equality; 0 means any status
	ContactId  core.ID           // Equality
	PinnedOnly bool
	Query      string // Case-insensitive substring over content
	Limit      int
	Offset     int
}

// MemoryRepository provides operations for memory items and their embeddings.
type MemoryRepository interface {
	Repository

	// UpsertMemoryItems inserts the given items, skipping any whose
	// content-derived ID already exists. Returns the number actually added.
	UpsertMemoryItems(ctx context.Context, items ...*core.MemoryItem) (int, error)

	// GetMemoryItem retrieves a single memory item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetMemoryItem(ctx context.Context, id core.ID) (*core.MemoryItem, error)

	// UpdateMemoryItem replaces a stored memory item.
	// Returns ErrNotFound if the item doesn't exist.
	UpdateMemoryItem(ctx context.Context, item *core.MemoryItem) error

	// ListMemoryItems returns items matching the filter, newest first.
	ListMemoryItems(ctx context.Context, filter MemoryFilter) ([]*core.MemoryItem, error)

	// CountMemoryItems returns the number of items matching the filter.
	CountMemoryItems(ctx context.Context, filter MemoryFilter) (int, error)

	// UpsertEmbedding creates or replaces the embedding row for a memory item.
	// An existing row keeps its InsertedAt.
	UpsertEmbedding(ctx context.Context, embedding *core.MemoryEmbedding) error

	// GetEmbedding retrieves the embedding row for a memory item.
	// Returns ErrNotFound if no row exists.
	GetEmbedding(ctx context.Context, memoryItemID core.ID) (*core.MemoryEmbedding, error)

	// UpdateEmbedding replaces an existing embedding row.
	// Returns ErrNotFound if no row exists.
	UpdateEmbedding(ctx context.Context, embedding *core.MemoryEmbedding) error

	// PendingEmbeddings returns up to limit embeddings in pending status
	// whose parent memory item is approved, in item-ID order.
	PendingEmbeddings(ctx context.Context, limit int) ([]*core.MemoryEmbedding, error)
}

// ImportRepository provides operations for import jobs and their rows.
type ImportRepository interface {
	Repository

	// AddJob adds an import job, generating its ID from sequence.
	AddJob(ctx context.Context, job *core.ImportJob) (*core.ImportJob, error)

	// GetJob retrieves a job by ID.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, id core.ID) (*core.ImportJob, error)

	// UpdateJob replaces a stored job.
	// Returns ErrNotFound if the job doesn't exist.
	UpdateJob(ctx context.Context, job *core.ImportJob) error

	// TransitionJob atomically moves a job from one status to another.
	// Returns ErrConflict if the job is not in the expected status,
	// ErrNotFound if it doesn't exist. This is the mutual-exclusion guard
	// that keeps two concurrent executions from double-processing rows.
	TransitionJob(ctx context.Context, id core.ID, from, to core.ImportStatus) error

	// ListJobs returns all jobs, newest first.
	ListJobs(ctx context.Context) ([]*core.ImportJob, error)

	// AddRows stores the rows of a job, keyed by (job, rowIndex).
	AddRows(ctx context.Context, rows ...*core.ImportRow) error

	// GetRows returns a job's rows in ascending rowIndex order.
	GetRows(ctx context.Context, jobID core.ID) ([]*core.ImportRow, error)

	// UpdateRow replaces a stored row.
	// Returns ErrNotFound if the row doesn't exist.
	UpdateRow(ctx context.Context, row *core.ImportRow) error

	// CountRows returns the number of rows stored for a job.
	CountRows(ctx context.Context, jobID core.ID) (int, error)
}

// SavedViewRepository provides operations for dashboard view presets.
type SavedViewRepository interface {
	Repository

	// AddView adds a saved view, generating its ID from sequence.
	AddView(ctx context.Context, view *core.SavedView) (*core.SavedView, error)

	// GetView retrieves a view by ID.
	// Returns ErrNotFound if the view doesn't exist.
	GetView(ctx context.Context, id core.ID) (*core.SavedView, error)

	// ListViews returns the views visible to an owner for an entity:
	// the owner's own views plus shared ones. Empty entity means all entities.
	ListViews(ctx context.Context, ownerID core.ID, entity string) ([]*core.SavedView, error)

	// UpdateView replaces a stored view.
	// Returns ErrNotFound if the view doesn't exist.
	UpdateView(ctx context.Context, view *core.SavedView) error

	// DeleteView removes a view.
	// Returns ErrNotFound if the view doesn't exist.
	DeleteView(ctx context.Context, id core.ID) error
}

// VectorIndex finds memory embeddings similar to a query vector.
// Only ready embeddings belonging to approved memory items participate.
type VectorIndex interface {
	// Nearest returns up to limit matches ordered by similarity score
	// (highest first). Vectors are assumed unit-normalized, so the score
	// is the dot product (equal to 1 - cosine distance).
	Nearest(ctx context.Context, vector []float32, limit int) ([]*core.VectorMatch, error)
}
