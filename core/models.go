package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// LifecycleStage tracks where a contact sits in the pipeline.
type LifecycleStage int

const (
	StageLead LifecycleStage = iota + 1
	StageProspect
	StageOpportunity
	StageCustomer
	StageSubscriber
	StageEvangelist
	StageOther
)

var stageNames = map[LifecycleStage]string{
	StageLead:        "lead",
	StageProspect:    "prospect",
	StageOpportunity: "opportunity",
	StageCustomer:    "customer",
	StageSubscriber:  "subscriber",
	StageEvangelist:  "evangelist",
	StageOther:       "other",
}

func (s LifecycleStage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseLifecycleStage maps a stage name to its enum value.
// Unrecognized names map to StageOther so imported data never fails on stage alone.
func ParseLifecycleStage(name string) LifecycleStage {
	name = strings.ToLower(strings.TrimSpace(name))
	for stage, n := range stageNames {
		if n == name {
			return stage
		}
	}
	return StageOther
}

// Contact is the identity record both pipelines reconcile against.
// At most one contact exists per non-empty Email and per non-empty PhoneNormalized.
type Contact struct {
	Id              ID
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	PhoneNormalized string // Derived via importer.NormalizePhone; empty when no normal form exists
	Stage           LifecycleStage
	Persona         string
	Source          string
	Tags            []string
	OwnerId         ID
	OrgId           ID
	NextFollowUpAt  time.Time
	LastTouchAt     time.Time
	InsertedAt      time.Time
	UpdatedAt       time.Time
}

// DisplayName returns the contact's name for operator-facing output,
// falling back to email when no name is set.
func (c *Contact) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name != "" {
		return name
	}
	if c.Email != "" {
		return c.Email
	}
	return "Unknown"
}

// InteractionType identifies the kind of contact touch.
type InteractionType int

const (
	InteractionCall InteractionType = iota + 1
	InteractionEmail
	InteractionMeeting
	InteractionNote
	InteractionSMS
	InteractionOther
)

var interactionNames = map[InteractionType]string{
	InteractionCall:    "call",
	InteractionEmail:   "email",
	InteractionMeeting: "meeting",
	InteractionNote:    "note",
	InteractionSMS:     "sms",
	InteractionOther:   "other",
}

func (t InteractionType) String() string {
	if name, ok := interactionNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseInteractionType maps a type name to its enum value.
// Unrecognized names map to InteractionOther.
func ParseInteractionType(name string) InteractionType {
	name = strings.ToLower(strings.TrimSpace(name))
	for typ, n := range interactionNames {
		if n == name {
			return typ
		}
	}
	return InteractionOther
}

// Interaction is an immutable record of a contact touch.
// Creation bumps the contact's LastTouchAt and, when a summary is present,
// triggers asynchronous memory extraction.
type Interaction struct {
	Id         ID
	ContactId  ID
	Type       InteractionType
	Summary    string
	Outcome    string
	OccurredAt time.Time
	CreatedBy  ID
	InsertedAt time.Time
}

// MemoryStatus is the review state of a MemoryItem.
type MemoryStatus int

const (
	MemoryProposed MemoryStatus = iota + 1
	MemoryApproved
	MemoryRejected
)

func (s MemoryStatus) String() string {
	switch s {
	case MemoryProposed:
		return "proposed"
	case MemoryApproved:
		return "approved"
	case MemoryRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MemoryItem is an AI-proposed or human-curated fact about a contact.
// Its ID is content-derived (contact + content) so re-extracting the same
// fact for the same contact is idempotent.
type MemoryItem struct {
	Id              ID
	ContactId       ID
	Content         string
	MemoryType      string
	Status          MemoryStatus
	IsPinned        bool    // Only meaningful once approved
	Confidence      float32 // 0-1; 0 means the model reported none
	ProposedBy      string  // Provenance tag, e.g. "ai:qwen2.5:7b-instruct"
	ReviewedBy      ID
	ReviewedAt      time.Time
	RejectionReason string // Cleared on approval
	InsertedAt      time.Time
	UpdatedAt       time.Time
}

// MemoryItemID derives the content-based identity of a memory fact.
func MemoryItemID(contactID ID, content string) ID {
	buf := make([]byte, 8, 8+len(content))
	binary.LittleEndian.PutUint64(buf, uint64(contactID))
	return IDFromContent(string(buf) + content)
}

// EmbeddingStatus is the lifecycle state of a MemoryEmbedding.
type EmbeddingStatus int

const (
	EmbeddingPending EmbeddingStatus = iota + 1
	EmbeddingReady
	EmbeddingError
)

func (s EmbeddingStatus) String() string {
	switch s {
	case EmbeddingPending:
		return "pending"
	case EmbeddingReady:
		return "ready"
	case EmbeddingError:
		return "error"
	default:
		return "unknown"
	}
}

// MemoryEmbedding is the vector representation of an approved MemoryItem,
// keyed 1:1 by the item's ID. A failed embedding stays in error until a fresh
// approval event re-enqueues it as pending.
type MemoryEmbedding struct {
	MemoryItemId ID
	Model        string
	Vector       []float32 // Empty until the worker computes it
	Status       EmbeddingStatus
	Error        string // Set only on error, cleared on success
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// ImportStatus is the monotonic lifecycle of an ImportJob.
// Running exists so two concurrent executions of the same job cannot
// both pass the mapped check.
type ImportStatus int

const (
	ImportUploaded ImportStatus = iota + 1
	ImportParsed
	ImportMapped
	ImportRunning
	ImportCompleted
)

func (s ImportStatus) String() string {
	switch s {
	case ImportUploaded:
		return "uploaded"
	case ImportParsed:
		return "parsed"
	case ImportMapped:
		return "mapped"
	case ImportRunning:
		return "running"
	case ImportCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// FieldSkip marks a CSV column that is deliberately not imported.
const FieldSkip = "skip"

// ImportStats aggregates per-row outcomes for a completed job.
type ImportStats struct {
	Total   int
	Created int
	Updated int
	Skipped int
	Errored int
}

// ImportJob tracks one CSV upload through parse, map, validate and run.
type ImportJob struct {
	Id         ID
	Filename   string
	Status     ImportStatus
	Mapping    map[string]string // CSV column -> contact field, or FieldSkip
	Stats      ImportStats
	CreatedBy  ID
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// RowStatus is the outcome state of a single import row.
type RowStatus int

const (
	RowPending RowStatus = iota + 1
	RowSuccess
	RowSkipped
	RowError
)

func (s RowStatus) String() string {
	switch s {
	case RowPending:
		return "pending"
	case RowSuccess:
		return "success"
	case RowSkipped:
		return "skipped"
	case RowError:
		return "error"
	default:
		return "unknown"
	}
}

// RowAction records what the executor did with a row.
type RowAction int

const (
	ActionNone RowAction = iota
	ActionCreated
	ActionUpdated
	ActionSkipped
)

func (a RowAction) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionUpdated:
		return "updated"
	case ActionSkipped:
		return "skipped"
	default:
		return "none"
	}
}

// MatchType records how an existing contact was found during dedupe.
type MatchType int

const (
	MatchNone MatchType = iota
	MatchEmail
	MatchPhone
)

func (m MatchType) String() string {
	switch m {
	case MatchEmail:
		return "email"
	case MatchPhone:
		return "phone"
	default:
		return "none"
	}
}

// ImportRow is one source CSV line, mutated exactly once by the executor.
type ImportRow struct {
	JobId            ID
	RowIndex         int
	Raw              map[string]string // column name -> cell value
	Normalized       map[string]string // contact field -> value, computed from mapping
	Status           RowStatus
	Action           RowAction
	MatchType        MatchType
	MatchedContactId ID
	Error            string
}

// VectorMatch is a memory embedding hit from vector similarity search.
type VectorMatch struct {
	MemoryItemId ID
	Score        float32
}

// SavedView is a named filter/sort/column preset for a dashboard entity list.
type SavedView struct {
	Id         ID
	Name       string
	Entity     string // "contacts", "tasks", ...
	OwnerId    ID
	Shared     bool
	Definition map[string]string // filter/sort/column settings as stored by the dashboard
	InsertedAt time.Time
	UpdatedAt  time.Time
}
