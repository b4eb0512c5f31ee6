package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/darnellt0/em-crm-core/ai"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// Pipeline orchestrates interaction logging and asynchronous memory extraction.
// Logging an interaction persists it, bumps the contact's last-touch timestamp
// and, when the interaction carries a summary, submits it to a worker pool
// that asks the extraction model for memory proposals. Extraction failures are
// logged and swallowed: the interaction itself is never lost to a flaky model.
type Pipeline struct {
	contacts     storage.ContactRepository
	interactions storage.InteractionRepository
	memories     storage.MemoryRepository
	extractor    ai.MemoryExtractor
	pool         *ants.Pool
	inflight     sync.WaitGroup
	onComplete   CompletionHook
	logger       *slog.Logger
}

// CompletionHook observes the end of one asynchronous extraction round.
// It receives the contact, the number of proposals stored, and the error
// that ended the round, if any. Extraction errors are never surfaced to
// LogInteraction callers; the hook is how they become observable.
type CompletionHook func(contactID core.ID, proposed int, err error)

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent extraction.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithCompletionHook registers a hook invoked when an extraction round
// finishes, successfully or not. The hook runs on the worker goroutine.
func WithCompletionHook(hook CompletionHook) Option {
	return func(p *Pipeline) error {
		p.onComplete = hook
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	contacts storage.ContactRepository,
	interactions storage.InteractionRepository,
	memories storage.MemoryRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if contacts == nil {
		return nil, ErrContactRepositoryRequired
	}
	if interactions == nil {
		return nil, ErrInteractionRepositoryRequired
	}
	if memories == nil {
		return nil, ErrMemoryRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		contacts:     contacts,
		interactions: interactions,
		memories:     memories,
		extractor:    provider.MemoryExtractor(),
		pool:         pool,
		logger:       slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// LogInteraction validates and persists an interaction, bumps the contact's
// LastTouchAt, and submits the summary for asynchronous memory extraction.
// A zero OccurredAt defaults to the current time.
// Returns core.ErrMissingContact if the referenced contact does not exist.
func (p *Pipeline) LogInteraction(ctx context.Context, interaction *core.Interaction) (*core.Interaction, error) {
	if interaction.OccurredAt.IsZero() {
		interaction.OccurredAt = time.Now().UTC()
	}

	if err := core.ValidateInteraction(interaction); err != nil {
		return nil, err
	}

	if _, err := p.contacts.GetContact(ctx, interaction.ContactId); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, core.ErrMissingContact
		}
		return nil, err
	}

	added, err := p.interactions.AddInteractions(ctx, interaction)
	if err != nil {
		return nil, err
	}
	interaction = added[0]

	if err := p.contacts.TouchContact(ctx, interaction.ContactId, interaction.OccurredAt); err != nil {
		p.logger.Error("failed to bump contact last touch",
			"contactId", interaction.ContactId, "err", err)
	}

	if interaction.Summary != "" {
		p.submitExtraction(interaction)
	}

	return interaction, nil
}

// submitExtraction queues summary text for memory extraction on the pool.
func (p *Pipeline) submitExtraction(interaction *core.Interaction) {
	contactID := interaction.ContactId
	text := interaction.Summary
	if interaction.Outcome != "" {
		text = text + "\nOutcome: " + interaction.Outcome
	}

	p.inflight.Add(1)
	err := p.pool.Submit(func() {
		defer p.inflight.Done()
		p.extract(context.Background(), contactID, text)
	})
	if err != nil {
		p.inflight.Done()
		p.logger.Error("failed to submit extraction task", "err", err)
	}
}

// extract runs one extraction round and reports its outcome to the
// completion hook.
func (p *Pipeline) extract(ctx context.Context, contactID core.ID, text string) {
	proposed, err := p.runExtraction(ctx, contactID, text)
	if p.onComplete != nil {
		p.onComplete(contactID, proposed, err)
	}
}

// runExtraction stores the proposals extracted from text, returning how
// many were proposed.
func (p *Pipeline) runExtraction(ctx context.Context, contactID core.ID, text string) (int, error) {
	proposals, err := p.extractor.ExtractMemories(ctx, text)
	if err != nil {
		p.logger.Error("memory extraction failed", "contactId", contactID, "err", err)
		return 0, err
	}
	if len(proposals) == 0 {
		p.logger.Debug("no memory proposals extracted", "contactId", contactID)
		return 0, nil
	}

	provenance := "ai:" + p.extractor.Model()
	items := make([]*core.MemoryItem, 0, len(proposals))
	for _, proposal := range proposals {
		confidence := proposal.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}

		items = append(items, &core.MemoryItem{
			ContactId:  contactID,
			Content:    proposal.Content,
			MemoryType: proposal.MemoryType,
			Status:     core.MemoryProposed,
			IsPinned:   proposal.Pin,
			Confidence: confidence,
			ProposedBy: provenance,
		})
	}

	added, err := p.memories.UpsertMemoryItems(ctx, items...)
	if err != nil {
		p.logger.Error("failed to store memory proposals", "contactId", contactID, "err", err)
		return 0, err
	}

	p.logger.Info("stored memory proposals",
		"contactId", contactID,
		"proposed", len(items),
		"added", added)
	return len(items), nil
}

// Wait blocks until all queued extraction tasks finish.
// Intended for shutdown and tests.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
