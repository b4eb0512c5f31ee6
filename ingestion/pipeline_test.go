package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darnellt0/em-crm-core/ai"
	"github.com/darnellt0/em-crm-core/ai/mock"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
	"github.com/darnellt0/em-crm-core/storage/badger"
)

func newTestPipeline(t *testing.T, provider ai.AIProvider) (*Pipeline, *badger.Repositories) {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	pipeline, err := NewPipeline(repos.Contacts, repos.Interactions, repos.Memories, provider, WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, repos
}

func addTestContact(t *testing.T, repos *badger.Repositories) *core.Contact {
	t.Helper()

	contact := &core.Contact{FirstName: "Dana", Email: "dana@example.com"}
	_, err := repos.Contacts.AddContacts(context.Background(), contact)
	require.NoError(t, err)
	return contact
}

func TestLogInteractionPersistsAndTouches(t *testing.T) {
	pipeline, repos := newTestPipeline(t, mock.NewMockProvider())
	contact := addTestContact(t, repos)

	ctx := context.Background()
	occurredAt := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)

	interaction, err := pipeline.LogInteraction(ctx, &core.Interaction{
		ContactId:  contact.Id,
		Type:       core.InteractionCall,
		Summary:    "Asked about the spring cohort",
		OccurredAt: occurredAt,
	})
	require.NoError(t, err)
	assert.NotZero(t, interaction.Id)

	pipeline.Wait()

	stored, err := repos.Interactions.GetInteraction(ctx, interaction.Id)
	require.NoError(t, err)
	assert.Equal(t, "Asked about the spring cohort", stored.Summary)

	touched, err := repos.Contacts.GetContact(ctx, contact.Id)
	require.NoError(t, err)
	assert.True(t, touched.LastTouchAt.Equal(occurredAt))
}

func TestLogInteractionExtractsProposals(t *testing.T) {
	extractor := mock.NewMockMemoryExtractor()
	extractor.ExtractMemoriesFunc = func(ctx context.Context, text string) ([]ai.MemoryProposal, error) {
		return []ai.MemoryProposal{
			{Content: "Runs ops at a fintech", MemoryType: "professional", Confidence: 0.9},
			{Content: "Interested in the spring cohort", MemoryType: "interest", Pin: true},
		}, nil
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor)

	pipeline, repos := newTestPipeline(t, provider)
	contact := addTestContact(t, repos)

	ctx := context.Background()
	_, err := pipeline.LogInteraction(ctx, &core.Interaction{
		ContactId: contact.Id,
		Type:      core.InteractionMeeting,
		Summary:   "Met Dana at the summit",
	})
	require.NoError(t, err)

	pipeline.Wait()

	items, err := repos.Memories.ListMemoryItems(ctx, storage.MemoryFilter{ContactId: contact.Id})
	require.NoError(t, err)
	require.Len(t, items, 2)

	for _, item := range items {
		assert.Equal(t, core.MemoryProposed, item.Status)
		assert.Equal(t, "ai:mock-extract", item.ProposedBy)
		assert.Equal(t, core.MemoryItemID(contact.Id, item.Content), item.Id)
	}
}

func TestLogInteractionExtractionIdempotent(t *testing.T) {
	extractor := mock.NewMockMemoryExtractor()
	extractor.ExtractMemoriesFunc = func(ctx context.Context, text string) ([]ai.MemoryProposal, error) {
		return []ai.MemoryProposal{{Content: "Has two kids", MemoryType: "personal"}}, nil
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor)

	pipeline, repos := newTestPipeline(t, provider)
	contact := addTestContact(t, repos)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := pipeline.LogInteraction(ctx, &core.Interaction{
			ContactId: contact.Id,
			Type:      core.InteractionNote,
			Summary:   "Mentioned her kids again",
		})
		require.NoError(t, err)
	}

	pipeline.Wait()

	count, err := repos.Memories.CountMemoryItems(ctx, storage.MemoryFilter{ContactId: contact.Id})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-extracted fact must not duplicate")
}

func TestLogInteractionExtractionFailureSwallowed(t *testing.T) {
	extractor := mock.NewMockMemoryExtractor()
	extractor.ExtractMemoriesFunc = func(ctx context.Context, text string) ([]ai.MemoryProposal, error) {
		return nil, errors.New("model unavailable")
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor)

	pipeline, repos := newTestPipeline(t, provider)
	contact := addTestContact(t, repos)

	ctx := context.Background()
	interaction, err := pipeline.LogInteraction(ctx, &core.Interaction{
		ContactId: contact.Id,
		Type:      core.InteractionCall,
		Summary:   "Call notes",
	})
	require.NoError(t, err, "interaction write must survive extraction failure")

	pipeline.Wait()

	_, err = repos.Interactions.GetInteraction(ctx, interaction.Id)
	assert.NoError(t, err)

	count, err := repos.Memories.CountMemoryItems(ctx, storage.MemoryFilter{ContactId: contact.Id})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLogInteractionSkipsExtractionWithoutSummary(t *testing.T) {
	extractor := mock.NewMockMemoryExtractor()
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor)

	pipeline, repos := newTestPipeline(t, provider)
	contact := addTestContact(t, repos)

	_, err := pipeline.LogInteraction(context.Background(), &core.Interaction{
		ContactId: contact.Id,
		Type:      core.InteractionCall,
	})
	require.NoError(t, err)

	pipeline.Wait()
	assert.Zero(t, extractor.CallCount())
}

func TestLogInteractionValidation(t *testing.T) {
	pipeline, repos := newTestPipeline(t, mock.NewMockProvider())
	contact := addTestContact(t, repos)

	ctx := context.Background()

	t.Run("missing contact", func(t *testing.T) {
		_, err := pipeline.LogInteraction(ctx, &core.Interaction{
			ContactId: 999999,
			Type:      core.InteractionCall,
			Summary:   "ghost",
		})
		assert.ErrorIs(t, err, core.ErrMissingContact)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := pipeline.LogInteraction(ctx, &core.Interaction{
			ContactId: contact.Id,
			Type:      core.InteractionType(99),
		})
		assert.ErrorIs(t, err, core.ErrInvalidInteractionType)
	})

	t.Run("future occurredAt", func(t *testing.T) {
		_, err := pipeline.LogInteraction(ctx, &core.Interaction{
			ContactId:  contact.Id,
			Type:       core.InteractionCall,
			OccurredAt: time.Now().Add(24 * time.Hour),
		})
		assert.ErrorIs(t, err, core.ErrInvalidTimestamp)
	})
}

func TestCompletionHookObservesExtraction(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	extractor := mock.NewMockMemoryExtractor()
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor)

	type completion struct {
		contactID core.ID
		proposed  int
		err       error
	}
	var mu sync.Mutex
	var completions []completion

	pipeline, err := NewPipeline(repos.Contacts, repos.Interactions, repos.Memories, provider,
		WithPoolSize(1),
		WithCompletionHook(func(contactID core.ID, proposed int, err error) {
			mu.Lock()
			defer mu.Unlock()
			completions = append(completions, completion{contactID, proposed, err})
		}),
	)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	contact := addTestContact(t, repos)
	ctx := context.Background()

	extractor.ExtractMemoriesFunc = func(ctx context.Context, text string) ([]ai.MemoryProposal, error) {
		return []ai.MemoryProposal{
			{Content: "Mentors two founders", MemoryType: "professional"},
			{Content: "Based in Denver", MemoryType: "personal"},
		}, nil
	}
	_, err = pipeline.LogInteraction(ctx, &core.Interaction{
		ContactId: contact.Id,
		Type:      core.InteractionCall,
		Summary:   "Catch-up call",
	})
	require.NoError(t, err)
	pipeline.Wait()

	extractionErr := errors.New("model offline")
	extractor.ExtractMemoriesFunc = func(ctx context.Context, text string) ([]ai.MemoryProposal, error) {
		return nil, extractionErr
	}
	_, err = pipeline.LogInteraction(ctx, &core.Interaction{
		ContactId: contact.Id,
		Type:      core.InteractionCall,
		Summary:   "Follow-up call",
	})
	require.NoError(t, err, "extraction failure must stay invisible to the caller")
	pipeline.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, completions, 2)

	assert.Equal(t, contact.Id, completions[0].contactID)
	assert.Equal(t, 2, completions[0].proposed)
	assert.NoError(t, completions[0].err)

	assert.Equal(t, contact.Id, completions[1].contactID)
	assert.Zero(t, completions[1].proposed)
	assert.ErrorIs(t, completions[1].err, extractionErr)
}
