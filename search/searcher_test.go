package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darnellt0/em-crm-core/ai"
	"github.com/darnellt0/em-crm-core/ai/mock"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage/badger"
)

func newTestSearcher(t *testing.T, provider ai.AIProvider) (*Searcher, *badger.Repositories) {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	searcher, err := NewSearcher(repos.Memories, repos.Contacts, repos.Backend, provider)
	require.NoError(t, err)
	return searcher, repos
}

// seedApprovedMemory stores an approved memory item with a ready embedding.
func seedApprovedMemory(t *testing.T, repos *badger.Repositories, contactID core.ID, content string, vector []float32) *core.MemoryItem {
	t.Helper()
	ctx := context.Background()

	item := &core.MemoryItem{ContactId: contactID, Content: content, Status: core.MemoryApproved}
	_, err := repos.Memories.UpsertMemoryItems(ctx, item)
	require.NoError(t, err)

	err = repos.Memories.UpsertEmbedding(ctx, &core.MemoryEmbedding{
		MemoryItemId: item.Id,
		Model:        "mock-embed",
		Vector:       vector,
		Status:       core.EmbeddingReady,
	})
	require.NoError(t, err)
	return item
}

func TestSearchJoinsContacts(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockMemoryExtractor())

	searcher, repos := newTestSearcher(t, provider)
	ctx := context.Background()

	contact := &core.Contact{FirstName: "Dana", LastName: "Reed", Email: "dana@example.com"}
	_, err := repos.Contacts.AddContacts(ctx, contact)
	require.NoError(t, err)

	seedApprovedMemory(t, repos, contact.Id, "Interested in the spring cohort", []float32{1, 0})
	seedApprovedMemory(t, repos, contact.Id, "Lives in Austin", []float32{0, 1})

	results, err := searcher.Search(ctx, "cohort interest", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Nearest first
	assert.Equal(t, "Interested in the spring cohort", results[0].Content)
	assert.Equal(t, "Dana Reed", results[0].ContactName)
	assert.Equal(t, "dana@example.com", results[0].ContactEmail)
	assert.InDelta(t, 1.0, results[0].Similarity, 0.001)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestSearchNormalizesQueryVector(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		// Magnitude 3: raw dot products would come back tripled.
		return []float32{3, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockMemoryExtractor())

	searcher, repos := newTestSearcher(t, provider)
	ctx := context.Background()

	contact := &core.Contact{FirstName: "Dana", Email: "dana@example.com"}
	_, err := repos.Contacts.AddContacts(ctx, contact)
	require.NoError(t, err)

	seedApprovedMemory(t, repos, contact.Id, "aligned fact", []float32{1, 0})
	seedApprovedMemory(t, repos, contact.Id, "orthogonal fact", []float32{0, 1})

	results, err := searcher.Search(ctx, "anything", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "aligned fact", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Similarity, 0.001)
	assert.InDelta(t, 0.0, results[1].Similarity, 0.001)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockMemoryExtractor())
	searcher, _ := newTestSearcher(t, provider)

	_, err := searcher.Search(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, embedder.CallCount(), "blank query must not hit the embedding service")
}

func TestSearchServiceUnavailable(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("connection refused")
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockMemoryExtractor())
	searcher, _ := newTestSearcher(t, provider)

	_, err := searcher.Search(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestSearchOnlySurfacesApproved(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockMemoryExtractor())

	searcher, repos := newTestSearcher(t, provider)
	ctx := context.Background()

	contact := &core.Contact{FirstName: "Dana", Email: "dana@example.com"}
	_, err := repos.Contacts.AddContacts(ctx, contact)
	require.NoError(t, err)

	seedApprovedMemory(t, repos, contact.Id, "approved and ready", []float32{1, 0})

	// Proposed item with a ready embedding must not surface
	proposed := &core.MemoryItem{ContactId: contact.Id, Content: "still proposed", Status: core.MemoryProposed}
	_, err = repos.Memories.UpsertMemoryItems(ctx, proposed)
	require.NoError(t, err)
	err = repos.Memories.UpsertEmbedding(ctx, &core.MemoryEmbedding{
		MemoryItemId: proposed.Id,
		Vector:       []float32{1, 0},
		Status:       core.EmbeddingReady,
	})
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "anything", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "approved and ready", results[0].Content)
}

func TestSearchDefaultLimit(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockMemoryExtractor())

	searcher, repos := newTestSearcher(t, provider)
	ctx := context.Background()

	contact := &core.Contact{FirstName: "Dana", Email: "dana@example.com"}
	_, err := repos.Contacts.AddContacts(ctx, contact)
	require.NoError(t, err)

	for i := 0; i < DefaultLimit+3; i++ {
		seedApprovedMemory(t, repos, contact.Id, "fact "+string(rune('a'+i)), []float32{1, 0})
	}

	results, err := searcher.Search(ctx, "anything", 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultLimit)
}
