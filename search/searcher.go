package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/darnellt0/em-crm-core/ai"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/embedding"
	"github.com/darnellt0/em-crm-core/storage"
)

// DefaultLimit is the number of results returned when the caller passes
// a non-positive limit.
const DefaultLimit = 10

// Result is one semantic search hit joined with its contact.
type Result struct {
	MemoryItemId core.ID
	Content      string
	MemoryType   string
	IsPinned     bool
	ContactId    core.ID
	ContactName  string
	ContactEmail string
	Similarity   float32
}

// Searcher provides semantic search over approved memory items.
type Searcher struct {
	memories storage.MemoryRepository
	contacts storage.ContactRepository
	index    storage.VectorIndex
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	memories storage.MemoryRepository,
	contacts storage.ContactRepository,
	index storage.VectorIndex,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if memories == nil {
		return nil, ErrMemoryRepositoryRequired
	}
	if contacts == nil {
		return nil, ErrContactRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		memories: memories,
		contacts: contacts,
		index:    index,
		embedder: provider.Embedder(),
		logger:   slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search embeds the query and returns the nearest approved memory items
// joined with their contacts, ranked by similarity.
// Returns ErrEmptyQuery for blank queries without touching the embedding
// service, and ErrServiceUnavailable when the service cannot be reached.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	return s.SearchWithMonitor(ctx, query, limit, nil)
}

// SearchWithMonitor is Search with per-stage observation hooks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, limit int, monitor Monitor) ([]*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	monitor.Start(query)

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	monitor.AfterQueryEmbedding(vector)

	// Stored vectors are unit-normalized; the query must be too, or the
	// dot-product scores are scaled by the query magnitude.
	vector = embedding.NormalizeVector(vector)

	matches, err := s.index.Nearest(ctx, vector, limit)
	if err != nil {
		s.logger.Error("error querying vector index", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	results := make([]*Result, 0, len(matches))
	for _, match := range matches {
		item, err := s.memories.GetMemoryItem(ctx, match.MemoryItemId)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.logger.Warn("embedding without memory item", "memoryItemId", match.MemoryItemId)
				continue
			}
			return nil, err
		}

		result := &Result{
			MemoryItemId: item.Id,
			Content:      item.Content,
			MemoryType:   item.MemoryType,
			IsPinned:     item.IsPinned,
			ContactId:    item.ContactId,
			Similarity:   match.Score,
		}

		contact, err := s.contacts.GetContact(ctx, item.ContactId)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			s.logger.Warn("memory item without contact", "contactId", item.ContactId)
		} else {
			result.ContactName = contact.DisplayName()
			result.ContactEmail = contact.Email
		}

		results = append(results, result)
	}

	monitor.Finish(results)
	s.logger.Debug("search complete", "query", query, "hits", len(results))

	return results, nil
}
