package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the identifier of the embedding model in use.
	// Stored alongside vectors so stale embeddings can be detected after
	// a model change.
	Model() string
}

// MemoryExtractor extracts long-term memory facts about a contact from
// interaction text. Implementations must be thread-safe for concurrent use.
type MemoryExtractor interface {
	// ExtractMemories analyzes interaction text and returns candidate memory
	// facts with optional category, confidence and pin hint.
	// Returns an empty slice if no facts are found.
	// Returns an error if extraction fails.
	ExtractMemories(ctx context.Context, text string) ([]MemoryProposal, error)

	// Model returns the identifier of the extraction model in use.
	// Used as the provenance tag on proposed memory items.
	Model() string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and MemoryExtractor instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// MemoryExtractor returns the memory extraction service.
	// The returned MemoryExtractor is safe for concurrent use.
	MemoryExtractor() MemoryExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
