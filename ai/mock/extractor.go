package mock

import (
	"context"
	"strings"

	"github.com/darnellt0/em-crm-core/ai"
)

// MockMemoryExtractor is a test double for ai.MemoryExtractor.
// It allows custom behavior injection via function fields.
type MockMemoryExtractor struct {
	// ExtractMemoriesFunc is called by ExtractMemories if set.
	// If nil, uses default sentence-splitting behavior.
	ExtractMemoriesFunc func(ctx context.Context, text string) ([]ai.MemoryProposal, error)

	// ModelName is returned by Model. Defaults to "mock-extract".
	ModelName string

	callCount int
}

// NewMockMemoryExtractor creates a mock memory extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockMemoryExtractor() *MockMemoryExtractor {
	return &MockMemoryExtractor{}
}

// ExtractMemories extracts simple mock proposals from text.
// Default behavior: each sentence becomes one proposal.
func (m *MockMemoryExtractor) ExtractMemories(ctx context.Context, text string) ([]ai.MemoryProposal, error) {
	m.callCount++

	if m.ExtractMemoriesFunc != nil {
		return m.ExtractMemoriesFunc(ctx, text)
	}

	sentences := strings.Split(text, ".")
	proposals := make([]ai.MemoryProposal, 0, len(sentences))
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		proposals = append(proposals, ai.MemoryProposal{
			Content:    s,
			MemoryType: "professional",
			Confidence: 0.8,
		})
	}
	return proposals, nil
}

// Model returns the configured model name.
func (m *MockMemoryExtractor) Model() string {
	if m.ModelName != "" {
		return m.ModelName
	}
	return "mock-extract"
}

// CallCount returns the number of times ExtractMemories was called.
func (m *MockMemoryExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockMemoryExtractor) Reset() {
	m.callCount = 0
	m.ExtractMemoriesFunc = nil
}
