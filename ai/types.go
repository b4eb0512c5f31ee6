package ai

// MemoryTypes defines the suggested categories for extracted memory facts.
// The extractor asks the model to pick from these; unrecognized categories
// are passed through untouched since they are advisory, not structural.
var MemoryTypes = []string{
	"personal",
	"professional",
	"interest",
	"relationship",
}

// MemoryProposal is a candidate memory fact extracted from interaction text.
// Everything except Content is optional model output.
type MemoryProposal struct {
	// Content is the memory fact as a single sentence.
	Content string `json:"content"`

	// MemoryType categorizes the fact (e.g. "personal", "professional").
	MemoryType string `json:"memoryType,omitempty"`

	// Confidence is the model's self-reported confidence from 0 to 1.
	// Zero means the model reported none.
	Confidence float32 `json:"confidence,omitempty"`

	// Pin is true when the model flags the fact as especially important.
	Pin bool `json:"pin,omitempty"`
}
