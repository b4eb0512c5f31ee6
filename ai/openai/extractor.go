// Copyright 2025 Elevated Movements
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/darnellt0/em-crm-core/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// MemoryExtractor implements ai.MemoryExtractor using OpenAI-compatible chat APIs.
type MemoryExtractor struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

// newMemoryExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newMemoryExtractor(config *ai.Config) (*MemoryExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication.
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractionHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractionModel),
		openai.WithHTTPClient(&http.Client{Timeout: config.RequestTimeout}),
	)
	if err != nil {
		return nil, err
	}

	return &MemoryExtractor{
		client: client,
		model:  config.ExtractionModel,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewMemoryExtractor creates a new memory extractor using the provided configuration.
//
// Returns ai.MemoryExtractor interface to enforce abstraction.
func NewMemoryExtractor(config *ai.Config) (ai.MemoryExtractor, error) {
	return newMemoryExtractor(config)
}

// ExtractMemories extracts memory facts from interaction text using an LLM.
// Proposals without content are discarded.
func (e *MemoryExtractor) ExtractMemories(ctx context.Context, text string) ([]ai.MemoryProposal, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var proposals []ai.MemoryProposal
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []ai.MemoryProposal{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		proposals, lastErr = decodeProposals(responseText)
		if lastErr != nil {
			e.logger.Warn("error parsing extraction response",
				"attempt", attempt+1,
				"response", responseText,
				"err", lastErr)
			continue
		}
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extraction response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Keep only proposals with content
	kept := proposals[:0]
	for _, p := range proposals {
		if strings.TrimSpace(p.Content) != "" {
			kept = append(kept, p)
		}
	}

	e.logger.Debug("extracted memory proposals", "total", len(proposals), "kept", len(kept))
	return kept, nil
}

// Model returns the extraction model identifier.
func (e *MemoryExtractor) Model() string {
	return e.model
}

// decodeProposals accepts exactly two shapes: a top-level JSON array, or an
// object wrapping the array in exactly one member, e.g. {"memories": [...]}.
// Models in JSON mode produce both. Anything else is a parse failure —
// several array members would be ambiguous, and a null member is not an
// empty result.
func decodeProposals(text string) ([]ai.MemoryProposal, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") {
		var direct []ai.MemoryProposal
		if err := json.Unmarshal([]byte(trimmed), &direct); err != nil {
			return nil, err
		}
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
		return nil, err
	}

	var arrays []json.RawMessage
	for _, raw := range wrapped {
		if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			arrays = append(arrays, raw)
		}
	}
	if len(arrays) != 1 {
		return nil, fmt.Errorf("expected exactly one array member in wrapped response, found %d", len(arrays))
	}

	var inner []ai.MemoryProposal
	if err := json.Unmarshal(arrays[0], &inner); err != nil {
		return nil, err
	}
	return inner, nil
}
