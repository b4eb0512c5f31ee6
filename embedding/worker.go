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


package embedding

import (
	"context"
	"log/slog"
	"time"

	"github.com/darnellt0/em-crm-core/ai"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// Config holds configuration for the embedding worker.
type Config struct {
	// BatchSize is the maximum number of pending embeddings per run.
	BatchSize int

	// MaxRetries is the maximum number of attempts per embedding call.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:  50,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// ItemError records a per-item failure during a run.
type ItemError struct {
	MemoryItemId core.ID
	Err          error
}

// Report summarizes one worker run.
type Report struct {
	// Processed is the number of pending embeddings picked up.
	Processed int

	// Succeeded is the number of embeddings computed and stored.
	Succeeded int

	// Errored is the number of embeddings marked error.
	Errored int

	// Errors holds the per-item failures for Errored embeddings.
	Errors []ItemError
}

// Worker drains the pending embedding queue. Each run picks up at most
// BatchSize pending rows whose parent memory item is approved, computes
// a unit-normalized vector for the item's content, and stores it. A failed
// item is marked error with the failure message and does not block the
// rest of the batch.
type Worker struct {
	memories storage.MemoryRepository
	embedder ai.Embedder
	config   *Config
	logger   *slog.Logger
}

// NewWorker creates an embedding worker.
// A nil config uses DefaultConfig.
func NewWorker(memories storage.MemoryRepository, embedder ai.Embedder, config *Config) (*Worker, error) {
	if memories == nil {
		return nil, ErrMemoryRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize < 1 {
		config.BatchSize = DefaultConfig().BatchSize
	}

	return &Worker{
		memories: memories,
		embedder: embedder,
		config:   config,
		logger:   slog.Default().With("component", "embedding-worker"),
	}, nil
}

// RunOnce processes one batch of pending embeddings and returns a report.
// An empty queue yields a zero report and no error.
func (w *Worker) RunOnce(ctx context.Context) (*Report, error) {
	pending, err := w.memories.PendingEmbeddings(ctx, w.config.BatchSize)
	if err != nil {
		return nil, err
	}

	report := &Report{Processed: len(pending)}
	if len(pending) == 0 {
		w.logger.Debug("no pending embeddings")
		return report, nil
	}

	for _, row := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := w.embedOne(ctx, row); err != nil {
			report.Errored++
			report.Errors = append(report.Errors, ItemError{MemoryItemId: row.MemoryItemId, Err: err})
			w.logger.Warn("embedding failed", "memoryItemId", row.MemoryItemId, "err", err)
			continue
		}
		report.Succeeded++
	}

	w.logger.Info("embedding run complete",
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"errored", report.Errored)

	return report, nil
}

// Run drains the queue in batches until empty or the context is cancelled.
// Returns the merged report.
func (w *Worker) Run(ctx context.Context) (*Report, error) {
	total := &Report{}
	for {
		report, err := w.RunOnce(ctx)
		if report != nil {
			total.Processed += report.Processed
			total.Succeeded += report.Succeeded
			total.Errored += report.Errored
			total.Errors = append(total.Errors, report.Errors...)
		}
		if err != nil {
			return total, err
		}
		if report.Processed == 0 {
			return total, nil
		}
		// Failed rows leave the pending index, so every batch makes
		// progress. A partial batch means the queue is drained.
		if report.Processed < w.config.BatchSize {
			return total, nil
		}
	}
}

// embedOne computes and stores the vector for one pending row.
// On failure, the row is marked error with the failure message.
func (w *Worker) embedOne(ctx context.Context, row *core.MemoryEmbedding) error {
	item, err := w.memories.GetMemoryItem(ctx, row.MemoryItemId)
	if err != nil {
		w.markError(ctx, row, err)
		return err
	}

	var vector []float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		vector, embedErr = w.embedder.EmbedText(ctx, item.Content)
		return embedErr
	}, w.config.MaxRetries, w.config.RetryDelay)
	if err != nil {
		w.markError(ctx, row, err)
		return err
	}

	row.Model = w.embedder.Model()
	row.Vector = NormalizeVector(vector)
	row.Status = core.EmbeddingReady
	row.Error = ""

	if err := w.memories.UpdateEmbedding(ctx, row); err != nil {
		return err
	}
	return nil
}

func (w *Worker) markError(ctx context.Context, row *core.MemoryEmbedding, cause error) {
	row.Status = core.EmbeddingError
	row.Error = cause.Error()
	if err := w.memories.UpdateEmbedding(ctx, row); err != nil {
		w.logger.Error("failed to record embedding error",
			"memoryItemId", row.MemoryItemId, "err", err)
	}
}
