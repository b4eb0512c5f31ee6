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


package review

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// Action is a review decision applied to memory items.
type Action string

const (
	// ActionApprove marks items approved and enqueues them for embedding.
	ActionApprove Action = "approve"

	// ActionApprovePin approves items and pins them.
	ActionApprovePin Action = "approve_pin"

	// ActionReject marks items rejected with an optional reason.
	ActionReject Action = "reject"
)

// Result aggregates the outcome of a bulk review action.
type Result struct {
	// UpdatedCount is the number of items whose status changed.
	UpdatedCount int

	// SkippedCount is the number of items left untouched: already in the
	// target status, or not found.
	SkippedCount int
}

// Queue applies human review decisions to proposed memory items.
// Approval transitions are idempotent: approving an approved item or
// rejecting a rejected one is a skip, not an error, so bulk actions
// can safely be retried.
type Queue struct {
	memories storage.MemoryRepository
	logger   *slog.Logger
}

// NewQueue creates a review queue over the given memory repository.
func NewQueue(memories storage.MemoryRepository) (*Queue, error) {
	if memories == nil {
		return nil, ErrMemoryRepositoryRequired
	}
	return &Queue{
		memories: memories,
		logger:   slog.Default().With("component", "review"),
	}, nil
}

// List returns memory items matching the filter, newest first.
// Pass storage.MemoryFilter{Status: core.MemoryProposed} for the open queue.
func (q *Queue) List(ctx context.Context, filter storage.MemoryFilter) ([]*core.MemoryItem, error) {
	return q.memories.ListMemoryItems(ctx, filter)
}

// Count returns the number of memory items matching the filter.
func (q *Queue) Count(ctx context.Context, filter storage.MemoryFilter) (int, error) {
	return q.memories.CountMemoryItems(ctx, filter)
}

// Apply applies a review action to a single memory item.
func (q *Queue) Apply(ctx context.Context, action Action, itemID core.ID, reviewerID core.ID, reason string) (Result, error) {
	return q.ApplyBulk(ctx, action, []core.ID{itemID}, reviewerID, reason)
}

// ApplyBulk applies a review action to a set of memory items.
// Items already in the target status and unknown IDs are counted as skipped.
// The reason argument is only meaningful for ActionReject.
func (q *Queue) ApplyBulk(ctx context.Context, action Action, itemIDs []core.ID, reviewerID core.ID, reason string) (Result, error) {
	var result Result

	switch action {
	case ActionApprove, ActionApprovePin, ActionReject:
	default:
		return result, ErrUnknownAction
	}

	for _, id := range itemIDs {
		item, err := q.memories.GetMemoryItem(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				result.SkippedCount++
				continue
			}
			return result, err
		}

		updated, err := q.applyOne(ctx, action, item, reviewerID, reason)
		if err != nil {
			return result, err
		}
		if updated {
			result.UpdatedCount++
		} else {
			result.SkippedCount++
		}
	}

	q.logger.Info("applied review action",
		"action", string(action),
		"requested", len(itemIDs),
		"updated", result.UpdatedCount,
		"skipped", result.SkippedCount)

	return result, nil
}

func (q *Queue) applyOne(ctx context.Context, action Action, item *core.MemoryItem, reviewerID core.ID, reason string) (bool, error) {
	now := time.Now().UTC()

	switch action {
	case ActionApprove, ActionApprovePin:
		if item.Status == core.MemoryApproved {
			return false, nil
		}

		item.Status = core.MemoryApproved
		item.RejectionReason = ""
		item.ReviewedBy = reviewerID
		item.ReviewedAt = now
		if action == ActionApprovePin {
			item.IsPinned = true
		}

		if err := q.memories.UpdateMemoryItem(ctx, item); err != nil {
			return false, err
		}

		// Enqueue for embedding. A previous error row is reset to pending
		// so the worker retries it; the worker stamps model and vector.
		embedding := &core.MemoryEmbedding{
			MemoryItemId: item.Id,
			Status:       core.EmbeddingPending,
		}
		if err := q.memories.UpsertEmbedding(ctx, embedding); err != nil {
			return false, err
		}
		return true, nil

	case ActionReject:
		if item.Status == core.MemoryRejected {
			return false, nil
		}

		item.Status = core.MemoryRejected
		item.IsPinned = false
		item.RejectionReason = reason
		item.ReviewedBy = reviewerID
		item.ReviewedAt = now

		if err := q.memories.UpdateMemoryItem(ctx, item); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, ErrUnknownAction
}

// SetPinned toggles the pin flag on an approved memory item.
// Returns ErrNotApproved when the item is not approved: pins only
// carry meaning on approved memories.
func (q *Queue) SetPinned(ctx context.Context, itemID core.ID, pinned bool) error {
	item, err := q.memories.GetMemoryItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Status != core.MemoryApproved {
		return ErrNotApproved
	}
	item.IsPinned = pinned
	return q.memories.UpdateMemoryItem(ctx, item)
}
