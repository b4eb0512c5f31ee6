package badger

import (
	"context"
	"testing"

	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

func TestMemoryItemUpsertIdempotent(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	item := &core.MemoryItem{
		ContactId:  5,
		Content:    "Prefers email over phone calls",
		MemoryType: "preference",
		Status:     core.MemoryProposed,
		Confidence: 0.9,
	}

	added, err := repos.Memories.UpsertMemoryItems(ctx, item)
	if err != nil {
		t.Fatalf("Failed to upsert memory item: %v", err)
	}
	if added != 1 {
		t.Fatalf("Expected 1 added, got %d", added)
	}
	if item.Id != core.MemoryItemID(5, "Prefers email over phone calls") {
		t.Fatal("Expected content-derived ID")
	}

	// Same contact + content is a no-op
	again := &core.MemoryItem{
		ContactId:  5,
		Content:    "Prefers email over phone calls",
		MemoryType: "preference",
		Status:     core.MemoryProposed,
	}
	added, err = repos.Memories.UpsertMemoryItems(ctx, again)
	if err != nil {
		t.Fatalf("Failed to upsert memory item: %v", err)
	}
	if added != 0 {
		t.Fatalf("Expected 0 added for duplicate, got %d", added)
	}

	// Same content for a different contact is a distinct item
	other := &core.MemoryItem{
		ContactId: 6,
		Content:   "Prefers email over phone calls",
		Status:    core.MemoryProposed,
	}
	added, err = repos.Memories.UpsertMemoryItems(ctx, other)
	if err != nil {
		t.Fatalf("Failed to upsert memory item: %v", err)
	}
	if added != 1 {
		t.Fatalf("Expected 1 added for other contact, got %d", added)
	}
}

func TestMemoryItemListFilters(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	items := []*core.MemoryItem{
		{ContactId: 1, Content: "Has two kids", Status: core.MemoryProposed},
		{ContactId: 1, Content: "Works at Acme", Status: core.MemoryApproved, IsPinned: true},
		{ContactId: 2, Content: "Budget approved for Q3", Status: core.MemoryApproved},
	}
	if _, err := repos.Memories.UpsertMemoryItems(ctx, items...); err != nil {
		t.Fatalf("Failed to upsert memory items: %v", err)
	}

	proposed, err := repos.Memories.ListMemoryItems(ctx, storage.MemoryFilter{Status: core.MemoryProposed})
	if err != nil {
		t.Fatalf("Failed to list memory items: %v", err)
	}
	if len(proposed) != 1 || proposed[0].Content != "Has two kids" {
		t.Fatalf("Unexpected proposed items: %v", proposed)
	}

	byContact, err := repos.Memories.ListMemoryItems(ctx, storage.MemoryFilter{ContactId: 1})
	if err != nil {
		t.Fatalf("Failed to list memory items: %v", err)
	}
	if len(byContact) != 2 {
		t.Fatalf("Expected 2 items for contact 1, got %d", len(byContact))
	}

	pinned, err := repos.Memories.ListMemoryItems(ctx, storage.MemoryFilter{PinnedOnly: true})
	if err != nil {
		t.Fatalf("Failed to list memory items: %v", err)
	}
	if len(pinned) != 1 || pinned[0].Content != "Works at Acme" {
		t.Fatalf("Unexpected pinned items: %v", pinned)
	}

	count, err := repos.Memories.CountMemoryItems(ctx, storage.MemoryFilter{Status: core.MemoryApproved})
	if err != nil {
		t.Fatalf("Failed to count memory items: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected count 2, got %d", count)
	}
}

func TestEmbeddingLifecycle(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	item := &core.MemoryItem{ContactId: 3, Content: "Allergic to shellfish", Status: core.MemoryApproved}
	if _, err := repos.Memories.UpsertMemoryItems(ctx, item); err != nil {
		t.Fatalf("Failed to upsert memory item: %v", err)
	}

	embedding := &core.MemoryEmbedding{
		MemoryItemId: item.Id,
		Model:        "nomic-embed-text",
		Status:       core.EmbeddingPending,
	}
	if err := repos.Memories.UpsertEmbedding(ctx, embedding); err != nil {
		t.Fatalf("Failed to upsert embedding: %v", err)
	}

	pending, err := repos.Memories.PendingEmbeddings(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list pending embeddings: %v", err)
	}
	if len(pending) != 1 || pending[0].MemoryItemId != item.Id {
		t.Fatalf("Unexpected pending embeddings: %v", pending)
	}

	embedding.Status = core.EmbeddingReady
	embedding.Vector = []float32{0.6, 0.8}
	if err := repos.Memories.UpdateEmbedding(ctx, embedding); err != nil {
		t.Fatalf("Failed to update embedding: %v", err)
	}

	pending, err = repos.Memories.PendingEmbeddings(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list pending embeddings: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("Expected pending index cleared, got %d", len(pending))
	}

	stored, err := repos.Memories.GetEmbedding(ctx, item.Id)
	if err != nil {
		t.Fatalf("Failed to get embedding: %v", err)
	}
	if stored.Status != core.EmbeddingReady || len(stored.Vector) != 2 {
		t.Fatalf("Unexpected stored embedding: %+v", stored)
	}
	if stored.InsertedAt.IsZero() || !stored.InsertedAt.Equal(embedding.InsertedAt) {
		t.Fatal("Expected InsertedAt preserved across update")
	}
}

func TestPendingEmbeddingsRequireApprovedParent(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	item := &core.MemoryItem{ContactId: 4, Content: "Still under review", Status: core.MemoryProposed}
	if _, err := repos.Memories.UpsertMemoryItems(ctx, item); err != nil {
		t.Fatalf("Failed to upsert memory item: %v", err)
	}

	embedding := &core.MemoryEmbedding{MemoryItemId: item.Id, Status: core.EmbeddingPending}
	if err := repos.Memories.UpsertEmbedding(ctx, embedding); err != nil {
		t.Fatalf("Failed to upsert embedding: %v", err)
	}

	pending, err := repos.Memories.PendingEmbeddings(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list pending embeddings: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("Expected no pending work for unapproved item, got %d", len(pending))
	}

	item.Status = core.MemoryApproved
	if err := repos.Memories.UpdateMemoryItem(ctx, item); err != nil {
		t.Fatalf("Failed to update memory item: %v", err)
	}

	pending, err = repos.Memories.PendingEmbeddings(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list pending embeddings: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending after approval, got %d", len(pending))
	}
}

func TestNearestOnlyMatchesApprovedReady(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	approved := &core.MemoryItem{ContactId: 1, Content: "approved fact", Status: core.MemoryApproved}
	rejected := &core.MemoryItem{ContactId: 1, Content: "rejected fact", Status: core.MemoryRejected}
	if _, err := repos.Memories.UpsertMemoryItems(ctx, approved, rejected); err != nil {
		t.Fatalf("Failed to upsert memory items: %v", err)
	}

	embeddings := []*core.MemoryEmbedding{
		{MemoryItemId: approved.Id, Status: core.EmbeddingReady, Vector: []float32{1, 0}},
		{MemoryItemId: rejected.Id, Status: core.EmbeddingReady, Vector: []float32{1, 0}},
	}
	for _, e := range embeddings {
		if err := repos.Memories.UpsertEmbedding(ctx, e); err != nil {
			t.Fatalf("Failed to upsert embedding: %v", err)
		}
	}

	matches, err := repos.Backend.Nearest(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].MemoryItemId != approved.Id {
		t.Fatalf("Expected approved item, got %d", matches[0].MemoryItemId)
	}
	if matches[0].Score < 0.99 {
		t.Fatalf("Expected score near 1, got %f", matches[0].Score)
	}
}

func TestNearestOrdersBySimilarity(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	near := &core.MemoryItem{ContactId: 1, Content: "near fact", Status: core.MemoryApproved}
	far := &core.MemoryItem{ContactId: 1, Content: "far fact", Status: core.MemoryApproved}
	if _, err := repos.Memories.UpsertMemoryItems(ctx, near, far); err != nil {
		t.Fatalf("Failed to upsert memory items: %v", err)
	}

	if err := repos.Memories.UpsertEmbedding(ctx, &core.MemoryEmbedding{
		MemoryItemId: near.Id, Status: core.EmbeddingReady, Vector: []float32{1, 0},
	}); err != nil {
		t.Fatalf("Failed to upsert embedding: %v", err)
	}
	if err := repos.Memories.UpsertEmbedding(ctx, &core.MemoryEmbedding{
		MemoryItemId: far.Id, Status: core.EmbeddingReady, Vector: []float32{0, 1},
	}); err != nil {
		t.Fatalf("Failed to upsert embedding: %v", err)
	}

	matches, err := repos.Backend.Nearest(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match with limit 1, got %d", len(matches))
	}
	if matches[0].MemoryItemId != near.Id {
		t.Fatalf("Expected nearest item first, got %d", matches[0].MemoryItemId)
	}
}
