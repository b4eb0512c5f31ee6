package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

func TestImportJobLifecycle(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	job := &core.ImportJob{Filename: "leads.csv", Status: core.ImportUploaded}
	if _, err := repos.Imports.AddJob(ctx, job); err != nil {
		t.Fatalf("Failed to add job: %v", err)
	}
	if job.Id == 0 {
		t.Fatal("Expected non-zero job ID")
	}

	job.Status = core.ImportParsed
	if err := repos.Imports.UpdateJob(ctx, job); err != nil {
		t.Fatalf("Failed to update job: %v", err)
	}

	retrieved, err := repos.Imports.GetJob(ctx, job.Id)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}
	if retrieved.Status != core.ImportParsed {
		t.Fatalf("Expected parsed status, got %v", retrieved.Status)
	}
}

func TestTransitionJobGuards(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	job := &core.ImportJob{Filename: "leads.csv", Status: core.ImportMapped}
	if _, err := repos.Imports.AddJob(ctx, job); err != nil {
		t.Fatalf("Failed to add job: %v", err)
	}

	if err := repos.Imports.TransitionJob(ctx, job.Id, core.ImportMapped, core.ImportRunning); err != nil {
		t.Fatalf("Failed to transition job: %v", err)
	}

	// Second transition from mapped must fail: the job is already running
	err = repos.Imports.TransitionJob(ctx, job.Id, core.ImportMapped, core.ImportRunning)
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	err = repos.Imports.TransitionJob(ctx, 999999, core.ImportMapped, core.ImportRunning)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestImportRowsOrderAndUpdate(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	job := &core.ImportJob{Filename: "leads.csv", Status: core.ImportParsed}
	if _, err := repos.Imports.AddJob(ctx, job); err != nil {
		t.Fatalf("Failed to add job: %v", err)
	}

	rows := []*core.ImportRow{
		{JobId: job.Id, RowIndex: 2, Raw: map[string]string{"email": "c@x.com"}, Status: core.RowPending},
		{JobId: job.Id, RowIndex: 0, Raw: map[string]string{"email": "a@x.com"}, Status: core.RowPending},
		{JobId: job.Id, RowIndex: 1, Raw: map[string]string{"email": "b@x.com"}, Status: core.RowPending},
	}
	if err := repos.Imports.AddRows(ctx, rows...); err != nil {
		t.Fatalf("Failed to add rows: %v", err)
	}

	stored, err := repos.Imports.GetRows(ctx, job.Id)
	if err != nil {
		t.Fatalf("Failed to get rows: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(stored))
	}
	for i, row := range stored {
		if row.RowIndex != i {
			t.Fatalf("Expected ascending rowIndex, got %d at position %d", row.RowIndex, i)
		}
	}

	stored[1].Status = core.RowSuccess
	stored[1].Action = core.ActionCreated
	if err := repos.Imports.UpdateRow(ctx, stored[1]); err != nil {
		t.Fatalf("Failed to update row: %v", err)
	}

	count, err := repos.Imports.CountRows(ctx, job.Id)
	if err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected count 3, got %d", count)
	}
}
