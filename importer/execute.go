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


package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// DefaultSource is stamped on created contacts when the rows carry no
// source column of their own.
const DefaultSource = "import"

// RowOutcome is what the executor did with one row.
type RowOutcome struct {
	RowIndex         int
	Status           core.RowStatus
	Action           core.RowAction
	MatchType        core.MatchType
	MatchedContactId core.ID
	Error            string
}

// Result aggregates a completed execution.
type Result struct {
	JobId    core.ID
	Stats    core.ImportStats
	Outcomes []*RowOutcome
}

// Executor runs a mapped import job against the contact store.
type Executor struct {
	imports  storage.ImportRepository
	contacts storage.ContactRepository
	logger   *slog.Logger
}

// NewExecutor creates an executor over the given repositories.
func NewExecutor(imports storage.ImportRepository, contacts storage.ContactRepository) (*Executor, error) {
	if imports == nil {
		return nil, ErrImportRepositoryRequired
	}
	if contacts == nil {
		return nil, ErrContactRepositoryRequired
	}
	return &Executor{
		imports:  imports,
		contacts: contacts,
		logger:   slog.Default().With("component", "import-executor"),
	}, nil
}

// Run executes a mapped job. Rows are processed in ascending index order
// and each row's outcome is persisted before the next row starts, so later
// rows can match contacts created earlier in the same job. One row's
// failure is recorded on that row and never aborts the batch. The job
// moves mapped -> running atomically, so a second concurrent Run of the
// same job fails with ErrJobRunning, and a finished job stays finished:
// re-running it fails with ErrJobCompleted.
func (e *Executor) Run(ctx context.Context, jobID core.ID) (*Result, error) {
	job, err := e.imports.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case core.ImportCompleted:
		return nil, ErrJobCompleted
	case core.ImportRunning:
		return nil, ErrJobRunning
	case core.ImportMapped:
	default:
		return nil, ErrMappingNotSet
	}
	if err := ValidateMapping(job.Mapping); err != nil {
		return nil, err
	}

	if err := e.imports.TransitionJob(ctx, jobID, core.ImportMapped, core.ImportRunning); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Somebody else won the transition between our read and now.
			current, gerr := e.imports.GetJob(ctx, jobID)
			if gerr == nil && current.Status == core.ImportCompleted {
				return nil, ErrJobCompleted
			}
			return nil, ErrJobRunning
		}
		return nil, err
	}

	rows, err := e.imports.GetRows(ctx, jobID)
	if err != nil {
		e.releaseRun(ctx, jobID)
		return nil, err
	}

	result := &Result{JobId: jobID, Outcomes: make([]*RowOutcome, 0, len(rows))}
	stats := core.ImportStats{Total: len(rows)}

	for _, row := range rows {
		e.executeRow(ctx, job, row)
		if err := e.imports.UpdateRow(ctx, row); err != nil {
			e.releaseRun(ctx, jobID)
			return nil, fmt.Errorf("persisting row %d: %w", row.RowIndex, err)
		}

		switch {
		case row.Status == core.RowError:
			stats.Errored++
		case row.Action == core.ActionCreated:
			stats.Created++
		case row.Action == core.ActionUpdated:
			stats.Updated++
		case row.Action == core.ActionSkipped:
			stats.Skipped++
		}

		result.Outcomes = append(result.Outcomes, &RowOutcome{
			RowIndex:         row.RowIndex,
			Status:           row.Status,
			Action:           row.Action,
			MatchType:        row.MatchType,
			MatchedContactId: row.MatchedContactId,
			Error:            row.Error,
		})
	}

	job.Status = core.ImportCompleted
	job.Stats = stats
	if err := e.imports.UpdateJob(ctx, job); err != nil {
		e.releaseRun(ctx, jobID)
		return nil, err
	}
	result.Stats = stats

	e.logger.Info("import complete", "jobId", jobID,
		"total", stats.Total, "created", stats.Created, "updated", stats.Updated,
		"skipped", stats.Skipped, "errored", stats.Errored)

	return result, nil
}

// releaseRun moves an aborted run back to mapped so the job stays
// re-runnable after a transient store failure.
func (e *Executor) releaseRun(ctx context.Context, jobID core.ID) {
	if err := e.imports.TransitionJob(ctx, jobID, core.ImportRunning, core.ImportMapped); err != nil {
		e.logger.Error("failed to release aborted run", "jobId", jobID, "err", err)
	}
}

// executeRow reconciles one row, recording the outcome on the row itself.
// Errors end up in row.Error rather than being returned.
func (e *Executor) executeRow(ctx context.Context, job *core.ImportJob, row *core.ImportRow) {
	facts := buildRowFacts(row.Raw, job.Mapping)
	row.Normalized = facts.normalized

	if !facts.hasIdentity() {
		row.Status = core.RowSkipped
		row.Action = core.ActionSkipped
		return
	}

	match, matchType, err := matchContact(ctx, e.contacts, facts)
	if err != nil {
		e.markRowError(row, err)
		return
	}

	if match != nil {
		// Recorded before the write so error rows still show how they matched.
		row.MatchType = matchType
		row.MatchedContactId = match.Id
		applyRowFields(match, facts)
		match.Tags = unionTags(match.Tags, SplitTags(facts.normalized[FieldTags]))
		if _, err := e.contacts.UpdateContacts(ctx, match); err != nil {
			e.markRowError(row, err)
			return
		}
		row.Status = core.RowSuccess
		row.Action = core.ActionUpdated
		return
	}

	contact := newContactFromRow(facts)
	if _, err := e.contacts.AddContacts(ctx, contact); err != nil {
		e.markRowError(row, err)
		return
	}
	row.Status = core.RowSuccess
	row.Action = core.ActionCreated
	row.MatchedContactId = contact.Id
}

func (e *Executor) markRowError(row *core.ImportRow, cause error) {
	e.logger.Warn("row failed", "jobId", row.JobId, "rowIndex", row.RowIndex, "err", cause)
	row.Status = core.RowError
	row.Error = cause.Error()
}

// newContactFromRow builds a fresh contact from the mapped fields, with
// import defaults for source and lifecycle stage.
func newContactFromRow(facts *rowFacts) *core.Contact {
	contact := &core.Contact{
		FirstName:       facts.normalized[FieldFirstName],
		LastName:        facts.normalized[FieldLastName],
		Email:           facts.normalized[FieldEmail],
		Phone:           facts.normalized[FieldPhone],
		PhoneNormalized: facts.phoneNorm,
		Persona:         facts.normalized[FieldPersona],
		Source:          facts.normalized[FieldSource],
		Tags:            SplitTags(facts.normalized[FieldTags]),
	}
	if contact.Source == "" {
		contact.Source = DefaultSource
	}
	if stage := facts.normalized[FieldStage]; stage != "" {
		contact.Stage = core.ParseLifecycleStage(stage)
	} else {
		contact.Stage = core.StageLead
	}
	return contact
}

// applyRowFields overwrites a matched contact's fields with the row's
// non-empty mapped values. Fields the row does not carry keep their
// stored values; tags are merged separately.
func applyRowFields(contact *core.Contact, facts *rowFacts) {
	if v := facts.normalized[FieldFirstName]; v != "" {
		contact.FirstName = v
	}
	if v := facts.normalized[FieldLastName]; v != "" {
		contact.LastName = v
	}
	if v := facts.normalized[FieldEmail]; v != "" {
		contact.Email = v
	}
	if v := facts.normalized[FieldPhone]; v != "" {
		contact.Phone = v
		contact.PhoneNormalized = facts.phoneNorm
	}
	if v := facts.normalized[FieldPersona]; v != "" {
		contact.Persona = v
	}
	if v := facts.normalized[FieldSource]; v != "" {
		contact.Source = v
	}
	if v := facts.normalized[FieldStage]; v != "" {
		contact.Stage = core.ParseLifecycleStage(v)
	}
}

// unionTags merges new tags into existing ones, preserving order and
// dropping duplicates.
func unionTags(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, t := range existing {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	for _, t := range incoming {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	return merged
}
