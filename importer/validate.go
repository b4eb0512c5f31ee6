package importer

import (
	"context"
	"log/slog"

	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// RowPreview is the dry-run classification of a single row.
type RowPreview struct {
	RowIndex           int
	Action             core.RowAction
	MatchType          core.MatchType
	MatchedContactId   core.ID
	MatchedContactName string
	Normalized         map[string]string
}

// ValidationSummary aggregates the dry-run classifications.
type ValidationSummary struct {
	Total      int
	WillCreate int
	WillUpdate int
	WillSkip   int
}

// ValidationReport is the full dry-run result for a job.
type ValidationReport struct {
	Summary  ValidationSummary
	Previews []*RowPreview
}

// Validator classifies a job's rows against the contact store without
// writing anything.
type Validator struct {
	imports  storage.ImportRepository
	contacts storage.ContactRepository
	logger   *slog.Logger
}

// NewValidator creates a validator over the given repositories.
func NewValidator(imports storage.ImportRepository, contacts storage.ContactRepository) (*Validator, error) {
	if imports == nil {
		return nil, ErrImportRepositoryRequired
	}
	if contacts == nil {
		return nil, ErrContactRepositoryRequired
	}
	return &Validator{
		imports:  imports,
		contacts: contacts,
		logger:   slog.Default().With("component", "import-validator"),
	}, nil
}

// Validate dry-runs the job: every row is classified as create, update or
// skip using the same precedence as execution, but nothing is written.
// Each row is matched against the store as it is now; creates earlier in
// the batch are not simulated, so a later duplicate of a to-be-created
// contact previews as create and reconciles to update at execution time.
func (v *Validator) Validate(ctx context.Context, jobID core.ID) (*ValidationReport, error) {
	job, err := v.imports.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(job.Mapping) == 0 {
		return nil, ErrMappingNotSet
	}

	rows, err := v.imports.GetRows(ctx, jobID)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{Previews: make([]*RowPreview, 0, len(rows))}
	report.Summary.Total = len(rows)

	for _, row := range rows {
		preview, err := v.previewRow(ctx, job, row)
		if err != nil {
			return nil, err
		}
		switch preview.Action {
		case core.ActionCreated:
			report.Summary.WillCreate++
		case core.ActionUpdated:
			report.Summary.WillUpdate++
		case core.ActionSkipped:
			report.Summary.WillSkip++
		}
		report.Previews = append(report.Previews, preview)
	}

	v.logger.Debug("validation complete", "jobId", jobID,
		"willCreate", report.Summary.WillCreate,
		"willUpdate", report.Summary.WillUpdate,
		"willSkip", report.Summary.WillSkip)

	return report, nil
}

func (v *Validator) previewRow(ctx context.Context, job *core.ImportJob, row *core.ImportRow) (*RowPreview, error) {
	facts := buildRowFacts(row.Raw, job.Mapping)
	preview := &RowPreview{
		RowIndex:   row.RowIndex,
		Normalized: facts.normalized,
	}

	if !facts.hasIdentity() {
		preview.Action = core.ActionSkipped
		return preview, nil
	}

	match, matchType, err := matchContact(ctx, v.contacts, facts)
	if err != nil {
		return nil, err
	}
	if match != nil {
		preview.Action = core.ActionUpdated
		preview.MatchType = matchType
		preview.MatchedContactId = match.Id
		preview.MatchedContactName = match.DisplayName()
		return preview, nil
	}

	preview.Action = core.ActionCreated
	return preview, nil
}
