package importer

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// UploadPreviewLimit caps the number of rows echoed back after an upload.
const UploadPreviewLimit = 5

// UploadResult describes a parsed upload.
type UploadResult struct {
	Headers  []string
	RowCount int
	Preview  []map[string]string
}

// Importer drives import jobs through their lifecycle:
// CreateJob -> Upload -> SetMapping -> Validate (optional) -> Run.
type Importer struct {
	imports   storage.ImportRepository
	contacts  storage.ContactRepository
	validator *Validator
	executor  *Executor
	logger    *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		i.validator.logger = logger
		i.executor.logger = logger
		return nil
	}
}

// NewImporter creates an importer over the given repositories.
func NewImporter(imports storage.ImportRepository, contacts storage.ContactRepository, opts ...Option) (*Importer, error) {
	validator, err := NewValidator(imports, contacts)
	if err != nil {
		return nil, err
	}
	executor, err := NewExecutor(imports, contacts)
	if err != nil {
		return nil, err
	}

	i := &Importer{
		imports:   imports,
		contacts:  contacts,
		validator: validator,
		executor:  executor,
		logger:    slog.Default().With("component", "importer"),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	return i, nil
}

// CreateJob registers a new import job in the uploaded state.
func (i *Importer) CreateJob(ctx context.Context, filename string, createdBy core.ID) (*core.ImportJob, error) {
	job := &core.ImportJob{
		Filename:  filename,
		Status:    core.ImportUploaded,
		CreatedBy: createdBy,
	}
	return i.imports.AddJob(ctx, job)
}

// Upload reads CSV content from r and parses it into the job's rows.
func (i *Importer) Upload(ctx context.Context, jobID core.ID, r io.Reader) (*UploadResult, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return i.UploadText(ctx, jobID, string(text))
}

// UploadText parses CSV text into pending rows and moves the job to
// parsed. A job can be uploaded to exactly once.
func (i *Importer) UploadText(ctx context.Context, jobID core.ID, text string) (*UploadResult, error) {
	job, err := i.imports.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case core.ImportUploaded:
	case core.ImportCompleted:
		return nil, ErrJobCompleted
	case core.ImportRunning:
		return nil, ErrJobRunning
	default:
		return nil, ErrAlreadyParsed
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyFile
	}
	parsed := ParseCSV(text)
	if len(parsed.Rows) == 0 {
		return nil, ErrNoDataRows
	}

	rows := make([]*core.ImportRow, len(parsed.Rows))
	for idx, raw := range parsed.Rows {
		rows[idx] = &core.ImportRow{
			JobId:    jobID,
			RowIndex: idx,
			Raw:      raw,
			Status:   core.RowPending,
		}
	}
	if err := i.imports.AddRows(ctx, rows...); err != nil {
		return nil, err
	}
	if err := i.imports.TransitionJob(ctx, jobID, core.ImportUploaded, core.ImportParsed); err != nil {
		return nil, err
	}

	preview := parsed.Rows
	if len(preview) > UploadPreviewLimit {
		preview = preview[:UploadPreviewLimit]
	}

	i.logger.Info("upload parsed", "jobId", jobID, "rows", len(parsed.Rows))

	return &UploadResult{
		Headers:  parsed.Headers,
		RowCount: len(parsed.Rows),
		Preview:  preview,
	}, nil
}

// SetMapping saves the column mapping and moves the job to mapped. The
// mapping can be replaced any number of times before the job runs.
func (i *Importer) SetMapping(ctx context.Context, jobID core.ID, mapping map[string]string) error {
	job, err := i.imports.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	switch job.Status {
	case core.ImportParsed, core.ImportMapped:
	case core.ImportUploaded:
		return ErrNotParsed
	case core.ImportCompleted:
		return ErrJobCompleted
	default:
		return ErrJobRunning
	}

	if err := ValidateMapping(mapping); err != nil {
		return err
	}

	job.Mapping = mapping
	job.Status = core.ImportMapped
	return i.imports.UpdateJob(ctx, job)
}

// Validate dry-runs the job against the contact store.
func (i *Importer) Validate(ctx context.Context, jobID core.ID) (*ValidationReport, error) {
	return i.validator.Validate(ctx, jobID)
}

// Run executes the job.
func (i *Importer) Run(ctx context.Context, jobID core.ID) (*Result, error) {
	return i.executor.Run(ctx, jobID)
}

// Job returns one job by ID.
func (i *Importer) Job(ctx context.Context, jobID core.ID) (*core.ImportJob, error) {
	return i.imports.GetJob(ctx, jobID)
}

// Jobs lists all jobs, newest first.
func (i *Importer) Jobs(ctx context.Context) ([]*core.ImportJob, error) {
	return i.imports.ListJobs(ctx)
}

// Rows returns a job's rows in ascending index order, for inspection
// after validation or execution.
func (i *Importer) Rows(ctx context.Context, jobID core.ID) ([]*core.ImportRow, error) {
	return i.imports.GetRows(ctx, jobID)
}
