package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
	"github.com/darnellt0/em-crm-core/storage/badger"
)

func newTestImporter(t *testing.T) (*Importer, *badger.Repositories) {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	imp, err := NewImporter(repos.Imports, repos.Contacts)
	require.NoError(t, err)
	return imp, repos
}

// uploadAndMap drives a job to the mapped state with an auto-derived mapping.
func uploadAndMap(t *testing.T, imp *Importer, csvText string) *core.ImportJob {
	t.Helper()
	ctx := context.Background()

	job, err := imp.CreateJob(ctx, "contacts.csv", 1)
	require.NoError(t, err)

	upload, err := imp.UploadText(ctx, job.Id, csvText)
	require.NoError(t, err)

	err = imp.SetMapping(ctx, job.Id, AutoMapColumns(upload.Headers))
	require.NoError(t, err)
	return job
}

func TestImportLifecycle(t *testing.T) {
	imp, repos := newTestImporter(t)
	ctx := context.Background()

	job, err := imp.CreateJob(ctx, "leads.csv", 7)
	require.NoError(t, err)
	assert.Equal(t, core.ImportUploaded, job.Status)
	assert.Equal(t, "leads.csv", job.Filename)

	upload, err := imp.UploadText(ctx, job.Id,
		"First Name,Last Name,Email,Phone\nJane,Doe,jane@x.com,512-555-0147\nJohn,Ray,john@x.com,\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"First Name", "Last Name", "Email", "Phone"}, upload.Headers)
	assert.Equal(t, 2, upload.RowCount)
	assert.Len(t, upload.Preview, 2)

	stored, err := imp.Job(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportParsed, stored.Status)

	err = imp.SetMapping(ctx, job.Id, AutoMapColumns(upload.Headers))
	require.NoError(t, err)

	report, err := imp.Validate(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.WillCreate)

	result, err := imp.Run(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportStats{Total: 2, Created: 2}, result.Stats)

	stored, err = imp.Job(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportCompleted, stored.Status)
	assert.Equal(t, result.Stats, stored.Stats)

	rows, err := imp.Rows(ctx, job.Id)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, core.RowSuccess, row.Status)
		assert.Equal(t, core.ActionCreated, row.Action)
		assert.NotZero(t, row.MatchedContactId)
	}

	// Created contacts carry import defaults
	jane, err := repos.Contacts.FindContactByEmail(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, DefaultSource, jane.Source)
	assert.Equal(t, core.StageLead, jane.Stage)
	assert.Equal(t, "+15125550147", jane.PhoneNormalized)
}

func TestUploadErrors(t *testing.T) {
	imp, _ := newTestImporter(t)
	ctx := context.Background()

	job, err := imp.CreateJob(ctx, "x.csv", 1)
	require.NoError(t, err)

	_, err = imp.UploadText(ctx, job.Id, "   \n ")
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = imp.UploadText(ctx, job.Id, "name,email\n")
	assert.ErrorIs(t, err, ErrNoDataRows)

	_, err = imp.UploadText(ctx, job.Id, "name,email\nJane,jane@x.com\n")
	require.NoError(t, err)

	_, err = imp.UploadText(ctx, job.Id, "name,email\nJohn,john@x.com\n")
	assert.ErrorIs(t, err, ErrAlreadyParsed)

	_, err = imp.Upload(ctx, job.Id, strings.NewReader("whatever"))
	assert.ErrorIs(t, err, ErrAlreadyParsed)
}

func TestSetMappingOrdering(t *testing.T) {
	imp, _ := newTestImporter(t)
	ctx := context.Background()

	job, err := imp.CreateJob(ctx, "x.csv", 1)
	require.NoError(t, err)

	err = imp.SetMapping(ctx, job.Id, map[string]string{"email": FieldEmail})
	assert.ErrorIs(t, err, ErrNotParsed)

	_, err = imp.UploadText(ctx, job.Id, "email\njane@x.com\n")
	require.NoError(t, err)

	err = imp.SetMapping(ctx, job.Id, map[string]string{"email": "nickname"})
	assert.ErrorIs(t, err, ErrInvalidMapping)

	err = imp.SetMapping(ctx, job.Id, map[string]string{"email": FieldEmail})
	require.NoError(t, err)

	// Remapping before execution is allowed
	err = imp.SetMapping(ctx, job.Id, map[string]string{"email": FieldEmail})
	require.NoError(t, err)

	_, err = imp.Run(ctx, job.Id)
	require.NoError(t, err)

	err = imp.SetMapping(ctx, job.Id, map[string]string{"email": FieldEmail})
	assert.ErrorIs(t, err, ErrJobCompleted)
}

func TestValidateRequiresMapping(t *testing.T) {
	imp, _ := newTestImporter(t)
	ctx := context.Background()

	job, err := imp.CreateJob(ctx, "x.csv", 1)
	require.NoError(t, err)
	_, err = imp.UploadText(ctx, job.Id, "email\njane@x.com\n")
	require.NoError(t, err)

	_, err = imp.Validate(ctx, job.Id)
	assert.ErrorIs(t, err, ErrMappingNotSet)

	_, err = imp.Run(ctx, job.Id)
	assert.ErrorIs(t, err, ErrMappingNotSet)
}

func TestValidateClassifiesRows(t *testing.T) {
	imp, repos := newTestImporter(t)
	ctx := context.Background()

	_, err := repos.Contacts.AddContacts(ctx, &core.Contact{
		FirstName: "Jane", LastName: "Doe", Email: "jane@x.com",
	})
	require.NoError(t, err)

	job := uploadAndMap(t, imp,
		"First Name,Last Name,Email,Phone\n"+
			"Jane,Doe,jane@x.com,\n"+ // update by email
			"New,Person,new@x.com,\n"+ // create
			",,,\n") // skip: no identity

	report, err := imp.Validate(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, ValidationSummary{Total: 3, WillCreate: 1, WillUpdate: 1, WillSkip: 1}, report.Summary)

	require.Len(t, report.Previews, 3)
	update := report.Previews[0]
	assert.Equal(t, core.ActionUpdated, update.Action)
	assert.Equal(t, core.MatchEmail, update.MatchType)
	assert.Equal(t, "Jane Doe", update.MatchedContactName)
	assert.Equal(t, core.ActionCreated, report.Previews[1].Action)
	assert.Equal(t, core.ActionSkipped, report.Previews[2].Action)

	// Dry run wrote nothing
	count, err := repos.Contacts.CountContacts(ctx, storage.ContactFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	stored, err := imp.Job(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportMapped, stored.Status)
}

func TestEmailPrecedesPhoneMatch(t *testing.T) {
	imp, repos := newTestImporter(t)
	ctx := context.Background()

	byEmail := &core.Contact{FirstName: "Amy", Email: "amy@x.com"}
	byPhone := &core.Contact{FirstName: "Bob", PhoneNormalized: "+15125550147"}
	_, err := repos.Contacts.AddContacts(ctx, byEmail, byPhone)
	require.NoError(t, err)

	job := uploadAndMap(t, imp, "Email,Phone\namy@x.com,512-555-0147\n")

	report, err := imp.Validate(ctx, job.Id)
	require.NoError(t, err)
	require.Len(t, report.Previews, 1)
	assert.Equal(t, core.MatchEmail, report.Previews[0].MatchType)
	assert.Equal(t, byEmail.Id, report.Previews[0].MatchedContactId)

	// Execution agrees on the match even though writing Bob's phone onto
	// Amy then trips the unique phone constraint.
	result, err := imp.Run(ctx, job.Id)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, core.MatchEmail, result.Outcomes[0].MatchType)
	assert.Equal(t, byEmail.Id, result.Outcomes[0].MatchedContactId)
	assert.Equal(t, core.RowError, result.Outcomes[0].Status)
}

func TestRunUpdatesMergeTags(t *testing.T) {
	imp, repos := newTestImporter(t)
	ctx := context.Background()

	existing := &core.Contact{
		FirstName: "Jane", Email: "jane@x.com",
		Stage: core.StageCustomer, Source: "referral",
		Tags: []string{"vip", "austin"},
	}
	_, err := repos.Contacts.AddContacts(ctx, existing)
	require.NoError(t, err)

	job := uploadAndMap(t, imp, "Email,Last Name,Tags\njane@x.com,Doe,austin;cohort-3\n")

	result, err := imp.Run(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportStats{Total: 1, Updated: 1}, result.Stats)

	updated, err := repos.Contacts.GetContact(ctx, existing.Id)
	require.NoError(t, err)
	assert.Equal(t, "Doe", updated.LastName)
	assert.Equal(t, []string{"vip", "austin", "cohort-3"}, updated.Tags)
	// Unmapped fields keep their stored values
	assert.Equal(t, "Jane", updated.FirstName)
	assert.Equal(t, core.StageCustomer, updated.Stage)
	assert.Equal(t, "referral", updated.Source)
}

// A later row can match a contact created earlier in the same run, because
// every row is persisted before the next one starts.
func TestRunIntraBatchDedupe(t *testing.T) {
	imp, _ := newTestImporter(t)
	ctx := context.Background()

	job := uploadAndMap(t, imp,
		"First Name,Last Name,Email,Phone\n"+
			"Jane,Doe,jane@x.com,555-1234\n"+
			",,jane@x.com,555-9999\n")

	result, err := imp.Run(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportStats{Total: 2, Created: 1, Updated: 1}, result.Stats)
	assert.Equal(t, core.ActionCreated, result.Outcomes[0].Action)
	assert.Equal(t, core.ActionUpdated, result.Outcomes[1].Action)
	assert.Equal(t, core.MatchEmail, result.Outcomes[1].MatchType)
	assert.Equal(t, result.Outcomes[0].MatchedContactId, result.Outcomes[1].MatchedContactId)
}

func TestRunSkipsRowsWithoutIdentity(t *testing.T) {
	imp, repos := newTestImporter(t)
	ctx := context.Background()

	// Phone too short to normalize, everything else blank
	job := uploadAndMap(t, imp, "First Name,Email,Phone\n,,555\nJane,jane@x.com,\n")

	result, err := imp.Run(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportStats{Total: 2, Created: 1, Skipped: 1}, result.Stats)

	rows, err := imp.Rows(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.RowSkipped, rows[0].Status)
	assert.Equal(t, core.ActionSkipped, rows[0].Action)
	assert.Zero(t, rows[0].MatchedContactId)

	count, err := repos.Contacts.CountContacts(ctx, storage.ContactFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunRowErrorDoesNotAbortBatch(t *testing.T) {
	imp, repos := newTestImporter(t)
	ctx := context.Background()

	_, err := repos.Contacts.AddContacts(ctx,
		&core.Contact{FirstName: "Amy", Email: "amy@x.com"},
		&core.Contact{FirstName: "Bob", PhoneNormalized: "+15125550147"},
	)
	require.NoError(t, err)

	// Row 0 matches Amy by email but carries Bob's phone: updating Amy
	// trips the unique phone constraint. Row 1 must still import.
	job := uploadAndMap(t, imp,
		"Email,Phone\n"+
			"amy@x.com,512-555-0147\n"+
			"new@x.com,\n")

	result, err := imp.Run(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportStats{Total: 2, Created: 1, Errored: 1}, result.Stats)

	rows, err := imp.Rows(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.RowError, rows[0].Status)
	assert.NotEmpty(t, rows[0].Error)
	assert.Equal(t, core.RowSuccess, rows[1].Status)
	assert.Equal(t, core.ActionCreated, rows[1].Action)

	stored, err := imp.Job(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportCompleted, stored.Status)
}

func TestRunRefusesCompletedJob(t *testing.T) {
	imp, _ := newTestImporter(t)
	ctx := context.Background()

	job := uploadAndMap(t, imp, "Email\njane@x.com\n")

	_, err := imp.Run(ctx, job.Id)
	require.NoError(t, err)

	_, err = imp.Run(ctx, job.Id)
	assert.ErrorIs(t, err, ErrJobCompleted)
}

func TestRunRefusesRunningJob(t *testing.T) {
	imp, repos := newTestImporter(t)
	ctx := context.Background()

	job := uploadAndMap(t, imp, "Email\njane@x.com\n")

	// Simulate a concurrent executor that already won the transition
	err := repos.Imports.TransitionJob(ctx, job.Id, core.ImportMapped, core.ImportRunning)
	require.NoError(t, err)

	_, err = imp.Run(ctx, job.Id)
	assert.ErrorIs(t, err, ErrJobRunning)
}

// flakyImportStore fails the first GetRows call, then behaves normally.
type flakyImportStore struct {
	storage.ImportRepository
	failures int
}

func (f *flakyImportStore) GetRows(ctx context.Context, jobID core.ID) ([]*core.ImportRow, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("transient read failure")
	}
	return f.ImportRepository.GetRows(ctx, jobID)
}

func TestRunAbortReleasesJobForRetry(t *testing.T) {
	imp, repos := newTestImporter(t)
	ctx := context.Background()

	job := uploadAndMap(t, imp, "Email\njane@x.com\n")

	flaky := &flakyImportStore{ImportRepository: repos.Imports, failures: 1}
	exec, err := NewExecutor(flaky, repos.Contacts)
	require.NoError(t, err)

	_, err = exec.Run(ctx, job.Id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrJobRunning)

	// The aborted run must leave the job re-runnable, not stuck in running.
	stored, err := imp.Job(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportMapped, stored.Status)

	result, err := exec.Run(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportStats{Total: 1, Created: 1}, result.Stats)

	stored, err = imp.Job(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ImportCompleted, stored.Status)
}
