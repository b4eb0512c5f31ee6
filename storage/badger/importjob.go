package badger

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/storage"
)

// ImportRepository implements storage.ImportRepository for BadgerDB.
// Rows are keyed (job, rowIndex) so a prefix scan returns them in source order.
type ImportRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ImportRepository = (*ImportRepository)(nil)

// NewImportRepository creates a new ImportRepository.
func NewImportRepository(backend *Backend) (*ImportRepository, error) {
	idSeq, err := backend.GetSequence(importJobIDSeq)
	if err != nil {
		return nil, err
	}

	return &ImportRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ImportRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ImportRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddJob adds an import job, generating its ID from sequence.
func (r *ImportRepository) AddJob(ctx context.Context, job *core.ImportJob) (*core.ImportJob, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if job.Id == 0 {
			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			job.Id = id
		}

		job.InsertedAt = time.Now().UTC()
		job.UpdatedAt = job.InsertedAt

		if err := writeImportJob(tx, job); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return job, err
}

// GetJob retrieves a job by ID.
func (r *ImportRepository) GetJob(ctx context.Context, id core.ID) (*core.ImportJob, error) {
	var result *core.ImportJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readImportJob(tx, makeImportJobKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// UpdateJob replaces a stored job.
func (r *ImportRepository) UpdateJob(ctx context.Context, job *core.ImportJob) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readImportJob(tx, makeImportJobKey(job.Id))
		if err != nil {
			return err
		}
		if existing == nil {
			return storage.ErrNotFound
		}
		job.UpdatedAt = time.Now().UTC()
		if err := writeImportJob(tx, job); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// TransitionJob atomically moves a job from one status to another.
// The read and write share a transaction, so two racing callers cannot
// both observe the from status.
func (r *ImportRepository) TransitionJob(ctx context.Context, id core.ID, from, to core.ImportStatus) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		job, err := readImportJob(tx, makeImportJobKey(id))
		if err != nil {
			return err
		}
		if job == nil {
			return storage.ErrNotFound
		}
		if job.Status != from {
			return storage.ErrConflict
		}

		job.Status = to
		job.UpdatedAt = time.Now().UTC()

		if err := writeImportJob(tx, job); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListJobs returns all jobs, newest first.
func (r *ImportRepository) ListJobs(ctx context.Context) ([]*core.ImportJob, error) {
	var jobs []*core.ImportJob

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(importJobPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var job *core.ImportJob
			err := iter.Item().Value(func(val []byte) error {
				var err error
				job, err = storage.UnmarshalImportJob(val)
				return err
			})
			if err != nil {
				return err
			}
			if job != nil {
				jobs = append(jobs, job)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].InsertedAt.After(jobs[j].InsertedAt)
	})
	return jobs, nil
}

// AddRows stores the rows of a job, keyed by (job, rowIndex).
func (r *ImportRepository) AddRows(ctx context.Context, rows ...*core.ImportRow) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, row := range rows {
			if err := writeImportRow(tx, row); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetRows returns a job's rows in ascending rowIndex order.
func (r *ImportRepository) GetRows(ctx context.Context, jobID core.ID) ([]*core.ImportRow, error) {
	var rows []*core.ImportRow

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialImportRowKey(jobID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var row *core.ImportRow
			err := iter.Item().Value(func(val []byte) error {
				var err error
				row, err = storage.UnmarshalImportRow(val)
				return err
			})
			if err != nil {
				return err
			}
			if row != nil {
				rows = append(rows, row)
			}
		}
		return nil
	}, false)

	return rows, err
}

// UpdateRow replaces a stored row.
func (r *ImportRepository) UpdateRow(ctx context.Context, row *core.ImportRow) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeImportRowKey(row.JobId, row.RowIndex)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		if err := writeImportRow(tx, row); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// CountRows returns the number of rows stored for a job.
func (r *ImportRepository) CountRows(ctx context.Context, jobID core.ID) (int, error) {
	count := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialImportRowKey(jobID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	return count, err
}

func readImportJob(tx *badger.Txn, key []byte) (*core.ImportJob, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var job *core.ImportJob
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		job, unmarshalErr = storage.UnmarshalImportJob(val)
		return unmarshalErr
	})
	return job, err
}

func writeImportJob(tx *badger.Txn, job *core.ImportJob) error {
	return tx.Set(makeImportJobKey(job.Id), storage.MarshalImportJob(job))
}

func writeImportRow(tx *badger.Txn, row *core.ImportRow) error {
	return tx.Set(makeImportRowKey(row.JobId, row.RowIndex), storage.MarshalImportRow(row))
}
