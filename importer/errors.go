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

import "errors"

var (
	// ErrImportRepositoryRequired is returned when an import repository is not provided.
	ErrImportRepositoryRequired = errors.New("import repository required")

	// ErrContactRepositoryRequired is returned when a contact repository is not provided.
	ErrContactRepositoryRequired = errors.New("contact repository required")

	// ErrEmptyFile is returned when an uploaded CSV has no content at all.
	ErrEmptyFile = errors.New("empty file")

	// ErrNoDataRows is returned when an uploaded CSV has a header but no data rows.
	ErrNoDataRows = errors.New("no data rows found in CSV")

	// ErrNotParsed is returned when a mapping is set before any rows were uploaded.
	ErrNotParsed = errors.New("job has no parsed rows")

	// ErrAlreadyParsed is returned when a second upload would duplicate a
	// job's rows.
	ErrAlreadyParsed = errors.New("job already has parsed rows")

	// ErrMappingNotSet is returned when validation or execution is attempted
	// before a column mapping was saved.
	ErrMappingNotSet = errors.New("column mapping not set")

	// ErrInvalidMapping is returned when a mapping targets an unknown contact field.
	ErrInvalidMapping = errors.New("invalid column mapping")

	// ErrJobCompleted is returned when a completed job is executed again.
	ErrJobCompleted = errors.New("import job already completed")

	// ErrJobRunning is returned when a job is already being executed.
	ErrJobRunning = errors.New("import job already running")
)
