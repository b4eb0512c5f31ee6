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


// Package storage provides the storage abstraction layer for the CRM core.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. It allows for different storage backends (BadgerDB, in-memory,
// etc.) to be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - ContactRepository: contacts plus the unique email/phone identity indexes
//   - InteractionRepository: immutable contact touch records
//   - MemoryRepository: memory items, their embeddings and the pending queue
//   - ImportRepository: import jobs and their ordered rows
//   - SavedViewRepository: dashboard view presets
//   - VectorIndex: similarity search over ready embeddings
//
// # Uniqueness
//
// ContactRepository implementations must enforce at most one contact per
// non-empty email and per non-empty normalized phone, reporting violations
// as ErrDuplicateKey so callers can implement get-or-create semantics.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
