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


package badger

// Repositories bundles every repository backed by a single Backend.
// Close releases them in reverse construction order.
type Repositories struct {
	Contacts     *ContactRepository
	Interactions *InteractionRepository
	Memories     *MemoryRepository
	Imports      *ImportRepository
	Views        *SavedViewRepository
	Backend      *Backend
}

// Close closes all repositories and the backend.
func (r *Repositories) Close() error {
	r.Views.Close()
	r.Imports.Close()
	r.Memories.Close()
	r.Interactions.Close()
	r.Contacts.Close()
	return r.Backend.Close()
}

// OpenRepositories opens a backend at filePath and constructs all
// repositories on it. Caller must Close when done.
func OpenRepositories(filePath string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	contacts, err := NewContactRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	interactions, err := NewInteractionRepository(backend)
	if err != nil {
		contacts.Close()
		backend.Close()
		return nil, err
	}

	memories := NewMemoryRepository(backend)

	imports, err := NewImportRepository(backend)
	if err != nil {
		interactions.Close()
		contacts.Close()
		backend.Close()
		return nil, err
	}

	views, err := NewSavedViewRepository(backend)
	if err != nil {
		imports.Close()
		interactions.Close()
		contacts.Close()
		backend.Close()
		return nil, err
	}

	return &Repositories{
		Contacts:     contacts,
		Interactions: interactions,
		Memories:     memories,
		Imports:      imports,
		Views:        views,
		Backend:      backend,
	}, nil
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close when done.
func NewMemoryRepositories() (*Repositories, error) {
	return OpenRepositories("", true)
}
