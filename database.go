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


package emcrm

import (
	"log/slog"

	"github.com/darnellt0/em-crm-core/ai"
	"github.com/darnellt0/em-crm-core/ai/openai"
	"github.com/darnellt0/em-crm-core/embedding"
	"github.com/darnellt0/em-crm-core/importer"
	"github.com/darnellt0/em-crm-core/ingestion"
	"github.com/darnellt0/em-crm-core/review"
	"github.com/darnellt0/em-crm-core/search"
	"github.com/darnellt0/em-crm-core/storage"
	"github.com/darnellt0/em-crm-core/storage/badger"
)

// Database wires the badger-backed repositories and the AI provider into
// one handle the CRM components hang off.
type Database struct {
	repos    *badger.Repositories
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAIProvider injects a prebuilt provider instead of constructing the
// OpenAI-compatible one. Used by tests and embedded callers.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps all data in memory. Everything is lost on Close.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the store at filePath and connects the AI provider.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	repos, err := badger.OpenRepositories(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	return &Database{
		repos:    repos,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}
	if err := db.repos.Close(); err != nil {
		db.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ContactRepository() storage.ContactRepository {
	return db.repos.Contacts
}

func (db *Database) InteractionRepository() storage.InteractionRepository {
	return db.repos.Interactions
}

func (db *Database) MemoryRepository() storage.MemoryRepository {
	return db.repos.Memories
}

func (db *Database) ImportRepository() storage.ImportRepository {
	return db.repos.Imports
}

func (db *Database) SavedViewRepository() storage.SavedViewRepository {
	return db.repos.Views
}

// NewIngestionPipeline creates the interaction-to-memory pipeline.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.repos.Contacts, db.repos.Interactions, db.repos.Memories, db.provider, opts...)
}

// NewReviewQueue creates the proposed-memory review queue.
func (db *Database) NewReviewQueue() (*review.Queue, error) {
	return review.NewQueue(db.repos.Memories)
}

// NewEmbeddingWorker creates a worker that embeds approved memories.
// A nil config uses embedding.DefaultConfig.
func (db *Database) NewEmbeddingWorker(config *embedding.Config) (*embedding.Worker, error) {
	return embedding.NewWorker(db.repos.Memories, db.provider.Embedder(), config)
}

// NewSearcher creates the semantic search engine.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.repos.Memories, db.repos.Contacts, db.repos.Backend, db.provider, opts...)
}

// NewImporter creates the CSV import engine.
func (db *Database) NewImporter(opts ...importer.Option) (*importer.Importer, error) {
	return importer.NewImporter(db.repos.Imports, db.repos.Contacts, opts...)
}
