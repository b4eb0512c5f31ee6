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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	emcrm "github.com/darnellt0/em-crm-core"
	"github.com/darnellt0/em-crm-core/ai"
	"github.com/darnellt0/em-crm-core/core"
	"github.com/darnellt0/em-crm-core/embedding"
	"github.com/darnellt0/em-crm-core/importer"
	"github.com/darnellt0/em-crm-core/review"
	"github.com/darnellt0/em-crm-core/storage"
)

func main() {
	app := &cli.App{
		Name:   "em-crm",
		Usage:  "CRM core: contact import, interaction memory, semantic search",
		Before: setup,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./crm_db",
				EnvVars: []string{"EM_CRM_DB"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				EnvVars: []string{"EM_CRM_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"EM_CRM_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "extraction-host",
				Usage:   "Memory extraction service host URL",
				EnvVars: []string{"EM_CRM_EXTRACTION_HOST"},
			},
			&cli.StringFlag{
				Name:    "extraction-model",
				Usage:   "Memory extraction model name",
				EnvVars: []string{"EM_CRM_EXTRACTION_MODEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import a contacts CSV: upload, map, validate, run",
				ArgsUsage: "FILE",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "map",
						Aliases: []string{"m"},
						Usage:   "Override a column mapping as column=field (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Validate only; do not write contacts",
					},
					&cli.Uint64Flag{
						Name:  "actor",
						Usage: "ID of the user running the import",
						Value: 1,
					},
				},
			},
			{
				Name:   "embed-worker",
				Usage:  "Embed all pending approved memories and exit",
				Action: embedWorkerCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of pending embeddings per batch",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts per embedding",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Semantic search over approved memories",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
				},
			},
			{
				Name:  "review",
				Usage: "Review proposed memories",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List memories awaiting review",
						Action: reviewListCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Usage: "Maximum number of items",
								Value: 20,
							},
							&cli.Uint64Flag{
								Name:  "contact",
								Usage: "Only show memories for this contact ID",
							},
						},
					},
					{
						Name:      "approve",
						Usage:     "Approve proposed memories by ID",
						ArgsUsage: "ID...",
						Action:    reviewApproveCommand,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "pin",
								Usage: "Pin the approved memories",
							},
							&cli.Uint64Flag{
								Name:  "actor",
								Usage: "Reviewer ID",
								Value: 1,
							},
						},
					},
					{
						Name:      "reject",
						Usage:     "Reject proposed memories by ID",
						ArgsUsage: "ID...",
						Action:    reviewRejectCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "reason",
								Usage: "Rejection reason",
							},
							&cli.Uint64Flag{
								Name:  "actor",
								Usage: "Reviewer ID",
								Value: 1,
							},
						},
					},
				},
			},
			{
				Name:   "log",
				Usage:  "Log an interaction and trigger memory extraction",
				Action: logCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "contact",
						Aliases:  []string{"c"},
						Usage:    "Contact ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Interaction type (call, email, meeting, note, sms, other)",
						Value: "note",
					},
					&cli.StringFlag{
						Name:     "summary",
						Aliases:  []string{"s"},
						Usage:    "What happened",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "outcome",
						Usage: "Outcome or next step",
					},
					&cli.Uint64Flag{
						Name:  "actor",
						Usage: "ID of the user logging the interaction",
						Value: 1,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) error {
	// A missing .env is fine; flags and real env vars still apply.
	_ = godotenv.Load()

	levelStr := strings.ToLower(c.String("log-level"))
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func openDatabase(c *cli.Context) (*emcrm.Database, error) {
	var opts []ai.ConfigOption
	if host := c.String("embedding-host"); host != "" {
		opts = append(opts, ai.WithEmbeddingHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if host := c.String("extraction-host"); host != "" {
		opts = append(opts, ai.WithExtractionHost(host))
	}
	if model := c.String("extraction-model"); model != "" {
		opts = append(opts, ai.WithExtractionModel(model))
	}

	config := ai.NewConfig(opts...)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := emcrm.NewDatabase(c.String("db"), emcrm.WithAIConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one CSV file argument")
	}
	file := c.Args().First()

	text, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	imp, err := db.NewImporter()
	if err != nil {
		return err
	}

	ctx := context.Background()
	job, err := imp.CreateJob(ctx, filepath.Base(file), core.ID(c.Uint64("actor")))
	if err != nil {
		return err
	}

	upload, err := imp.UploadText(ctx, job.Id, string(text))
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Parsed %d rows from %s\n", upload.RowCount, file)

	mapping := importer.AutoMapColumns(upload.Headers)
	overrides, err := parseMappingOverrides(c.StringSlice("map"))
	if err != nil {
		return err
	}
	for column, field := range overrides {
		mapping[column] = field
	}
	for column, field := range mapping {
		fmt.Fprintf(os.Stderr, "  %s -> %s\n", column, field)
	}

	if err := imp.SetMapping(ctx, job.Id, mapping); err != nil {
		return fmt.Errorf("mapping rejected: %w", err)
	}

	report, err := imp.Validate(ctx, job.Id)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Dry run: %d rows, %d create, %d update, %d skip\n",
		report.Summary.Total, report.Summary.WillCreate,
		report.Summary.WillUpdate, report.Summary.WillSkip)

	if c.Bool("dry-run") {
		return nil
	}

	result, err := imp.Run(ctx, job.Id)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Imported %d rows: %d created, %d updated, %d skipped, %d errored\n",
		result.Stats.Total, result.Stats.Created, result.Stats.Updated,
		result.Stats.Skipped, result.Stats.Errored)
	for _, outcome := range result.Outcomes {
		if outcome.Status == core.RowError {
			fmt.Printf("  row %d: %s\n", outcome.RowIndex, outcome.Error)
		}
	}
	return nil
}

func embedWorkerCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	config := &embedding.Config{
		BatchSize:  c.Int("batch-size"),
		MaxRetries: c.Int("max-retries"),
		RetryDelay: c.Duration("retry-delay"),
	}
	worker, err := db.NewEmbeddingWorker(config)
	if err != nil {
		return err
	}

	report, err := worker.Run(context.Background())
	if err != nil {
		return fmt.Errorf("embedding sweep failed: %w", err)
	}

	fmt.Printf("Embedded %d of %d pending memories (%d errored)\n",
		report.Succeeded, report.Processed, report.Errored)
	for _, itemErr := range report.Errors {
		fmt.Printf("  memory %d: %v\n", itemErr.MemoryItemId, itemErr.Err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected a search query")
	}
	query := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	results, err := searcher.Search(context.Background(), query, c.Int("limit"))
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		pin := ""
		if hit.IsPinned {
			pin = " [pinned]"
		}
		fmt.Printf("%d: %s — %s (%d)[%0.3f]%s\n",
			i, hit.Content, hit.ContactName, hit.MemoryItemId, hit.Similarity, pin)
	}
	return nil
}

func reviewListCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	queue, err := db.NewReviewQueue()
	if err != nil {
		return err
	}

	items, err := queue.List(context.Background(), storage.MemoryFilter{
		Status:    core.MemoryProposed,
		ContactId: core.ID(c.Uint64("contact")),
		Limit:     c.Int("limit"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d memories awaiting review\n", len(items))
	for _, item := range items {
		fmt.Printf("%d: contact %d [%s %.2f] %s\n",
			item.Id, item.ContactId, item.MemoryType, item.Confidence, item.Content)
	}
	return nil
}

func reviewApproveCommand(c *cli.Context) error {
	ids, err := parseIDs(c.Args().Slice())
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	queue, err := db.NewReviewQueue()
	if err != nil {
		return err
	}

	action := review.ActionApprove
	if c.Bool("pin") {
		action = review.ActionApprovePin
	}
	result, err := queue.ApplyBulk(context.Background(), action, ids, core.ID(c.Uint64("actor")), "")
	if err != nil {
		return err
	}

	fmt.Printf("Approved %d, skipped %d\n", result.UpdatedCount, result.SkippedCount)
	return nil
}

func reviewRejectCommand(c *cli.Context) error {
	ids, err := parseIDs(c.Args().Slice())
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	queue, err := db.NewReviewQueue()
	if err != nil {
		return err
	}

	result, err := queue.ApplyBulk(context.Background(), review.ActionReject, ids,
		core.ID(c.Uint64("actor")), c.String("reason"))
	if err != nil {
		return err
	}

	fmt.Printf("Rejected %d, skipped %d\n", result.UpdatedCount, result.SkippedCount)
	return nil
}

func logCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	interaction, err := pipeline.LogInteraction(context.Background(), &core.Interaction{
		ContactId: core.ID(c.Uint64("contact")),
		Type:      core.ParseInteractionType(c.String("type")),
		Summary:   c.String("summary"),
		Outcome:   c.String("outcome"),
		CreatedBy: core.ID(c.Uint64("actor")),
	})
	if err != nil {
		return err
	}

	// Let extraction finish before the process exits.
	pipeline.Wait()

	fmt.Printf("Logged %s interaction %d for contact %d\n",
		interaction.Type, interaction.Id, interaction.ContactId)
	return nil
}

// parseMappingOverrides turns repeated column=field flags into a mapping.
func parseMappingOverrides(pairs []string) (map[string]string, error) {
	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		column, field, ok := strings.Cut(pair, "=")
		if !ok || column == "" || field == "" {
			return nil, fmt.Errorf("invalid mapping override %q: expected column=field", pair)
		}
		overrides[column] = field
	}
	return overrides, nil
}

func parseIDs(args []string) ([]core.ID, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected at least one ID argument")
	}
	ids := make([]core.ID, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ID %q", arg)
		}
		ids = append(ids, core.ID(id))
	}
	return ids, nil
}
