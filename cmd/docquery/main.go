// Copyright 2025 Poiesic Systems
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
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docquery"
	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	graphneo4j "github.com/poiesic/docquery/graphstore/neo4j"
	"github.com/poiesic/docquery/ingestion"
	vectorqdrant "github.com/poiesic/docquery/vectorstore/qdrant"
)

// storeFlags are shared by every command that opens the system.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "qdrant-url",
			Usage:   "Qdrant server URL (in-memory vector store if unset)",
			EnvVars: []string{"QDRANT_URL"},
		},
		&cli.StringFlag{
			Name:    "qdrant-api-key",
			Usage:   "Qdrant API key",
			EnvVars: []string{"QDRANT_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "neo4j-url",
			Usage:   "Neo4j bolt URL (in-memory graph store if unset)",
			EnvVars: []string{"NEO4J_URL"},
		},
		&cli.StringFlag{
			Name:    "neo4j-user",
			Usage:   "Neo4j username",
			Value:   "neo4j",
			EnvVars: []string{"NEO4J_USER"},
		},
		&cli.StringFlag{
			Name:    "neo4j-password",
			Usage:   "Neo4j password",
			EnvVars: []string{"NEO4J_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "ai-host",
			Usage:   "OpenAI-compatible service host URL",
			Value:   "https://api.openai.com/v1",
			EnvVars: []string{"AI_HOST"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the AI service",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "text-embedding-3-small",
			EnvVars: []string{"EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "completion-model",
			Usage:   "Completion model name",
			Value:   "gpt-4o",
			EnvVars: []string{"COMPLETION_MODEL"},
		},
		&cli.DurationFlag{
			Name:  "ai-timeout",
			Usage: "Timeout for AI service calls",
			Value: 60 * time.Second,
		},
	}
}

func main() {
	app := &cli.App{
		Name:  "docquery",
		Usage: "Document question answering over dual retrieval stores",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a document's extracted text into both retrieval stores",
				ArgsUsage: "<text-file>",
				Action:    ingestCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Document ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Document title (defaults to the file name)",
					},
					&cli.IntFlag{
						Name:  "pages",
						Usage: "Page count of the source document",
						Value: 1,
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Ask a question about an ingested document",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Document ID",
						Required: true,
					},
				),
			},
			{
				Name:   "delete",
				Usage:  "Delete a document and its retrieval state",
				Action: deleteCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Document ID",
						Required: true,
					},
				),
			},
			{
				Name:   "list",
				Usage:  "List ingested documents",
				Action: listCommand,
				Flags:  storeFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	filePath := c.Args().First()
	if filePath == "" {
		return fmt.Errorf("text file argument is required")
	}

	text, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read text file: %w", err)
	}

	title := c.String("title")
	if title == "" {
		title = filePath
	}

	system, err := buildSystem(c,
		docquery.WithIngestionOptions(ingestion.WithProgress(os.Stderr, 25)))
	if err != nil {
		return err
	}
	defer system.Close()

	doc, err := system.IngestDocument(ctx, &core.DocumentInput{
		ID:        c.String("id"),
		Title:     title,
		Text:      string(text),
		PageCount: c.Int("pages"),
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %s (%d pages, %d chunks)\n", doc.ID, doc.PageCount, doc.ChunkCount)
	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question argument is required")
	}

	system, err := buildSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	answer, err := system.Ask(ctx, c.String("id"), question)
	if err != nil {
		slog.Warn("question answered with degradation", "err", err)
	}

	fmt.Println(answer)
	return nil
}

func deleteCommand(c *cli.Context) error {
	ctx := context.Background()

	system, err := buildSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	id := c.String("id")
	if err := system.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("deletion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Deleted %s\n", id)
	return nil
}

func listCommand(c *cli.Context) error {
	ctx := context.Background()

	system, err := buildSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	docs, err := system.Documents().ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("listing failed: %w", err)
	}

	for _, doc := range docs {
		status := "processed"
		if !doc.Processed {
			status = "unprocessed"
		}
		fmt.Printf("%s\t%s\t%d pages\t%d chunks\t%s\n",
			doc.ID, doc.Title, doc.PageCount, doc.ChunkCount, status)
	}
	return nil
}

// buildSystem assembles the store handles and the system from CLI flags.
func buildSystem(c *cli.Context, extra ...docquery.SystemOption) (*docquery.System, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithCompletionModel(c.String("completion-model")),
		ai.WithTimeout(c.Duration("ai-timeout")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []docquery.SystemOption{docquery.WithAIConfig(aiConfig)}

	if url := c.String("qdrant-url"); url != "" {
		store := vectorqdrant.NewStore(vectorqdrant.Config{
			URL:    url,
			APIKey: c.String("qdrant-api-key"),
		})
		opts = append(opts, docquery.WithVectorStore(store))
	}

	if url := c.String("neo4j-url"); url != "" {
		store, err := graphneo4j.NewStore(graphneo4j.Config{
			URI:      url,
			Username: c.String("neo4j-user"),
			Password: c.String("neo4j-password"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
		}
		opts = append(opts, docquery.WithGraphStore(store))
	}
	opts = append(opts, extra...)

	return docquery.NewSystem(c.String("db"), opts...)
}

func setup(c *cli.Context) error {
	if envFile := c.String("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		// A local .env is optional.
		_ = godotenv.Load()
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
