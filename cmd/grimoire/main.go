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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/grimoire"
	"github.com/poiesic/grimoire/ai"
	"github.com/poiesic/grimoire/ai/openai"
	"github.com/poiesic/grimoire/core"
	"github.com/poiesic/grimoire/ingestion"
	"github.com/poiesic/grimoire/reembed"
	"github.com/poiesic/grimoire/storage"
	"github.com/poiesic/grimoire/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "grimoire",
		Usage: "Hybrid search over TTRPG rulebook content",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Index rulebook chunks from a JSON-lines file",
				ArgsUsage: "<chunks.jsonl>",
				Action:    ingestCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Source name, e.g. \"Player's Handbook\"",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "system",
						Usage:    "Game system, e.g. \"D&D 5e\"",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Source kind (rulebook, flavor)",
						Value: "rulebook",
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Retire any previously indexed version of the source first",
						Value: true,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the indexed corpus",
				ArgsUsage: "<query terms...>",
				Action:    searchCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:  "system",
						Usage: "Restrict to one game system",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Restrict to one source",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Restrict to one content type (rule, spell, monster, item, table, text)",
					},
					&cli.IntFlag{
						Name:    "max",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
					&cli.BoolFlag{
						Name:  "quick",
						Usage: "Skip explanations and suggestions",
					},
				),
			},
			{
				Name:      "complete",
				Usage:     "Complete a partially typed query",
				ArgsUsage: "<partial query>",
				Action:    completeCommand,
				Flags: append(engineFlags(),
					&cli.IntFlag{
						Name:    "max",
						Aliases: []string{"n"},
						Usage:   "Maximum number of completions",
						Value:   8,
					},
				),
			},
			{
				Name:      "classify",
				Usage:     "Classify a text fragment (reads stdin when no argument given)",
				ArgsUsage: "[text]",
				Action:    classifyCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:     "system",
						Usage:    "Game system the fragment belongs to",
						Required: true,
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Report vocabulary, corpus and classifier statistics",
				Action: statsCommand,
				Flags:  engineFlags(),
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate all chunk embeddings with a new model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "system",
						Usage: "Restrict to one game system",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Restrict to one source",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// engineFlags are the flags every engine-backed command shares.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
}

// openEngine builds an engine from the shared flags.
func openEngine(c *cli.Context) (*grimoire.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	engine, err := grimoire.NewEngine(c.String("db"), grimoire.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

// chunkRecord is one JSON-lines entry of the ingest input format.
type chunkRecord struct {
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Page        int               `json:"page"`
	SectionPath []string          `json:"section_path"`
	Metadata    map[string]string `json:"metadata"`
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file, got %d arguments", c.NArg())
	}

	kind, ok := core.ParseSourceKind(c.String("kind"))
	if !ok {
		return fmt.Errorf("unknown source kind %q", c.String("kind"))
	}

	inputs, err := readChunkInputs(c.Args().First(), c.String("system"), kind)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no chunks found in %s", c.Args().First())
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()
	source := c.String("source")

	var chunks []*core.ContentChunk
	if c.Bool("replace") {
		chunks, err = engine.IngestSource(ctx, source, inputs...)
	} else {
		for _, input := range inputs {
			input.Source = source
		}
		chunks, err = engine.IngestChunks(ctx, inputs...)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	flagged := 0
	for _, chunk := range chunks {
		if chunk.Metadata["needs_review"] == "true" {
			flagged++
		}
	}

	fmt.Printf("Indexed %d chunks from %q", len(chunks), source)
	if flagged > 0 {
		fmt.Printf(" (%d flagged for classification review)", flagged)
	}
	fmt.Println()
	return nil
}

// readChunkInputs parses a JSON-lines file of chunk records.
func readChunkInputs(path, system string, kind core.SourceKind) ([]*ingestion.ChunkInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var inputs []*ingestion.ChunkInput
	decoder := json.NewDecoder(f)
	for line := 1; ; line++ {
		var record chunkRecord
		if err := decoder.Decode(&record); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("bad chunk record at entry %d: %w", line, err)
		}

		inputs = append(inputs, &ingestion.ChunkInput{
			System:      system,
			SourceKind:  kind,
			Title:       record.Title,
			Content:     record.Content,
			PageNumber:  record.Page,
			SectionPath: record.SectionPath,
			Metadata:    record.Metadata,
		})
	}
	return inputs, nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no query given")
	}
	rawQuery := strings.Join(c.Args().Slice(), " ")

	var contentType core.ContentType
	if typeName := c.String("type"); typeName != "" {
		parsed, ok := core.ParseContentType(typeName)
		if !ok {
			return fmt.Errorf("unknown content type %q", typeName)
		}
		contentType = parsed
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()

	if c.Bool("quick") {
		results, err := engine.QuickSearch(ctx, rawQuery, c.Int("max"))
		if err != nil {
			return err
		}
		printResults(results)
		return nil
	}

	response, err := engine.Search(ctx, rawQuery, grimoire.SearchOptions{
		System:      c.String("system"),
		Source:      c.String("source"),
		ContentType: contentType,
		MaxResults:  c.Int("max"),
	})
	if err != nil {
		return err
	}

	if response.Corrected != "" {
		fmt.Printf("Searching for %q\n", response.Corrected)
	}
	fmt.Printf("Found %d hits (%s, %d candidates)\n",
		len(response.Results), response.SearchType, response.TotalCandidates)
	printResults(response.Results)

	if len(response.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, suggestion := range response.Suggestions {
			if suggestion.Query != "" {
				fmt.Printf("  %s (%s: %s)\n", suggestion.Query, suggestion.Kind, suggestion.Rationale)
			} else {
				fmt.Printf("  %s\n", suggestion.Rationale)
			}
		}
	}
	return nil
}

func printResults(results []*core.ScoredResult) {
	for i, result := range results {
		chunk := result.Chunk
		fmt.Printf("%d: %s - %s p.%d [%s] (%.3f)\n",
			i+1, chunk.Source, chunk.Title, chunk.PageNumber, chunk.ContentType, result.Score)
		if result.Explanation != nil && len(result.Explanation.Terms) > 0 {
			terms := make([]string, 0, len(result.Explanation.Terms))
			for _, term := range result.Explanation.Terms {
				terms = append(terms, fmt.Sprintf("%s=%.2f", term.Term, term.Weight))
			}
			fmt.Printf("   matched: %s\n", strings.Join(terms, " "))
		}
		if result.Explanation != nil && result.Explanation.Note != "" {
			fmt.Printf("   note: %s\n", result.Explanation.Note)
		}
	}
}

func completeCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no partial query given")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	partial := strings.Join(c.Args().Slice(), " ")
	for _, completion := range engine.SuggestCompletions(partial, c.Int("max")) {
		fmt.Println(completion)
	}
	return nil
}

func classifyCommand(c *cli.Context) error {
	var text string
	if c.NArg() > 0 {
		text = strings.Join(c.Args().Slice(), " ")
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text to classify")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	contentType, confidence := engine.ClassifyChunk(context.Background(), text, c.String("system"))
	fmt.Printf("%s (confidence %.2f)\n", contentType, confidence)
	return nil
}

func statsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats, err := engine.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Indexed chunks:   %d\n", stats.IndexedChunks)
	fmt.Printf("Vocabulary terms: %d\n", stats.VocabularyTerms)
	if len(stats.ChunksBySystem) > 0 {
		fmt.Println("Chunks by system:")
		for system, count := range stats.ChunksBySystem {
			fmt.Printf("  %s: %d\n", system, count)
		}
	}
	if len(stats.CachedPatterns) > 0 {
		fmt.Println("Cached patterns by system:")
		for system, count := range stats.CachedPatterns {
			fmt.Printf("  %s: %d\n", system, count)
		}
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Filter: storage.ChunkFilter{
			System: c.String("system"),
			Source: c.String("source"),
		},
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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
