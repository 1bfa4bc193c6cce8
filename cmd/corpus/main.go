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
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/corpus"
	"github.com/poiesic/corpus/ai"
)

func main() {
	app := &cli.App{
		Name:  "corpus",
		Usage: "Hybrid search index for documentation libraries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the index data directory",
				Value:   "./corpus-data",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Index a document or zip archive into a library",
				ArgsUsage: "FILE",
				Action:    ingestCommand,
				Flags: append(embeddingFlags(),
					&cli.StringFlag{
						Name:     "library",
						Usage:    "Library name the document belongs to",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "version",
						Usage: "Library version",
						Value: "latest",
					},
				),
			},
			{
				Name:   "libraries",
				Usage:  "List indexed libraries with document and chunk counts",
				Action: librariesCommand,
			},
			{
				Name:   "delete",
				Usage:  "Delete a library from the index",
				Action: deleteCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "library",
						Usage:    "Library name to delete",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "version",
						Usage: "Version to delete (default: all versions)",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Print an indexed document reassembled from its chunks",
				ArgsUsage: "FILE_PATH",
				Action:    showCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "library",
						Usage:    "Library name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "version",
						Usage:    "Library version",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Embedding backend mode (local, remote)",
			Value: "local",
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
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for remote mode",
			EnvVars: []string{"CORPUS_API_KEY"},
		},
	}
}

func openIndex(c *cli.Context, withEmbedding bool) (*corpus.Index, error) {
	opts := []corpus.IndexOption{}
	if withEmbedding {
		aiConfig := ai.NewConfig(
			ai.WithMode(ai.Mode(c.String("mode"))),
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithAPIKey(c.String("api-key")),
		)
		if err := aiConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid embedding configuration: %w", err)
		}
		opts = append(opts, corpus.WithAIConfig(aiConfig))
	}
	return corpus.Open(c.String("data"), opts...)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file argument is required")
	}
	path := c.Args().First()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	ix, err := openIndex(c, true)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	library := c.String("library")
	version := c.String("version")
	filename := filepath.Base(path)

	if ix.IsArchive(filename, content) {
		result, err := ix.IngestArchive(ctx, content, filename, library, version)
		if err != nil {
			return fmt.Errorf("archive ingestion failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Indexed %d files (%d chunks) into %s@%s in %.1fs\n",
			result.FilesProcessed, result.ChunksIndexed, library, version, result.DurationSeconds)
		for _, failure := range result.Failures {
			fmt.Fprintf(os.Stderr, "  FAILED %s (%s): %s\n", failure.FileName, failure.Step, failure.Err)
		}
		if result.FilesFailed > 0 {
			return fmt.Errorf("%d of %d files failed", result.FilesFailed, result.FilesFailed+result.FilesProcessed)
		}
		return nil
	}

	result, err := ix.Ingest(ctx, content, filename, library, version)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	if result.WasDuplicate {
		fmt.Fprintf(os.Stderr, "Duplicate content, linked to %s\n", result.LinkedTo)
		return nil
	}
	fmt.Fprintf(os.Stderr, "Indexed %d chunks into %s@%s in %.1fs\n",
		result.ChunksIndexed, library, version, result.DurationSeconds)
	for _, warning := range result.TruncationWarnings {
		fmt.Fprintf(os.Stderr, "  WARNING chunk %d truncated (%s): %d -> %d\n",
			warning.ChunkIndex, warning.Kind, warning.OriginalSize, warning.TruncatedSize)
	}
	return nil
}

func librariesCommand(c *cli.Context) error {
	ix, err := openIndex(c, false)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	infos, err := ix.Libraries(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list libraries: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No libraries indexed.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s@%s\t%d documents\t%d chunks\n",
			info.Library, info.Version, info.Documents, info.Chunks)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	ix, err := openIndex(c, false)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	library := c.String("library")
	deleted, err := ix.DeleteLibrary(context.Background(), library, c.String("version"))
	if err != nil {
		return fmt.Errorf("failed to delete library: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Deleted %d chunks from %s\n", deleted, library)
	return nil
}

func showCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file path argument is required")
	}

	ix, err := openIndex(c, false)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	text, err := ix.Document(context.Background(), c.String("library"), c.String("version"), c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func setupLogger(c *cli.Context) error {
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
