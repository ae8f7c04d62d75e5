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
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/indexit"
	"github.com/poiesic/indexit/cluster/elastic"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/ingestion"
	"github.com/poiesic/indexit/journal"
	"github.com/poiesic/indexit/rollover"
	"github.com/poiesic/indexit/source"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "indexit",
		Usage: "Generational bulk loader for a search cluster",
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
				Name:   "load",
				Usage:  "Load a delimited file into a new index generation",
				Action: loadCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "csv",
						Aliases:  []string{"f"},
						Usage:    "Path to the delimited input file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "Cluster URL",
						Value: "http://localhost:9200",
					},
					&cli.StringFlag{
						Name:     "alias",
						Aliases:  []string{"a"},
						Usage:    "Stable alias the generation belongs to",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "version",
						Usage:    "Pipeline version embedded in the generation name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id-column",
						Usage:    "Column holding the document identifier",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "release",
						Usage: "Promote the generation to the alias after loading",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Write actions per bulk request (overrides environment)",
					},
					&cli.IntFlag{
						Name:  "max-in-flight",
						Usage: "Concurrent bulk requests (overrides environment)",
					},
					&cli.IntFlag{
						Name:  "max-records",
						Usage: "Cap on records consumed from the source (overrides environment)",
					},
					&cli.StringFlag{
						Name:  "journal",
						Usage: "Directory for the dead-letter journal (disabled if empty)",
					},
					&cli.StringFlag{
						Name:  "mappings",
						Usage: "Path to a JSON file with document mappings for the generation",
					},
				},
			},
			{
				Name:   "promote",
				Usage:  "Promote a staged generation to the alias",
				Action: promoteCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Cluster URL",
						Value: "http://localhost:9200",
					},
					&cli.StringFlag{
						Name:     "alias",
						Aliases:  []string{"a"},
						Usage:    "Stable alias the generation belongs to",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "version",
						Usage:    "Pipeline version (used for configuration validation)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "generation",
						Aliases:  []string{"g"},
						Usage:    "Generation index name to promote",
						Required: true,
					},
				},
			},
			{
				Name:   "generations",
				Usage:  "List the generations of an alias, oldest first",
				Action: generationsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Cluster URL",
						Value: "http://localhost:9200",
					},
					&cli.StringFlag{
						Name:     "alias",
						Aliases:  []string{"a"},
						Usage:    "Stable alias to inspect",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "version",
						Usage: "Pipeline version (used for configuration validation)",
						Value: "0",
					},
				},
			},
			{
				Name:   "failures",
				Usage:  "Dump the dead-letter journal as JSON lines",
				Action: failuresCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "journal",
						Usage:    "Directory of the dead-letter journal",
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

func loadCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := ingestion.FromEnv()
	if err != nil {
		return fmt.Errorf("invalid environment configuration: %w", err)
	}
	if c.IsSet("chunk-size") {
		cfg.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("max-in-flight") {
		cfg.MaxInFlight = c.Int("max-in-flight")
	}
	if c.IsSet("max-records") {
		cfg.MaxRecords = c.Int("max-records")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rolloverCfg, err := rollover.ConfigFromEnv(c.String("alias"), c.String("version"))
	if err != nil {
		return fmt.Errorf("invalid rollover configuration: %w", err)
	}
	if path := c.String("mappings"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading mappings: %w", err)
		}
		if err := json.Unmarshal(raw, &rolloverCfg.Mappings); err != nil {
			return fmt.Errorf("parsing mappings %s: %w", path, err)
		}
	}

	client, err := elastic.Connect(c.String("url"))
	if err != nil {
		return err
	}

	src, err := source.OpenCSV(c.String("csv"))
	if err != nil {
		return err
	}
	defer src.Close()

	mode := core.RunModeStaging
	if c.Bool("release") {
		mode = core.RunModeRelease
	}

	opts := []indexit.LoaderOption{
		indexit.WithIngestionConfig(cfg),
	}
	if dir := c.String("journal"); dir != "" {
		j, err := journal.Open(dir, false)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer j.Close()
		opts = append(opts, indexit.WithJournal(j))
	}

	loader, err := indexit.NewLoader(client, src, rolloverCfg, c.String("id-column"), mode, opts...)
	if err != nil {
		return err
	}
	defer loader.Release()

	stats, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Generation: %s\n", stats.Generation)
	fmt.Fprintf(os.Stderr, "Consumed %d records, indexed %d, dropped %d\n",
		stats.Consumed, stats.Indexed, stats.Dropped)
	if mode == core.RunModeStaging {
		fmt.Fprintf(os.Stderr, "Staged only. Promote with: indexit promote -a %s --version %s -g %s\n",
			c.String("alias"), c.String("version"), stats.Generation)
	}
	return nil
}

func promoteCommand(c *cli.Context) error {
	ctx := context.Background()

	rolloverCfg, err := rollover.ConfigFromEnv(c.String("alias"), c.String("version"))
	if err != nil {
		return fmt.Errorf("invalid rollover configuration: %w", err)
	}

	client, err := elastic.Connect(c.String("url"))
	if err != nil {
		return err
	}

	manager, err := rollover.NewManager(client, rolloverCfg)
	if err != nil {
		return err
	}

	generation := c.String("generation")
	if err := manager.Finalize(ctx, generation); err != nil {
		return fmt.Errorf("promoting %s: %w", generation, err)
	}

	fmt.Fprintf(os.Stderr, "Alias %s now resolves to %s\n", c.String("alias"), generation)
	return nil
}

func generationsCommand(c *cli.Context) error {
	ctx := context.Background()

	rolloverCfg, err := rollover.ConfigFromEnv(c.String("alias"), c.String("version"))
	if err != nil {
		return fmt.Errorf("invalid rollover configuration: %w", err)
	}

	client, err := elastic.Connect(c.String("url"))
	if err != nil {
		return err
	}

	manager, err := rollover.NewManager(client, rolloverCfg)
	if err != nil {
		return err
	}

	names, err := manager.Generations(ctx)
	if err != nil {
		return err
	}

	bound, err := client.AliasedIndices(ctx, c.String("alias"))
	if err != nil {
		return err
	}
	live := make(map[string]bool, len(bound))
	for _, name := range bound {
		live[name] = true
	}

	for _, name := range names {
		marker := " "
		if live[name] {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	return nil
}

func failuresCommand(c *cli.Context) error {
	ctx := context.Background()

	j, err := journal.Open(c.String("journal"), false)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer j.Close()

	enc := json.NewEncoder(os.Stdout)
	return j.ForEach(ctx, func(entry *journal.Entry) error {
		return enc.Encode(entry)
	})
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
