// Copyright 2026 Glyphica Labs
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
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	iconsearch "github.com/glyphica/iconsearch"
	"github.com/glyphica/iconsearch/config"
	"github.com/glyphica/iconsearch/core"
)

func main() {
	app := &cli.App{
		Name:  "iconsearch",
		Usage: "Semantic search over icon libraries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   config.DefaultFileName,
			},
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
				Name:   "serve",
				Usage:  "Run the icon search HTTP server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Listen address, overriding the configured one",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Run a one-shot query against the catalog",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.StringSliceFlag{
						Name:  "library",
						Usage: "Restrict results to a library (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Restrict results to icons carrying a tag (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit results as JSON",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate all icon vectors, bypassing the durable cache",
				Action: reembedCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadApp(c *cli.Context, opts ...iconsearch.AppOption) (*iconsearch.App, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if listen := c.String("listen"); listen != "" {
		cfg.Server.ListenAddr = listen
	}
	return iconsearch.NewApp(cfg, opts...)
}

func serveCommand(c *cli.Context) error {
	app, err := loadApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Orchestrator().Initialize(ctx, false, nil); err != nil {
		return fmt.Errorf("initializing search: %w", err)
	}

	srv, err := app.NewServer()
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

func searchCommand(c *cli.Context) error {
	app, err := loadApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	if err := app.Orchestrator().Initialize(ctx, false, nil); err != nil {
		return fmt.Errorf("initializing search: %w", err)
	}

	query := strings.Join(c.Args().Slice(), " ")
	filters := core.FilterOptions{
		Libraries: c.StringSlice("library"),
		Tags:      c.StringSlice("tag"),
	}

	results, mode := app.Orchestrator().SearchIcons(ctx, query, filters, c.Int("limit"))

	if c.Bool("json") {
		return json.NewEncoder(os.Stdout).Encode(struct {
			Mode    string              `json:"mode"`
			Results []core.SearchResult `json:"results"`
		}{Mode: string(mode), Results: results})
	}

	fmt.Fprintf(os.Stderr, "%d result(s), mode %s\n", len(results), mode)
	for _, r := range results {
		if r.Score > 0 {
			fmt.Printf("%-40s %.4f\n", r.Icon.Id, r.Score)
		} else {
			fmt.Println(r.Icon.Id)
		}
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	app, err := loadApp(c, iconsearch.WithProgressWriter(os.Stderr))
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	if err := app.Orchestrator().Initialize(ctx, true, nil); err != nil {
		return fmt.Errorf("regenerating vectors: %w", err)
	}
	if app.Provider().UsingFallback() {
		return fmt.Errorf("embedding model unavailable, vectors were not regenerated")
	}

	fmt.Fprintf(os.Stderr, "regenerated vectors for %d icons\n", len(app.Orchestrator().CatalogSnapshot()))
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
