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
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/productfinder"
	"github.com/poiesic/productfinder/config"
	"github.com/poiesic/productfinder/core"
	"github.com/poiesic/productfinder/ingestion"
	"github.com/poiesic/productfinder/server"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "productfinder",
		Usage: "Voice driven product search and SKU narrowing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides the config file",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{config.EnvPrefix + "CONFIG"},
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Dotenv files loaded before the config (missing files are ignored)",
				Value: cli.NewStringSlice(".env"),
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory; overrides the config file",
			},
			&cli.BoolFlag{
				Name:  "mock-ai",
				Usage: "Use the built-in keyword extractor instead of remote language services",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "host",
						Usage: "Listen host; overrides the config file",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "Listen port; overrides the config file",
					},
				},
			},
			{
				Name:      "import",
				Usage:     "Import a JSON product catalog",
				ArgsUsage: "<catalog.json>",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of products written per transaction; overrides the config file",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Do not report progress",
					},
				},
			},
			{
				Name:      "find",
				Usage:     "Search the catalog for an utterance",
				ArgsUsage: "<utterance>",
				Action:    findCommand,
			},
			{
				Name:   "narrow",
				Usage:  "Narrow the SKUs of a product",
				Action: narrowCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "product",
						Aliases:  []string{"p"},
						Usage:    "Product key",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "select",
						Aliases: []string{"s"},
						Usage:   "Selected attribute as name=value (repeatable)",
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Utterance whose entities filter the SKUs",
					},
				},
			},
		},
	}
}

// setup loads dotenv files and configuration, then installs the logger.
func setup(c *cli.Context) error {
	if err := config.LoadEnvFiles(c.StringSlice("env-file")...); err != nil {
		return err
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if db := c.String("db"); db != "" {
		cfg.Storage.Path = db
		cfg.Storage.InMemory = false
	}
	if c.Bool("mock-ai") {
		cfg.AI.Mock = true
	}

	if err := config.SetupLogger(c.App.ErrWriter, cfg.Logging.Level); err != nil {
		return err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func loadedConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func openEngine(c *cli.Context) (*productfinder.Engine, error) {
	engine, err := productfinder.NewEngine(loadedConfig(c))
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func serveCommand(c *cli.Context) error {
	cfg := loadedConfig(c)
	if host := c.String("host"); host != "" {
		cfg.Server.Host = host
	}
	if port := c.Int("port"); port != 0 {
		cfg.Server.Port = port
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	srv, err := server.New(engine, cfg.Server)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(commandContext(c), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil && !errors.Is(err, server.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func importCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("catalog file is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var opts []ingestion.Option
	if size := c.Int("batch-size"); size > 0 {
		opts = append(opts, ingestion.WithBatchSize(size))
	}
	if !c.Bool("quiet") {
		opts = append(opts, ingestion.WithProgress(c.App.ErrWriter))
	}

	pipeline, err := engine.NewImportPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(c.App.ErrWriter, "Catalog: %s\n", path)
	fmt.Fprintf(c.App.ErrWriter, "Index: %s\n", engine.IndexName())
	fmt.Fprintln(c.App.ErrWriter)

	result, err := pipeline.ImportFile(commandContext(c), engine.IndexName(), path)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Imported %d products (%d rejected) in %s\n",
		result.Imported, len(result.Rejected), result.Elapsed.Round(time.Millisecond))
	for _, r := range result.Rejected {
		fmt.Fprintf(c.App.Writer, "  rejected #%d %q: %v\n", r.Index, r.Key, r.Err)
	}
	return nil
}

func findCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("utterance is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	matches, entities, err := engine.FindText(commandContext(c), text)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for _, e := range entities.Entities {
		if value, ok := e.Canonical(); ok {
			fmt.Fprintf(c.App.ErrWriter, "entity %s=%s\n", e.Type, value)
		}
	}
	if len(matches) == 0 {
		fmt.Fprintln(c.App.Writer, "No matching products")
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%.3f\n", m.Key, m.Name, m.Score)
	}
	return nil
}

func narrowCommand(c *cli.Context) error {
	selected, err := parseSelections(c.StringSlice("select"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	sel := &core.SkuSelection{Product: c.String("product"), Selected: selected}
	if text := c.String("text"); text != "" {
		entities, err := engine.Understand(commandContext(c), text)
		if err != nil {
			return fmt.Errorf("entity extraction failed: %w", err)
		}
		sel.Entities = entities.Entities
	}

	out, err := engine.NarrowProduct(commandContext(c), sel)
	if err != nil {
		return fmt.Errorf("narrowing failed: %w", err)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// parseSelections turns name=value pairs into a selection map.
func parseSelections(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	selected := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid selection %q: expected name=value", pair)
		}
		selected[name] = value
	}
	return selected, nil
}

func commandContext(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}
