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
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/blobstore"
	"github.com/poiesic/blobstore/core"
	"github.com/poiesic/blobstore/storage"
	"github.com/poiesic/blobstore/transfer"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "blobctl",
		Usage: "Inspect and edit a key-addressed blob store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend (memory, filesystem, badger, sql)",
			},
			&cli.StringFlag{
				Name:  "dialect",
				Usage: "SQL dialect for the sql backend (sqlite, postgres, mysql)",
			},
			&cli.BoolFlag{
				Name:  "compress",
				Usage: "Store blobs zstd-compressed",
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Filesystem root, BadgerDB directory or SQL DSN",
			},
			&cli.StringFlag{
				Name:  "codec",
				Usage: "Serialization format (json, yaml)",
			},
			&cli.StringFlag{
				Name:  "layout",
				Usage: "Filesystem layout (nested, flat, sharded)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ls",
				Usage:  "List every stored key",
				Action: lsCommand,
			},
			{
				Name:      "get",
				Usage:     "Print the blob stored under a key",
				ArgsUsage: "KEY",
				Action:    getCommand,
			},
			{
				Name:      "put",
				Usage:     "Store a blob read from a file or stdin under a key",
				ArgsUsage: "KEY",
				Action:    putCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read the blob from this file instead of stdin",
					},
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "Store the blob without checking that the codec can decode it",
					},
				},
			},
			{
				Name:      "rm",
				Usage:     "Remove the blob stored under a key",
				ArgsUsage: "KEY",
				Action:    rmCommand,
			},
			{
				Name:   "copy",
				Usage:  "Copy every blob into another backend",
				Action: copyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "to-backend",
						Usage:    "Destination backend (filesystem, badger, sql)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to-path",
						Usage:    "Destination filesystem root, BadgerDB directory or SQL DSN",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "to-layout",
						Usage: "Destination filesystem layout (nested, flat, sharded)",
						Value: blobstore.LayoutNested,
					},
					&cli.StringFlag{
						Name:  "to-dialect",
						Usage: "Destination SQL dialect (sqlite, postgres, mysql)",
						Value: "sqlite",
					},
					&cli.BoolFlag{
						Name:  "to-compress",
						Usage: "Store destination blobs zstd-compressed",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent copy workers",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  "no-overwrite",
						Usage: "Skip keys that already exist in the destination",
					},
					&cli.IntFlag{
						Name:  "retries",
						Usage: "Attempts per key when the medium fails",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Delay before the first retry, doubled on each retry",
						Value: 100 * time.Millisecond,
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Print progress to stderr",
					},
				},
			},
			{
				Name:  "report",
				Usage: "Manage issue reports",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "Print every issue report",
						Action: reportListCommand,
					},
					{
						Name:   "add",
						Usage:  "File a new issue report",
						Action: reportAddCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Usage: "Report title", Required: true},
							&cli.StringFlag{Name: "description", Usage: "Report description", Required: true},
						},
					},
					{
						Name:   "update",
						Usage:  "Change the title and description of a report",
						Action: reportUpdateCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "id", Usage: "Report id", Required: true},
							&cli.StringFlag{Name: "title", Usage: "Report title", Required: true},
							&cli.StringFlag{Name: "description", Usage: "Report description", Required: true},
						},
					},
					{
						Name:   "delete",
						Usage:  "Delete a report",
						Action: reportDeleteCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "id", Usage: "Report id", Required: true},
						},
					},
				},
			},
		},
	}
}

// loadConfig builds the configuration from the optional config file and
// the global flags, flags taking precedence.
func loadConfig(c *cli.Context) (*blobstore.Config, error) {
	cfg := blobstore.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := blobstore.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("backend") {
		cfg.Backend = blobstore.BackendType(c.String("backend"))
	}
	if c.IsSet("path") {
		cfg.Path = c.String("path")
	}
	if c.IsSet("codec") {
		cfg.Codec = c.String("codec")
		cfg.Suffix = ""
	}
	if c.IsSet("layout") {
		cfg.Layout = c.String("layout")
	}
	if c.IsSet("dialect") {
		cfg.Dialect = c.String("dialect")
	}
	if c.IsSet("compress") {
		cfg.Compress = c.Bool("compress")
	}
	return cfg, nil
}

func openDB(c *cli.Context) (*blobstore.DB, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return blobstore.Open(cfg)
}

func keyArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one KEY argument, got %d", c.NArg())
	}
	key := c.Args().First()
	if err := core.ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

func lsCommand(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	lister, ok := db.Backend().(storage.Lister)
	if !ok {
		return fmt.Errorf("%w: backend cannot list keys", storage.ErrUnsupported)
	}
	keys, err := lister.Keys(c.Context)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Fprintln(c.App.Writer, key)
	}
	return nil
}

func getCommand(c *cli.Context) error {
	key, err := keyArg(c)
	if err != nil {
		return err
	}
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	blob, err := db.Backend().Read(c.Context, key)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(blob)
	return err
}

func putCommand(c *cli.Context) error {
	key, err := keyArg(c)
	if err != nil {
		return err
	}

	var blob []byte
	if path := c.String("file"); path != "" {
		blob, err = os.ReadFile(path)
	} else {
		blob, err = io.ReadAll(c.App.Reader)
	}
	if err != nil {
		return fmt.Errorf("read blob: %w", err)
	}

	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if !c.Bool("raw") {
		var v any
		if err := db.Store().Codec().Decode(blob, &v); err != nil {
			return err
		}
	}

	if err := db.Backend().Write(c.Context, key, blob); err != nil {
		return err
	}
	slog.Info("stored blob", "key", key, "bytes", len(blob))
	return nil
}

func rmCommand(c *cli.Context) error {
	key, err := keyArg(c)
	if err != nil {
		return err
	}
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Store().Remove(c.Context, key)
}

func copyCommand(c *cli.Context) error {
	src, err := openDB(c)
	if err != nil {
		return err
	}
	defer src.Close()

	source, ok := src.Backend().(transfer.Source)
	if !ok {
		return fmt.Errorf("%w: source backend cannot list keys", storage.ErrUnsupported)
	}

	srcCfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	dstCfg := blobstore.NewConfig(
		blobstore.WithBackend(blobstore.BackendType(c.String("to-backend"))),
		blobstore.WithPath(c.String("to-path")),
		blobstore.WithLayout(c.String("to-layout")),
		blobstore.WithDialect(c.String("to-dialect")),
		blobstore.WithCompress(c.Bool("to-compress")),
		blobstore.WithCodec(srcCfg.Codec),
	)
	dst, err := blobstore.Open(dstCfg)
	if err != nil {
		return err
	}
	defer dst.Close()

	opts := []transfer.Option{
		transfer.WithPoolSize(c.Int("workers")),
		transfer.WithOverwrite(!c.Bool("no-overwrite")),
		transfer.WithRetries(c.Int("retries"), c.Duration("retry-delay")),
	}
	if c.Bool("progress") {
		opts = append(opts, transfer.WithProgress(c.App.ErrWriter, 10))
	}

	result, err := transfer.Copy(c.Context, source, dst.Backend(), opts...)
	if result != nil {
		fmt.Fprintf(c.App.Writer, "copied %d, skipped %d, failed %d\n",
			len(result.Copied), len(result.Skipped), len(result.Failed))
	}
	return err
}

func reportListCommand(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reports, err := db.Reports().List(c.Context)
	if err != nil {
		return err
	}
	for _, r := range reports {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\n", r.ID, r.Title, r.Description)
	}
	return nil
}

func reportAddCommand(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := db.Reports().Add(c.Context, c.String("title"), c.String("description"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d\n", report.ID)
	return nil
}

func reportUpdateCommand(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Reports().Update(c.Context, c.Int("id"), c.String("title"), c.String("description"))
	return err
}

func reportDeleteCommand(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := db.Reports().Delete(c.Context, c.Int("id"))
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: report %d", core.ErrNotFound, c.Int("id"))
	}
	return nil
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

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
