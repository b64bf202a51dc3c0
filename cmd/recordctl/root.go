package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"records-backend/internal/bootstrap"
	"records-backend/internal/records"
	"records-backend/internal/shared/config"
	"records-backend/internal/shared/storage/db"
	"records-backend/internal/shared/telemetry"
)

type cli struct {
	out io.Writer

	backend    string
	sqlitePath string
	boltPath   string
	storeDir   string
	format     string

	cfg config.Config
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "recordctl",
		Short:         "Add, list, import and export person records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.backend, "backend", "", "store backend: memory|postgres|sqlite|bolt|redis (env STORE_BACKEND)")
	flags.StringVar(&c.sqlitePath, "sqlite-path", "", "SQLite database file (env SQLITE_PATH)")
	flags.StringVar(&c.boltPath, "bolt-path", "", "bbolt database file (env BOLT_PATH)")
	flags.StringVar(&c.storeDir, "store-dir", "", "local object store directory for exports (env LOCAL_STORE_DIR)")
	flags.StringVar(&c.format, "out", "text", "output format: text|json")

	root.AddCommand(
		c.addCmd(),
		c.listCmd(),
		c.importCmd(),
		c.exportCmd(),
		c.migrateCmd(),
	)
	return root
}

func (c *cli) loadConfig() error {
	cfg := config.Load()
	if c.backend != "" {
		backend := config.NormalizeBackend(c.backend)
		if backend == "" {
			return fmt.Errorf("unknown backend %q", c.backend)
		}
		cfg.StoreBackend = backend
	}
	if c.sqlitePath != "" {
		cfg.SQLitePath = c.sqlitePath
	}
	if c.boltPath != "" {
		cfg.BoltPath = c.boltPath
	}
	if c.storeDir != "" {
		cfg.ObjectStoreType = "local"
		cfg.LocalStoreDir = c.storeDir
	}
	switch c.format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.format)
	}

	// Keep stdout for command output.
	level := cfg.LogLevel
	if level == "" || level == "info" {
		level = "warn"
	}
	telemetry.Init(telemetry.Config{Level: level, Format: cfg.LogFormat})
	telemetry.SetOutput(os.Stderr)

	c.cfg = cfg
	return nil
}

func (c *cli) open(ctx context.Context) (*bootstrap.App, error) {
	dbOpts := db.PoolOptions(db.ProfileCLI)
	return bootstrap.BuildWith(ctx, c.cfg, bootstrap.Options{
		DBOptions:  &dbOpts,
		SkipRouter: true,
		NoFallback: true,
	})
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// rejectionError reports a record the store refused, with its API error code.
type rejectionError struct {
	code string
	err  error
}

func (e *rejectionError) Error() string {
	return fmt.Sprintf("rejected (%s): %v", e.code, e.err)
}

func (e *rejectionError) Unwrap() error { return e.err }

func reject(err error) error {
	return &rejectionError{code: records.ErrorCode(err), err: err}
}

func isJSON(format string) bool {
	return strings.EqualFold(format, "json")
}
