package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"records-backend/internal/records"
	"records-backend/internal/shared/config"
	"records-backend/internal/shared/storage/db"
	"records-backend/internal/shared/storage/sqlite"
)

func (c *cli) addCmd() *cobra.Command {
	var (
		name   string
		age    int
		fields bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			rec := records.NewRecord(name, age)
			add := app.Service.Add
			if fields {
				add = app.Service.AddWithComponent
			}
			if err := add(ctx, rec); err != nil {
				return reject(err)
			}
			if isJSON(c.format) {
				return c.printJSON(rec)
			}
			c.printf("admitted %s\n", rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "record name")
	cmd.Flags().IntVar(&age, "age", 0, "record age")
	cmd.Flags().BoolVar(&fields, "fields", false, "pass name and age as separate fields")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var (
		name   string
		sorted bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			var recs []records.Record
			if cmd.Flags().Changed("name") {
				recs, err = app.Service.AllWithName(ctx, name)
			} else {
				recs, err = app.Service.All(ctx)
			}
			if err != nil {
				return err
			}
			if sorted {
				records.SortByNameThenAge(recs)
			}

			if isJSON(c.format) {
				return c.printJSON(recs)
			}
			for _, rec := range recs {
				c.printf("%s\n", rec)
			}
			c.printf("%d record(s)\n", len(recs))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "only records with exactly this name")
	cmd.Flags().BoolVar(&sorted, "sorted", false, "order by name, then age")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Admit every record in a YAML or JSON seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			recs, err := records.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			app, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Service.AddAll(ctx, recs)
			if err != nil {
				return err
			}

			c.printf("admitted %d, rejected %d\n", res.Admitted, len(res.Rejected))
			for _, rej := range res.Rejected {
				c.printf("  #%d %s: %s: %v\n", rej.Index, rej.Record, records.ErrorCode(rej.Err), rej.Err)
			}
			if len(res.Rejected) > 0 {
				return fmt.Errorf("%d of %d record(s) rejected", len(res.Rejected), len(recs))
			}
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of all records to the object store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			snap, err := app.Exporter.Export(ctx, label)
			if err != nil {
				return err
			}
			if isJSON(c.format) {
				return c.printJSON(snap)
			}
			c.printf("exported %d record(s) to %s (%d bytes, sha256 %s)\n", snap.Count, snap.Key, snap.SizeBytes, snap.Checksum)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "snapshot name prefix")
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations for SQL backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch c.cfg.StoreBackend {
			case config.BackendSQLite:
				sqlDB, err := sqlite.Open(ctx, c.cfg.SQLitePath)
				if err != nil {
					return err
				}
				defer sqlDB.Close()
				if err := sqlite.RunMigrations(ctx, sqlDB); err != nil {
					return err
				}
			case config.BackendPostgres:
				sqlDB, err := db.Connect(ctx, c.cfg.DatabaseURL, db.PoolOptions(db.ProfileMigrate))
				if err != nil {
					return err
				}
				defer sqlDB.Close()
				if err := db.RunMigrations(ctx, sqlDB); err != nil {
					return err
				}
			default:
				c.printf("backend %s has no schema to migrate\n", c.cfg.StoreBackend)
				return nil
			}
			c.printf("migrations applied (%s)\n", c.cfg.StoreBackend)
			return nil
		},
	}
}
