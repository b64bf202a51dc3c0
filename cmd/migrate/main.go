package main

// Run database migrations for the configured SQL backend:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"records-backend/internal/shared/config"
	"records-backend/internal/shared/storage/db"
	"records-backend/internal/shared/storage/sqlite"
	"records-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := context.Background()

	if err := run(ctx, cfg); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"backend": cfg.StoreBackend, "error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"backend": cfg.StoreBackend})
}

func run(ctx context.Context, cfg config.Config) error {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		sqlDB, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return sqlite.RunMigrations(ctx, sqlDB)
	default:
		opts := db.PoolOptions(db.ProfileMigrate)
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return db.RunMigrations(ctx, sqlDB)
	}
}
