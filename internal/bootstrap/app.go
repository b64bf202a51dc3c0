package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"records-backend/internal/records"
	"records-backend/internal/services/health"
	"records-backend/internal/shared/config"
	"records-backend/internal/shared/server"
	"records-backend/internal/shared/storage/bolt"
	"records-backend/internal/shared/storage/db"
	"records-backend/internal/shared/storage/object"
	localstore "records-backend/internal/shared/storage/object/local"
	s3store "records-backend/internal/shared/storage/object/s3"
	"records-backend/internal/shared/storage/sqlite"
	"records-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Backend  string
	Router   *gin.Engine
	Repo     records.Repo
	Store    object.ObjectStore
	Service  *records.Service
	Exporter *records.Exporter
	Handler  *records.Handler
	Health   *health.Service

	closers    []io.Closer
	noFallback bool
}

// Options tweaks Build for callers other than the API server.
type Options struct {
	// DBOptions overrides the postgres pool settings.
	DBOptions *db.Options
	// SkipRouter leaves App.Router nil.
	SkipRouter bool
	// NoFallback fails instead of switching to the memory backend when the
	// configured store cannot be opened.
	NoFallback bool
}

// Build prepares the record store, services, and router described by cfg.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(context.Background(), cfg, Options{})
}

// BuildWith is Build with explicit context and options.
func BuildWith(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = config.BackendMemory
	}

	app := &App{Config: cfg}

	app.noFallback = opts.NoFallback
	repo, pinger, err := app.buildRepo(ctx, cfg, opts)
	if err != nil {
		app.Close()
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	// Instrumentation sits outermost so cache hits are still counted.
	if cfg.NameCacheTTL > 0 {
		repo = records.NewCachedRepo(repo, cfg.NameCacheTTL)
	}
	var wrapped records.Repo = &records.InstrumentedRepo{Next: repo, Backend: app.Backend}

	app.Repo = wrapped
	app.Store = store
	app.Service = records.NewService(wrapped)
	app.Exporter = &records.Exporter{Repo: wrapped, Store: store}
	app.Handler = records.NewHandler(app.Service, app.Exporter)
	app.Health = health.NewService(app.Backend, pinger)

	if !opts.SkipRouter {
		app.Router = server.NewRouter(server.RouterDeps{
			Config:         cfg,
			RecordsHandler: app.Handler,
			Health:         app.Health,
		})
	}

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"backend":      app.Backend,
		"object_store": cfg.ObjectStoreType,
		"name_cache":   cfg.NameCacheTTL.String(),
	})
	return app, nil
}

// Close releases every connection Build opened.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildRepo(ctx context.Context, cfg config.Config, opts Options) (records.Repo, health.Pinger, error) {
	a.Backend = cfg.StoreBackend

	switch cfg.StoreBackend {
	case config.BackendMemory:
		return records.NewMemoryRepo(), nil, nil

	case config.BackendPostgres:
		sqlDB, err := buildDB(ctx, cfg, opts)
		if err != nil {
			return a.fallback(cfg, err)
		}
		a.closers = append(a.closers, sqlDB)
		repo := &records.PGRepo{DB: sqlDB}
		return repo, repo, nil

	case config.BackendSQLite:
		sqlDB, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err == nil {
			err = sqlite.RunMigrations(ctx, sqlDB)
			if err != nil {
				_ = sqlDB.Close()
			}
		}
		if err != nil {
			return a.fallback(cfg, err)
		}
		a.closers = append(a.closers, sqlDB)
		repo := &records.SQLiteRepo{DB: sqlDB}
		return repo, repo, nil

	case config.BackendBolt:
		bdb, err := bolt.Open(cfg.BoltPath, records.BoltBuckets...)
		if err != nil {
			return a.fallback(cfg, err)
		}
		a.closers = append(a.closers, closerFunc(bdb.Close))
		repo := &records.BoltRepo{DB: bdb}
		return repo, repo, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		repo := records.NewRedisRepo(client, cfg.RedisPrefix)
		if err := repo.Ping(ctx); err != nil {
			_ = client.Close()
			return a.fallback(cfg, fmt.Errorf("redis ping: %w", err))
		}
		a.closers = append(a.closers, repo)
		return repo, repo, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// fallback swaps in the memory repo for dev-like envs and fails otherwise.
func (a *App) fallback(cfg config.Config, cause error) (records.Repo, health.Pinger, error) {
	if a.noFallback || !config.IsDevLike(cfg.Env) {
		return nil, nil, fmt.Errorf("%s backend: %w", cfg.StoreBackend, cause)
	}
	telemetry.Warn("bootstrap.backend_fallback", map[string]any{
		"backend": cfg.StoreBackend,
		"error":   cause.Error(),
	})
	a.Backend = config.BackendMemory
	return records.NewMemoryRepo(), nil, nil
}

func buildDB(ctx context.Context, cfg config.Config, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	poolOpts := db.PoolOptions(db.ProfileServer)
	if opts.DBOptions != nil {
		poolOpts = *opts.DBOptions
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, poolOpts)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, s3store.Config{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Endpoint: cfg.S3Endpoint,
			KMSKeyID: cfg.SSEKMSKeyID,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
