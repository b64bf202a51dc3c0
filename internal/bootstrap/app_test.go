package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"records-backend/internal/records"
	"records-backend/internal/shared/config"
	"records-backend/internal/shared/metrics"
)

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Env:             "dev",
		StoreBackend:    backend,
		SQLitePath:      filepath.Join(dir, "records.db"),
		BoltPath:        filepath.Join(dir, "records.bolt"),
		ObjectStoreType: "local",
		LocalStoreDir:   filepath.Join(dir, "objects"),
	}
}

func TestBuildBackends(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendSQLite, config.BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			app, err := Build(testConfig(t, backend))
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			defer app.Close()

			if app.Backend != backend {
				t.Fatalf("expected backend %s, got %s", backend, app.Backend)
			}
			ctx := context.Background()
			if err := app.Service.Add(ctx, records.NewRecord("alice", 30)); err != nil {
				t.Fatalf("add: %v", err)
			}
			if err := app.Service.AddWithComponent(ctx, records.NewRecord("alice", 30)); err == nil {
				t.Fatalf("expected duplicate rejection")
			}
			all, err := app.Service.All(ctx)
			if err != nil {
				t.Fatalf("all: %v", err)
			}
			if len(all) != 1 {
				t.Fatalf("expected 1 record, got %d", len(all))
			}
			if st := app.Health.Status(ctx); !st.OK || st.Backend != backend {
				t.Fatalf("unexpected health: %+v", st)
			}
		})
	}
}

func TestBuildServesHealth(t *testing.T) {
	app, err := Build(testConfig(t, config.BackendMemory))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"backend":"memory"`) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestBuildWrapsNameCache(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.NameCacheTTL = time.Minute
	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	inst, ok := app.Repo.(*records.InstrumentedRepo)
	if !ok {
		t.Fatalf("expected instrumented repo outermost, got %T", app.Repo)
	}
	if _, ok := inst.Next.(*records.CachedRepo); !ok {
		t.Fatalf("expected cached repo behind instrumentation, got %T", inst.Next)
	}

	ctx := context.Background()
	before := byNameQueries(t)
	for i := 0; i < 3; i++ {
		if _, err := app.Service.AllWithName(ctx, "alice"); err != nil {
			t.Fatalf("all with name: %v", err)
		}
	}
	if got := byNameQueries(t) - before; got != 3 {
		t.Fatalf("expected every lookup counted including cache hits, got %v", got)
	}
}

func byNameQueries(t *testing.T) float64 {
	t.Helper()
	families, err := metrics.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "record_queries_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "kind" && lp.GetValue() == "by_name" {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestBuildPostgresWithoutURL(t *testing.T) {
	cfg := testConfig(t, config.BackendPostgres)

	cfg.Env = "production"
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error in production without DATABASE_URL")
	}

	cfg.Env = "dev"
	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("expected dev fallback, got %v", err)
	}
	defer app.Close()
	if app.Backend != config.BackendMemory {
		t.Fatalf("expected memory fallback, got %s", app.Backend)
	}
}

func TestBuildRedisUnreachableFallsBack(t *testing.T) {
	cfg := testConfig(t, config.BackendRedis)
	cfg.RedisAddr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app, err := BuildWith(ctx, cfg, Options{SkipRouter: true})
	if err != nil {
		t.Fatalf("expected dev fallback, got %v", err)
	}
	defer app.Close()
	if app.Backend != config.BackendMemory {
		t.Fatalf("expected memory fallback, got %s", app.Backend)
	}
	if app.Router != nil {
		t.Fatalf("expected no router")
	}
}

func TestBuildRejectsUnknownBackend(t *testing.T) {
	if _, err := Build(testConfig(t, "cassandra")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildS3RequiresBucket(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.ObjectStoreType = "s3"
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildNoFallback(t *testing.T) {
	cfg := testConfig(t, config.BackendPostgres)
	if _, err := BuildWith(context.Background(), cfg, Options{SkipRouter: true, NoFallback: true}); err == nil {
		t.Fatalf("expected error with fallback disabled")
	}
}

func TestBuildBoltHealthReportsClosedDatabase(t *testing.T) {
	app, err := Build(testConfig(t, config.BackendBolt))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ctx := context.Background()
	if st := app.Health.Status(ctx); !st.OK {
		t.Fatalf("expected healthy bolt backend, got %+v", st)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if st := app.Health.Status(ctx); st.OK {
		t.Fatalf("expected unhealthy status after the database closed, got %+v", st)
	}
}
