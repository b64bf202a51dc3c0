package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsToMemoryBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ENV", "")

	cfg := Load()
	if cfg.StoreBackend != BackendMemory {
		t.Fatalf("expected memory backend, got %q", cfg.StoreBackend)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected dev env, got %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
}

func TestLoadPicksPostgresWhenDatabaseURLSet(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/records")

	if got := Load().StoreBackend; got != BackendPostgres {
		t.Fatalf("expected postgres backend, got %q", got)
	}
}

func TestLoadParsesTypedValues(t *testing.T) {
	t.Setenv("STORE_BACKEND", "bbolt")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("NAME_CACHE_TTL", "45s")
	t.Setenv("WRITE_RATE_LIMIT", "2.5")
	t.Setenv("WRITE_RATE_BURST", "not-a-number")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	if cfg.StoreBackend != BackendBolt {
		t.Fatalf("expected bolt backend, got %q", cfg.StoreBackend)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("expected RedisDB=3, got %d", cfg.RedisDB)
	}
	if cfg.NameCacheTTL != 45*time.Second {
		t.Fatalf("expected NameCacheTTL=45s, got %s", cfg.NameCacheTTL)
	}
	if cfg.WriteRateLimit != 2.5 {
		t.Fatalf("expected WriteRateLimit=2.5, got %v", cfg.WriteRateLimit)
	}
	if cfg.WriteRateBurst != 0 {
		t.Fatalf("expected invalid burst to fall back to 0, got %d", cfg.WriteRateBurst)
	}
	if len(cfg.CORSAllowOrigin) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowOrigin)
	}
}

func TestNormalizeBackend(t *testing.T) {
	tests := map[string]string{
		"PG":       BackendPostgres,
		"sqlite3":  BackendSQLite,
		" memory ": BackendMemory,
		"redis":    BackendRedis,
		"mongo":    "",
	}
	for in, want := range tests {
		if got := NormalizeBackend(in); got != want {
			t.Fatalf("NormalizeBackend(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadEnvFilesDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RECORDS_TEST_A=from-file\nRECORDS_TEST_B=\"quoted\"\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("RECORDS_TEST_A", "from-env")
	t.Setenv("RECORDS_TEST_B", "")
	os.Unsetenv("RECORDS_TEST_B")

	loadEnvFiles(filepath.Join(dir, "missing.env"), path)

	if got := os.Getenv("RECORDS_TEST_A"); got != "from-env" {
		t.Fatalf("expected env to win, got %q", got)
	}
	if got := os.Getenv("RECORDS_TEST_B"); got != "quoted" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
