package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"records-backend/internal/shared/telemetry"
)

// Store backends accepted in STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	LogFormat       string
	CORSAllowOrigin []string

	StoreBackend string
	DatabaseURL  string
	SQLitePath   string
	BoltPath     string
	RedisAddr    string
	RedisDB      int
	RedisPrefix  string
	NameCacheTTL time.Duration

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	SSEKMSKeyID     string

	AuthJWTSecret  string
	WriteRateLimit float64
	WriteRateBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	backend := normalizeBackend(getEnv("STORE_BACKEND", ""))
	if backend == "" {
		backend = BackendMemory
		if dbURL != "" {
			backend = BackendPostgres
		}
	}
	if env == "production" && backend == BackendMemory {
		telemetry.Warn("config.memory_backend_in_production", map[string]any{"env": env})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		StoreBackend:    backend,
		DatabaseURL:     dbURL,
		SQLitePath:      getEnv("SQLITE_PATH", "./data/records.db"),
		BoltPath:        getEnv("BOLT_PATH", "./data/records.bolt"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPrefix:     getEnv("REDIS_PREFIX", "records"),
		NameCacheTTL:    getEnvDuration("NAME_CACHE_TTL", 0),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		AuthJWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		WriteRateLimit:  getEnvFloat("WRITE_RATE_LIMIT", 0),
		WriteRateBurst:  getEnvInt("WRITE_RATE_BURST", 0),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.env_invalid", map[string]any{"key": key, "kind": "int", "error": err})
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.env_invalid", map[string]any{"key": key, "kind": "float", "error": err})
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("config.env_invalid", map[string]any{"key": key, "kind": "duration", "error": err})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

// NormalizeBackend maps user input to one of the Backend* constants, or ""
// when the value is not recognized.
func NormalizeBackend(raw string) string {
	return normalizeBackend(raw)
}

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "memory", "mem", "inmemory":
		return BackendMemory
	case "postgres", "postgresql", "pg":
		return BackendPostgres
	case "sqlite", "sqlite3":
		return BackendSQLite
	case "bolt", "bbolt":
		return BackendBolt
	case "redis":
		return BackendRedis
	default:
		return ""
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// IsDevLike reports whether env allows falling back to in-memory storage.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
