package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. Loaded once at process start
// from environment variables (see spec.md §6 for the canonical list).
type Config struct {
	// Env is the environment name (development, staging, production).
	Env string

	// Home is kadai's scratch directory: the daily_ops TODO collector scans
	// it and the log-tail collector reads Home/logs/kadai.log. Nothing here
	// is required for correctness.
	Home string

	// ConcurrencyLimit bounds simultaneous skill executions (spec.md §5).
	ConcurrencyLimit int

	// UseRouter selects the deterministic-then-LLM intent classifier
	// (spec.md §6, USE_ROUTER).
	UseRouter bool
	RouterURL string

	LLMNodes    string
	LLMModel    string
	VisionModel string

	LLM       LLMConfig
	OTel      OTelConfig
	ArangoDB  ArangoDBConfig
	Typesense TypesenseConfig
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
}

// ArangoDBConfig configures the optional persistent internal/graph.Graph
// backend (internal/graph/arangostore). Enabled() reports whether a URL was
// configured; when it isn't, bootstrap falls back to internal/graph's
// in-memory default.
type ArangoDBConfig struct {
	URL      string
	Username string
	Password string
	Database string
}

func (c ArangoDBConfig) Enabled() bool {
	return c.URL != ""
}

// TypesenseConfig configures the optional full-text-search internal/memory.Store
// backend (internal/memory/typesensestore). Enabled() reports whether a
// server URL was configured; when it isn't, bootstrap falls back to
// internal/memory's in-memory default.
type TypesenseConfig struct {
	ServerURL string
	APIKey    string
}

func (c TypesenseConfig) Enabled() bool {
	return c.ServerURL != ""
}

// OTelConfig configures the optional OTLP exporters. Enabled() reports
// whether an endpoint was configured; when it isn't, common/otel.Setup
// returns a no-op telemetry handle and common/logger falls back to plain
// stdout/file logging.
type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Load loads configuration from environment variables, applying the
// defaults a fresh checkout needs to run with nothing configured.
func Load() Config {
	return Config{
		Env:              getEnv("KADAI_ENV", "development"),
		Home:             getEnv("KADAI_HOME", defaultHome()),
		ConcurrencyLimit: getEnvInt("KADAI_CONCURRENCY_LIMIT", 4),
		UseRouter:        getEnvBool("USE_ROUTER", true),
		RouterURL:        getEnv("ROUTER_URL", ""),
		LLMNodes:         getEnv("LLM_NODES", ""),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o-mini"),
		VisionModel:      getEnv("VISION_MODEL", "gpt-4o"),
		LLM: LLMConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "kadai"),
			ServiceVersion: getEnv("KADAI_VERSION", "dev"),
		},
		ArangoDB: ArangoDBConfig{
			URL:      getEnv("ARANGODB_URL", ""),
			Username: getEnv("ARANGODB_USERNAME", "root"),
			Password: getEnv("ARANGODB_PASSWORD", ""),
			Database: getEnv("ARANGODB_DATABASE", "kadai"),
		},
		Typesense: TypesenseConfig{
			ServerURL: getEnv("TYPESENSE_URL", ""),
			APIKey:    getEnv("TYPESENSE_API_KEY", ""),
		},
	}
}

func defaultHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.kadai"
	}
	return ".kadai"
}

// IsProduction returns true if running in production environment.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment returns true if running in development environment.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvDuration reads a duration-valued env var outside of Load's own
// fixed schema. Load does not call it.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
