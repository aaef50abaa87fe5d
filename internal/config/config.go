package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageNeo4j    = "neo4j"
)

// Config contains runtime settings for the MCP server
type Config struct {
	LogLevel  string
	LogFormat string // json (default) or console
	Host      string // default 0.0.0.0
	Port      string // default PORT env or 8080

	// SourcesFile points to the YAML source catalog; empty uses the built-in one
	SourcesFile string

	Storage struct {
		Backend     string
		DatabaseURL string
		// ArchivePath enables the SQLite session archive when set
		ArchivePath string
	}
	Neo4j struct {
		URI      string
		Username string
		Password string
		Database string
	}
	Redis struct {
		URL     string
		Channel string
	}
	Adzuna struct {
		AppID   string
		AppKey  string
		Country string
	} // Adzuna API credentials
	SheetsCredentialsPath string

	Search struct {
		WorkerPoolSize int
		MaxSources     int
		Deadline       time.Duration
		HistoryMax     int
		Retention      time.Duration
	}
	// ScheduleSpec overrides the catalog's cron spec when set
	ScheduleSpec string
}

// Load populates config from environment variables, reading a .env file
// first when one exists. Variables already set win over the file.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds Config from a lookup function such as os.Getenv
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		LogLevel: "info",
		Host:     "0.0.0.0",
		Port:     "8080",
	}
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg.LogLevel = env("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(env("LOG_FORMAT", "json"))
	cfg.Host = env("MCP_HOST", cfg.Host)
	cfg.Port = env("PORT", cfg.Port)
	cfg.SourcesFile = env("SOURCES_FILE", "")

	cfg.Storage.Backend = strings.ToLower(env("STORAGE_BACKEND", StorageMemory))
	cfg.Storage.DatabaseURL = env("DATABASE_URL", "")
	cfg.Storage.ArchivePath = env("SESSION_ARCHIVE_PATH", "")

	cfg.Neo4j.URI = env("NEO4J_URI", "")
	cfg.Neo4j.Username = env("NEO4J_USERNAME", "")
	cfg.Neo4j.Password = env("NEO4J_PASSWORD", "")
	cfg.Neo4j.Database = env("NEO4J_DATABASE", "")

	cfg.Redis.URL = env("REDIS_URL", "")
	cfg.Redis.Channel = env("REDIS_CHANNEL", "")

	cfg.Adzuna.AppID = env("ADZUNA_APP_ID", "")
	cfg.Adzuna.AppKey = env("ADZUNA_APP_KEY", "")
	cfg.Adzuna.Country = env("ADZUNA_COUNTRY", "us")

	cfg.SheetsCredentialsPath = env("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	cfg.ScheduleSpec = env("SCHEDULE_SPEC", "")

	var invalid []string
	intVar := func(key string, def int) int {
		raw := env(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			invalid = append(invalid, key)
			return def
		}
		return n
	}
	durationVar := func(key string, def time.Duration) time.Duration {
		raw := env(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}

	cfg.Search.WorkerPoolSize = intVar("WORKER_POOL_SIZE", runtime.GOMAXPROCS(0))
	cfg.Search.MaxSources = intVar("MAX_SOURCES", 8)
	cfg.Search.Deadline = durationVar("SESSION_DEADLINE", 10*time.Minute)
	cfg.Search.HistoryMax = intVar("SESSION_HISTORY_MAX", 500)
	cfg.Search.Retention = durationVar("SESSION_RETENTION", 30*24*time.Hour)

	var missingVars []string

	switch cfg.Storage.Backend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.Storage.DatabaseURL == "" {
			missingVars = append(missingVars, "DATABASE_URL")
		}
	case StorageNeo4j:
		if cfg.Neo4j.URI == "" {
			missingVars = append(missingVars, "NEO4J_URI")
		}
		if cfg.Neo4j.Username == "" {
			missingVars = append(missingVars, "NEO4J_USERNAME")
		}
		if cfg.Neo4j.Password == "" {
			missingVars = append(missingVars, "NEO4J_PASSWORD")
		}
	default:
		invalid = append(invalid, "STORAGE_BACKEND")
	}

	if len(missingVars) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}
	if len(invalid) > 0 {
		return cfg, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Addr is the listen address of the MCP server
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}
