package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type AppConfig struct {
	Port           string        `json:"port"`
	StorageBackend string        `json:"storage_backend"`
	DataDir        string        `json:"data_dir"`
	DBPath         string        `json:"db_path"`
	DatabaseURL    string        `json:"-"`
	LogLevel       string        `json:"log_level"`
	LogFormat      string        `json:"log_format"`
	HistoryLimit   int           `json:"history_limit"`
	RequestTimeout time.Duration `json:"request_timeout"`

	EnvFile string `json:"env_file,omitempty"` // set when a .env file was loaded
}

// Load reads the configuration with FromEnv and validates it.
func Load() (AppConfig, error) {
	cfg, err := FromEnv()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// FromEnv reads an optional .env (or the file named by ENV_FILE) and then the
// process environment. Variables already set in the environment win.
// The result is not validated so callers can apply overrides first.
func FromEnv() (AppConfig, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	loaded := ""
	if err := godotenv.Load(envFile); err == nil {
		loaded = envFile
	}

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	cfg := AppConfig{
		Port:           get("PORT", "6000"),
		StorageBackend: get("STORAGE_BACKEND", BackendMemory),
		DataDir:        get("DATA_DIR", "data"),
		DBPath:         get("DB_PATH", "data/intelligence.db"),
		DatabaseURL:    get("DATABASE_URL", ""),
		LogLevel:       get("LOG_LEVEL", "info"),
		LogFormat:      get("LOG_FORMAT", "json"),
		EnvFile:        loaded,
	}

	var err error
	if cfg.HistoryLimit, err = strconv.Atoi(get("HISTORY_LIMIT", "10")); err != nil {
		return cfg, fmt.Errorf("HISTORY_LIMIT: %w", err)
	}
	if cfg.RequestTimeout, err = time.ParseDuration(get("REQUEST_TIMEOUT", "10s")); err != nil {
		return cfg, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	return cfg, nil
}

func (c AppConfig) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR must be set for the %s backend", c.StorageBackend)
		}
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH must be set for the %s backend", c.StorageBackend)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for the %s backend", c.StorageBackend)
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND %q: want %s, %s or %s", c.StorageBackend, BackendMemory, BackendSQLite, BackendPostgres)
	}
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		return fmt.Errorf("PORT %q: %w", c.Port, err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT %q: want json or console", c.LogFormat)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be > 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	return nil
}
