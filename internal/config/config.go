package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

type Config struct {
	// Server
	Port        string
	Environment string
	BaseURL     string
	JWTSecret   string

	// Store
	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseStorageBucket  string

	// Bridge
	AppsScriptURL string
	WorkerSecret  string

	// Worker
	WorkerID     string
	PollInterval time.Duration
	BatchLimit   int
	RunOnce      bool
	RunWindow    time.Duration
	OrderID      string
	OrderWait    time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSQLite)),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "delyplott.db"),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "previews"),

		AppsScriptURL: getEnv("APPS_SCRIPT_URL", ""),
		WorkerSecret:  getEnv("WORKER_SECRET", ""),

		WorkerID: getEnv("WORKER_ID", "worker-1"),
		OrderID:  getEnv("ORDER_ID", ""),
		RunOnce:  getEnv("RUN_ONCE", "0") == "1",
	}

	var err error
	if cfg.PollInterval, err = getSeconds("POLL_SECS", 4); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.RunWindow, err = getSeconds("RUN_WINDOW_SECS", 240); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.OrderWait, err = getSeconds("ORDER_WAIT_SECS", 10); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.BatchLimit, err = getInt("BATCH_LIMIT", 5); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks what both the server and the worker need.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	case StoreDriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverSQLite, c.StoreDriver)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_SECS must be positive")
	}
	if c.BatchLimit <= 0 {
		return fmt.Errorf("BATCH_LIMIT must be positive")
	}
	return nil
}

func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func (c *Config) ValidateWorker() error {
	if c.AppsScriptURL == "" {
		return fmt.Errorf("APPS_SCRIPT_URL is required")
	}
	if c.WorkerSecret == "" {
		return fmt.Errorf("WORKER_SECRET is required")
	}
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}
	return nil
}

// SupabaseEnabled reports whether previews go to Supabase Storage.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabasePublishableKey != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getSeconds(key string, defaultValue float64) (time.Duration, error) {
	secs := defaultValue
	if raw := getEnv(key, ""); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number of seconds: %w", key, err)
		}
		secs = v
	}
	return time.Duration(secs * float64(time.Second)), nil
}
