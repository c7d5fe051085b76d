// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	defaultStoreMaxBytes = 5 << 20
	defaultMaxBodyBytes  = 1 << 20
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// StoreDriver selects the key-value backend: memory, badger, sqlite or postgres.
	// Defaults to "memory", which keeps nothing across restarts.
	StoreDriver string

	// BadgerDir is the data directory of the badger backend.
	// Required when StoreDriver is "badger".
	BadgerDir string

	// SQLitePath is the database file of the sqlite backend.
	// Required when StoreDriver is "sqlite".
	SQLitePath string

	// DatabaseURL is the Postgres connection string.
	// Required when StoreDriver is "postgres".
	DatabaseURL string

	// StoreMaxBytes is the byte budget of the store, counted as the sum of
	// key and value lengths. Defaults to 5 MiB; 0 disables the limit.
	StoreMaxBytes int64

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// MetricsEnabled mounts the Prometheus /metrics endpoint. Defaults to true.
	MetricsEnabled bool
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set and any
// values that cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		BadgerDir:   os.Getenv("BADGER_DIR"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	var missing, invalid []string

	switch cfg.StoreDriver {
	case DriverMemory:
	case DriverBadger:
		if cfg.BadgerDir == "" {
			missing = append(missing, "BADGER_DIR")
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		invalid = append(invalid, fmt.Sprintf("STORE_DRIVER=%q (want memory, badger, sqlite or postgres)", cfg.StoreDriver))
	}

	var err error
	if cfg.StoreMaxBytes, err = getEnvBytes("STORE_MAX_BYTES", defaultStoreMaxBytes); err != nil {
		invalid = append(invalid, err.Error())
	}
	if cfg.MaxBodyBytes, err = getEnvBytes("MAX_BODY_BYTES", defaultMaxBodyBytes); err != nil {
		invalid = append(invalid, err.Error())
	}

	if cfg.MetricsEnabled, err = strconv.ParseBool(getEnv("METRICS_ENABLED", "true")); err != nil {
		invalid = append(invalid, fmt.Sprintf("METRICS_ENABLED=%q (want a boolean)", os.Getenv("METRICS_ENABLED")))
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvBytes parses key as a non-negative byte count.
func getEnvBytes(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s=%q (want a non-negative integer)", key, v)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
