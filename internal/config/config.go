// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Store backends selectable with LOGINGATE_STORE.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr     string
	DBPath         string
	Store          string
	ExtensionsFile string
	LogLevel       slog.Level
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional: LOGINGATE_LISTEN_ADDR (127.0.0.1:8080),
// LOGINGATE_DB_PATH (logingate.db), LOGINGATE_STORE (sqlite),
// LOGINGATE_EXTENSIONS_FILE (extensions.yaml), LOGINGATE_LOG_LEVEL (info).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     "127.0.0.1:8080",
		DBPath:         "logingate.db",
		Store:          StoreSQLite,
		ExtensionsFile: "extensions.yaml",
		LogLevel:       slog.LevelInfo,
	}

	if v, ok := os.LookupEnv("LOGINGATE_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("LOGINGATE_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v, ok := os.LookupEnv("LOGINGATE_STORE"); ok && v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != StoreSQLite && v != StoreMemory {
			return nil, fmt.Errorf("LOGINGATE_STORE has invalid value %q: want %q or %q", v, StoreSQLite, StoreMemory)
		}
		cfg.Store = v
	}

	if v, ok := os.LookupEnv("LOGINGATE_EXTENSIONS_FILE"); ok {
		cfg.ExtensionsFile = v
	}

	if v, ok := os.LookupEnv("LOGINGATE_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("LOGINGATE_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	if cfg.Store == StoreSQLite && cfg.DBPath == "" {
		return nil, fmt.Errorf("LOGINGATE_DB_PATH must not be empty with the %s store", StoreSQLite)
	}

	return cfg, nil
}
