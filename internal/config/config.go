// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir       string // Base directory for databases and state files (always absolute)
	SnapshotPath  string // Path the data bridge writes position/capital snapshots to
	ThresholdPath string // Optional YAML document overriding built-in threshold policies
	CycleCron     string // Cron spec for the monitoring cycle
	LogLevel      string
	Port          int
	DevMode       bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("SENTRY_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:       absDataDir,
		SnapshotPath:  getEnv("SENTRY_SNAPSHOT_PATH", filepath.Join(absDataDir, "snapshot.json")),
		ThresholdPath: getEnv("SENTRY_THRESHOLDS", ""),
		CycleCron:     getEnv("SENTRY_CYCLE_CRON", "*/5 * * * *"),
		Port:          getEnvAsInt("SENTRY_PORT", 8011),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
