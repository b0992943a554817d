// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. Command-line flags take
// precedence over everything loaded here.
type Config struct {
	DatabasePath string
	PricingPath  string
	ReportFormat string
	WatchDir     string
}

const defaultReportFormat = "markdown"

// Load reads configuration from .env files and environment variables.
func Load() *Config {
	// Try loading .env from multiple locations
	for _, path := range envPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	return &Config{
		DatabasePath: getEnvString("BOOKSTATS_DB", defaultDatabasePath()),
		PricingPath:  getEnvString("BOOKSTATS_PRICING", ""),
		ReportFormat: getEnvString("BOOKSTATS_FORMAT", defaultReportFormat),
		WatchDir:     getEnvString("BOOKSTATS_WATCH_DIR", defaultWatchDir()),
	}
}

// envPaths returns a list of paths to check for .env files.
func envPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory location
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".bookstats", ".env"))
	}

	return paths
}

// defaultDatabasePath returns the default path for the SQLite library.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "library.db"
	}
	return filepath.Join(home, ".bookstats", "library.db")
}

// defaultWatchDir returns the default directory watched for new books.
func defaultWatchDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Books")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
