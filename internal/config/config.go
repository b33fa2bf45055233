// Package config contains everything related to process configuration
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration. User-editable billing settings
// live in the settings file pointed to by SettingsPath.
type Config struct {
	SettingsPath  string
	LogPath       string
	LogLevel      slog.Level
	MetricsAddr   string
	LanguageTag   string
	Notifications bool
	QueryTimeout  time.Duration
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		SettingsPath:  getEnvString(EnvSettingsPath, getDefaultSettingsPath()),
		LogPath:       getEnvString(EnvLogPath, getDefaultLogPath()),
		LogLevel:      getEnvLevel(EnvLogLevel, slog.LevelInfo),
		MetricsAddr:   getEnvString(EnvMetricsAddr, ""),
		LanguageTag:   hostLanguageTag(),
		Notifications: getEnvBool(EnvNotifications, true),
		QueryTimeout:  getEnvDuration(EnvQueryTimeout, defaultQueryTimeout),
	}

	if err := ensureDir(filepath.Dir(cfg.SettingsPath)); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, appDirName, ".env"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".gbw", ".env"))
	}

	return paths
}

// configDir returns the per-user directory holding settings and logs.
func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDirName)
}

func getDefaultSettingsPath() string {
	return filepath.Join(configDir(), settingsFileName)
}

func getDefaultLogPath() string {
	return filepath.Join(configDir(), logFileName)
}

// hostLanguageTag returns the first non-empty locale hint from the
// environment, or "" when none is set.
func hostLanguageTag() string {
	if tag := os.Getenv(EnvLanguageTag); tag != "" {
		return tag
	}
	for _, key := range hostLocaleVars {
		if v := os.Getenv(key); v != "" && v != "C" && v != "POSIX" {
			return v
		}
	}
	return ""
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvLevel parses debug/info/warn/error into a slog level.
func getEnvLevel(key string, defaultValue slog.Level) slog.Level {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return defaultValue
	}
	return level
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
