// Package config loads and validates client configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all configuration values for the CampEase client.
// Values are populated by Load from environment variables.
type Config struct {
	// APIBaseURL is the base URL of the CampEase backend API. Required.
	// Set via CAMPEASE_API_URL, e.g. "https://api.campease.example".
	APIBaseURL string

	// StateDir is the directory holding the persisted session (user object
	// and auth token). Defaults to "$HOME/.campease".
	StateDir string

	// PollInterval is how often the notification poller checks the unread
	// count. Defaults to 30s. Set POLL_INTERVAL to a Go duration string.
	PollInterval time.Duration

	// HTTPTimeout bounds every individual backend request.
	// Defaults to 10s.
	HTTPTimeout time.Duration

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or any
// duration that fails to parse.
func Load() (Config, error) {
	cfg := Config{
		StateDir: getEnv("CAMPEASE_STATE_DIR", defaultStateDir()),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var missing []string

	cfg.APIBaseURL = strings.TrimRight(os.Getenv("CAMPEASE_API_URL"), "/")
	if cfg.APIBaseURL == "" {
		missing = append(missing, "CAMPEASE_API_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.PollInterval, err = getDuration("POLL_INTERVAL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
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

// getDuration parses the environment variable named by key as a Go duration,
// or returns fallback if the variable is not set or is empty.
// Non-positive durations are rejected: a zero poll interval would spin.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: duration must be positive, got %q", key, v)
	}
	return d, nil
}

// defaultStateDir returns "$HOME/.campease", falling back to a relative
// ".campease" when the home directory cannot be determined.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".campease"
	}
	return home + string(os.PathSeparator) + ".campease"
}
