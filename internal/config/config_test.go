package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campease/client/internal/config"
)

// TestLoad_defaults verifies that optional env vars fall back to their defaults
// when only the required CAMPEASE_API_URL is provided.
func TestLoad_defaults(t *testing.T) {
	t.Setenv("CAMPEASE_API_URL", "https://api.campease.example")
	t.Setenv("CAMPEASE_STATE_DIR", "")
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "https://api.campease.example", cfg.APIBaseURL)
	require.Equal(t, 30*time.Second, cfg.PollInterval)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "info", cfg.LogLevel)
	require.NotEmpty(t, cfg.StateDir)
}

// TestLoad_overrides verifies that all values can be overridden via env vars
// and that a trailing slash on the API URL is trimmed.
func TestLoad_overrides(t *testing.T) {
	t.Setenv("CAMPEASE_API_URL", "http://localhost:5000/")
	t.Setenv("CAMPEASE_STATE_DIR", "/tmp/campease-test")
	t.Setenv("POLL_INTERVAL", "5s")
	t.Setenv("HTTP_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	require.Equal(t, "/tmp/campease-test", cfg.StateDir)
	require.Equal(t, 5*time.Second, cfg.PollInterval)
	require.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "debug", cfg.LogLevel)
}

// TestLoad_missingRequired verifies that an error is returned when
// CAMPEASE_API_URL is not set, and that the error names the missing variable.
func TestLoad_missingRequired(t *testing.T) {
	t.Setenv("CAMPEASE_API_URL", "")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "CAMPEASE_API_URL")
}

// TestLoad_badDuration verifies that malformed and non-positive durations
// are rejected with an error naming the variable.
func TestLoad_badDuration(t *testing.T) {
	t.Setenv("CAMPEASE_API_URL", "https://api.campease.example")

	t.Setenv("POLL_INTERVAL", "soon")
	_, err := config.Load()
	require.ErrorContains(t, err, "POLL_INTERVAL")

	t.Setenv("POLL_INTERVAL", "-5s")
	_, err = config.Load()
	require.ErrorContains(t, err, "POLL_INTERVAL")
}
