package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"API_BASE_URL", "SERVER_PORT", "ALLOWED_ORIGINS", "LOG_LEVEL", "NOTIFY_PENDING_MS", "NOTIFY_RESULT_MS", "EXPORT_TIMEZONE"} {
		t.Setenv(k, "")
	}
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("API_BASE_URL", "http://localhost:8000")

	cfg := Load()

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 1500*time.Millisecond, cfg.PendingTTL)
	assert.Equal(t, 2500*time.Millisecond, cfg.ResultTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, time.Local, cfg.ExportLocation)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://tracker.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NOTIFY_PENDING_MS", "100")
	t.Setenv("NOTIFY_RESULT_MS", "oops")
	t.Setenv("EXPORT_TIMEZONE", "UTC")

	cfg := Load()

	assert.Equal(t, "https://tracker.example.com", cfg.APIBaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 100*time.Millisecond, cfg.PendingTTL)
	assert.Equal(t, 2500*time.Millisecond, cfg.ResultTTL)
	assert.Equal(t, "UTC", cfg.ExportLocation.String())
}
