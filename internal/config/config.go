package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL       string
	ServerPort       string
	AllowedOrigins   []string
	AccessPolicyFile string
	LogLevel         slog.Level
	PendingTTL       time.Duration
	ResultTTL        time.Duration
	ExportLocation   *time.Location
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("No .env file found, using system environment variables")
	}

	return &Config{
		APIBaseURL:       strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		AccessPolicyFile: getEnv("ACCESS_POLICY_FILE", ""),
		LogLevel:         parseLevel(getEnv("LOG_LEVEL", "info")),
		PendingTTL:       getMillis("NOTIFY_PENDING_MS", 1500),
		ResultTTL:        getMillis("NOTIFY_RESULT_MS", 2500),
		ExportLocation:   getLocation("EXPORT_TIMEZONE"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getMillis(key string, defaultMs int) time.Duration {
	raw := getEnv(key, "")
	ms, err := strconv.Atoi(raw)
	if raw == "" || err != nil || ms < 0 {
		if raw != "" {
			slog.Warn("ignoring invalid duration", "key", key, "value", raw)
		}
		ms = defaultMs
	}
	return time.Duration(ms) * time.Millisecond
}

func getLocation(key string) *time.Location {
	name := getEnv(key, "")
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown time zone, using local time", "key", key, "value", name)
		return time.Local
	}
	return loc
}

// parseLevel maps debug|info|warn|error to a slog level; anything else is info.
func parseLevel(raw string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NewLogger builds the process logger: text output at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}
