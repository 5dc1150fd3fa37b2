package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment and an optional .env
// file in the working directory.
type Config struct {
	Addr          string
	ReferencePath string
	MaxUploadMB   int64
	PreviewRows   int
	RunTTL        time.Duration
	RunCapacity   int
	LogLevel      string
	LogFormat     string

	// Warnings lists values that were rejected in favor of a default. Load
	// runs before logging is configured, so callers log them afterwards.
	Warnings []string
}

func Load() Config {
	_ = godotenv.Load()

	var warn []string
	return Config{
		Addr:          getenv("APP_ADDR", ":8080"),
		ReferencePath: getenv("LTL_REFERENCE_PATH", "LTL_qty.xlsx"),
		MaxUploadMB:   int64(getenvInt(&warn, "LTL_MAX_UPLOAD_MB", 32)),
		PreviewRows:   getenvInt(&warn, "LTL_PREVIEW_ROWS", 50),
		RunTTL:        getenvDuration(&warn, "LTL_RUN_TTL", 30*time.Minute),
		RunCapacity:   getenvInt(&warn, "LTL_RUN_CAPACITY", 64),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "text"),
		Warnings:      warn,
	}
}

// LogWarnings reports the rejected values on the configured logger.
func (c Config) LogWarnings() {
	for _, w := range c.Warnings {
		slog.Warn("invalid config value; using default", slog.String("detail", w))
	}
}

// MaxUploadBytes is the request body limit for uploads.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(warn *[]string, key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		*warn = append(*warn, fmt.Sprintf("%s=%q, using %d", key, raw, fallback))
		return fallback
	}
	return v
}

func getenvDuration(warn *[]string, key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		*warn = append(*warn, fmt.Sprintf("%s=%q, using %s", key, raw, fallback))
		return fallback
	}
	return v
}
