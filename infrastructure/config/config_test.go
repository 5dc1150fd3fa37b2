package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ADDR", "LTL_REFERENCE_PATH", "LTL_MAX_UPLOAD_MB", "LTL_PREVIEW_ROWS", "LTL_RUN_TTL", "LTL_RUN_CAPACITY", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.Addr != ":8080" || cfg.ReferencePath != "LTL_qty.xlsx" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PreviewRows != 50 || cfg.RunCapacity != 64 || cfg.RunTTL != 30*time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", cfg.Warnings)
	}
	if cfg.MaxUploadBytes() != 32<<20 {
		t.Fatalf("unexpected upload limit %d", cfg.MaxUploadBytes())
	}
}

func TestLoad_OverridesAndInvalidValues(t *testing.T) {
	t.Setenv("APP_ADDR", "127.0.0.1:9000")
	t.Setenv("LTL_REFERENCE_PATH", "/data/LTL_qty.xlsx")
	t.Setenv("LTL_PREVIEW_ROWS", "10")
	t.Setenv("LTL_RUN_TTL", "5m")
	t.Setenv("LTL_RUN_CAPACITY", "not-a-number")
	t.Setenv("LTL_MAX_UPLOAD_MB", "-4")

	cfg := Load()
	if cfg.Addr != "127.0.0.1:9000" || cfg.ReferencePath != "/data/LTL_qty.xlsx" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.PreviewRows != 10 || cfg.RunTTL != 5*time.Minute {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.RunCapacity != 64 || cfg.MaxUploadMB != 32 {
		t.Fatalf("invalid values must fall back to defaults: %+v", cfg)
	}
	if len(cfg.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", cfg.Warnings)
	}
	joined := strings.Join(cfg.Warnings, "\n")
	if !strings.Contains(joined, "LTL_RUN_CAPACITY") || !strings.Contains(joined, "LTL_MAX_UPLOAD_MB") {
		t.Fatalf("warnings must name the rejected keys: %v", cfg.Warnings)
	}
}

func TestLoad_WarningsAreCollectedNotLogged(t *testing.T) {
	t.Setenv("LTL_RUN_TTL", "soon")

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	cfg := Load()
	if buf.Len() != 0 {
		t.Fatalf("Load must not log, got %q", buf.String())
	}
	if len(cfg.Warnings) != 1 || !strings.Contains(cfg.Warnings[0], "LTL_RUN_TTL") {
		t.Fatalf("expected LTL_RUN_TTL warning, got %v", cfg.Warnings)
	}

	cfg.LogWarnings()
	if !strings.Contains(buf.String(), "LTL_RUN_TTL") {
		t.Fatalf("expected warning on logger, got %q", buf.String())
	}
}
