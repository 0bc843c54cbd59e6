package logging

import (
	"log/slog"
	"testing"

	"github.com/medboxlab/medbox-core/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewReturnsUsableLogger(t *testing.T) {
	formats := []string{"json", "text", ""}
	for _, format := range formats {
		logger := New(config.LoggingConfig{
			Level:  "debug",
			Format: format,
			Output: "stderr",
		}, "test")
		if logger == nil || logger.Logger == nil {
			t.Fatalf("New() returned unusable logger for format %q", format)
		}
		// Must not panic.
		logger.Debug("test entry", "key", "value")
	}
}

func TestWithAddsAttributes(t *testing.T) {
	base := Default()
	child := base.With("component", "test")
	if child == nil || child.Logger == nil {
		t.Fatal("With() returned unusable logger")
	}
	if child == base {
		t.Error("With() should return a new logger")
	}
}
