package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewAppliesLevel(t *testing.T) {
	logger := New(Config{Level: "warn", Format: "json"})
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %v", logger.GetLevel())
	}

	logger = New(Config{Level: "", Format: "console"})
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level fallback, got %v", logger.GetLevel())
	}
}

func TestNewStampsServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithOutput(Config{Level: "info", Format: "json", Service: "reconciled"}, &buf)

	logger.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"service":"reconciled"`) {
		t.Fatalf("expected service field in output, got %s", buf.String())
	}

	buf.Reset()
	logger = newWithOutput(Config{Level: "info", Format: "json"}, &buf)
	logger.Info().Msg("hello")
	if strings.Contains(buf.String(), `"service"`) {
		t.Fatalf("expected no service field when unset, got %s", buf.String())
	}
}
