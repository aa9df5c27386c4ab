package common

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("loud"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSetupLoggerTo_JSON(t *testing.T) {
	orig := slog.Default()
	defer slog.SetDefault(orig)

	var buf bytes.Buffer
	if err := SetupLoggerTo(&buf, "info", "json"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	slog.Info("hello", "source", "detector")

	if !strings.Contains(buf.String(), `"source":"detector"`) {
		t.Errorf("expected JSON attribute in output, got %s", buf.String())
	}
}

func TestUserError(t *testing.T) {
	err := NewUserError("upload a photo", ErrInvalidInput)
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected UserError to unwrap to ErrInvalidInput")
	}
	if UserMessage(err) != "upload a photo" {
		t.Errorf("unexpected user message: %s", UserMessage(err))
	}
	if UserMessage(errors.New("plain")) != "plain" {
		t.Error("expected plain error text for non-user errors")
	}
}
