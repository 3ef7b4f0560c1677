package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ResolveLogLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ResolveLogLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestInitLogger_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deck.log")
	log, closer, err := InitLogger("warn", path)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s := string(raw); strings.Contains(s, "hidden") || !strings.Contains(s, "msg=shown") {
		t.Errorf("log file = %q", s)
	}
}
