package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ResolveLogLevel maps a -log-level flag value onto a slog level.
func ResolveLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

// InitLogger builds the program logger. The TUI owns the terminal, so logs
// go to path, or nowhere when path is empty. The returned closer releases
// the log file.
func InitLogger(level, path string) (*slog.Logger, io.Closer, error) {
	logLevel, err := ResolveLogLevel(level)
	if err != nil {
		return nil, nil, err
	}
	var (
		w      io.Writer = io.Discard
		closer io.Closer = io.NopCloser(nil)
	)
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler), closer, nil
}
