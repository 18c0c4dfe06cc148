// Package logging wraps log/slog with package-level helpers used across the app.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var logger *slog.Logger

// InitLogger installs the global logger. Production writes JSON, every other
// environment writes text.
func InitLogger(level, env string) {
	logger = New(os.Stdout, level, env)
	slog.SetDefault(logger)
}

// New builds a logger writing to w.
func New(w io.Writer, level, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Logger returns the global logger, falling back to slog's default.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
