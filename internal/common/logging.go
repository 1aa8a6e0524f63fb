package common

import (
	"io"
	"log/slog"
)

// ParseLevel maps a LOG_LEVEL value to a slog level, using def for empty or unknown values.
func ParseLevel(s string, def slog.Level) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return def
	}
}

// NewLogger builds the JSON logger used by the commands.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
