package logger

import (
	"log/slog"
	"os"
)

// New returns a structured stdout logger. Level is controlled by config so
// main stays lean.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
