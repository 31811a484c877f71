package logger

import (
	"log/slog"
	"os"
)

// L is the package level logger used across the application.
var L = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Set replaces the default logger with the provided one. A nil argument is
// ignored so callers may pass the result of a failed setup unconditionally.
func Set(l *slog.Logger) {
	if l != nil {
		L = l
	}
}

// Init configures the default logger from the LOG_FORMAT environment
// variable ("json" or text) and returns it.
func Init() *slog.Logger {
	var h slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		h = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		h = slog.NewTextHandler(os.Stdout, nil)
	}
	Set(slog.New(h))
	return L
}
