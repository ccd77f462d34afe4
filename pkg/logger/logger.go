package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog with the service-wide attributes every log line carries.
type Logger struct {
	*slog.Logger
}

// New creates a JSON logger for the given service name.
func New(service string) *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return &Logger{
		Logger: slog.New(handler).With("service", service),
	}
}

// WithComponent returns a child logger tagged with a component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component)}
}

// Discard returns a logger that drops everything; used in tests.
func Discard() *Logger {
	handler := slog.NewJSONHandler(io.Discard, nil)
	return &Logger{Logger: slog.New(handler)}
}
