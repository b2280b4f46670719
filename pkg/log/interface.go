// Package log provides the structured logging interface used across sleepq.
//
// The interface is slog-compatible so that components depend on a small
// method set instead of a concrete backend. The production backend is
// zerolog (see zerolog.go); tests use TestLogger to capture JSON lines.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ComponentKey, "cascade",
//	    log.RequestIDKey, id,
//	)
//	logger.Info("Prediction resolved",
//	    log.SourceKey, "linear",
//	    log.LabelKey, "Good",
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. An error passed as a value is
// rendered with its message; errors implementing zerolog.LogObjectMarshaler
// are rendered as structured objects by the zerolog backend.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	// The cascade reports degraded tiers at this level.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	//
	// Example:
	//   contextLogger := logger.With(
	//       log.ModelNameKey, "LogisticRegression",
	//       log.ArtifactPathKey, "sleep_model.json",
	//   )
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
