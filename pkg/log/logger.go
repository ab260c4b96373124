// Package log provides structured logging setup for the boosting engine,
// built on log/slog with JSON output.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs a JSON slog handler as the default logger at the
// given level.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	slog.SetDefault(slog.New(handler))
}

// ToLogLevel converts a level name to a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	// ErrAttrKey is the attribute key used for error values.
	ErrAttrKey = "error"
)

// ErrAttr wraps an error for structured slog output.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// GetLoggerWithName returns the default logger tagged with a component
// name, e.g. "gbm.booster".
func GetLoggerWithName(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
