// Package logging holds the process-wide structured logger used by every
// msview package.
package logging

import (
	"log/slog"
	"os"
)

// EnvVar is the environment variable that selects the initial log level.
const EnvVar = "MSVIEW_DEBUG"

var (
	logLevel = new(slog.LevelVar)
	logger   *slog.Logger
)

func init() {
	logLevel.Set(parseLogLevel(os.Getenv(EnvVar)))

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger = slog.New(handler)
}

// Logger returns the global logger instance.
func Logger() *slog.Logger {
	return logger
}

// Component returns the global logger tagged with a component name.
func Component(name string) *slog.Logger {
	return logger.With("component", name)
}

// SetLogLevel sets the global log level for the entire module.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// Level reports the current global log level.
func Level() slog.Level {
	return logLevel.Level()
}

// parseLogLevel converts MSVIEW_DEBUG values to slog levels.
// Mapping: 0=Error, 1=Warn, 2=Info, 3=Debug
// Default: Warn if not set or invalid
func parseLogLevel(envVal string) slog.Level {
	switch envVal {
	case "0":
		return slog.LevelError
	case "1":
		return slog.LevelWarn
	case "2":
		return slog.LevelInfo
	case "3":
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}
