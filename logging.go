package msview

import (
	"log/slog"

	"github.com/bpowers/msview/internal/logging"
)

// SetLogLevel sets the log level for the whole library. It is global to
// the process.
//
// The level can also be set with the MSVIEW_DEBUG environment variable:
//
//	MSVIEW_DEBUG=0  # Error level
//	MSVIEW_DEBUG=1  # Warn level (default)
//	MSVIEW_DEBUG=2  # Info level
//	MSVIEW_DEBUG=3  # Debug level, logs every cache hit and computation
func SetLogLevel(level slog.Level) {
	logging.SetLogLevel(level)
}
