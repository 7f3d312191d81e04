// Package obslog provides the process-wide structured logger used by every
// component of the pipeline. It wraps zerolog instead of the standard
// library's log/slog so that the module's declared zerolog dependency is
// actually exercised.
package obslog

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Init configures the default logger. env selects the output format:
// "production" writes line-delimited JSON to stdout; anything else
// (including the empty string) writes a human-readable console format.
// level is parsed with zerolog.ParseLevel and defaults to info on error.
func Init(env string, level string) {
	once.Do(func() {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil || level == "" {
			parsed = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(parsed)

		var writer interface{ Write([]byte) (int, error) } = os.Stdout
		if env != "production" {
			writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		}
		defaultLogger = zerolog.New(writer).With().Timestamp().Logger()
		defaultLogger.Info().Msg("logger initialized")
	})
}

// Get returns the initialized default logger, initializing it with
// sensible defaults if Init has not yet been called. Init is idempotent
// (guarded by sync.Once), so this is safe to call from any package without
// coordinating startup order.
func Get() *zerolog.Logger {
	Init("", "info")
	return &defaultLogger
}

// With returns a child logger with the given component name attached,
// following the module-scoped logger convention used throughout the
// ingestion and search packages.
func With(component string) zerolog.Logger {
	return Get().With().Str("component", component).Logger()
}
