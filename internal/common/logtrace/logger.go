// Package logtrace provides logging bootstrap for the client. It configures
// zerolog once per process; packages derive component loggers from the global.
package logtrace

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger with Unix timestamp format.
// Output goes to stderr so CLI output on stdout stays machine-readable.
// Level defaults to warn and can be overridden with TASKMATE_LOG_LEVEL.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	level := zerolog.WarnLevel
	if s := os.Getenv("TASKMATE_LOG_LEVEL"); s != "" {
		if parsed, err := zerolog.ParseLevel(s); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}

// Component returns a logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
