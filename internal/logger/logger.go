package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a child of the global logger tagged with the component name,
// e.g. "scheduler" or "api".
func New(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func init() {
	level := zerolog.InfoLevel
	if _, debug := os.LookupEnv("DEBUG"); debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	// LOG_JSON keeps the raw JSON lines for log shippers; the console format is for terminals.
	if _, raw := os.LookupEnv("LOG_JSON"); raw {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}
