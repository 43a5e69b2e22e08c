package logger

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type cronLogger struct {
	log zerolog.Logger
}

// Cron adapts a zerolog logger to cron.Logger. Cron's chatty info messages go to debug level.
func Cron(l zerolog.Logger) cron.Logger {
	return cronLogger{log: l}
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
