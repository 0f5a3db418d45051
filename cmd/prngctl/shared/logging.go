package shared

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// SetupLogger returns a console logger on stderr, or a JSON one when
// structured is set.
func SetupLogger(debug, structured bool) zerolog.Logger {
	return NewLogger(os.Stderr, debug, structured)
}

// NewLogger is SetupLogger for an arbitrary writer.
func NewLogger(w io.Writer, debug, structured bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	out := w
	if structured {
		zerolog.TimeFieldFormat = time.RFC3339Nano
	} else {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// ApplyLevel lowers the logger to the named level from a job file. An
// explicit --debug always wins; unknown names leave the logger unchanged.
func ApplyLevel(logger zerolog.Logger, name string, debug bool) zerolog.Logger {
	if debug || name == "" {
		return logger
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		logger.Warn().Str("level", name).Msg("Ignoring unknown log level")
		return logger
	}
	return logger.Level(level)
}
