// Package logger builds the zerolog logger used across the application.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures logger construction.
type Options struct {
	// Level is a zerolog level name ("trace", "debug", "info", "warn",
	// "error"). Unknown or empty falls back to info.
	Level string

	// Pretty switches from JSON to human-readable console output.
	Pretty bool

	// Output defaults to stderr.
	Output io.Writer
}

// New builds a logger with timestamps attached.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Nop returns a disabled logger for tests and optional-logging call sites.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
