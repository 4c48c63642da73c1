// Package logging provides structured diagnostic logging for bandcamp-mosaic using zerolog.
//
// Console output meant for the user goes through download.ProgressEvent; this
// logger carries the per-album diagnostics (miss reasons, retries) that are
// only interesting with -verbose.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger *zerolog.Logger

func init() {
	// Default to JSON logging at warn level so library users see nothing per album.
	l := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	logger = &l
}

// Init configures the package logger.
// If debug is true, per-album diagnostics are emitted.
// If human is true, uses a human-friendly console writer.
func Init(debug bool, human bool) {
	var out io.Writer = os.Stderr
	if human {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}

	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Logger()
	logger = &l
}

// With returns a child logger with the component field set.
func With(component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// SetLogger replaces the package logger and returns the previous one.
// Loggers already taken with With keep their old destination.
func SetLogger(l zerolog.Logger) zerolog.Logger {
	prev := *logger
	logger = &l
	return prev
}
