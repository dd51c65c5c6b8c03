// Package logger builds the zerolog loggers used by the client and its examples.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger at the given level writing to stderr. If pretty is
// true, output is formatted for human readability. An unknown level falls
// back to info; "disabled" turns logging off.
func New(level string, pretty bool) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, pretty)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level string, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	level = strings.ToLower(strings.TrimSpace(level))
	zLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zLevel = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(zLevel).
		With().
		Timestamp().
		Str("component", "peyflex").
		Logger()
}
