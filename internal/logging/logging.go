// Package logging builds the zerolog loggers used by the binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup returns the client logger. The terminal belongs to the UI, so with
// debug off nothing is logged; with debug on JSON lines go to a file named
// after now under dir. The returned Closer releases the file.
func Setup(debug bool, dir string, now time.Time) (zerolog.Logger, io.Closer, error) {
	if !debug {
		return zerolog.Nop(), nopCloser{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}
	name := filepath.Join(dir, "aurorachat-"+now.Format("20060102-150405")+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := zerolog.New(f).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return logger, f, nil
}

// Console returns a human-readable logger for w, used by the relay.
func Console(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}
