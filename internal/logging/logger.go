// Package logging builds the pager's zerolog logger.
//
// The pager owns the terminal while it runs, so logs only ever go to a file.
// Runs append to the same file and are told apart by the "session" field.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New returns a logger that writes JSON lines to file at the given level.
// An empty file yields a disabled logger. An empty level means info.
//
// The returned closer is always safe to call.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	if file == "" {
		return zerolog.Nop(), closer, nil
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), closer, err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return zerolog.Nop(), closer, fmt.Errorf("create logs dir: %w", err)
	}
	osFile, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
	}
	closer = func() { _ = osFile.Close() }

	l := zerolog.New(osFile).
		Level(lvl).
		With().
		Timestamp().
		Str("session", uuid.NewString()).
		Logger()

	return l, closer, nil
}

// Component returns a child of l tagged with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("cmp", name).Logger()
}
