// Package logging builds the structured logger used by the command layer.
// The core packages never log; failures are returned to the caller.
package logging

import (
	"fmt"
	"io"
	"log/slog"
)

// New returns a text logger writing to w at the named level
// (debug, info, warn or error).
func New(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// Component scopes logger to a named part of the program.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", name)
}
