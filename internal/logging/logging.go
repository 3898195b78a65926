// Package logging builds the structured loggers used across the simulator.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// New returns a logger writing to w in the given format at level
func New(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	ops := &slog.HandlerOptions{
		AddSource: lvl <= slog.LevelDebug,
		Level:     lvl,
	}
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return slog.New(slog.NewJSONHandler(w, ops)), nil
	case FormatText:
		return slog.New(slog.NewTextHandler(w, ops)), nil
	}
	return nil, fmt.Errorf("unsupported log format: %q", format)
}

// ErrAttr wraps err as the conventional error attribute
func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}
