// Package logging builds the zerolog logger shared across the server.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/minichess/internal/config"
)

// New builds a logger writing to out. Style "console" gets human-readable
// lines; "json" writes one JSON object per line.
func New(cfg config.LogConfig, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logging: parse level %q: %w", cfg.Level, err)
	}

	switch cfg.Style {
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown style %q", cfg.Style)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
