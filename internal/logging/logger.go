// Package logging builds the zerolog loggers shared by every component.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to stdout, tagged with component.
func New(level, component string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, component)
}

// NewWithWriter is New with an explicit destination. An empty component
// leaves the field for Component to set.
func NewWithWriter(w io.Writer, level, component string) zerolog.Logger {
	ctx := zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp()
	if component != "" {
		ctx = ctx.Str("component", component)
	}
	return ctx.Logger()
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level; unknown values mean info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Component derives a child logger for a component of a root logger built
// without one.
func Component(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
