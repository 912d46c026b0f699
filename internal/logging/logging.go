// Package logging builds the hclog loggers used across argscan
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/ludo-technologies/argscan/internal/constants"
)

// New creates a named logger writing to w at the given level.
// Unknown levels fall back to warn; a nil writer means stderr.
func New(name, level string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if name == "" {
		name = constants.ToolName
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Output: w,
		Level:  ParseLevel(level),
	})
}

// ParseLevel converts a level name into an hclog level
func ParseLevel(level string) hclog.Level {
	lvl := hclog.LevelFromString(strings.ToLower(strings.TrimSpace(level)))
	if lvl == hclog.NoLevel {
		return hclog.Warn
	}
	return lvl
}

// OrNull returns l, or a logger that discards everything when l is nil
func OrNull(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}
