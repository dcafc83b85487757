package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// Setup routes the process logger to w using the human readable cli handler.
func Setup(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetHandler(cli.New(w))
	log.SetLevel(lvl)
	return nil
}

// ParseLevel accepts apex/log level names; empty means DefaultLevel.
func ParseLevel(level string) (log.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(level))
	if trimmed == "" {
		trimmed = DefaultLevel
	}
	lvl, err := log.ParseLevel(trimmed)
	if err != nil {
		return log.InvalidLevel, fmt.Errorf("logger: invalid level %q", level)
	}
	return lvl, nil
}

// Named returns the process logger tagged with a component name.
func Named(name string) *log.Entry {
	return log.WithField("name", name)
}
