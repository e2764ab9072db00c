// Package logging builds the hclog loggers used across the host.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New creates the application logger writing to stderr at the given
// level ("trace", "debug", "info", "warn", "error"). An unknown level
// falls back to info.
func New(level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "claphost",
		Level:  hclog.LevelFromString(level),
		Output: os.Stderr,
	})
}

// NewNativeLogger creates the logger handed to the native loader. The
// loader is chatty at debug level, so it stays silent unless debug is
// requested.
func NewNativeLogger(debug bool) hclog.Logger {
	level := hclog.Error
	output := io.Writer(io.Discard)

	if debug {
		level = hclog.Debug
		output = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "claphost-native",
		Level:  level,
		Output: output,
	})
}
