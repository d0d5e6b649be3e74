// Package logger builds the diagnostic loggers used by sysmonitor.
// The TUI owns the terminal, so diagnostics go to a file instead of stderr.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// DefaultFile is where diagnostics land when no path is configured.
const DefaultFile = "sysmonitor-debug.log"

// New returns a logger named "sysmonitor" writing to w at the given level.
// Unknown levels fall back to info.
func New(w io.Writer, level string) hclog.Logger {
	lvl := hclog.LevelFromString(strings.TrimSpace(level))
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "sysmonitor",
		Level:      lvl,
		Output:     w,
		TimeFormat: "2006-01-02T15:04:05",
	})
}

// OpenFile opens path for appending and returns a logger writing into it
// together with the file so the caller can close it on shutdown.
func OpenFile(path, level string) (hclog.Logger, *os.File, error) {
	if path == "" {
		path = DefaultFile
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}

// Discard returns a logger that drops everything.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
