package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates the console logger used across the service. It writes to
// stderr with timestamps; debug enables DEBUG-level output.
func New(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}
