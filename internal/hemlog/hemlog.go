// Package hemlog centralises zerolog setup for the CLI's run-level
// logging: config resolution, per-phase progress, and input-validation
// warnings. Per-timestep internals stay silent deliberately; a structured
// line per timestep across a year at half-hourly resolution would be
// 17,520+ lines and drown the signal the teacher's own log.Printf calls
// were meant to carry in cmd/server/main.go.
package hemlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console-friendly zerolog.Logger writing to w (os.Stderr in
// production, a buffer in tests).
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Default is the package-level logger used by components that don't carry
// their own logger reference: the internal/live hub, handler and
// broadcaster log through it. No component takes a logger through its
// constructor; the CLI builds its own with New.
var Default = New(os.Stderr, false)
