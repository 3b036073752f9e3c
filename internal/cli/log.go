// Package cli implements the flowgraph command-line interface.
//
// The commands read workflow definitions and phase status files, run them
// through the render pipeline and write the result to disk or stdout:
//   - render: draw a workflow definition as a layered graph
//   - task: draw a running task from its phase statuses, looking the
//     workflow up by type and falling back to a single row
//   - layers: print the layering as a table
//   - inspect: report structural problems (dangling or duplicate refs,
//     cycles, redundant dependencies)
//   - watch: redraw a workflow as its phase status file changes
//   - serve: run the HTTP server
//   - cache: manage the artifact cache
//
// # Configuration
//
// Settings are read from $XDG_CONFIG_HOME/flowgraph/config.toml, or the file
// given with --config. Flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs layout, render, cache and source events.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "HH:MM:SS.ms" (e.g. "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. It is not safe for concurrent
// use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Rendered feature.yaml (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
