package log

import (
	"context"
	"io"

	clog "github.com/containerd/log"
)

// IsVerbose is set when debug output was requested on the command line
var IsVerbose bool

// Fields is a set of structured log fields
type Fields = clog.Fields

// Entry is a logger with attached fields
type Entry = clog.Entry

// L is the process-wide logger used when a context carries none
var L = clog.L

// Setup configures level, format and destination of the process-wide logger
func Setup(out io.Writer, verbose bool, format string) error {
	IsVerbose = verbose

	level := "info"
	if verbose {
		level = "debug"
	}
	if err := clog.SetLevel(level); err != nil {
		return err
	}
	if err := clog.SetFormat(clog.OutputFormat(format)); err != nil {
		return err
	}
	clog.L.Logger.SetOutput(out)

	return nil
}

// G returns the logger carried by ctx
func G(ctx context.Context) *Entry {
	return clog.G(ctx)
}

// WithLogger returns a context carrying logger
func WithLogger(ctx context.Context, logger *Entry) context.Context {
	return clog.WithLogger(ctx, logger)
}
