// Package logging provides the loggers used by the command line tools.
package logging

import (
	"io"
	"log/slog"
)

// Logger implements optsim.Logger on top of two slog loggers: human readable
// progress and JSON errors.
type Logger struct {
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
}

// New logs progress to stdout with Handler and errors to stderr as JSON.
func New(stdout, stderr io.Writer) Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	return Logger{
		InfoLog:  slog.New(NewHandler(stdout, opts)),
		ErrorLog: slog.New(slog.NewJSONHandler(stderr, opts)),
	}
}

func (l Logger) Info(message string, module string) {
	l.InfoLog.Info(message, "module", module)
}

func (l Logger) Error(message string) {
	l.ErrorLog.Error(message)
}
