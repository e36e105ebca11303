package types

import (
	"context"
)

// Launcher starts the desktop runtime and answers version queries
type Launcher interface {
	// Installed reports whether the runtime launcher binary is available
	Installed() bool

	// ResolveChannel asks the launcher which build a release channel
	// currently points at
	ResolveChannel(ctx context.Context, channel string) (string, error)

	// Launch starts the runtime against a manifest URL
	Launch(ctx context.Context, manifestURL string) (RunningApp, error)
}

// RunningApp is a handle on a launched runtime process
type RunningApp interface {
	// PID returns the launcher process ID
	PID() int

	// Done is closed when the application exits; it yields the exit error,
	// if any
	Done() <-chan error

	// Stop terminates the application, escalating to a kill if it does not
	// exit in time
	Stop(ctx context.Context) error
}

// Reloader receives change notifications from the file watcher
type Reloader interface {
	// NotifyChanged reports that a watched path changed on disk
	NotifyChanged(path string)
}

// Logger provides structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(msg string, fields ...interface{})

	// Info logs an info message
	Info(msg string, fields ...interface{})

	// Warn logs a warning message
	Warn(msg string, fields ...interface{})

	// Error logs an error message
	Error(msg string, fields ...interface{})

	// With returns a logger with additional fields
	With(fields ...interface{}) Logger
}
