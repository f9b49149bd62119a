// Package connector defines the interface for executing work on remote hosts.
package connector

import (
	"context"
	"io"
	"time"
)

// Result holds the output from command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int

	// Duration is the wall-clock time of the remote execution,
	// measured from dispatch to completion.
	Duration time.Duration
}

// FileInfo describes a remote file.
type FileInfo struct {
	Path    string
	Size    int64
	Mode    string // octal, as reported by the remote host (e.g. "0644")
	ModTime time.Time
}

// Connector is the interface for connecting to and operating on a target.
// A connector is scoped to a single operation: Connect, do one unit of
// work, Close. Implementations are not safe for concurrent use.
type Connector interface {
	// Connect establishes a connection to the target.
	Connect(ctx context.Context) error

	// Execute runs a command on the target and returns the result.
	// A non-zero exit code is reported in the Result, not as an error.
	Execute(ctx context.Context, cmd string) (*Result, error)

	// Upload writes content from src to the remote path dst.
	// A zero mode leaves the remote default untouched.
	Upload(ctx context.Context, src io.Reader, dst string, mode uint32) error

	// Download reads the remote file at src into dst.
	Download(ctx context.Context, src string, dst io.Writer) error

	// Stat returns metadata for the remote path.
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Remove deletes the remote file at path.
	Remove(ctx context.Context, path string) error

	// Close terminates the connection.
	Close() error

	// String returns a human-readable description of the connection.
	String() string
}
