// Package mock provides an in-memory connector for testing operations
// without a network.
package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/opsforge/sshops/internal/connector"
)

// Connector is an in-memory connector.Connector. Commands are answered
// from Responses (or ExecuteFunc when set), file operations act on the
// Files map. The zero value is usable: every command succeeds with empty
// output and the remote filesystem starts empty.
type Connector struct {
	// Responses maps exact command strings to canned results.
	Responses map[string]*connector.Result

	// ExecuteFunc, when set, answers every command and overrides Responses.
	ExecuteFunc func(cmd string) (*connector.Result, error)

	// Files is the fake remote filesystem, path to content.
	Files map[string][]byte

	// Modes records the mode passed to Upload, by path.
	Modes map[string]uint32

	// ModTime is the modification time reported by Stat.
	ModTime time.Time

	// Error injection per call kind.
	ConnectErr  error
	ExecuteErr  error
	UploadErr   error
	DownloadErr error
	StatErr     error
	RemoveErr   error

	// Observed calls.
	Commands []string
	Removed  []string
	Closed   bool
}

// Connect records nothing and returns ConnectErr.
func (c *Connector) Connect(ctx context.Context) error {
	return c.ConnectErr
}

// Execute records the command and answers it.
func (c *Connector) Execute(ctx context.Context, cmd string) (*connector.Result, error) {
	c.Commands = append(c.Commands, cmd)

	if c.ExecuteErr != nil {
		return nil, c.ExecuteErr
	}
	if c.ExecuteFunc != nil {
		return c.ExecuteFunc(cmd)
	}
	if r, ok := c.Responses[cmd]; ok {
		return r, nil
	}
	return &connector.Result{}, nil
}

// Upload stores the content in Files.
func (c *Connector) Upload(ctx context.Context, src io.Reader, dst string, mode uint32) error {
	if c.UploadErr != nil {
		return c.UploadErr
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return err
	}

	if c.Files == nil {
		c.Files = make(map[string][]byte)
	}
	c.Files[dst] = buf.Bytes()

	if c.Modes == nil {
		c.Modes = make(map[string]uint32)
	}
	c.Modes[dst] = mode

	return nil
}

// Download copies the stored content into dst.
func (c *Connector) Download(ctx context.Context, src string, dst io.Writer) error {
	if c.DownloadErr != nil {
		return c.DownloadErr
	}

	data, ok := c.Files[src]
	if !ok {
		return fmt.Errorf("no such file: %s", src)
	}

	_, err := dst.Write(data)
	return err
}

// Stat reports metadata for a stored file.
func (c *Connector) Stat(ctx context.Context, path string) (*connector.FileInfo, error) {
	if c.StatErr != nil {
		return nil, c.StatErr
	}

	data, ok := c.Files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}

	mode := "0644"
	if m, ok := c.Modes[path]; ok && m != 0 {
		mode = fmt.Sprintf("%04o", m)
	}

	return &connector.FileInfo{
		Path:    path,
		Size:    int64(len(data)),
		Mode:    mode,
		ModTime: c.ModTime,
	}, nil
}

// Remove deletes a stored file and records the path.
func (c *Connector) Remove(ctx context.Context, path string) error {
	c.Removed = append(c.Removed, path)

	if c.RemoveErr != nil {
		return c.RemoveErr
	}

	delete(c.Files, path)
	return nil
}

// Close records that the connector was closed.
func (c *Connector) Close() error {
	c.Closed = true
	return nil
}

// String returns a description of the connection.
func (c *Connector) String() string {
	return "mock://"
}

// Ensure Connector implements the connector.Connector interface.
var _ connector.Connector = (*Connector)(nil)
