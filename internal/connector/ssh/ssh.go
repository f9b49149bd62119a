// Package ssh provides a connector for executing operations on remote
// hosts over SSH. Each connector is scoped to a single operation: it owns
// one authenticated transport and, lazily, one SFTP sub-channel, and both
// are released on Close.
package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/pkg/sftp"
	gossh "golang.org/x/crypto/ssh"

	"github.com/opsforge/sshops/internal/config"
	"github.com/opsforge/sshops/internal/connector"
)

// Connector executes operations on a remote host over SSH.
type Connector struct {
	params *config.Params
	client *gossh.Client
	sftp   *sftp.Client
}

// New creates a new SSH connector from resolved connection parameters.
func New(params *config.Params) *Connector {
	return &Connector{params: params}
}

// Connect dials the target and authenticates with the configured key.
// The host key is verified against the known-hosts entry when one exists,
// otherwise verification is skipped.
func (c *Connector) Connect(ctx context.Context) error {
	cfg := &gossh.ClientConfig{
		User:            c.params.User,
		Auth:            []gossh.AuthMethod{gossh.PublicKeys(c.params.Signer)},
		HostKeyCallback: hostKeyCallback(c.params.Host, c.params.HostKey),
		Timeout:         10 * time.Second,
	}

	// Restrict negotiation to algorithms the expected key can satisfy so
	// the server presents a comparable key instead of a different host
	// key type.
	if c.params.HostKey != nil {
		cfg.HostKeyAlgorithms = hostKeyAlgorithms(c.params.HostKey)
	}

	addr := net.JoinHostPort(c.params.Host, fmt.Sprintf("%d", c.params.Port))

	dialer := net.Dialer{Timeout: cfg.Timeout}
	tcp, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &ConnectionError{Host: c.params.Host, Err: fmt.Errorf("dial failed: %w", err)}
	}

	// NewClientConn does not watch the context, so run the handshake in a
	// goroutine and close the socket on cancellation to unblock it. A
	// server that accepts TCP but stalls would otherwise hang here past
	// any deadline.
	type handshake struct {
		conn  gossh.Conn
		chans <-chan gossh.NewChannel
		reqs  <-chan *gossh.Request
		err   error
	}

	done := make(chan handshake, 1)
	go func() {
		conn, chans, reqs, err := gossh.NewClientConn(tcp, addr, cfg)
		done <- handshake{conn, chans, reqs, err}
	}()

	var hs handshake
	select {
	case <-ctx.Done():
		_ = tcp.Close()
		<-done
		return &ConnectionError{Host: c.params.Host, Err: ctx.Err()}
	case hs = <-done:
	}

	if hs.err != nil {
		_ = tcp.Close()

		mismatch := &HostKeyMismatchError{}
		if errors.As(hs.err, &mismatch) {
			return &ConnectionError{Host: c.params.Host, Err: mismatch}
		}
		return &ConnectionError{Host: c.params.Host, Err: fmt.Errorf("handshake failed: %w", hs.err)}
	}

	c.client = gossh.NewClient(hs.conn, hs.chans, hs.reqs)
	return nil
}

// Execute runs a command on the remote host and returns the result.
// A non-zero exit code is a normal result; only a failure to dispatch the
// command or read its output is an error.
func (c *Connector) Execute(ctx context.Context, cmd string) (*connector.Result, error) {
	if c.client == nil {
		return nil, &ConnectionError{Host: c.params.Host, Err: errors.New("not connected")}
	}

	session, err := c.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	start := time.Now()

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		// Closing the session unblocks the Run goroutine.
		_ = session.Close()
		<-done
		return nil, ctx.Err()
	case err = <-done:
	}

	result := &connector.Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		exitErr := &gossh.ExitError{}
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitStatus()
			return result, nil
		}
		return nil, fmt.Errorf("failed to execute command: %w", err)
	}

	return result, nil
}

// Upload streams src to the remote path dst over SFTP.
func (c *Connector) Upload(ctx context.Context, src io.Reader, dst string, mode uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := c.ensureSFTP()
	if err != nil {
		return err
	}

	f, err := client.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create remote file %s: %w", dst, err)
	}
	defer f.Close()

	if err := copyContext(ctx, f, src, f); err != nil {
		return fmt.Errorf("failed to write remote file %s: %w", dst, err)
	}

	if mode != 0 {
		if err := client.Chmod(dst, os.FileMode(mode)); err != nil {
			return fmt.Errorf("failed to chmod remote file %s: %w", dst, err)
		}
	}

	return nil
}

// Download streams the remote file at src into dst.
func (c *Connector) Download(ctx context.Context, src string, dst io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := c.ensureSFTP()
	if err != nil {
		return err
	}

	f, err := client.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open remote file %s: %w", src, err)
	}
	defer f.Close()

	if err := copyContext(ctx, dst, f, f); err != nil {
		return fmt.Errorf("failed to read remote file %s: %w", src, err)
	}

	return nil
}

// Stat returns metadata for the remote path. The mode is reported as an
// octal string, matching what the remote host would print.
func (c *Connector) Stat(ctx context.Context, path string) (*connector.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := c.ensureSFTP()
	if err != nil {
		return nil, err
	}

	fi, err := client.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat remote path %s: %w", path, err)
	}

	return &connector.FileInfo{
		Path:    path,
		Size:    fi.Size(),
		Mode:    fmt.Sprintf("%04o", fi.Mode().Perm()),
		ModTime: fi.ModTime(),
	}, nil
}

// Remove deletes the remote file at path.
func (c *Connector) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := c.ensureSFTP()
	if err != nil {
		return err
	}

	if err := client.Remove(path); err != nil {
		return fmt.Errorf("failed to remove remote file %s: %w", path, err)
	}

	return nil
}

// Close releases the SFTP sub-channel and the transport. It is safe to
// call on a connector that never connected.
func (c *Connector) Close() error {
	var firstErr error

	if c.sftp != nil {
		if err := c.sftp.Close(); err != nil {
			firstErr = err
		}
		c.sftp = nil
	}

	if c.client != nil {
		if err := c.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.client = nil
	}

	return firstErr
}

// String returns a description of the connection.
func (c *Connector) String() string {
	return fmt.Sprintf("ssh://%s@%s:%d", c.params.User, c.params.Host, c.params.Port)
}

// copyContext copies src into dst, closing abort on cancellation so an
// in-flight transfer unblocks instead of running to completion.
func copyContext(ctx context.Context, dst io.Writer, src io.Reader, abort io.Closer) error {
	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(dst, src)
		done <- err
	}()

	select {
	case <-ctx.Done():
		_ = abort.Close()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// ensureSFTP opens the file-transfer sub-channel on first use.
func (c *Connector) ensureSFTP() (*sftp.Client, error) {
	if c.client == nil {
		return nil, &ConnectionError{Host: c.params.Host, Err: errors.New("not connected")}
	}

	if c.sftp == nil {
		client, err := sftp.NewClient(c.client)
		if err != nil {
			return nil, fmt.Errorf("failed to open sftp channel: %w", err)
		}
		c.sftp = client
	}

	return c.sftp, nil
}

// Ensure Connector implements the connector.Connector interface.
var _ connector.Connector = (*Connector)(nil)
