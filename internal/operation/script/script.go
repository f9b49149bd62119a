// Package script provides the operation for running an uploaded script.
package script

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/opsforge/sshops/internal/connector"
	"github.com/opsforge/sshops/internal/operation"
)

func init() {
	operation.Register(&Operation{})
}

// tempDir is the remote staging directory for script bodies.
const tempDir = "/tmp"

// Operation stages a script on the target host, runs it, and removes it.
type Operation struct{}

// Name returns the operation identifier.
func (o *Operation) Name() string {
	return "script"
}

// Run executes the script operation.
//
// Parameters:
//   - script (string, required): The script body, transferred verbatim
//   - interpreter (string): Interpreter to invoke (default: "sh")
//   - chdir (string): Change to this directory before running
//
// The body is staged to a collision-resistant temp path over the SFTP
// sub-channel, which preserves arbitrary content without any shell
// interpretation. The reported duration covers only the execution step,
// not staging. The temp file is removed on every path; removal failures
// are recorded in the result, never escalated.
func (o *Operation) Run(ctx context.Context, conn connector.Connector, params map[string]any) (*operation.Result, error) {
	body, err := operation.RequireString(params, "script")
	if err != nil {
		return nil, err
	}

	interpreter := operation.GetString(params, "interpreter", "sh")
	chdir := operation.GetString(params, "chdir", "")

	remotePath := tempPath()

	if err := conn.Upload(ctx, strings.NewReader(body), remotePath, 0o700); err != nil {
		return nil, &operation.TransferError{Path: remotePath, Err: err}
	}

	cmd := fmt.Sprintf("%s %s", interpreter, operation.ShellQuote(remotePath))
	if chdir != "" {
		cmd = fmt.Sprintf("cd %s && %s", operation.ShellQuote(chdir), cmd)
	}

	result, execErr := conn.Execute(ctx, cmd)

	// Cleanup runs regardless of how execution went. A stale temp file
	// is a diagnostic, not a failure. Use a fresh context so cleanup
	// still happens after cancellation.
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	cleanupErr := conn.Remove(cleanupCtx, remotePath)
	cancel()

	if execErr != nil {
		return nil, fmt.Errorf("failed to execute script: %w", execErr)
	}

	data := map[string]any{
		"path":        remotePath,
		"stdout":      result.Stdout,
		"stderr":      result.Stderr,
		"exit_code":   result.ExitCode,
		"duration_ms": result.Duration.Milliseconds(),
	}
	if cleanupErr != nil {
		data["cleanup_error"] = cleanupErr.Error()
	}

	return operation.OKWithData("script executed", data), nil
}

// tempPath generates a collision-resistant remote staging path,
// keyed by timestamp plus a random suffix.
func tempPath() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s/sshops_%d_%s", tempDir, time.Now().UnixNano(), hex.EncodeToString(buf))
}

// Ensure Operation implements the operation.Operation interface.
var _ operation.Operation = (*Operation)(nil)
