// Package command provides the operation for running a single shell command.
package command

import (
	"context"
	"fmt"

	"github.com/opsforge/sshops/internal/connector"
	"github.com/opsforge/sshops/internal/operation"
)

func init() {
	operation.Register(&Operation{})
}

// Operation runs one shell command on the target host.
type Operation struct{}

// Name returns the operation identifier.
func (o *Operation) Name() string {
	return "run"
}

// Run executes the command operation.
//
// Parameters:
//   - cmd (string, required): The command to execute
//   - chdir (string): Change to this directory before running
//
// The command string is passed to the remote shell as-is. A non-zero exit
// code is a normal result reported in exit_code, never an error; only a
// failure to dispatch the command fails the operation.
func (o *Operation) Run(ctx context.Context, conn connector.Connector, params map[string]any) (*operation.Result, error) {
	cmd, err := operation.RequireString(params, "cmd")
	if err != nil {
		return nil, err
	}

	chdir := operation.GetString(params, "chdir", "")

	fullCmd := cmd
	if chdir != "" {
		fullCmd = fmt.Sprintf("cd %s && %s", operation.ShellQuote(chdir), cmd)
	}

	result, err := conn.Execute(ctx, fullCmd)
	if err != nil {
		return nil, fmt.Errorf("failed to execute command: %w", err)
	}

	return operation.OKWithData("command executed", map[string]any{
		"cmd":         cmd,
		"stdout":      result.Stdout,
		"stderr":      result.Stderr,
		"exit_code":   result.ExitCode,
		"duration_ms": result.Duration.Milliseconds(),
	}), nil
}

// Ensure Operation implements the operation.Operation interface.
var _ operation.Operation = (*Operation)(nil)
