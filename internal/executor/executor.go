// Package executor runs single operations against target hosts.
package executor

import (
	"context"
	"fmt"
	"os"

	"github.com/opsforge/sshops/internal/config"
	"github.com/opsforge/sshops/internal/connector/ssh"
	"github.com/opsforge/sshops/internal/operation"
	"github.com/opsforge/sshops/internal/output"
)

// Executor resolves operation requests and runs them over short-lived
// SSH sessions. Each Run call opens its own session and closes it before
// returning; nothing is shared between calls except the read-only
// configuration, so any number of Runs may proceed concurrently.
type Executor struct {
	// Config holds the application-level connection defaults.
	Config *config.Config

	// Output handles formatted output.
	Output *output.Output
}

// New creates a new executor.
func New(cfg *config.Config) *Executor {
	return &Executor{
		Config: cfg,
		Output: output.New(os.Stdout),
	}
}

// Run executes one operation against the target. Configuration faults
// are returned before any network I/O; connection faults abort before the
// operation sees a session. The session is closed on every path.
func (e *Executor) Run(ctx context.Context, target config.Target, opName string, params map[string]any) (*operation.Result, error) {
	op := operation.Get(opName)
	if op == nil {
		return nil, fmt.Errorf("unknown operation: %s", opName)
	}

	resolved, err := e.Config.Resolve(target)
	if err != nil {
		return nil, err
	}

	if resolved.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, resolved.Timeout)
		defer cancel()
	}

	conn := ssh.New(resolved)

	e.Output.Debug("connecting to %s", conn.String())
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			e.Output.Debug("close failed for %s: %v", conn.String(), err)
		}
	}()

	e.Output.Debug("running operation %s on %s", opName, conn.String())
	result, err := op.Run(ctx, conn, params)
	if err != nil {
		return nil, fmt.Errorf("operation %s failed: %w", opName, err)
	}

	return result, nil
}
