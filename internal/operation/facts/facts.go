// Package facts provides the operation for collecting host metadata.
package facts

import (
	"context"

	"github.com/opsforge/sshops/internal/connector"
	"github.com/opsforge/sshops/internal/operation"
	"github.com/opsforge/sshops/pkg/facts"
)

func init() {
	operation.Register(&Operation{})
}

// Operation collects a normalized metadata record from the target host.
type Operation struct{}

// Name returns the operation identifier.
func (o *Operation) Name() string {
	return "facts"
}

// Run executes the facts operation. It takes no parameters. Individual
// probes degrade to zero values; the operation itself only fails when the
// session cannot be used at all.
func (o *Operation) Run(ctx context.Context, conn connector.Connector, params map[string]any) (*operation.Result, error) {
	f := facts.Gather(ctx, conn)
	return operation.OKWithData("facts gathered", f.Map()), nil
}

// Ensure Operation implements the operation.Operation interface.
var _ operation.Operation = (*Operation)(nil)
