// Package operation defines the interface for discrete remote operations.
package operation

import (
	"context"
	"fmt"
	"sync"

	"github.com/opsforge/sshops/internal/connector"
)

// Result holds the outcome of a successful operation. It is a plain
// record: once returned it is never modified.
type Result struct {
	// Message is a human-readable description of what happened.
	Message string

	// Data holds the operation's structured output fields.
	Data map[string]any
}

// Operation is the interface that all operations implement. An operation
// performs exactly one unit of work over an already-connected session and
// does not retain the connection afterwards.
type Operation interface {
	// Name returns the operation's unique identifier.
	Name() string

	// Run executes the operation with the given parameters.
	Run(ctx context.Context, conn connector.Connector, params map[string]any) (*Result, error)
}

// registry holds all registered operations.
var (
	registry   = make(map[string]Operation)
	registryMu sync.RWMutex
)

// Register adds an operation to the registry.
// It panics if an operation with the same name is already registered.
func Register(op Operation) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := op.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("operation %q is already registered", name))
	}
	registry[name] = op
}

// Get retrieves an operation from the registry by name.
// Returns nil if the operation is not found.
func Get(name string) Operation {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[name]
}

// List returns the names of all registered operations.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// OK creates a Result with a message only.
func OK(msg string) *Result {
	return &Result{Message: msg}
}

// OKWithData creates a Result with structured output data.
func OKWithData(msg string, data map[string]any) *Result {
	return &Result{Message: msg, Data: data}
}
