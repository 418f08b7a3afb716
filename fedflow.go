// Package fedflow declares and runs federated computations: placed values,
// computations over them, and a single-process simulation of their
// distributed semantics.
package fedflow

import (
	"context"
	"fmt"

	"github.com/fedflow/fedflow/comp"
	"github.com/fedflow/fedflow/manifest"
	"github.com/fedflow/fedflow/sim"
)

// Tool bundles a runner with the computations it can invoke.
type Tool struct {
	Runner *sim.Runner
	Set    *manifest.Set
}

func DefaultTool() *Tool {
	return &Tool{Runner: sim.New()}
}

// NewTool builds a tool with the given simulation options.
func NewTool(opts ...sim.Option) *Tool {
	return &Tool{Runner: sim.New(opts...)}
}

// LoadManifest loads, builds and attaches a manifest's computations.
func (t *Tool) LoadManifest(path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}
	s, err := m.Build()
	if err != nil {
		return err
	}
	t.Set = s
	return nil
}

// Invoke runs a computation as an ordinary callable over plain Go
// literals.
func (t *Tool) Invoke(ctx context.Context, c comp.Computation, arg any) (any, error) {
	return t.Runner.Invoke(ctx, c, arg)
}

// InvokeNamed invokes a computation from the attached manifest.
func (t *Tool) InvokeNamed(ctx context.Context, name string, arg any) (any, error) {
	var c comp.Computation
	if t.Set != nil {
		c = t.Set.Lookup(name)
	}
	if c == nil {
		c = comp.Lookup(name)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", comp.ErrUnknown, name)
	}
	return t.Runner.Invoke(ctx, c, arg)
}

// Invoke runs a computation with the default three-client simulation.
func Invoke(ctx context.Context, c comp.Computation, arg any) (any, error) {
	return DefaultTool().Invoke(ctx, c, arg)
}
