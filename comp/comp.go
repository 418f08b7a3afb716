// Package comp implements the two kinds of computation units: federated
// computations, restricted to composing distributed operators over placed
// values, and local computations, restricted to ordinary computation over
// placement-free values and sequences.
package comp

import (
	"context"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/intrinsic"
	"github.com/fedflow/fedflow/value"
)

// Computation is a declared computation unit. It is invoked as an ordinary
// callable through Call (or through a sim.Runner for plain Go literals).
type Computation interface {
	Name() string
	TypeSignature() *ftype.FunctionType
	Call(ctx context.Context, env *intrinsic.Env, arg *value.Value) (*value.Value, error)
}

// AsValue wraps a local computation as a function-typed value, the form in
// which it can be fed to federated_map.
func AsValue(c Computation, env *intrinsic.Env) *value.Value {
	return value.FromFn(c.TypeSignature(), func(ctx context.Context, arg *value.Value) (*value.Value, error) {
		return c.Call(ctx, env, arg)
	})
}
