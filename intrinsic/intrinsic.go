// Package intrinsic implements the distributed operators of the federated
// vocabulary and their single-process simulation semantics. Operators are
// looked up by name in a registry.
package intrinsic

import (
	"context"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/value"
)

// DefaultClients is the cardinality used when none is configured.
const DefaultClients = 3

// Env carries the simulated cardinalities of an invocation.
type Env struct {
	Clients int
}

func (e *Env) clients() int {
	if e == nil || e.Clients <= 0 {
		return DefaultClients
	}
	return e.Clients
}

// Intrinsic is a distributed operator. Signature derives the concrete
// function type for the given argument types, rejecting ill-placed
// arguments; Apply simulates the operator locally. Apply never mutates its
// arguments.
type Intrinsic interface {
	Name() string
	Signature(args ...ftype.Type) (*ftype.FunctionType, error)
	Apply(ctx context.Context, env *Env, args ...*value.Value) (*value.Value, error)
}

type name string

func (n name) Name() string { return string(n) }

func argTypes(args []*value.Value) []ftype.Type {
	res := make([]ftype.Type, len(args))
	for i, a := range args {
		res[i] = a.Type
	}
	return res
}
