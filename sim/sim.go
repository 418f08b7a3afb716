// Package sim runs computations in a single process, simulating the
// placements with in-memory member lists.
package sim

import (
	"context"
	"fmt"

	"github.com/fedflow/fedflow/comp"
	"github.com/fedflow/fedflow/debug"
	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/intrinsic"
	"github.com/fedflow/fedflow/value"
)

// Runner invokes computations against a fixed client cardinality.
type Runner struct {
	clients int
}

type Option func(*Runner)

// WithClients sets the simulated client count.
func WithClients(n int) Option {
	return func(r *Runner) { r.clients = n }
}

func New(opts ...Option) *Runner {
	r := &Runner{clients: intrinsic.DefaultClients}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Clients() int { return r.clients }

// Invoke calls c with arg, an ordinary Go literal bound against the
// computation's parameter type. The result comes back as a plain Go
// value.
func (r *Runner) Invoke(ctx context.Context, c comp.Computation, arg any) (any, error) {
	sig := c.TypeSignature()
	var v *value.Value
	if sig.Param != nil {
		bound, err := value.FromGo(arg, sig.Param)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", c.Name(), ErrArg, err)
		}
		if err := r.checkCardinality(bound); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name(), err)
		}
		v = bound
	} else if arg != nil {
		return nil, fmt.Errorf("%s: %w: computation takes no argument", c.Name(), ErrArg)
	}
	if debug.Invoke() {
		debug.Logf("invoke %s : %s with %d clients\n", c.Name(), sig, r.clients)
	}
	env := &intrinsic.Env{Clients: r.clients}
	res, err := c.Call(ctx, env, v)
	if err != nil {
		return nil, err
	}
	return value.ToGo(res), nil
}

// checkCardinality rejects non-all-equal clients-placed arguments whose
// member count differs from the runner's.
func (r *Runner) checkCardinality(v *value.Value) error {
	if v == nil {
		return nil
	}
	if ft, ok := v.Type.(*ftype.FederatedType); ok {
		if !ft.Placement.Singleton() && !ft.AllEqual && len(v.Elems) != r.clients {
			return fmt.Errorf("%w: %d members at %s, runner has %d clients",
				ErrCardinality, len(v.Elems), ft.Placement, r.clients)
		}
	}
	for _, e := range v.Elems {
		if err := r.checkCardinality(e); err != nil {
			return err
		}
	}
	return nil
}
