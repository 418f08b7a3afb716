package comp

import (
	"context"
	"fmt"

	"github.com/fedflow/fedflow/debug"
	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/intrinsic"
	"github.com/fedflow/fedflow/value"
)

// Runtime is the surface a federated computation body composes against. It
// exposes exactly the distributed operator vocabulary; anything local has
// to go through Map with a local computation.
type Runtime struct {
	ctx context.Context
	env *intrinsic.Env
}

func (rt *Runtime) apply(name string, args ...*value.Value) (*value.Value, error) {
	if err := rt.ctx.Err(); err != nil {
		return nil, err
	}
	in := intrinsic.Lookup(name)
	if in == nil {
		return nil, fmt.Errorf("%w: %s", intrinsic.ErrUnknown, name)
	}
	return in.Apply(rt.ctx, rt.env, args...)
}

// Map applies a local computation to every member of a clients-placed
// value.
func (rt *Runtime) Map(fn Computation, v *value.Value) (*value.Value, error) {
	return rt.apply("federated_map", AsValue(fn, rt.env), v)
}

// MapAllEqual is Map preserving the all-equal bit.
func (rt *Runtime) MapAllEqual(fn Computation, v *value.Value) (*value.Value, error) {
	return rt.apply("federated_map_all_equal", AsValue(fn, rt.env), v)
}

// Mean aggregates a clients-placed value to its arithmetic mean at the
// server.
func (rt *Runtime) Mean(v *value.Value) (*value.Value, error) {
	return rt.apply("federated_mean", v)
}

// Sum aggregates a clients-placed value to its sum at the server.
func (rt *Runtime) Sum(v *value.Value) (*value.Value, error) {
	return rt.apply("federated_sum", v)
}

// WeightedMean averages v with per-member weights w.
func (rt *Runtime) WeightedMean(v, w *value.Value) (*value.Value, error) {
	return rt.apply("federated_weighted_mean", v, w)
}

// Broadcast moves a server value to the clients.
func (rt *Runtime) Broadcast(v *value.Value) (*value.Value, error) {
	return rt.apply("federated_broadcast", v)
}

// Zip pairs two clients-placed values member by member.
func (rt *Runtime) Zip(a, b *value.Value) (*value.Value, error) {
	return rt.apply("federated_zip_at_clients", a, b)
}

// ValueAtClients places an unplaced constant at CLIENTS, all-equal.
func (rt *Runtime) ValueAtClients(v *value.Value) (*value.Value, error) {
	return rt.apply("federated_value_at_clients", v)
}

// ValueAtServer places an unplaced constant at SERVER.
func (rt *Runtime) ValueAtServer(v *value.Value) (*value.Value, error) {
	return rt.apply("federated_value_at_server", v)
}

// Select maps a clients-placed struct to one of its named fields.
func (rt *Runtime) Select(v *value.Value, field string) (*value.Value, error) {
	ft, ok := v.Type.(*ftype.FederatedType)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not placed", ErrType, v.Type)
	}
	sel, err := Selector(ft.Member, field)
	if err != nil {
		return nil, err
	}
	if ft.AllEqual {
		return rt.MapAllEqual(sel, v)
	}
	return rt.Map(sel, v)
}

// Selector builds the local computation picking a named field out of a
// struct.
func Selector(member ftype.Type, field string) (*LocalComp, error) {
	st, ok := member.(*ftype.StructType)
	if !ok {
		return nil, fmt.Errorf("%w: cannot select %q from %s", ErrType, field, member)
	}
	i := st.FieldIndex(field)
	if i < 0 {
		return nil, fmt.Errorf("%w: no field %q in %s", ErrType, field, st)
	}
	return Local("select_"+field, st, st.Fields[i].Type,
		func(ctx context.Context, arg *value.Value) (*value.Value, error) {
			return arg.Elems[i].Clone(), nil
		})
}

// FederatedComp is a computation expressed in the federated vocabulary.
type FederatedComp struct {
	name string
	sig  *ftype.FunctionType
	body func(rt *Runtime, arg *value.Value) (*value.Value, error)
}

// Federated declares a federated computation. The result type is derived
// by tracing the body once over a synthetic all-ones argument, so the body
// must be total for such inputs and deterministic in the types it
// produces.
func Federated(name string, param ftype.Type, body func(rt *Runtime, arg *value.Value) (*value.Value, error)) (*FederatedComp, error) {
	var arg *value.Value
	if param != nil {
		if err := ftype.Check(param); err != nil {
			return nil, err
		}
		ones, err := value.Ones(param, intrinsic.DefaultClients)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", name, ErrTrace, err)
		}
		arg = ones
	}
	rt := &Runtime{ctx: context.Background(), env: &intrinsic.Env{Clients: intrinsic.DefaultClients}}
	res, err := body(rt, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, ErrTrace, err)
	}
	if debug.Invoke() {
		debug.Logf("traced %s : %s\n", name, ftype.Function(param, res.Type))
	}
	return &FederatedComp{
		name: name,
		sig:  ftype.Function(param, res.Type),
		body: body,
	}, nil
}

func (c *FederatedComp) Name() string { return c.name }

func (c *FederatedComp) TypeSignature() *ftype.FunctionType { return c.sig }

func (c *FederatedComp) Call(ctx context.Context, env *intrinsic.Env, arg *value.Value) (*value.Value, error) {
	if c.sig.Param != nil {
		if err := value.Check(arg, c.sig.Param); err != nil {
			return nil, fmt.Errorf("%s: argument: %w", c.name, err)
		}
	}
	rt := &Runtime{ctx: ctx, env: env}
	res, err := c.body(rt, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	if err := value.Check(res, c.sig.Result); err != nil {
		return nil, fmt.Errorf("%s: result: %w", c.name, err)
	}
	return res, nil
}
