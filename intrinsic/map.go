package intrinsic

import (
	"context"
	"fmt"

	"github.com/fedflow/fedflow/debug"
	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/placement"
	"github.com/fedflow/fedflow/value"
)

var (
	mapIn         = &fedMap{name: "federated_map"}
	mapAllEqualIn = &fedMap{name: "federated_map_all_equal", allEqual: true}
	zipIn         = &fedZip{name: "federated_zip_at_clients"}
)

// Map applies a local function to every member of a clients-placed value.
func Map() Intrinsic { return mapIn }

// MapAllEqual is Map restricted to all-equal input, preserving the
// all-equal bit on the result.
func MapAllEqual() Intrinsic { return mapAllEqualIn }

// ZipAtClients pairs up two clients-placed values member by member.
func ZipAtClients() Intrinsic { return zipIn }

type fedMap struct {
	name
	allEqual bool
}

func (in *fedMap) Signature(args ...ftype.Type) (*ftype.FunctionType, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: %w: got %d want 2", in.Name(), ErrArity, len(args))
	}
	fn, ok := args[0].(*ftype.FunctionType)
	if !ok {
		return nil, fmt.Errorf("%s: %w: first argument must be a function, got %s", in.Name(), ErrType, args[0])
	}
	if ftype.ContainsFederated(fn) {
		return nil, fmt.Errorf("%s: %w: mapped function must be local, got %s", in.Name(), ErrPlacement, fn)
	}
	ft, ok := args[1].(*ftype.FederatedType)
	if !ok || ft.Placement != placement.Clients {
		return nil, fmt.Errorf("%s: %w: want a value at CLIENTS, got %s", in.Name(), ErrPlacement, args[1])
	}
	if in.allEqual && !ft.AllEqual {
		return nil, fmt.Errorf("%s: %w: want an all-equal value, got %s", in.Name(), ErrType, args[1])
	}
	if !ftype.AssignableFrom(fn.Param, ft.Member) {
		return nil, fmt.Errorf("%s: %w: member %s does not fit parameter %s", in.Name(), ErrType, ft.Member, fn.Param)
	}
	res, err := ftype.Federated(fn.Result, placement.Clients, in.allEqual)
	if err != nil {
		return nil, err
	}
	return ftype.Function(ftype.Struct(ftype.Field{Type: fn}, ftype.Field{Type: ft}), res), nil
}

func (in *fedMap) Apply(ctx context.Context, env *Env, args ...*value.Value) (*value.Value, error) {
	sig, err := in.Signature(argTypes(args)...)
	if err != nil {
		return nil, err
	}
	fn, fed := args[0], args[1]
	if debug.Intrinsic() {
		debug.Logf("%s %s over %s\n", in.Name(), fn.Type, fed.Type)
	}
	var members []*value.Value
	if in.allEqual {
		members = []*value.Value{fed.Elems[0]}
	} else {
		members, err = fed.Members(env.clients())
		if err != nil {
			return nil, err
		}
	}
	mapped := make([]*value.Value, len(members))
	for i, m := range members {
		r, err := fn.Fn(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("%s: member %d: %w", in.Name(), i, err)
		}
		mapped[i] = r
	}
	res, err := value.FederatedOf(placement.Clients, mapped, in.allEqual)
	if err != nil {
		return nil, err
	}
	if err := value.Check(res, sig.Result); err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name(), err)
	}
	return res, nil
}

type fedZip struct {
	name
}

func (in *fedZip) Signature(args ...ftype.Type) (*ftype.FunctionType, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: %w: got %d want 2", in.Name(), ErrArity, len(args))
	}
	members := make([]ftype.Field, len(args))
	for i, a := range args {
		ft, ok := a.(*ftype.FederatedType)
		if !ok || ft.Placement != placement.Clients {
			return nil, fmt.Errorf("%s: %w: want values at CLIENTS, got %s", in.Name(), ErrPlacement, a)
		}
		members[i] = ftype.Field{Type: ft.Member}
	}
	res, err := ftype.Federated(ftype.Struct(members...), placement.Clients, false)
	if err != nil {
		return nil, err
	}
	params := make([]ftype.Field, len(args))
	for i, a := range args {
		params[i] = ftype.Field{Type: a}
	}
	return ftype.Function(ftype.Struct(params...), res), nil
}

func (in *fedZip) Apply(ctx context.Context, env *Env, args ...*value.Value) (*value.Value, error) {
	if _, err := in.Signature(argTypes(args)...); err != nil {
		return nil, err
	}
	n := env.clients()
	a, err := args[0].Members(n)
	if err != nil {
		return nil, err
	}
	b, err := args[1].Members(n)
	if err != nil {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("%s: %w: %d vs %d members", in.Name(), ErrCardinality, len(a), len(b))
	}
	pairs := make([]*value.Value, len(a))
	for i := range a {
		st := ftype.Struct(ftype.Field{Type: a[i].Type}, ftype.Field{Type: b[i].Type})
		pair, err := value.StructOf(st, []*value.Value{a[i].Clone(), b[i].Clone()})
		if err != nil {
			return nil, err
		}
		pairs[i] = pair
	}
	return value.FederatedOf(placement.Clients, pairs, false)
}
