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
	valueAtClientsIn = &valueAt{name: "federated_value_at_clients", p: placement.Clients}
	valueAtServerIn  = &valueAt{name: "federated_value_at_server", p: placement.Server}
	broadcastIn      = &broadcast{name: "federated_broadcast"}
)

// ValueAtClients places an unplaced constant at CLIENTS, all-equal.
func ValueAtClients() Intrinsic { return valueAtClientsIn }

// ValueAtServer places an unplaced constant at SERVER.
func ValueAtServer() Intrinsic { return valueAtServerIn }

// Broadcast moves a server value to CLIENTS, all-equal.
func Broadcast() Intrinsic { return broadcastIn }

type valueAt struct {
	name
	p *placement.Placement
}

func (in *valueAt) Signature(args ...ftype.Type) (*ftype.FunctionType, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: %w: got %d want 1", in.Name(), ErrArity, len(args))
	}
	if ftype.ContainsFederated(args[0]) {
		return nil, fmt.Errorf("%s: %w: %s is already placed", in.Name(), ErrPlacement, args[0])
	}
	res, err := ftype.Federated(args[0], in.p, true)
	if err != nil {
		return nil, err
	}
	return ftype.Function(args[0], res), nil
}

func (in *valueAt) Apply(ctx context.Context, env *Env, args ...*value.Value) (*value.Value, error) {
	if _, err := in.Signature(argTypes(args)...); err != nil {
		return nil, err
	}
	if debug.Intrinsic() {
		debug.Logf("%s %s\n", in.Name(), args[0].Type)
	}
	return value.FederatedOf(in.p, []*value.Value{args[0].Clone()}, true)
}

type broadcast struct {
	name
}

func (in *broadcast) Signature(args ...ftype.Type) (*ftype.FunctionType, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: %w: got %d want 1", in.Name(), ErrArity, len(args))
	}
	ft, ok := args[0].(*ftype.FederatedType)
	if !ok || ft.Placement != placement.Server {
		return nil, fmt.Errorf("%s: %w: want a value at SERVER, got %s", in.Name(), ErrPlacement, args[0])
	}
	res, err := ftype.Federated(ft.Member, placement.Clients, true)
	if err != nil {
		return nil, err
	}
	return ftype.Function(args[0], res), nil
}

func (in *broadcast) Apply(ctx context.Context, env *Env, args ...*value.Value) (*value.Value, error) {
	if _, err := in.Signature(argTypes(args)...); err != nil {
		return nil, err
	}
	if debug.Intrinsic() {
		debug.Logf("%s %s\n", in.Name(), args[0].Type)
	}
	return value.FederatedOf(placement.Clients, []*value.Value{args[0].Elems[0].Clone()}, true)
}
