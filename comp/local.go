package comp

import (
	"context"
	"fmt"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/intrinsic"
	"github.com/fedflow/fedflow/value"
)

// LocalComp is an ordinary local computation: a function over
// placement-free values, which may consume sequence parameters.
type LocalComp struct {
	name string
	sig  *ftype.FunctionType
	fn   func(ctx context.Context, arg *value.Value) (*value.Value, error)
}

// Local declares a local computation. Parameter and result types must be
// placement-free.
func Local(name string, param, result ftype.Type, fn func(ctx context.Context, arg *value.Value) (*value.Value, error)) (*LocalComp, error) {
	if param != nil {
		if err := ftype.Check(param); err != nil {
			return nil, err
		}
		if ftype.ContainsFederated(param) {
			return nil, fmt.Errorf("%s: %w: parameter %s is placed", name, ErrPlacement, param)
		}
	}
	if err := ftype.Check(result); err != nil {
		return nil, err
	}
	if ftype.ContainsFederated(result) {
		return nil, fmt.Errorf("%s: %w: result %s is placed", name, ErrPlacement, result)
	}
	return &LocalComp{name: name, sig: ftype.Function(param, result), fn: fn}, nil
}

func (c *LocalComp) Name() string { return c.name }

func (c *LocalComp) TypeSignature() *ftype.FunctionType { return c.sig }

func (c *LocalComp) Call(ctx context.Context, env *intrinsic.Env, arg *value.Value) (*value.Value, error) {
	if c.sig.Param != nil {
		if err := value.Check(arg, c.sig.Param); err != nil {
			return nil, fmt.Errorf("%s: argument: %w", c.name, err)
		}
	}
	res, err := c.fn(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	if err := value.Check(res, c.sig.Result); err != nil {
		return nil, fmt.Errorf("%s: result: %w", c.name, err)
	}
	return res, nil
}
