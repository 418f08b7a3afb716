// Package value implements the runtime values federated computations
// traffic in. One node struct covers all kinds; the Type field says which
// scalar slot or element list is live.
package value

import (
	"context"
	"fmt"
	"math"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/placement"
)

type Value struct {
	Type ftype.Type

	Float64 float64
	Int64   int64
	Bool    bool
	Str     string

	// Elems holds struct fields, sequence elements, tensor entries of a
	// non-scalar tensor, or federated members. An all-equal federated
	// value stores its single shared member at Elems[0].
	Elems []*Value

	// Fn is set for function-typed values.
	Fn func(ctx context.Context, arg *Value) (*Value, error)
}

func FromFloat64(v float64) *Value {
	return &Value{Type: ftype.Tensor(ftype.Float64), Float64: v}
}

func FromInt64(v int64) *Value {
	return &Value{Type: ftype.Tensor(ftype.Int64), Int64: v}
}

func FromBool(v bool) *Value {
	return &Value{Type: ftype.Tensor(ftype.Bool), Bool: v}
}

func FromString(v string) *Value {
	return &Value{Type: ftype.Tensor(ftype.String), Str: v}
}

// Scalar builds a scalar tensor of the given dtype from a float; int
// dtypes truncate.
func Scalar(dt ftype.DType, v float64) *Value {
	res := &Value{Type: ftype.Tensor(dt)}
	switch {
	case dt.IsFloat():
		res.Float64 = v
	case dt.IsInt():
		res.Int64 = int64(v)
	default:
		res.Bool = v != 0
	}
	return res
}

// Vector builds a rank-1 tensor from floats.
func Vector(dt ftype.DType, vs []float64) *Value {
	res := &Value{Type: ftype.Tensor(dt, len(vs))}
	res.Elems = make([]*Value, len(vs))
	for i, v := range vs {
		res.Elems[i] = Scalar(dt, v)
	}
	return res
}

func StructOf(st *ftype.StructType, elems []*Value) (*Value, error) {
	if len(st.Fields) != len(elems) {
		return nil, fmt.Errorf("%w: %d values for %s", ErrArity, len(elems), st)
	}
	for i, e := range elems {
		if !ftype.AssignableFrom(st.Fields[i].Type, e.Type) {
			return nil, fmt.Errorf("%w: field %d of %s got %s", ErrType, i, st, e.Type)
		}
	}
	return &Value{Type: st, Elems: elems}, nil
}

func SequenceOf(elem ftype.Type, elems []*Value) (*Value, error) {
	for _, e := range elems {
		if !ftype.AssignableFrom(elem, e.Type) {
			return nil, fmt.Errorf("%w: sequence of %s got element %s", ErrType, elem, e.Type)
		}
	}
	return &Value{Type: ftype.Sequence(elem), Elems: elems}, nil
}

// FederatedOf places members at p. With allEqual set exactly one member is
// expected; otherwise one per participant. The member type is taken from
// the first member.
func FederatedOf(p *placement.Placement, members []*Value, allEqual bool) (*Value, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: no members placed at %s", ErrArity, p)
	}
	if allEqual && len(members) != 1 {
		return nil, fmt.Errorf("%w: all-equal value with %d members", ErrArity, len(members))
	}
	mt := members[0].Type
	for _, m := range members[1:] {
		if !ftype.Equal(mt, m.Type) {
			return nil, fmt.Errorf("%w: members %s and %s placed together", ErrType, mt, m.Type)
		}
	}
	ft, err := ftype.Federated(mt, p, allEqual)
	if err != nil {
		return nil, err
	}
	return &Value{Type: ft, Elems: members}, nil
}

// FromFn wraps a callable as a function-typed value.
func FromFn(sig *ftype.FunctionType, fn func(ctx context.Context, arg *Value) (*Value, error)) *Value {
	return &Value{Type: sig, Fn: fn}
}

// Members returns the per-participant view of a federated value, expanding
// an all-equal value to n copies of its shared member.
func (v *Value) Members(n int) ([]*Value, error) {
	ft, ok := v.Type.(*ftype.FederatedType)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not placed", ErrType, v.Type)
	}
	if !ft.AllEqual {
		return v.Elems, nil
	}
	if ft.Placement.Singleton() {
		n = 1
	}
	res := make([]*Value, n)
	for i := range res {
		res[i] = v.Elems[0]
	}
	return res, nil
}

func (v *Value) Clone() *Value {
	res := &Value{
		Type:    v.Type,
		Float64: v.Float64,
		Int64:   v.Int64,
		Bool:    v.Bool,
		Str:     v.Str,
		Fn:      v.Fn,
	}
	if v.Elems != nil {
		res.Elems = make([]*Value, len(v.Elems))
		for i, e := range v.Elems {
			res.Elems[i] = e.Clone()
		}
	}
	return res
}

// AsFloat reads any numeric scalar as a float.
func (v *Value) AsFloat() (float64, bool) {
	tt, ok := v.Type.(*ftype.TensorType)
	if !ok || !tt.Scalar() {
		return 0, false
	}
	switch {
	case tt.DType.IsFloat():
		return v.Float64, true
	case tt.DType.IsInt():
		return float64(v.Int64), true
	default:
		return 0, false
	}
}

// Equal compares structurally, with float scalars compared within eps.
func Equal(a, b *Value, eps float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !ftype.Equal(a.Type, b.Type) {
		return false
	}
	switch tt := a.Type.(type) {
	case *ftype.TensorType:
		if tt.Scalar() {
			switch {
			case tt.DType.IsFloat():
				return math.Abs(a.Float64-b.Float64) <= eps
			case tt.DType.IsInt():
				return a.Int64 == b.Int64
			case tt.DType == ftype.Bool:
				return a.Bool == b.Bool
			default:
				return a.Str == b.Str
			}
		}
	case *ftype.FunctionType:
		return false
	}
	if len(a.Elems) != len(b.Elems) {
		return false
	}
	for i := range a.Elems {
		if !Equal(a.Elems[i], b.Elems[i], eps) {
			return false
		}
	}
	return true
}

// Ones builds a value of type t with every numeric entry 1, used to trace
// result types of computation bodies. Sequences get a single element;
// clients-placed values get one member per participant.
func Ones(t ftype.Type, clients int) (*Value, error) {
	switch tt := t.(type) {
	case *ftype.TensorType:
		if tt.Scalar() {
			switch {
			case tt.DType.IsNumeric():
				return Scalar(tt.DType, 1), nil
			case tt.DType == ftype.Bool:
				return FromBool(true), nil
			default:
				return FromString("x"), nil
			}
		}
		n := 1
		for _, d := range tt.Shape {
			if d > 0 {
				n *= d
			}
		}
		res := &Value{Type: tt, Elems: make([]*Value, n)}
		for i := range res.Elems {
			res.Elems[i] = Scalar(tt.DType, 1)
		}
		return res, nil
	case *ftype.StructType:
		elems := make([]*Value, len(tt.Fields))
		for i, f := range tt.Fields {
			e, err := Ones(f.Type, clients)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return &Value{Type: tt, Elems: elems}, nil
	case *ftype.SequenceType:
		e, err := Ones(tt.Elem, clients)
		if err != nil {
			return nil, err
		}
		return &Value{Type: tt, Elems: []*Value{e}}, nil
	case *ftype.FederatedType:
		m, err := Ones(tt.Member, clients)
		if err != nil {
			return nil, err
		}
		n := clients
		if tt.AllEqual || tt.Placement.Singleton() {
			n = 1
		}
		elems := make([]*Value, n)
		for i := range elems {
			elems[i] = m.Clone()
		}
		return &Value{Type: tt, Elems: elems}, nil
	default:
		return nil, fmt.Errorf("%w: cannot build ones of %s", ErrType, t)
	}
}

// Check verifies that v fits the declared type t.
func Check(v *Value, t ftype.Type) error {
	if v == nil {
		if t == nil {
			return nil
		}
		return fmt.Errorf("%w: nil value for %s", ErrType, t)
	}
	if !ftype.AssignableFrom(t, v.Type) {
		return fmt.Errorf("%w: %s does not fit %s", ErrType, v.Type, t)
	}
	return nil
}
