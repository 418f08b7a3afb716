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
	sumIn          = &aggregate{name: "federated_sum", agg: aggSum}
	meanIn         = &aggregate{name: "federated_mean", agg: aggMean}
	weightedMeanIn = &weightedMean{name: "federated_weighted_mean"}
)

// Sum adds up the member values of a clients-placed value at the server.
func Sum() Intrinsic { return sumIn }

// Mean takes the arithmetic mean of the member values, elementwise over
// tensors and structs. Integer members average to float64.
func Mean() Intrinsic { return meanIn }

// WeightedMean averages member values with per-member numeric scalar
// weights.
func WeightedMean() Intrinsic { return weightedMeanIn }

type aggKind int

const (
	aggSum aggKind = iota
	aggMean
)

type aggregate struct {
	name
	agg aggKind
}

func (in *aggregate) Signature(args ...ftype.Type) (*ftype.FunctionType, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: %w: got %d want 1", in.Name(), ErrArity, len(args))
	}
	ft, ok := args[0].(*ftype.FederatedType)
	if !ok || ft.Placement != placement.Clients {
		return nil, fmt.Errorf("%s: %w: want a value at CLIENTS, got %s", in.Name(), ErrPlacement, args[0])
	}
	rt, err := aggType(ft.Member, in.agg == aggMean)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name(), err)
	}
	res, err := ftype.Federated(rt, placement.Server, true)
	if err != nil {
		return nil, err
	}
	return ftype.Function(args[0], res), nil
}

func (in *aggregate) Apply(ctx context.Context, env *Env, args ...*value.Value) (*value.Value, error) {
	sig, err := in.Signature(argTypes(args)...)
	if err != nil {
		return nil, err
	}
	members, err := args[0].Members(env.clients())
	if err != nil {
		return nil, err
	}
	if debug.Intrinsic() {
		debug.Logf("%s %s over %d members\n", in.Name(), args[0].Type, len(members))
	}
	weights := make([]float64, len(members))
	for i := range weights {
		weights[i] = 1
	}
	var m *value.Value
	if in.agg == aggMean {
		m, err = combineMembers(members, weights, float64(len(members)), true)
	} else {
		m, err = combineMembers(members, weights, 1, false)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name(), err)
	}
	res, err := value.FederatedOf(placement.Server, []*value.Value{m}, true)
	if err != nil {
		return nil, err
	}
	if err := value.Check(res, sig.Result); err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name(), err)
	}
	return res, nil
}

type weightedMean struct {
	name
}

func (in *weightedMean) Signature(args ...ftype.Type) (*ftype.FunctionType, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: %w: got %d want 2", in.Name(), ErrArity, len(args))
	}
	vt, ok := args[0].(*ftype.FederatedType)
	if !ok || vt.Placement != placement.Clients {
		return nil, fmt.Errorf("%s: %w: want a value at CLIENTS, got %s", in.Name(), ErrPlacement, args[0])
	}
	wt, ok := args[1].(*ftype.FederatedType)
	if !ok || wt.Placement != placement.Clients {
		return nil, fmt.Errorf("%s: %w: want weights at CLIENTS, got %s", in.Name(), ErrPlacement, args[1])
	}
	ws, ok := wt.Member.(*ftype.TensorType)
	if !ok || !ws.Scalar() || !ws.DType.IsNumeric() {
		return nil, fmt.Errorf("%s: %w: weight must be a numeric scalar, got %s", in.Name(), ErrType, wt.Member)
	}
	rt, err := aggType(vt.Member, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name(), err)
	}
	res, err := ftype.Federated(rt, placement.Server, true)
	if err != nil {
		return nil, err
	}
	return ftype.Function(ftype.Struct(ftype.Field{Type: args[0]}, ftype.Field{Type: args[1]}), res), nil
}

func (in *weightedMean) Apply(ctx context.Context, env *Env, args ...*value.Value) (*value.Value, error) {
	sig, err := in.Signature(argTypes(args)...)
	if err != nil {
		return nil, err
	}
	n := env.clients()
	members, err := args[0].Members(n)
	if err != nil {
		return nil, err
	}
	wMembers, err := args[1].Members(n)
	if err != nil {
		return nil, err
	}
	if len(members) != len(wMembers) {
		return nil, fmt.Errorf("%s: %w: %d values vs %d weights", in.Name(), ErrCardinality, len(members), len(wMembers))
	}
	weights := make([]float64, len(wMembers))
	total := 0.0
	for i, w := range wMembers {
		f, ok := w.AsFloat()
		if !ok {
			return nil, fmt.Errorf("%s: %w: weight %d is %s", in.Name(), ErrType, i, w.Type)
		}
		weights[i] = f
		total += f
	}
	if total == 0 {
		return nil, fmt.Errorf("%s: %w", in.Name(), ErrZeroWeight)
	}
	if debug.Intrinsic() {
		debug.Logf("%s %s total weight %v\n", in.Name(), args[0].Type, total)
	}
	m, err := combineMembers(members, weights, total, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name(), err)
	}
	res, err := value.FederatedOf(placement.Server, []*value.Value{m}, true)
	if err != nil {
		return nil, err
	}
	if err := value.Check(res, sig.Result); err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name(), err)
	}
	return res, nil
}

// aggType is the member type an aggregation produces: unchanged, except
// that averaging integers yields float64.
func aggType(t ftype.Type, toFloat bool) (ftype.Type, error) {
	switch tt := t.(type) {
	case *ftype.TensorType:
		if !tt.DType.IsNumeric() {
			return nil, fmt.Errorf("%w: cannot aggregate %s", ErrType, t)
		}
		if toFloat && tt.DType.IsInt() {
			return ftype.Tensor(ftype.Float64, tt.Shape...), nil
		}
		return tt, nil
	case *ftype.StructType:
		fields := make([]ftype.Field, len(tt.Fields))
		for i, f := range tt.Fields {
			ft, err := aggType(f.Type, toFloat)
			if err != nil {
				return nil, err
			}
			fields[i] = ftype.Field{Name: f.Name, Type: ft}
		}
		return ftype.Struct(fields...), nil
	default:
		return nil, fmt.Errorf("%w: cannot aggregate %s", ErrType, t)
	}
}

// combineMembers folds member values into Σ wᵢ·xᵢ / div, elementwise.
// With toFloat unset and integer members, arithmetic stays integral.
func combineMembers(members []*value.Value, weights []float64, div float64, toFloat bool) (*value.Value, error) {
	first := members[0]
	switch tt := first.Type.(type) {
	case *ftype.TensorType:
		if tt.Scalar() {
			if tt.DType.IsInt() && !toFloat {
				var total int64
				for i, m := range members {
					total += int64(weights[i]) * m.Int64
				}
				return value.Scalar(tt.DType, float64(total)/div), nil
			}
			total := 0.0
			for i, m := range members {
				f, ok := m.AsFloat()
				if !ok {
					return nil, fmt.Errorf("%w: cannot aggregate %s", ErrType, m.Type)
				}
				total += weights[i] * f
			}
			dt := tt.DType
			if toFloat && dt.IsInt() {
				dt = ftype.Float64
			}
			return value.Scalar(dt, total/div), nil
		}
		elems, err := combineElems(members, weights, div, toFloat)
		if err != nil {
			return nil, err
		}
		dt := tt.DType
		if toFloat && dt.IsInt() {
			dt = ftype.Float64
		}
		res := &value.Value{Type: ftype.Tensor(dt, len(elems)), Elems: elems}
		return res, nil
	case *ftype.StructType:
		elems, err := combineElems(members, weights, div, toFloat)
		if err != nil {
			return nil, err
		}
		rt, err := aggType(tt, toFloat)
		if err != nil {
			return nil, err
		}
		return value.StructOf(rt.(*ftype.StructType), elems)
	default:
		return nil, fmt.Errorf("%w: cannot aggregate %s", ErrType, first.Type)
	}
}

func combineElems(members []*value.Value, weights []float64, div float64, toFloat bool) ([]*value.Value, error) {
	n := len(members[0].Elems)
	for _, m := range members {
		if len(m.Elems) != n {
			return nil, fmt.Errorf("%w: ragged members", ErrType)
		}
	}
	elems := make([]*value.Value, n)
	col := make([]*value.Value, len(members))
	for i := 0; i < n; i++ {
		for j, m := range members {
			col[j] = m.Elems[i]
		}
		e, err := combineMembers(col, weights, div, toFloat)
		if err != nil {
			return nil, err
		}
		elems[i] = e
	}
	return elems, nil
}
