package value

import (
	"fmt"
	"reflect"

	"github.com/fedflow/fedflow/ftype"
)

// FromGo binds a plain in-memory Go literal (numbers, bools, strings,
// slices, maps) to a declared type. This is how arguments cross from
// ordinary Go code into an invocation.
func FromGo(v any, t ftype.Type) (*Value, error) {
	switch tt := t.(type) {
	case *ftype.TensorType:
		return tensorFromGo(v, tt)
	case *ftype.StructType:
		return structFromGo(v, tt)
	case *ftype.SequenceType:
		elems, err := sliceFromGo(v, tt.Elem, "sequence")
		if err != nil {
			return nil, err
		}
		return &Value{Type: tt, Elems: elems}, nil
	case *ftype.FederatedType:
		return federatedFromGo(v, tt)
	default:
		return nil, fmt.Errorf("%w: literal for %s", ErrBind, t)
	}
}

func tensorFromGo(v any, tt *ftype.TensorType) (*Value, error) {
	if tt.Scalar() {
		res := &Value{Type: tt}
		switch {
		case tt.DType.IsFloat():
			f, ok := toFloat(v)
			if !ok {
				return nil, fmt.Errorf("%w: %T as %s", ErrBind, v, tt)
			}
			res.Float64 = f
		case tt.DType.IsInt():
			i, ok := toInt(v)
			if !ok {
				return nil, fmt.Errorf("%w: %T as %s", ErrBind, v, tt)
			}
			res.Int64 = i
		case tt.DType == ftype.Bool:
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: %T as %s", ErrBind, v, tt)
			}
			res.Bool = b
		default:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %T as %s", ErrBind, v, tt)
			}
			res.Str = s
		}
		return res, nil
	}
	if len(tt.Shape) != 1 {
		return nil, fmt.Errorf("%w: literals for rank-%d tensors are not supported", ErrBind, len(tt.Shape))
	}
	elems, err := sliceFromGo(v, ftype.Tensor(tt.DType), "tensor")
	if err != nil {
		return nil, err
	}
	if tt.Shape[0] >= 0 && len(elems) != tt.Shape[0] {
		return nil, fmt.Errorf("%w: %d entries for %s", ErrArity, len(elems), tt)
	}
	return &Value{Type: ftype.Tensor(tt.DType, len(elems)), Elems: elems}, nil
}

func structFromGo(v any, tt *ftype.StructType) (*Value, error) {
	if m, ok := toStringMap(v); ok {
		elems := make([]*Value, len(tt.Fields))
		for i, f := range tt.Fields {
			fv, present := m[f.Name]
			if !present {
				return nil, fmt.Errorf("%w: missing field %q of %s", ErrBind, f.Name, tt)
			}
			e, err := FromGo(fv, f.Type)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			elems[i] = e
		}
		return &Value{Type: tt, Elems: elems}, nil
	}
	items, ok := toSlice(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T as %s", ErrBind, v, tt)
	}
	if len(items) != len(tt.Fields) {
		return nil, fmt.Errorf("%w: %d values for %s", ErrArity, len(items), tt)
	}
	elems := make([]*Value, len(items))
	for i, item := range items {
		e, err := FromGo(item, tt.Fields[i].Type)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		elems[i] = e
	}
	return &Value{Type: tt, Elems: elems}, nil
}

func federatedFromGo(v any, tt *ftype.FederatedType) (*Value, error) {
	if tt.AllEqual || tt.Placement.Singleton() {
		m, err := FromGo(v, tt.Member)
		if err != nil {
			return nil, err
		}
		return &Value{Type: tt, Elems: []*Value{m}}, nil
	}
	elems, err := sliceFromGo(v, tt.Member, "federated")
	if err != nil {
		return nil, err
	}
	return &Value{Type: tt, Elems: elems}, nil
}

func sliceFromGo(v any, elem ftype.Type, what string) ([]*Value, error) {
	items, ok := toSlice(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T as %s of %s", ErrBind, v, what, elem)
	}
	elems := make([]*Value, len(items))
	for i, item := range items {
		e, err := FromGo(item, elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		elems[i] = e
	}
	return elems, nil
}

// ToGo converts a value back into a plain Go literal: scalars to
// float64/int64/bool/string, structs with named fields to maps, element
// lists to slices, and all-equal federated values to their single member.
func ToGo(v *Value) any {
	if v == nil {
		return nil
	}
	switch tt := v.Type.(type) {
	case *ftype.TensorType:
		if tt.Scalar() {
			switch {
			case tt.DType.IsFloat():
				return v.Float64
			case tt.DType.IsInt():
				return v.Int64
			case tt.DType == ftype.Bool:
				return v.Bool
			default:
				return v.Str
			}
		}
		return elemsToGo(v.Elems, tt.DType)
	case *ftype.StructType:
		named := len(tt.Fields) > 0
		for _, f := range tt.Fields {
			if f.Name == "" {
				named = false
				break
			}
		}
		if named {
			res := make(map[string]any, len(tt.Fields))
			for i, f := range tt.Fields {
				res[f.Name] = ToGo(v.Elems[i])
			}
			return res
		}
		res := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			res[i] = ToGo(e)
		}
		return res
	case *ftype.SequenceType:
		if et, ok := tt.Elem.(*ftype.TensorType); ok && et.Scalar() {
			return elemsToGo(v.Elems, et.DType)
		}
		res := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			res[i] = ToGo(e)
		}
		return res
	case *ftype.FederatedType:
		if tt.AllEqual || tt.Placement.Singleton() {
			return ToGo(v.Elems[0])
		}
		res := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			res[i] = ToGo(e)
		}
		return res
	default:
		return nil
	}
}

func elemsToGo(elems []*Value, dt ftype.DType) any {
	switch {
	case dt.IsFloat():
		res := make([]float64, len(elems))
		for i, e := range elems {
			res[i] = e.Float64
		}
		return res
	case dt.IsInt():
		res := make([]int64, len(elems))
		for i, e := range elems {
			res[i] = e.Int64
		}
		return res
	default:
		res := make([]any, len(elems))
		for i, e := range elems {
			res[i] = ToGo(e)
		}
		return res
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint64:
		return int64(x), true
	case float64:
		if x == float64(int64(x)) {
			return int64(x), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func toSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	res := make([]any, rv.Len())
	for i := range res {
		res[i] = rv.Index(i).Interface()
	}
	return res, true
}

func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		res := make(map[string]any, len(m))
		for k, mv := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			res[ks] = mv
		}
		return res, true
	default:
		return nil, false
	}
}
