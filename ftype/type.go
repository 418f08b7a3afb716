// Package ftype implements the type system of federated computations:
// tensors, named structures, sequences, placed (federated) types and
// function signatures, together with the compact display notation used by
// all diagnostics.
package ftype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fedflow/fedflow/placement"
)

type Kind int

const (
	TensorKind Kind = iota
	StructKind
	SequenceKind
	FederatedKind
	FunctionKind
)

func (k Kind) String() string {
	s, ok := map[Kind]string{
		TensorKind:    "Tensor",
		StructKind:    "Struct",
		SequenceKind:  "Sequence",
		FederatedKind: "Federated",
		FunctionKind:  "Function",
	}[k]
	if ok {
		return s
	}
	return "<unknown kind>"
}

type Type interface {
	Kind() Kind
	String() string
}

type DType int

const (
	Float32 DType = iota
	Float64
	Int32
	Int64
	Bool
	String
)

func (d DType) String() string {
	s, ok := map[DType]string{
		Float32: "float32",
		Float64: "float64",
		Int32:   "int32",
		Int64:   "int64",
		Bool:    "bool",
		String:  "string",
	}[d]
	if ok {
		return s
	}
	return "<unknown dtype>"
}

func ParseDType(s string) (DType, error) {
	d, ok := map[string]DType{
		"float32": Float32,
		"float64": Float64,
		"int32":   Int32,
		"int64":   Int64,
		"bool":    Bool,
		"string":  String,
	}[s]
	if !ok {
		return 0, fmt.Errorf("unrecognized dtype %q", s)
	}
	return d, nil
}

func (d DType) IsFloat() bool {
	return d == Float32 || d == Float64
}

func (d DType) IsInt() bool {
	return d == Int32 || d == Int64
}

func (d DType) IsNumeric() bool {
	return d.IsFloat() || d.IsInt()
}

// TensorType is a scalar when Shape is empty. A dimension of -1 is unknown
// and renders as '?'.
type TensorType struct {
	DType DType
	Shape []int
}

func Tensor(dt DType, shape ...int) *TensorType {
	return &TensorType{DType: dt, Shape: shape}
}

func (t *TensorType) Kind() Kind { return TensorKind }

func (t *TensorType) Scalar() bool { return len(t.Shape) == 0 }

func (t *TensorType) String() string {
	if t.Scalar() {
		return t.DType.String()
	}
	dims := make([]string, len(t.Shape))
	for i, d := range t.Shape {
		if d < 0 {
			dims[i] = "?"
			continue
		}
		dims[i] = strconv.Itoa(d)
	}
	return t.DType.String() + "[" + strings.Join(dims, ",") + "]"
}

type Field struct {
	Name string
	Type Type
}

// StructType is an ordered collection of optionally named fields.
type StructType struct {
	Fields []Field
}

func Struct(fields ...Field) *StructType {
	return &StructType{Fields: fields}
}

func (t *StructType) Kind() Kind { return StructKind }

// FieldIndex returns the index of the named field, or -1.
func (t *StructType) FieldIndex(name string) int {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

func (t *StructType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		if f.Name != "" {
			parts[i] = f.Name + "=" + f.Type.String()
			continue
		}
		parts[i] = f.Type.String()
	}
	return "<" + strings.Join(parts, ",") + ">"
}

// SequenceType denotes an abstract ordered collection of elements, used to
// model on-device streaming data.
type SequenceType struct {
	Elem Type
}

func Sequence(elem Type) *SequenceType {
	return &SequenceType{Elem: elem}
}

func (t *SequenceType) Kind() Kind { return SequenceKind }

func (t *SequenceType) String() string {
	return t.Elem.String() + "*"
}

// FederatedType is a value type annotated with the placement hosting it and
// an equality-of-members flag. An all-equal type renders without braces, as
// in float32@SERVER; a non-all-equal one renders as {float32}@CLIENTS.
type FederatedType struct {
	Member    Type
	Placement *placement.Placement
	AllEqual  bool
}

// Federated builds a placed type. The member type must itself be
// placement-free.
func Federated(member Type, p *placement.Placement, allEqual bool) (*FederatedType, error) {
	if ContainsFederated(member) {
		return nil, fmt.Errorf("%w: %s", ErrNestedPlacement, member)
	}
	return &FederatedType{Member: member, Placement: p, AllEqual: allEqual}, nil
}

func (t *FederatedType) Kind() Kind { return FederatedKind }

func (t *FederatedType) String() string {
	if t.AllEqual {
		return t.Member.String() + "@" + t.Placement.String()
	}
	return "{" + t.Member.String() + "}@" + t.Placement.String()
}

// FunctionType is the signature of a computation unit. Param may be nil for
// no-arg computations.
type FunctionType struct {
	Param  Type
	Result Type
}

func Function(param, result Type) *FunctionType {
	return &FunctionType{Param: param, Result: result}
}

func (t *FunctionType) Kind() Kind { return FunctionKind }

func (t *FunctionType) String() string {
	if t.Param == nil {
		return "( -> " + t.Result.String() + ")"
	}
	return "(" + t.Param.String() + " -> " + t.Result.String() + ")"
}

// ContainsFederated reports whether t has a placed type anywhere in it.
func ContainsFederated(t Type) bool {
	switch tt := t.(type) {
	case *TensorType:
		return false
	case *StructType:
		for _, f := range tt.Fields {
			if ContainsFederated(f.Type) {
				return true
			}
		}
		return false
	case *SequenceType:
		return ContainsFederated(tt.Elem)
	case *FederatedType:
		return true
	case *FunctionType:
		if tt.Param != nil && ContainsFederated(tt.Param) {
			return true
		}
		return ContainsFederated(tt.Result)
	default:
		return false
	}
}

// Check validates a type tree: struct field names must be unique when
// present and placed types must not nest.
func Check(t Type) error {
	switch tt := t.(type) {
	case *TensorType:
		return nil
	case *StructType:
		seen := map[string]bool{}
		for _, f := range tt.Fields {
			if f.Name != "" {
				if seen[f.Name] {
					return fmt.Errorf("%w: %q in %s", ErrDupField, f.Name, tt)
				}
				seen[f.Name] = true
			}
			if err := Check(f.Type); err != nil {
				return err
			}
		}
		return nil
	case *SequenceType:
		return Check(tt.Elem)
	case *FederatedType:
		if ContainsFederated(tt.Member) {
			return fmt.Errorf("%w: %s", ErrNestedPlacement, tt.Member)
		}
		return Check(tt.Member)
	case *FunctionType:
		if tt.Param != nil {
			if err := Check(tt.Param); err != nil {
				return err
			}
		}
		return Check(tt.Result)
	default:
		return fmt.Errorf("unrecognized type %T", t)
	}
}
