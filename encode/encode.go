// Package encode renders values in the display notation used by the CLI
// and diagnostics.
package encode

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/value"
)

type EncState struct {
	types bool
	Color func(ftype.Kind, ColorAttr, string) string
}

func (es *EncState) color(k ftype.Kind, a ColorAttr, s string) string {
	if es.Color == nil {
		return s
	}
	return es.Color(k, a, s)
}

// Encode writes the display form of v to w.
func Encode(v *value.Value, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{}
	for _, opt := range opts {
		opt(es)
	}
	var sb strings.Builder
	if err := encode(v, &sb, es); err != nil {
		return err
	}
	if es.types {
		sb.WriteString(" : ")
		sb.WriteString(es.color(v.Type.Kind(), TypeColor, v.Type.String()))
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

// MustString is Encode into a string, for diagnostics and tests.
func MustString(v *value.Value, opts ...EncodeOption) string {
	var sb strings.Builder
	if err := Encode(v, &sb, opts...); err != nil {
		panic(err)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func encode(v *value.Value, sb *strings.Builder, es *EncState) error {
	if v == nil {
		sb.WriteString("null")
		return nil
	}
	switch t := v.Type.(type) {
	case *ftype.TensorType:
		return encodeTensor(v, t, sb, es)
	case *ftype.StructType:
		return encodeStruct(v, t, sb, es)
	case *ftype.SequenceType:
		return encodeElems(v.Elems, sb, es, ftype.SequenceKind)
	case *ftype.FederatedType:
		return encodeFederated(v, t, sb, es)
	case *ftype.FunctionType:
		sb.WriteString(es.color(ftype.FunctionKind, ValueColor, t.String()))
		return nil
	default:
		return fmt.Errorf("%w: cannot encode %s", ErrEncode, v.Type)
	}
}

func encodeTensor(v *value.Value, t *ftype.TensorType, sb *strings.Builder, es *EncState) error {
	if t.Scalar() {
		sb.WriteString(es.color(ftype.TensorKind, ValueColor, scalarString(v, t.DType)))
		return nil
	}
	return encodeElems(v.Elems, sb, es, ftype.TensorKind)
}

func scalarString(v *value.Value, dt ftype.DType) string {
	switch {
	case dt.IsFloat():
		return strconv.FormatFloat(v.Float64, 'g', -1, 64)
	case dt.IsInt():
		return strconv.FormatInt(v.Int64, 10)
	case dt == ftype.Bool:
		return strconv.FormatBool(v.Bool)
	default:
		return strconv.Quote(v.Str)
	}
}

func encodeElems(elems []*value.Value, sb *strings.Builder, es *EncState, k ftype.Kind) error {
	sb.WriteString(es.color(k, SepColor, "["))
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(es.color(k, SepColor, ", "))
		}
		if err := encode(e, sb, es); err != nil {
			return err
		}
	}
	sb.WriteString(es.color(k, SepColor, "]"))
	return nil
}

func encodeStruct(v *value.Value, t *ftype.StructType, sb *strings.Builder, es *EncState) error {
	sb.WriteString(es.color(ftype.StructKind, SepColor, "<"))
	for i, f := range t.Fields {
		if i > 0 {
			sb.WriteString(es.color(ftype.StructKind, SepColor, ", "))
		}
		if f.Name != "" {
			sb.WriteString(es.color(ftype.StructKind, FieldColor, f.Name))
			sb.WriteString(es.color(ftype.StructKind, SepColor, "="))
		}
		if err := encode(v.Elems[i], sb, es); err != nil {
			return err
		}
	}
	sb.WriteString(es.color(ftype.StructKind, SepColor, ">"))
	return nil
}

func encodeFederated(v *value.Value, t *ftype.FederatedType, sb *strings.Builder, es *EncState) error {
	if t.AllEqual {
		if err := encode(v.Elems[0], sb, es); err != nil {
			return err
		}
	} else if err := encodeElems(v.Elems, sb, es, ftype.FederatedKind); err != nil {
		return err
	}
	sb.WriteString(es.color(ftype.FederatedKind, SepColor, "@"))
	sb.WriteString(es.color(ftype.FederatedKind, PlacementColor, t.Placement.String()))
	return nil
}
