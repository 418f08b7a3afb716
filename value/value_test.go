package value

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/placement"
)

type bindTest struct {
	typ  string
	in   any
	back any
}

func TestFromGoToGo(t *testing.T) {
	var bts = []bindTest{
		{typ: `float64`, in: 4.5, back: 4.5},
		{typ: `float32`, in: 2, back: 2.0},
		{typ: `int64`, in: 7, back: int64(7)},
		{typ: `bool`, in: true, back: true},
		{typ: `string`, in: "hi", back: "hi"},
		{typ: `float64[3]`, in: []float64{1, 2, 3}, back: []float64{1, 2, 3}},
		{typ: `float64[?]`, in: []any{1.0, 2.0}, back: []float64{1, 2}},
		{typ: `int32[2]`, in: []any{4, -5}, back: []int64{4, -5}},
		{typ: `float64*`, in: []float64{68, 70}, back: []float64{68, 70}},
		{
			typ:  `<mean=float64,count=float64>`,
			in:   map[string]any{"mean": 69.0, "count": 2.0},
			back: map[string]any{"mean": 69.0, "count": 2.0},
		},
		{typ: `<float64,int64>`, in: []any{1.5, 2}, back: []any{1.5, int64(2)}},
		{typ: `{float64}@CLIENTS`, in: []float64{2.3, 4.5, 6.7}, back: []any{2.3, 4.5, 6.7}},
		{typ: `float64@SERVER`, in: 4.5, back: 4.5},
		{typ: `float64@CLIENTS`, in: 1.0, back: 1.0},
	}
	for _, bt := range bts {
		typ := ftype.MustParse(bt.typ)
		v, err := FromGo(bt.in, typ)
		if err != nil {
			t.Errorf("FromGo(%v, %s): %v", bt.in, bt.typ, err)
			continue
		}
		if err := Check(v, typ); err != nil {
			t.Errorf("Check after FromGo(%v, %s): %v", bt.in, bt.typ, err)
		}
		got := ToGo(v)
		if !reflect.DeepEqual(got, bt.back) {
			t.Errorf("round trip %s: got %#v want %#v", bt.typ, got, bt.back)
		}
	}
}

func TestFromGoErrors(t *testing.T) {
	var bads = []bindTest{
		{typ: `float64`, in: "nope"},
		{typ: `int64`, in: 1.5},
		{typ: `float64[3]`, in: []float64{1, 2}},
		{typ: `<a=float64>`, in: map[string]any{"b": 1.0}},
		{typ: `<a=float64>`, in: []any{1.0, 2.0}},
		{typ: `{float64}@CLIENTS`, in: 42},
	}
	for _, bt := range bads {
		if _, err := FromGo(bt.in, ftype.MustParse(bt.typ)); err == nil {
			t.Errorf("FromGo(%v, %s): expected error", bt.in, bt.typ)
		}
	}
}

func TestFederatedOf(t *testing.T) {
	members := []*Value{FromFloat64(1), FromFloat64(2)}
	v, err := FederatedOf(placement.Clients, members, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Type.String(); got != "{float64}@CLIENTS" {
		t.Errorf("got %q want %q", got, "{float64}@CLIENTS")
	}
	if _, err := FederatedOf(placement.Clients, members, true); !errors.Is(err, ErrArity) {
		t.Errorf("got %v want ErrArity", err)
	}
	mixed := []*Value{FromFloat64(1), FromInt64(2)}
	if _, err := FederatedOf(placement.Clients, mixed, false); !errors.Is(err, ErrType) {
		t.Errorf("got %v want ErrType", err)
	}
}

func TestMembersExpandsAllEqual(t *testing.T) {
	v, err := FromGo(3.5, ftype.MustParse(`float64@CLIENTS`))
	if err != nil {
		t.Fatal(err)
	}
	ms, err := v.Members(4)
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 4 {
		t.Fatalf("got %d members want 4", len(ms))
	}
	for _, m := range ms {
		if m.Float64 != 3.5 {
			t.Errorf("got %v want 3.5", m.Float64)
		}
	}
}

func TestOnes(t *testing.T) {
	v, err := Ones(ftype.MustParse(`{float64*}@CLIENTS`), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Elems) != 3 {
		t.Fatalf("got %d members want 3", len(v.Elems))
	}
	if len(v.Elems[0].Elems) != 1 || v.Elems[0].Elems[0].Float64 != 1 {
		t.Error("expected a single 1.0 sequence element per member")
	}
}

func TestEqualEps(t *testing.T) {
	a := FromFloat64(70.0)
	b := FromFloat64(70.0 + 1e-9)
	if !Equal(a, b, 1e-6) {
		t.Error("values within eps should be equal")
	}
	if Equal(a, FromFloat64(71), 1e-6) {
		t.Error("values apart should differ")
	}
	if Equal(a, FromInt64(70), 1e-6) {
		t.Error("different types should differ")
	}
}
