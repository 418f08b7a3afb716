package ftype

import "testing"

type assignTest struct {
	dst, src string
	want     bool
}

func TestAssignableFrom(t *testing.T) {
	var ats = []assignTest{
		{dst: `float32`, src: `float32`, want: true},
		{dst: `float32`, src: `float64`, want: false},
		{dst: `float32[?]`, src: `float32[5]`, want: true},
		{dst: `float32[5]`, src: `float32[?]`, want: false},
		{dst: `float32[5]`, src: `float32[4]`, want: false},
		{dst: `<a=float32>`, src: `<a=float32>`, want: true},
		{dst: `<a=float32>`, src: `<b=float32>`, want: false},
		{dst: `<a=float32>`, src: `<a=float32,b=int32>`, want: false},
		{dst: `float64*`, src: `float64*`, want: true},
		{dst: `float64*`, src: `float32*`, want: false},
		{dst: `{float32}@CLIENTS`, src: `float32@CLIENTS`, want: true},
		{dst: `float32@CLIENTS`, src: `{float32}@CLIENTS`, want: false},
		{dst: `{float32}@CLIENTS`, src: `{float32}@CLIENTS`, want: true},
		{dst: `float32@SERVER`, src: `float32@SERVER`, want: true},
		{dst: `{float32}@CLIENTS`, src: `float32@SERVER`, want: false},
		{dst: `({float32}@CLIENTS -> float32@SERVER)`, src: `({float32}@CLIENTS -> float32@SERVER)`, want: true},
	}
	for _, at := range ats {
		dst, src := MustParse(at.dst), MustParse(at.src)
		if got := AssignableFrom(dst, src); got != at.want {
			t.Errorf("AssignableFrom(%s, %s) = %v want %v", at.dst, at.src, got, at.want)
		}
	}
}

func TestCheckDupFields(t *testing.T) {
	bad := Struct(
		Field{Name: "a", Type: Tensor(Float32)},
		Field{Name: "a", Type: Tensor(Int32)},
	)
	if err := Check(bad); err == nil {
		t.Error("expected duplicate field error")
	}
}

func TestFunctionNoParam(t *testing.T) {
	sig := Function(nil, Tensor(Int32))
	if got := sig.String(); got != "( -> int32)" {
		t.Errorf("got %q want %q", got, "( -> int32)")
	}
	if !AssignableFrom(sig, Function(nil, Tensor(Int32))) {
		t.Error("no-param signatures should be assignable")
	}
}
