package comp

import (
	"context"
	"reflect"
	"testing"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/value"
)

func TestExprTopMagnitude(t *testing.T) {
	c, err := LocalExpr("keep_top_gradient",
		ftype.MustParse(`float64[5]`),
		ftype.MustParse(`float64[5]`),
		`put(zeros(count(arg)), argmax_abs(arg), arg[argmax_abs(arg)])`)
	if err != nil {
		t.Fatal(err)
	}
	arg, err := value.FromGo([]float64{1, 2, 3, 4, -5}, ftype.MustParse(`float64[5]`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Call(context.Background(), nil, arg)
	if err != nil {
		t.Fatal(err)
	}
	got := value.ToGo(res).([]float64)
	want := []float64{0, 0, 0, 0, -5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestExprFuncs(t *testing.T) {
	for _, tc := range []struct {
		name   string
		param  string
		result string
		src    string
		arg    any
		want   any
	}{
		{"sum", `float64*`, `float64`, `sum(arg)`, []float64{1, 2, 3}, 6.0},
		{"mean", `float64*`, `float64`, `mean(arg)`, []float64{2, 4}, 3.0},
		{"count", `float64*`, `float64`, `count(arg)`, []float64{7, 7, 7}, 3.0},
		{"abs", `float64`, `float64`, `abs(arg)`, -2.5, 2.5},
		{"scale", `float64*`, `float64*`, `scale(arg, 10)`, []float64{1, 2}, []float64{10, 20}},
		{"arithmetic", `float64`, `float64`, `arg * arg + 1`, 3.0, 10.0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, err := LocalExpr(tc.name+"_probe",
				ftype.MustParse(tc.param), ftype.MustParse(tc.result), tc.src)
			if err != nil {
				t.Fatal(err)
			}
			arg, err := value.FromGo(tc.arg, ftype.MustParse(tc.param))
			if err != nil {
				t.Fatal(err)
			}
			res, err := c.Call(context.Background(), nil, arg)
			if err != nil {
				t.Fatal(err)
			}
			if got := value.ToGo(res); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestExprRuntimeError(t *testing.T) {
	c, err := LocalExpr("mean_empty", ftype.MustParse(`float64*`), ftype.MustParse(`float64`), `mean(arg)`)
	if err != nil {
		t.Fatal(err)
	}
	arg, err := value.FromGo([]float64{}, ftype.MustParse(`float64*`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Call(context.Background(), nil, arg); err == nil {
		t.Error("expected an error for mean of empty sequence")
	}
}
