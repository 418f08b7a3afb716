package intrinsic

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/value"
)

func clientFloats(t *testing.T, vs ...float64) *value.Value {
	t.Helper()
	v, err := value.FromGo(vs, ftype.MustParse(`{float64}@CLIENTS`))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestMeanReadings(t *testing.T) {
	v := clientFloats(t, 2.3, 4.5, 6.7)
	res, err := Mean().Apply(context.Background(), &Env{Clients: 3}, v)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Type.String(); got != "float64@SERVER" {
		t.Errorf("got %q want %q", got, "float64@SERVER")
	}
	got := res.Elems[0].Float64
	if math.Abs(got-4.5) > 1e-9 {
		t.Errorf("got %v want 4.5", got)
	}
}

func TestMeanSignature(t *testing.T) {
	var sigs = []struct {
		arg  string
		want string
	}{
		{arg: `{float64}@CLIENTS`, want: `({float64}@CLIENTS -> float64@SERVER)`},
		{arg: `{int32}@CLIENTS`, want: `({int32}@CLIENTS -> float64@SERVER)`},
		{arg: `{<a=float32,b=int64>}@CLIENTS`, want: `({<a=float32,b=int64>}@CLIENTS -> <a=float32,b=float64>@SERVER)`},
	}
	for _, st := range sigs {
		sig, err := Mean().Signature(ftype.MustParse(st.arg))
		if err != nil {
			t.Errorf("Signature(%s): %v", st.arg, err)
			continue
		}
		if sig.String() != st.want {
			t.Errorf("got %q want %q", sig.String(), st.want)
		}
	}
}

func TestMeanRejectsUnplaced(t *testing.T) {
	_, err := Mean().Signature(ftype.MustParse(`float64`))
	if !errors.Is(err, ErrPlacement) {
		t.Errorf("got %v want ErrPlacement", err)
	}
	_, err = Mean().Signature(ftype.MustParse(`float64@SERVER`))
	if !errors.Is(err, ErrPlacement) {
		t.Errorf("got %v want ErrPlacement", err)
	}
}

func TestSumKeepsInts(t *testing.T) {
	v, err := value.FromGo([]any{1, 2, 3}, ftype.MustParse(`{int64}@CLIENTS`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Sum().Apply(context.Background(), &Env{Clients: 3}, v)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Type.String(); got != "int64@SERVER" {
		t.Errorf("got %q want %q", got, "int64@SERVER")
	}
	if res.Elems[0].Int64 != 6 {
		t.Errorf("got %d want 6", res.Elems[0].Int64)
	}
}

func TestWeightedMean(t *testing.T) {
	vals := clientFloats(t, 69, 71, 70)
	weights := clientFloats(t, 2, 1, 3)
	res, err := WeightedMean().Apply(context.Background(), &Env{Clients: 3}, vals, weights)
	if err != nil {
		t.Fatal(err)
	}
	got := res.Elems[0].Float64
	if math.Abs(got-70.0) > 1e-9 {
		t.Errorf("got %v want 70.0", got)
	}
}

func TestWeightedMeanZeroWeights(t *testing.T) {
	vals := clientFloats(t, 1, 2, 3)
	weights := clientFloats(t, 0, 0, 0)
	_, err := WeightedMean().Apply(context.Background(), &Env{Clients: 3}, vals, weights)
	if !errors.Is(err, ErrZeroWeight) {
		t.Errorf("got %v want ErrZeroWeight", err)
	}
}

func TestMeanVector(t *testing.T) {
	v, err := value.FromGo([][]float64{{1, 2}, {3, 4}}, ftype.MustParse(`{float64[2]}@CLIENTS`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Mean().Apply(context.Background(), &Env{Clients: 2}, v)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 3}
	for i, w := range want {
		if math.Abs(res.Elems[0].Elems[i].Float64-w) > 1e-9 {
			t.Errorf("entry %d: got %v want %v", i, res.Elems[0].Elems[i].Float64, w)
		}
	}
}
