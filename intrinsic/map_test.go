package intrinsic

import (
	"context"
	"errors"
	"testing"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/value"
)

func double() *value.Value {
	sig := ftype.Function(ftype.Tensor(ftype.Float64), ftype.Tensor(ftype.Float64))
	return value.FromFn(sig, func(ctx context.Context, arg *value.Value) (*value.Value, error) {
		return value.FromFloat64(arg.Float64 * 2), nil
	})
}

func TestMap(t *testing.T) {
	v := clientFloats(t, 1, 2, 3)
	res, err := Map().Apply(context.Background(), &Env{Clients: 3}, double(), v)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Type.String(); got != "{float64}@CLIENTS" {
		t.Errorf("got %q want %q", got, "{float64}@CLIENTS")
	}
	want := []float64{2, 4, 6}
	for i, w := range want {
		if res.Elems[i].Float64 != w {
			t.Errorf("member %d: got %v want %v", i, res.Elems[i].Float64, w)
		}
	}
}

func TestMapAllEqualInput(t *testing.T) {
	v, err := value.FromGo(5.0, ftype.MustParse(`float64@CLIENTS`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Map().Apply(context.Background(), &Env{Clients: 4}, double(), v)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Elems) != 4 {
		t.Fatalf("got %d members want 4", len(res.Elems))
	}
	for _, m := range res.Elems {
		if m.Float64 != 10 {
			t.Errorf("got %v want 10", m.Float64)
		}
	}
}

func TestMapRejectsServerValue(t *testing.T) {
	v, err := value.FromGo(5.0, ftype.MustParse(`float64@SERVER`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Map().Apply(context.Background(), &Env{Clients: 3}, double(), v)
	if !errors.Is(err, ErrPlacement) {
		t.Errorf("got %v want ErrPlacement", err)
	}
}

func TestMapRejectsParamMismatch(t *testing.T) {
	v, err := value.FromGo([]any{true, false, true}, ftype.MustParse(`{bool}@CLIENTS`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Map().Apply(context.Background(), &Env{Clients: 3}, double(), v)
	if !errors.Is(err, ErrType) {
		t.Errorf("got %v want ErrType", err)
	}
}

func TestZip(t *testing.T) {
	a := clientFloats(t, 1, 2, 3)
	b := clientFloats(t, 4, 5, 6)
	res, err := ZipAtClients().Apply(context.Background(), &Env{Clients: 3}, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Type.String(); got != "{<float64,float64>}@CLIENTS" {
		t.Errorf("got %q want %q", got, "{<float64,float64>}@CLIENTS")
	}
	if res.Elems[1].Elems[0].Float64 != 2 || res.Elems[1].Elems[1].Float64 != 5 {
		t.Error("zip paired the wrong members")
	}
}

func TestBroadcast(t *testing.T) {
	v, err := value.FromGo(1.5, ftype.MustParse(`float64@SERVER`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Broadcast().Apply(context.Background(), &Env{Clients: 3}, v)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Type.String(); got != "float64@CLIENTS" {
		t.Errorf("got %q want %q", got, "float64@CLIENTS")
	}
}

func TestLookupRegistry(t *testing.T) {
	for _, name := range []string{
		"federated_map",
		"federated_mean",
		"federated_weighted_mean",
		"federated_sum",
		"federated_broadcast",
		"federated_value_at_clients",
		"federated_value_at_server",
		"federated_zip_at_clients",
	} {
		if Lookup(name) == nil {
			t.Errorf("intrinsic %q not registered", name)
		}
	}
	if Lookup("federated_frobnicate") != nil {
		t.Error("unexpected intrinsic")
	}
}
