package sim

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/fedflow/fedflow/comp"
	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/value"
)

func meanComp(t *testing.T) *comp.FederatedComp {
	t.Helper()
	c, err := comp.Federated("readings_mean", ftype.MustParse(`{float64}@CLIENTS`),
		func(rt *comp.Runtime, arg *value.Value) (*value.Value, error) {
			return rt.Mean(arg)
		})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestInvokeFederatedMean(t *testing.T) {
	r := New()
	got, err := r.Invoke(context.Background(), meanComp(t), []float64{2.3, 4.5, 6.7})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.(float64)-4.5) > 1e-9 {
		t.Errorf("got %v want 4.5", got)
	}
}

func TestInvokeWeightedMeanOfClientAverages(t *testing.T) {
	stats, err := comp.LocalExpr("client_stats",
		ftype.MustParse(`float64*`),
		ftype.MustParse(`<mean=float64,count=float64>`),
		`{"mean": mean(arg), "count": count(arg)}`)
	if err != nil {
		t.Fatal(err)
	}
	c, err := comp.Federated("overall_average", ftype.MustParse(`{float64*}@CLIENTS`),
		func(rt *comp.Runtime, arg *value.Value) (*value.Value, error) {
			perClient, err := rt.Map(stats, arg)
			if err != nil {
				return nil, err
			}
			means, err := rt.Select(perClient, "mean")
			if err != nil {
				return nil, err
			}
			counts, err := rt.Select(perClient, "count")
			if err != nil {
				return nil, err
			}
			return rt.WeightedMean(means, counts)
		})
	if err != nil {
		t.Fatal(err)
	}
	want := `({float64*}@CLIENTS -> float64@SERVER)`
	if got := c.TypeSignature().String(); got != want {
		t.Errorf("got %q want %q", got, want)
	}
	r := New()
	got, err := r.Invoke(context.Background(), c, []any{
		[]float64{68, 70},
		[]float64{71},
		[]float64{68, 72, 70},
	})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.(float64)-70) > 1e-9 {
		t.Errorf("got %v want 70", got)
	}
}

func TestInvokeLocalDirectly(t *testing.T) {
	top, err := comp.LocalExpr("keep_top_gradient",
		ftype.MustParse(`float64[5]`),
		ftype.MustParse(`float64[5]`),
		`put(zeros(count(arg)), argmax_abs(arg), arg[argmax_abs(arg)])`)
	if err != nil {
		t.Fatal(err)
	}
	r := New()
	got, err := r.Invoke(context.Background(), top, []float64{1, 2, 3, 4, -5})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0, 0, 0, -5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestInvokeCardinality(t *testing.T) {
	r := New(WithClients(3))
	_, err := r.Invoke(context.Background(), meanComp(t), []float64{1, 2})
	if !errors.Is(err, ErrCardinality) {
		t.Errorf("got %v want ErrCardinality", err)
	}
	r5 := New(WithClients(5))
	got, err := r5.Invoke(context.Background(), meanComp(t), []float64{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	if got.(float64) != 3 {
		t.Errorf("got %v want 3", got)
	}
}

func TestInvokeBadLiteral(t *testing.T) {
	r := New()
	_, err := r.Invoke(context.Background(), meanComp(t), "not a slice")
	if !errors.Is(err, ErrArg) {
		t.Errorf("got %v want ErrArg", err)
	}
}

func TestInvokeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New()
	_, err := r.Invoke(ctx, meanComp(t), []float64{1, 2, 3})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v want context.Canceled", err)
	}
}
