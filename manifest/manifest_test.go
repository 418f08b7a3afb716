package manifest

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLoadBuild(t *testing.T) {
	m, err := Load("testdata/readings.yaml")
	if err != nil {
		t.Fatal(err)
	}
	s, err := m.Build()
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		name string
		sig  string
	}{
		{"client_stats", `(float64* -> <mean=float64,count=float64>)`},
		{"keep_top_gradient", `(float64[5] -> float64[5])`},
		{"readings_mean", `({float64}@CLIENTS -> float64@SERVER)`},
		{"overall_average", `({float64*}@CLIENTS -> float64@SERVER)`},
	} {
		c := s.Lookup(tc.name)
		if c == nil {
			t.Fatalf("missing computation %q", tc.name)
		}
		if got := c.TypeSignature().String(); got != tc.sig {
			t.Errorf("%s: got %q want %q", tc.name, got, tc.sig)
		}
	}
	if got := len(s.All()); got != 4 {
		t.Errorf("got %d computations want 4", got)
	}
}

func TestRunExamples(t *testing.T) {
	m, err := Load("testdata/readings.yaml")
	if err != nil {
		t.Fatal(err)
	}
	s, err := m.Build()
	if err != nil {
		t.Fatal(err)
	}
	results, err := m.RunExamples(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results want 4", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: %v", r.Name, r.Err)
			continue
		}
		if !r.Pass {
			t.Errorf("%s: got %v want %v", r.Name, r.Got, r.Want)
		}
	}
	var variant *ExampleResult
	for i := range results {
		if results[i].Name == "simple_mean/five_clients" {
			variant = &results[i]
		}
	}
	if variant == nil {
		t.Fatal("missing patched variant")
	}
	if variant.Clients != 5 {
		t.Errorf("got %d clients want 5", variant.Clients)
	}
}

func TestBuildErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want error
	}{
		{"unknown op", `
pipelines:
  - name: p
    param: "{float64}@CLIENTS"
    steps:
      - op: federated_median
        arg: $arg
`, ErrUnknown},
		{"unknown fn", `
pipelines:
  - name: p
    param: "{float64}@CLIENTS"
    steps:
      - op: federated_map
        fn: nope
        arg: $arg
`, ErrUnknown},
		{"unknown ref", `
pipelines:
  - name: p
    param: "{float64}@CLIENTS"
    steps:
      - op: federated_mean
        arg: nope
`, ErrUnknown},
		{"no steps", `
pipelines:
  - name: p
    param: "{float64}@CLIENTS"
    steps: []
`, ErrManifest},
		{"bad local type", `
locals:
  - name: l
    type: "float64 ->"
    expr: "arg"
`, nil},
		{"duplicate name", `
locals:
  - name: l
    type: "(float64 -> float64)"
    expr: "arg"
  - name: l
    type: "(float64 -> float64)"
    expr: "arg"
`, ErrManifest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Parse([]byte(tc.src))
			if err != nil {
				t.Fatal(err)
			}
			_, err = m.Build()
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestVariantPatchError(t *testing.T) {
	m, err := Parse([]byte(`
locals:
  - name: ident
    type: "(float64 -> float64)"
    expr: "arg"
examples:
  - name: base
    comp: ident
    input: 1
    want: 1
    variants:
      - name: broken
        patch:
          - op: replace
            path: /missing/deep/path
            value: 2
`))
	if err != nil {
		t.Fatal(err)
	}
	s, err := m.Build()
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.RunExamples(context.Background(), s)
	if !errors.Is(err, ErrVariant) {
		t.Errorf("got %v want ErrVariant", err)
	}
	if err != nil && !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %v does not name the variant", err)
	}
}
