package manifest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/sim"
	"github.com/fedflow/fedflow/value"

	jsonpatch "github.com/evanphx/json-patch"
)

// ExampleResult records one example invocation against its expected
// result.
type ExampleResult struct {
	Name    string
	Comp    string
	Clients int
	Got     any
	Want    any
	Err     error
	Pass    bool
}

// RunExamples invokes every example and every patch variant against the
// built set. Invocation failures and mismatches land in the per-example
// results; only malformed manifests error out.
func (m *Manifest) RunExamples(ctx context.Context, s *Set) ([]ExampleResult, error) {
	var res []ExampleResult
	for _, ex := range m.Examples {
		cases, err := expand(ex)
		if err != nil {
			return nil, fmt.Errorf("example %q: %w", ex.Name, err)
		}
		for _, c := range cases {
			res = append(res, runExample(ctx, s, c))
		}
	}
	return res, nil
}

// expand yields the base example followed by its patched variants.
func expand(ex Example) ([]Example, error) {
	cases := []Example{ex}
	if len(ex.Variants) == 0 {
		return cases, nil
	}
	base, err := json.Marshal(ex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVariant, err)
	}
	for _, v := range ex.Variants {
		ops, err := json.Marshal(v.Patch)
		if err != nil {
			return nil, fmt.Errorf("%w: variant %q: %v", ErrVariant, v.Name, err)
		}
		patch, err := jsonpatch.DecodePatch(ops)
		if err != nil {
			return nil, fmt.Errorf("%w: variant %q: %v", ErrVariant, v.Name, err)
		}
		patched, err := patch.Apply(base)
		if err != nil {
			return nil, fmt.Errorf("%w: variant %q: %v", ErrVariant, v.Name, err)
		}
		var c Example
		if err := json.Unmarshal(patched, &c); err != nil {
			return nil, fmt.Errorf("%w: variant %q: %v", ErrVariant, v.Name, err)
		}
		c.Name = ex.Name + "/" + v.Name
		cases = append(cases, c)
	}
	return cases, nil
}

func runExample(ctx context.Context, s *Set, ex Example) ExampleResult {
	res := ExampleResult{Name: ex.Name, Comp: ex.Comp, Clients: ex.Clients, Want: ex.Want}
	c := s.Lookup(ex.Comp)
	if c == nil {
		res.Err = fmt.Errorf("%w: computation %q", ErrUnknown, ex.Comp)
		return res
	}
	opts := []sim.Option{}
	if ex.Clients > 0 {
		opts = append(opts, sim.WithClients(ex.Clients))
	}
	got, err := sim.New(opts...).Invoke(ctx, c, ex.Input)
	if err != nil {
		res.Err = err
		return res
	}
	res.Got = got
	res.Pass = match(got, ex.Want, c.TypeSignature().Result)
	return res
}

// match compares got and want by binding both against the result type, so
// YAML integer literals compare equal to float results.
func match(got, want any, result ftype.Type) bool {
	gv, err := value.FromGo(got, result)
	if err != nil {
		return false
	}
	wv, err := value.FromGo(want, result)
	if err != nil {
		return false
	}
	return value.Equal(gv, wv, 1e-6)
}
