package manifest

import (
	"fmt"
	"strings"

	"github.com/fedflow/fedflow/comp"
	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/intrinsic"
	"github.com/fedflow/fedflow/value"
)

// Set holds the computations built from one manifest, in declaration
// order.
type Set struct {
	comps map[string]comp.Computation
	order []string
}

func (s *Set) Lookup(name string) comp.Computation { return s.comps[name] }

func (s *Set) All() []comp.Computation {
	res := make([]comp.Computation, 0, len(s.order))
	for _, name := range s.order {
		res = append(res, s.comps[name])
	}
	return res
}

// Build compiles the manifest's locals and pipelines. Every pipeline is
// traced once here, so type errors in step wiring surface at build time
// with the offending entry named.
func (m *Manifest) Build() (*Set, error) {
	s := &Set{comps: map[string]comp.Computation{}}
	add := func(c comp.Computation) error {
		if _, present := s.comps[c.Name()]; present {
			return fmt.Errorf("%w: duplicate computation %q", ErrManifest, c.Name())
		}
		s.comps[c.Name()] = c
		s.order = append(s.order, c.Name())
		return nil
	}
	for _, l := range m.Locals {
		c, err := buildLocal(l)
		if err != nil {
			return nil, fmt.Errorf("local %q: %w", l.Name, err)
		}
		if err := add(c); err != nil {
			return nil, err
		}
	}
	for _, p := range m.Pipelines {
		c, err := buildPipeline(p, s)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", p.Name, err)
		}
		if err := add(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func buildLocal(l Local) (comp.Computation, error) {
	t, err := ftype.Parse(l.Type)
	if err != nil {
		return nil, err
	}
	sig, ok := t.(*ftype.FunctionType)
	if !ok {
		return nil, fmt.Errorf("%w: type %q is not a function type", ErrManifest, l.Type)
	}
	return comp.LocalExpr(l.Name, sig.Param, sig.Result, l.Expr)
}

func buildPipeline(p Pipeline, s *Set) (comp.Computation, error) {
	var param ftype.Type
	if p.Param != "" {
		t, err := ftype.Parse(p.Param)
		if err != nil {
			return nil, err
		}
		param = t
	}
	if len(p.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrManifest)
	}
	// Resolve names eagerly so a bad reference is reported against the
	// manifest, not against a half-run trace.
	defined := map[string]bool{}
	for i, st := range p.Steps {
		if err := checkStep(st, s, defined); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}
		if st.As != "" {
			defined[st.As] = true
		}
	}
	steps := p.Steps
	body := func(rt *comp.Runtime, arg *value.Value) (*value.Value, error) {
		results := map[string]*value.Value{}
		var last *value.Value
		for i, st := range steps {
			res, err := runStep(rt, st, arg, results, s)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i, st.Op, err)
			}
			if st.As != "" {
				results[st.As] = res
			}
			last = res
		}
		return last, nil
	}
	return comp.Federated(p.Name, param, body)
}

func checkStep(st Step, s *Set, defined map[string]bool) error {
	checkRef := func(ref string) error {
		if ref == "" {
			return fmt.Errorf("%w: missing operand", ErrStep)
		}
		base, _, _ := strings.Cut(ref, ".")
		if base != "$arg" && !defined[base] {
			return fmt.Errorf("%w: %q does not name a prior step", ErrUnknown, base)
		}
		return nil
	}
	switch st.Op {
	case "federated_map", "federated_map_all_equal":
		if s.Lookup(st.Fn) == nil && comp.Lookup(st.Fn) == nil {
			return fmt.Errorf("%w: fn %q", ErrUnknown, st.Fn)
		}
		return checkRef(st.Arg)
	case "federated_mean", "federated_sum", "federated_broadcast", "select":
		return checkRef(st.Arg)
	case "federated_weighted_mean":
		if err := checkRef(st.Arg); err != nil {
			return err
		}
		return checkRef(st.Weight)
	case "federated_zip_at_clients":
		if len(st.Args) != 2 {
			return fmt.Errorf("%w: zip takes two args", ErrStep)
		}
		for _, ref := range st.Args {
			if err := checkRef(ref); err != nil {
				return err
			}
		}
		return nil
	case "federated_value_at_clients", "federated_value_at_server":
		if _, err := ftype.Parse(st.Type); err != nil {
			return fmt.Errorf("literal type: %w", err)
		}
		return nil
	default:
		if intrinsic.Lookup(st.Op) == nil {
			return fmt.Errorf("%w: op %q", ErrUnknown, st.Op)
		}
		return nil
	}
}

func runStep(rt *comp.Runtime, st Step, arg *value.Value, results map[string]*value.Value, s *Set) (*value.Value, error) {
	switch st.Op {
	case "federated_map":
		fn, v, err := mapOperands(rt, st, arg, results, s)
		if err != nil {
			return nil, err
		}
		return rt.Map(fn, v)
	case "federated_map_all_equal":
		fn, v, err := mapOperands(rt, st, arg, results, s)
		if err != nil {
			return nil, err
		}
		return rt.MapAllEqual(fn, v)
	case "federated_mean":
		v, err := resolve(rt, st.Arg, arg, results)
		if err != nil {
			return nil, err
		}
		return rt.Mean(v)
	case "federated_sum":
		v, err := resolve(rt, st.Arg, arg, results)
		if err != nil {
			return nil, err
		}
		return rt.Sum(v)
	case "federated_weighted_mean":
		v, err := resolve(rt, st.Arg, arg, results)
		if err != nil {
			return nil, err
		}
		w, err := resolve(rt, st.Weight, arg, results)
		if err != nil {
			return nil, err
		}
		return rt.WeightedMean(v, w)
	case "federated_broadcast":
		v, err := resolve(rt, st.Arg, arg, results)
		if err != nil {
			return nil, err
		}
		return rt.Broadcast(v)
	case "federated_zip_at_clients":
		if len(st.Args) != 2 {
			return nil, fmt.Errorf("%w: zip takes two args", ErrStep)
		}
		a, err := resolve(rt, st.Args[0], arg, results)
		if err != nil {
			return nil, err
		}
		b, err := resolve(rt, st.Args[1], arg, results)
		if err != nil {
			return nil, err
		}
		return rt.Zip(a, b)
	case "federated_value_at_clients", "federated_value_at_server":
		t, err := ftype.Parse(st.Type)
		if err != nil {
			return nil, err
		}
		lit, err := value.FromGo(st.Value, t)
		if err != nil {
			return nil, err
		}
		if st.Op == "federated_value_at_clients" {
			return rt.ValueAtClients(lit)
		}
		return rt.ValueAtServer(lit)
	case "select":
		return resolve(rt, st.Arg, arg, results)
	default:
		return nil, fmt.Errorf("%w: op %q", ErrUnknown, st.Op)
	}
}

func mapOperands(rt *comp.Runtime, st Step, arg *value.Value, results map[string]*value.Value, s *Set) (comp.Computation, *value.Value, error) {
	fn := s.Lookup(st.Fn)
	if fn == nil {
		fn = comp.Lookup(st.Fn)
	}
	if fn == nil {
		return nil, nil, fmt.Errorf("%w: fn %q", ErrUnknown, st.Fn)
	}
	v, err := resolve(rt, st.Arg, arg, results)
	if err != nil {
		return nil, nil, err
	}
	return fn, v, nil
}

// resolve turns an operand reference into a value: `$arg`, a prior step's
// `as` name, or either suffixed with `.field` to select a struct field.
func resolve(rt *comp.Runtime, ref string, arg *value.Value, results map[string]*value.Value) (*value.Value, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: missing operand", ErrStep)
	}
	base, field, selected := strings.Cut(ref, ".")
	var v *value.Value
	if base == "$arg" {
		if arg == nil {
			return nil, fmt.Errorf("%w: $arg in a no-argument pipeline", ErrStep)
		}
		v = arg
	} else {
		v = results[base]
		if v == nil {
			return nil, fmt.Errorf("%w: %q does not name a prior step", ErrUnknown, base)
		}
	}
	if !selected {
		return v, nil
	}
	return rt.Select(v, field)
}
