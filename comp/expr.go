package comp

import (
	"context"
	"fmt"
	"math"

	"github.com/fedflow/fedflow/debug"
	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/value"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// LocalExpr declares a local computation whose body is an expr-lang
// expression. The environment exposes the whole argument as `arg` and, for
// a fully named struct parameter, each field under its own name; sequence
// and vector arguments appear as plain slices. Compilation failures
// surface at declaration, not at call time.
func LocalExpr(name string, param, result ftype.Type, src string) (*LocalComp, error) {
	prg, err := expr.Compile(src, exprOpts()...)
	if err != nil {
		return nil, fmt.Errorf("%s: compiling %q: %w", name, src, err)
	}
	fn := func(ctx context.Context, arg *value.Value) (*value.Value, error) {
		env := exprEnv(param, arg)
		if debug.Expr() {
			debug.Logf("%s env %s\n", name, debug.JSON(env))
		}
		res, err := runProgram(prg, env)
		if err != nil {
			return nil, err
		}
		return value.FromGo(res, result)
	}
	return Local(name, param, result, fn)
}

func runProgram(prg *vm.Program, env map[string]any) (any, error) {
	return expr.Run(prg, env)
}

func exprEnv(param ftype.Type, arg *value.Value) map[string]any {
	env := map[string]any{}
	if arg == nil {
		return env
	}
	goArg := value.ToGo(arg)
	env["arg"] = goArg
	st, ok := param.(*ftype.StructType)
	if !ok {
		return env
	}
	m, ok := goArg.(map[string]any)
	if !ok {
		return env
	}
	for _, f := range st.Fields {
		env[f.Name] = m[f.Name]
	}
	return env
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.AllowUndefinedVariables(),
		expr.Function("sum", func(params ...any) (any, error) {
			xs, err := toFloats(params[0])
			if err != nil {
				return nil, err
			}
			total := 0.0
			for _, x := range xs {
				total += x
			}
			return total, nil
		},
			new(func([]float64) float64)),
		expr.Function("mean", func(params ...any) (any, error) {
			xs, err := toFloats(params[0])
			if err != nil {
				return nil, err
			}
			if len(xs) == 0 {
				return nil, fmt.Errorf("mean of empty sequence")
			}
			total := 0.0
			for _, x := range xs {
				total += x
			}
			return total / float64(len(xs)), nil
		},
			new(func([]float64) float64)),
		expr.Function("count", func(params ...any) (any, error) {
			xs, err := toFloats(params[0])
			if err != nil {
				return nil, err
			}
			return float64(len(xs)), nil
		},
			new(func([]float64) float64)),
		expr.Function("abs", func(params ...any) (any, error) {
			x, err := toFloatScalar(params[0])
			if err != nil {
				return nil, err
			}
			return math.Abs(x), nil
		},
			new(func(float64) float64),
			new(func(int) float64)),
		expr.Function("argmax_abs", func(params ...any) (any, error) {
			xs, err := toFloats(params[0])
			if err != nil {
				return nil, err
			}
			if len(xs) == 0 {
				return nil, fmt.Errorf("argmax_abs of empty sequence")
			}
			best := 0
			for i, x := range xs {
				if math.Abs(x) > math.Abs(xs[best]) {
					best = i
				}
			}
			return best, nil
		},
			new(func([]float64) int)),
		expr.Function("zeros", func(params ...any) (any, error) {
			n, err := toFloatScalar(params[0])
			if err != nil {
				return nil, err
			}
			return make([]float64, int(n)), nil
		},
			new(func(int) []float64),
			new(func(float64) []float64)),
		expr.Function("put", func(params ...any) (any, error) {
			xs, err := toFloats(params[0])
			if err != nil {
				return nil, err
			}
			i, err := toFloatScalar(params[1])
			if err != nil {
				return nil, err
			}
			v, err := toFloatScalar(params[2])
			if err != nil {
				return nil, err
			}
			idx := int(i)
			if idx < 0 || idx >= len(xs) {
				return nil, fmt.Errorf("put index %d out of bounds (len %d)", idx, len(xs))
			}
			res := make([]float64, len(xs))
			copy(res, xs)
			res[idx] = v
			return res, nil
		},
			new(func([]float64, int, float64) []float64),
			new(func([]float64, float64, float64) []float64)),
		expr.Function("scale", func(params ...any) (any, error) {
			xs, err := toFloats(params[0])
			if err != nil {
				return nil, err
			}
			f, err := toFloatScalar(params[1])
			if err != nil {
				return nil, err
			}
			res := make([]float64, len(xs))
			for i, x := range xs {
				res[i] = x * f
			}
			return res, nil
		},
			new(func([]float64, float64) []float64),
			new(func([]float64, int) []float64)),
	}
}

func toFloats(v any) ([]float64, error) {
	switch xs := v.(type) {
	case []float64:
		return xs, nil
	case []int64:
		res := make([]float64, len(xs))
		for i, x := range xs {
			res[i] = float64(x)
		}
		return res, nil
	case []any:
		res := make([]float64, len(xs))
		for i, x := range xs {
			f, err := toFloatScalar(x)
			if err != nil {
				return nil, err
			}
			res[i] = f
		}
		return res, nil
	default:
		return nil, fmt.Errorf("expected a sequence of numbers, got %T", v)
	}
}

func toFloatScalar(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
