// Package debug holds env-var gated debug switches for tracing evaluation.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Invoke    bool
	Intrinsic bool
	Expr      bool
	Manifest  bool
	Server    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Invoke = boolEnv("FEDFLOW_DEBUG_INVOKE")
	d.Intrinsic = boolEnv("FEDFLOW_DEBUG_INTRINSIC")
	d.Expr = boolEnv("FEDFLOW_DEBUG_EXPR")
	d.Manifest = boolEnv("FEDFLOW_DEBUG_MANIFEST")
	d.Server = boolEnv("FEDFLOW_DEBUG_SERVER")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Invoke() bool {
	return d.Invoke
}
func Intrinsic() bool {
	return d.Intrinsic
}
func Expr() bool {
	return d.Expr
}
func Manifest() bool {
	return d.Manifest
}
func Server() bool {
	return d.Server
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

func JSON(v any) string {
	d, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(d)
}
