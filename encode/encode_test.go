package encode

import (
	"testing"

	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/value"
)

func mustFromGo(t *testing.T, v any, typ string) *value.Value {
	t.Helper()
	res, err := value.FromGo(v, ftype.MustParse(typ))
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestEncode(t *testing.T) {
	for _, tc := range []struct {
		name string
		v    any
		typ  string
		want string
	}{
		{"scalar", 4.5, `float64`, `4.5`},
		{"int", int64(7), `int64`, `7`},
		{"bool", true, `bool`, `true`},
		{"string", "hi", `string`, `"hi"`},
		{"vector", []float64{1, 2, 3}, `float64[3]`, `[1, 2, 3]`},
		{"struct", map[string]any{"mean": 69.0, "count": 2.0},
			`<mean=float64,count=float64>`, `<mean=69, count=2>`},
		{"sequence", []float64{68, 70}, `float64*`, `[68, 70]`},
		{"clients", []float64{1, 2, 3}, `{float64}@CLIENTS`, `[1, 2, 3]@CLIENTS`},
		{"server", 4.5, `float64@SERVER`, `4.5@SERVER`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := MustString(mustFromGo(t, tc.v, tc.typ))
			if got != tc.want {
				t.Errorf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestEncodeTypes(t *testing.T) {
	v := mustFromGo(t, 4.5, `float64@SERVER`)
	got := MustString(v, EncodeTypes(true))
	want := `4.5@SERVER : float64@SERVER`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestEncodeColorsRoundTrip(t *testing.T) {
	v := mustFromGo(t, []float64{1, 2}, `{float64}@CLIENTS`)
	colored := MustString(v, EncodeColors(NewColors()))
	if colored == "" {
		t.Fatal("empty rendering")
	}
}
