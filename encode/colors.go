package encode

import (
	"strings"

	"github.com/fedflow/fedflow/ftype"

	"github.com/fatih/color"
)

type Colorable struct {
	Kind ftype.Kind
	Attr ColorAttr
}

type ColorAttr int

const (
	FieldColor ColorAttr = iota
	ValueColor
	SepColor
	TypeColor
	PlacementColor
)

type Colors struct {
	Default func(string, ...any) string
	Map     map[Colorable]func(string, ...any) string
}

func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map:     map[Colorable]func(string, ...any) string{},
	}
	for _, k := range []ftype.Kind{
		ftype.TensorKind, ftype.StructKind, ftype.SequenceKind,
		ftype.FederatedKind, ftype.FunctionKind,
	} {
		able := Colorable{Kind: k, Attr: SepColor}
		colors.Map[able] = color.RGB(196, 128, 128).SprintfFunc()
		able.Attr = TypeColor
		colors.Map[able] = color.RGB(74, 92, 138).SprintfFunc()
	}
	able := Colorable{Attr: ValueColor}

	able.Kind = ftype.TensorKind
	colors.Map[able] = color.RGB(128, 216, 236).SprintfFunc()

	able.Kind = ftype.StructKind
	able.Attr = FieldColor
	colors.Map[able] = color.RGB(128, 168, 196).SprintfFunc()

	able.Kind = ftype.FederatedKind
	able.Attr = PlacementColor
	colors.Map[able] = color.RGB(196, 96, 16).SprintfFunc()

	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.Replace(v, "%", "%%", -1))
		}
	}
	return colors
}

func colorDefault(v string, _ ...any) string { return v }

func (c *Colors) Color(k ftype.Kind, a ColorAttr, s string) string {
	return c.Get(k, a)(s)
}

func (c *Colors) Get(k ftype.Kind, a ColorAttr) func(string, ...any) string {
	f := c.Map[Colorable{Kind: k, Attr: a}]
	if f == nil {
		return c.Default
	}
	return f
}
