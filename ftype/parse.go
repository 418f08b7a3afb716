package ftype

import (
	"fmt"
	"strconv"

	"github.com/fedflow/fedflow/placement"
)

// Parse reads a type from its display notation, round tripping with
// String(). Examples:
//
//	float32
//	int32[3]
//	<a=float32,b=float64*>
//	{float32}@CLIENTS
//	float32@SERVER
//	({float64*}@CLIENTS -> float64@SERVER)
func Parse(s string) (Type, error) {
	p := &parser{s: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.pos != len(p.s) {
		return nil, p.errf("trailing input %q", p.s[p.pos:])
	}
	if err := Check(t); err != nil {
		return nil, err
	}
	return t, nil
}

// MustParse is Parse for type literals known good at compile time.
func MustParse(s string) Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	s   string
	pos int
}

func (p *parser) errf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s at offset %d in %q", ErrParse, msg, p.pos, p.s)
}

func (p *parser) skip() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) expect(c byte) error {
	p.skip()
	if p.peek() != c {
		return p.errf("expected %q", string(c))
	}
	p.pos++
	return nil
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.s[start:p.pos]
}

func (p *parser) parseType() (Type, error) {
	p.skip()
	if p.peek() == '(' {
		return p.parseFunction()
	}
	return p.parsePostfix()
}

func (p *parser) parseFunction() (Type, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	p.skip()
	var (
		param Type
		err   error
	)
	if !p.arrowNext() {
		param, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	p.skip()
	if !p.arrowNext() {
		return nil, p.errf("expected '->'")
	}
	p.pos += 2
	result, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return Function(param, result), nil
}

func (p *parser) arrowNext() bool {
	return p.pos+1 < len(p.s) && p.s[p.pos] == '-' && p.s[p.pos+1] == '>'
}

func (p *parser) parsePostfix() (Type, error) {
	t, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		p.skip()
		switch p.peek() {
		case '*':
			p.pos++
			t = Sequence(t)
		case '@':
			p.pos++
			pl, err := p.parsePlacement()
			if err != nil {
				return nil, err
			}
			ft, err := Federated(t, pl, true)
			if err != nil {
				return nil, err
			}
			t = ft
		default:
			return t, nil
		}
	}
}

func (p *parser) parsePlacement() (*placement.Placement, error) {
	p.skip()
	name := p.ident()
	if name == "" {
		return nil, p.errf("expected placement name")
	}
	pl := placement.Lookup(name)
	if pl == nil {
		return nil, p.errf("unrecognized placement %q", name)
	}
	return pl, nil
}

func (p *parser) parsePrimary() (Type, error) {
	p.skip()
	switch p.peek() {
	case '{':
		p.pos++
		member, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		if err := p.expect('@'); err != nil {
			return nil, err
		}
		pl, err := p.parsePlacement()
		if err != nil {
			return nil, err
		}
		return Federated(member, pl, false)
	case '<':
		return p.parseStruct()
	default:
		return p.parseTensor()
	}
}

func (p *parser) parseStruct() (Type, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	var fields []Field
	p.skip()
	if p.peek() == '>' {
		p.pos++
		return Struct(), nil
	}
	for {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		p.skip()
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return Struct(fields...), nil
		default:
			return nil, p.errf("expected ',' or '>'")
		}
	}
}

func (p *parser) parseField() (Field, error) {
	p.skip()
	save := p.pos
	name := p.ident()
	if name != "" && p.peek() == '=' {
		p.pos++
		t, err := p.parseType()
		if err != nil {
			return Field{}, err
		}
		return Field{Name: name, Type: t}, nil
	}
	p.pos = save
	t, err := p.parseType()
	if err != nil {
		return Field{}, err
	}
	return Field{Type: t}, nil
}

func (p *parser) parseTensor() (Type, error) {
	p.skip()
	name := p.ident()
	if name == "" {
		return nil, p.errf("expected a type")
	}
	dt, err := ParseDType(name)
	if err != nil {
		return nil, p.errf("%v", err)
	}
	if p.peek() != '[' {
		return Tensor(dt), nil
	}
	p.pos++
	var shape []int
	for {
		p.skip()
		if p.peek() == '?' {
			p.pos++
			shape = append(shape, -1)
		} else {
			start := p.pos
			for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
				p.pos++
			}
			if p.pos == start {
				return nil, p.errf("expected dimension")
			}
			d, err := strconv.Atoi(p.s[start:p.pos])
			if err != nil {
				return nil, p.errf("%v", err)
			}
			shape = append(shape, d)
		}
		p.skip()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return Tensor(dt, shape...), nil
		default:
			return nil, p.errf("expected ',' or ']'")
		}
	}
}
