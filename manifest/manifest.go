// Package manifest loads YAML-declared computation sets: expression-bodied
// local computations, federated pipelines composed from the intrinsic
// vocabulary, and worked examples with expected results.
package manifest

import (
	"fmt"
	"os"

	"github.com/fedflow/fedflow/debug"

	"github.com/goccy/go-yaml"
)

type Manifest struct {
	Locals    []Local    `yaml:"locals" json:"locals,omitempty"`
	Pipelines []Pipeline `yaml:"pipelines" json:"pipelines,omitempty"`
	Examples  []Example  `yaml:"examples" json:"examples,omitempty"`
}

// Local declares an expression-bodied local computation.
type Local struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
	Expr string `yaml:"expr" json:"expr"`
}

// Pipeline declares a federated computation as an ordered list of
// intrinsic applications.
type Pipeline struct {
	Name  string `yaml:"name" json:"name"`
	Param string `yaml:"param" json:"param"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one intrinsic application. Operand references are `$arg` for
// the pipeline argument, a prior step's `as` name, or `name.field` to
// select a struct field of either.
type Step struct {
	Op     string   `yaml:"op" json:"op"`
	Fn     string   `yaml:"fn,omitempty" json:"fn,omitempty"`
	Arg    string   `yaml:"arg,omitempty" json:"arg,omitempty"`
	Args   []string `yaml:"args,omitempty" json:"args,omitempty"`
	Weight string   `yaml:"weight,omitempty" json:"weight,omitempty"`
	Value  any      `yaml:"value,omitempty" json:"value,omitempty"`
	Type   string   `yaml:"type,omitempty" json:"type,omitempty"`
	As     string   `yaml:"as,omitempty" json:"as,omitempty"`
}

// Example is an invocation with an expected result. Variants derive
// further cases by patching the base example.
type Example struct {
	Name     string    `yaml:"name" json:"name"`
	Comp     string    `yaml:"comp" json:"comp"`
	Input    any       `yaml:"input" json:"input"`
	Want     any       `yaml:"want" json:"want"`
	Clients  int       `yaml:"clients,omitempty" json:"clients,omitempty"`
	Variants []Variant `yaml:"variants,omitempty" json:"-"`
}

// Variant names an RFC 6902 patch over the base example.
type Variant struct {
	Name  string `yaml:"name" json:"name"`
	Patch any    `yaml:"patch" json:"patch"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse parses manifest YAML.
func Parse(d []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(d, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	if debug.Manifest() {
		debug.Logf("manifest: %d locals, %d pipelines, %d examples\n",
			len(m.Locals), len(m.Pipelines), len(m.Examples))
	}
	return m, nil
}
