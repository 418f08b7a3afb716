package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"
)

// readLiteral reads a YAML value literal from a file, or stdin when path
// is empty or "-".
func readLiteral(path string) (any, error) {
	var (
		d   []byte
		err error
	)
	if path == "" || path == "-" {
		d, err = io.ReadAll(os.Stdin)
	} else {
		d, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(d, &v); err != nil {
		return nil, fmt.Errorf("bad value literal: %w", err)
	}
	return v, nil
}

// envSet records one field=val override, the value parsed as a YAML
// literal.
func envSet(env map[string]any, a string) error {
	field, val, ok := strings.Cut(a, "=")
	if !ok || field == "" {
		return fmt.Errorf("%w: want field=val, got %q", cli.ErrUsage, a)
	}
	var v any
	if err := yaml.Unmarshal([]byte(val), &v); err != nil {
		return fmt.Errorf("bad value for %q: %w", field, err)
	}
	env[field] = v
	return nil
}
