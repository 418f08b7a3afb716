package main

import (
	"fmt"

	"github.com/fedflow/fedflow/encode"
	"github.com/fedflow/fedflow/ftype"
	"github.com/fedflow/fedflow/value"

	"github.com/scott-cotton/cli"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Type == "" {
		return fmt.Errorf("%w: -t <type> is required", cli.ErrUsage)
	}
	t, err := ftype.Parse(cfg.Type)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, file := range args {
		lit, err := readLiteral(file)
		if err != nil {
			return err
		}
		v, err := value.FromGo(lit, t)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if err := encode.Encode(v, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
			return err
		}
	}
	return nil
}
