package main

import (
	"context"
	"fmt"

	"github.com/fedflow/fedflow/encode"
	"github.com/fedflow/fedflow/sim"
	"github.com/fedflow/fedflow/value"

	"github.com/scott-cotton/cli"
)

func run(cfg *RunConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Run.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Comp == "" {
		return fmt.Errorf("%w: -c <computation> is required", cli.ErrUsage)
	}
	_, s, err := loadSet(manifestPath(args))
	if err != nil {
		return err
	}
	c := s.Lookup(cfg.Comp)
	if c == nil {
		return fmt.Errorf("no computation %q in manifest", cfg.Comp)
	}
	var arg any
	if c.TypeSignature().Param != nil {
		switch {
		case cfg.Input == "" && len(cfg.Env) > 0:
			arg = cfg.Env
		default:
			arg, err = readLiteral(cfg.Input)
			if err != nil {
				return err
			}
			if m, ok := arg.(map[string]any); ok {
				for k, v := range cfg.Env {
					m[k] = v
				}
			}
		}
	}
	opts := []sim.Option{}
	if cfg.Clients > 0 {
		opts = append(opts, sim.WithClients(cfg.Clients))
	}
	got, err := sim.New(opts...).Invoke(context.Background(), c, arg)
	if err != nil {
		return err
	}
	v, err := value.FromGo(got, c.TypeSignature().Result)
	if err != nil {
		return err
	}
	return encode.Encode(v, cc.Out, cfg.encOpts(cc.Out)...)
}
