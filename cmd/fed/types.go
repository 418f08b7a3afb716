package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

func types(cfg *TypesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Types.Parse(cc, args)
	if err != nil {
		return err
	}
	_, s, err := loadSet(manifestPath(args))
	if err != nil {
		return err
	}
	for _, c := range s.All() {
		fmt.Fprintf(cc.Out, "%s : %s\n", c.Name(), c.TypeSignature())
	}
	return nil
}
