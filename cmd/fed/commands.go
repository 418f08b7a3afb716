package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "fed").
		WithSynopsis("fed [opts] command [opts]").
		WithDescription("fed declares, inspects and runs federated computations.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return fedMain(cfg, cc, args)
		}).
		WithSubs(
			TypesCommand(cfg),
			RunCommand(cfg),
			CheckCommand(cfg),
			ServeCommand(cfg),
			ViewCommand(cfg))
}

func TypesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &TypesConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Types, "types").
		WithAliases("t", "ty").
		WithSynopsis("types [manifest]").
		WithDescription("list the manifest's computations with their type signatures").
		WithRun(func(cc *cli.Context, args []string) error {
			return types(cfg, cc, args)
		})
}

func RunCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &RunConfig{MainConfig: mainCfg, Env: map[string]any{}}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, &cli.Opt{
		Name: "e",
		Type: cli.NamedFuncOpt(cli.FuncOpt(envOptTypeFunc(cfg.Env)), "(field=val)"),
	})
	return cli.NewCommandAt(&cfg.Run, "run").
		WithAliases("r").
		WithSynopsis("run -c name [-n clients] [-e field=val]... [-i input] [manifest]").
		WithDescription("invoke a computation with a YAML literal argument").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return run(cfg, cc, args)
		})
}

func envOptTypeFunc(env map[string]any) func(cc *cli.Context, a string) (any, error) {
	return func(cc *cli.Context, a string) (any, error) {
		if err := envSet(env, a); err != nil {
			return nil, err
		}
		return 0, nil
	}
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Check, "check").
		WithAliases("c", "ch").
		WithSynopsis("check [manifest]").
		WithDescription("run the manifest's examples and variants against their expected results").
		WithRun(func(cc *cli.Context, args []string) error {
			return check(cfg, cc, args)
		})
}

func ServeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ServeConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Serve, "serve").
		WithSynopsis("serve [manifest]").
		WithDescription("serve the manifest's computations over JSON-RPC on stdio").
		WithRun(func(cc *cli.Context, args []string) error {
			return serve(cfg, cc, args)
		})
}

func ViewCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ViewConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.View, "view").
		WithAliases("v").
		WithSynopsis("view -t type [files]").
		WithDescription("render YAML value literals in display notation").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return view(cfg, cc, args)
		})
}
