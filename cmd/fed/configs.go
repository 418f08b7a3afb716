package main

import (
	"io"
	"os"

	"github.com/fedflow/fedflow/encode"
	"github.com/fedflow/fedflow/manifest"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

const defaultManifest = "fedflow.yaml"

type MainConfig struct {
	Color bool `cli:"name=color desc='render with color'"`
	Types bool `cli:"name=types desc='render values with their types'"`

	Main *cli.Command
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.EncodeTypes(cfg.Types),
	}
	if cfg.Color {
		return append(res, encode.EncodeColors(encode.NewColors()))
	}
	f, ok := w.(*os.File)
	if !ok {
		return res
	}
	if isatty.IsTerminal(f.Fd()) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

// manifestPath takes the trailing positional argument, defaulting to
// fedflow.yaml in the current directory.
func manifestPath(args []string) string {
	if len(args) > 0 {
		return args[len(args)-1]
	}
	return defaultManifest
}

func loadSet(path string) (*manifest.Manifest, *manifest.Set, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := m.Build()
	if err != nil {
		return nil, nil, err
	}
	return m, s, nil
}

type TypesConfig struct {
	*MainConfig
	Types *cli.Command
}

type RunConfig struct {
	*MainConfig
	Comp    string `cli:"name=c aliases=comp desc='computation to invoke'"`
	Clients int    `cli:"name=n aliases=clients desc='client cardinality (default 3)'"`
	Input   string `cli:"name=i aliases=input desc='input literal file, - for stdin'"`
	Env     map[string]any

	Run *cli.Command
}

type CheckConfig struct {
	*MainConfig
	Check *cli.Command
}

type ServeConfig struct {
	*MainConfig
	Serve *cli.Command
}

type ViewConfig struct {
	*MainConfig
	Type string `cli:"name=t aliases=type desc='type to bind the literals against'"`

	View *cli.Command
}
