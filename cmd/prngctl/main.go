package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Gen     GenCmd           `cmd:"" help:"Generate one draw from a keyed stream"`
	Run     RunCmd           `cmd:"" help:"Run every stream of an HCL job file"`
	Check   CheckCmd         `cmd:"" help:"Run statistical self-checks against both generators"`
	Vectors VectorsCmd       `cmd:"" help:"Verify the published known-answer vectors"`
	Graph   GraphCmd         `cmd:"" help:"Print the program built for a draw"`
	Bench   BenchCmd         `cmd:"" help:"Measure generator throughput on the host interpreter"`
}

func newParser(cli *CLI, stdout io.Writer, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("prngctl"),
		kong.Description("Counter-based random number programs: generate, inspect and check"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(stdout, (*io.Writer)(nil)),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, os.Stdout)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
