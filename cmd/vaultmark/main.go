package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/vaultmark/cmd/vaultmark/commands"
	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
	"git.home.luguber.info/inful/vaultmark/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Out: os.Stdout, LogOut: os.Stderr}

	parser := kong.Must(cli,
		kong.Name("vaultmark"),
		kong.Description("Render an Obsidian vault into a static site."),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
		kong.UsageOnError(),
	)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := kctx.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
