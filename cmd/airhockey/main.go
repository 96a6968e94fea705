package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play a local two player match in the terminal"`
	Serve    ServeCmd         `cmd:"" help:"Run a match and bridge it to a remote presentation host over WebSocket"`
	Simulate SimulateCmd      `cmd:"" help:"Run headless matches between random players and check the court rules"`
	Config   ConfigCmd        `cmd:"" help:"Print or check the effective configuration"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("airhockey"),
		kong.Description("Two player air hockey on a fixed frame clock"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
