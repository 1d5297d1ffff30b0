package app

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/enpitsuLin/taiyi/cli/server"
	"github.com/enpitsuLin/taiyi/pkg/config"
)

// versionString builds the user-visible version.
func versionString() string {
	if config.Version == "" {
		return "dev"
	}
	return config.Version
}

// New creates the taiyiserver CLI application.
func New() *cli.App {
	ctl := cli.NewApp()
	ctl.Name = "taiyiserver"
	ctl.Version = versionString()
	ctl.Usage = "Taiyi simulated-world blockchain node"
	ctl.ErrWriter = ctl.Writer

	ctl.Commands = server.NewCommands()

	cli.VersionPrinter = func(ctx *cli.Context) {
		fmt.Fprintf(ctx.App.Writer, "%s version %s\n", ctx.App.Name, ctx.App.Version)
	}
	return ctl
}
