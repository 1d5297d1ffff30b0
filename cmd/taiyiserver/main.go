package main

import (
	"os"

	"github.com/enpitsuLin/taiyi/cli/app"
)

func main() {
	ctl := app.New()

	if err := ctl.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
