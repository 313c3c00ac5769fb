// Command analyticsctl administers websites and drives synthetic traffic.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "analyticsctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "analyticsctl",
		Usage: "Manage analytics websites and simulate tracked traffic",
		Commands: []*cli.Command{
			newWebsiteCommand(),
			newSimulateCommand(),
		},
	}
}
