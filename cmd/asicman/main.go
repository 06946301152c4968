// asicman is the switch ASIC hardware abstraction agent.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ferrous-networks/asicman/cmd/asicman/cli"
)

func main() {
	var c cli.CLI
	ctx := kong.Parse(&c, cli.KongOptions()...)
	if err := ctx.Run(&c); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
