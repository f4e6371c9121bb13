package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mklimuk/twi/cmd/twi/console"

	"github.com/urfave/cli/v2"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var busesCmd = cli.Command{
	Name:  "buses",
	Usage: "list kernel buses available to the system transport",
	Action: func(c *cli.Context) error {
		if _, err := host.Init(); err != nil {
			return console.Exit(1, "host initialization error: %v", err)
		}
		refs := i2creg.All()
		if len(refs) == 0 {
			console.Warn("no buses found")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 16, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "NAME\tNUMBER\tALIASES\n")
		for _, ref := range refs {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%v\n", ref.Name, ref.Number, ref.Aliases)
		}
		_ = w.Flush()
		return nil
	},
}
