package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mklimuk/twi"
	"github.com/mklimuk/twi/cmd/twi/console"
	"github.com/urfave/cli/v2"
)

// 7-bit addresses outside this window are reserved by the bus standard.
const (
	scanFirst twi.Addr = 0x08
	scanLast  twi.Addr = 0x77
)

var scanCmd = cli.Command{
	Name:  "scan",
	Usage: "probe every valid 7-bit address and print responding devices",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %v", err)
		}
		bus, cleanup, err := openBus(cfg)
		if err != nil {
			return console.Exit(1, "transport error: %v", err)
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(console.SetVerbose(context.Background(), c.Bool("verbose")), 30*time.Second)
		defer cancel()

		var found []twi.Addr
		fmt.Print("     0  1  2  3  4  5  6  7  8  9  a  b  c  d  e  f")
		for addr := twi.Addr(0); addr <= scanLast; addr++ {
			if addr%16 == 0 {
				fmt.Printf("\n%02x:", byte(addr))
			}
			if addr < scanFirst {
				fmt.Print("   ")
				continue
			}
			err = bus.Ping(ctx, addr)
			switch {
			case err == nil:
				fmt.Printf(" %s", console.Green(fmt.Sprintf("%02x", byte(addr))))
				found = append(found, addr)
			case errors.Is(err, twi.ErrNoDevice):
				fmt.Print(" --")
			default:
				return console.Exit(1, "scan aborted at %#02x: %v", byte(addr), err)
			}
		}
		fmt.Println()

		for _, addr := range found {
			if label, ok := cfg.Label(byte(addr)); ok {
				console.PInfof(console.PictoPin, "%#02x %s", byte(addr), console.White(label))
			} else {
				console.PInfof(console.PictoPin, "%#02x", byte(addr))
			}
		}
		console.Infof("%d device(s) found", len(found))
		return nil
	},
}
