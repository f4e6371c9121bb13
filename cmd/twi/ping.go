package main

import (
	"context"
	"errors"
	"time"

	"github.com/mklimuk/twi"
	"github.com/mklimuk/twi/cmd/twi/console"
	"github.com/urfave/cli/v2"
)

var pingCmd = cli.Command{
	Name:      "ping",
	Usage:     "check whether a device acknowledges its address",
	ArgsUsage: "<address>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(1, "expected 1 argument, got %d", c.NArg())
		}
		addr, err := parseAddr(c.Args().Get(0))
		if err != nil {
			return console.Exit(1, "%v", err)
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %v", err)
		}
		bus, cleanup, err := openBus(cfg)
		if err != nil {
			return console.Exit(1, "transport error: %v", err)
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = bus.Ping(ctx, addr)
		if errors.Is(err, twi.ErrNoDevice) {
			console.PInfof(console.PictoStop, "no device at %#02x", byte(addr))
			return console.Exit(1, "device %#02x did not respond", byte(addr))
		}
		if err != nil {
			return console.Exit(1, "ping failed: %v", err)
		}
		console.PInfof(console.PictoOK, "device %#02x responded", byte(addr))
		return nil
	},
}
