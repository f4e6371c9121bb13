package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mklimuk/twi/cmd/twi/console"
	"github.com/urfave/cli/v2"
)

var readCmd = cli.Command{
	Name:      "read",
	Usage:     "read bytes from a device",
	ArgsUsage: "<address>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "reg",
			Usage: "register to read from (repeated start)",
		},
		&cli.IntFlag{
			Name:  "count",
			Usage: "number of bytes to read",
			Value: 1,
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(1, "expected 1 argument, got %d", c.NArg())
		}
		addr, err := parseAddr(c.Args().Get(0))
		if err != nil {
			return console.Exit(1, "%v", err)
		}
		count := c.Int("count")
		if count < 1 {
			return console.Exit(1, "count must be at least 1, got %d", count)
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

		ctx, cancel := context.WithTimeout(console.SetVerbose(context.Background(), c.Bool("verbose")), 5*time.Second)
		defer cancel()

		buf := make([]byte, count)
		if raw := c.String("reg"); raw != "" {
			reg, err := parseHexBytes(raw)
			if err != nil {
				return console.Exit(1, "%v", err)
			}
			err = bus.ReadFromReg(ctx, addr, reg[0], buf)
			if err != nil {
				return console.Exit(1, "read failed: %v", err)
			}
		} else if err = bus.ReadFromAddr(ctx, addr, buf); err != nil {
			return console.Exit(1, "read failed: %v", err)
		}
		fmt.Print(hex.Dump(buf))
		return nil
	},
}

var writeCmd = cli.Command{
	Name:      "write",
	Usage:     "write bytes to a device",
	ArgsUsage: "<address> <payload>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "reg",
			Usage: "register to write to",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "do not ask for confirmation",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return console.Exit(1, "expected 2 arguments, got %d", c.NArg())
		}
		addr, err := parseAddr(c.Args().Get(0))
		if err != nil {
			return console.Exit(1, "%v", err)
		}
		payload, err := parseHexBytes(c.Args().Get(1))
		if err != nil {
			return console.Exit(1, "%v", err)
		}
		if len(payload) == 0 {
			return console.Exit(1, "empty payload")
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %v", err)
		}

		if !c.Bool("yes") {
			answer, err := console.YesOrNo(fmt.Sprintf("write %d byte(s) to %#02x?", len(payload), byte(addr)))
			if err != nil {
				return console.Exit(1, "prompt error: %v", err)
			}
			if answer != console.Yes {
				console.Info("aborted")
				return nil
			}
		}

		bus, cleanup, err := openBus(cfg)
		if err != nil {
			return console.Exit(1, "transport error: %v", err)
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(console.SetVerbose(context.Background(), c.Bool("verbose")), 5*time.Second)
		defer cancel()

		if raw := c.String("reg"); raw != "" {
			reg, err := parseHexBytes(raw)
			if err != nil {
				return console.Exit(1, "%v", err)
			}
			err = bus.WriteToReg(ctx, addr, reg[0], payload)
			if err != nil {
				return console.Exit(1, "write failed: %v", err)
			}
		} else if err = bus.WriteToAddr(ctx, addr, payload); err != nil {
			return console.Exit(1, "write failed: %v", err)
		}
		console.PInfof(console.PictoOK, "wrote %d byte(s) to %#02x", len(payload), byte(addr))
		return nil
	},
}
