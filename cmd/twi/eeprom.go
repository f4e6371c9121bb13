package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/mklimuk/twi/cmd/twi/console"
	"github.com/mklimuk/twi/eeprom"
	"github.com/urfave/cli/v2"
)

var eepromCmd = cli.Command{
	Name:  "eeprom",
	Usage: "24Cxx serial EEPROM operations",
	Subcommands: cli.Commands{
		&eepromDumpCmd,
		&eepromLoadCmd,
	},
}

var eepromFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "addr",
		Usage: "device address",
		Value: "0x50",
	},
	&cli.StringFlag{
		Name:  "part",
		Usage: "part number (24c02, 24c04, 24c08 or 24c16)",
		Value: "24c02",
	},
}

func eepromConfig(part string) (eeprom.Config, error) {
	switch part {
	case "24c02":
		return eeprom.Conf24C02, nil
	case "24c04":
		return eeprom.Conf24C04, nil
	case "24c08":
		return eeprom.Conf24C08, nil
	case "24c16":
		return eeprom.Conf24C16, nil
	}
	return eeprom.Config{}, fmt.Errorf("unknown part %q", part)
}

var eepromDumpCmd = cli.Command{
	Name:  "dump",
	Usage: "read the whole array and print a hex dump",
	Flags: eepromFlags,
	Action: func(c *cli.Context) error {
		addr, err := parseAddr(c.String("addr"))
		if err != nil {
			return console.Exit(1, "%v", err)
		}
		part, err := eepromConfig(c.String("part"))
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

		ee, err := eeprom.NewEE24(bus, addr, part)
		if err != nil {
			return console.Exit(1, "%v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		data, err := ee.Dump(ctx)
		if err != nil {
			return console.Exit(1, "dump failed: %v", err)
		}
		fmt.Print(hex.Dump(data))
		return nil
	},
}

var eepromLoadCmd = cli.Command{
	Name:      "load",
	Usage:     "write the content of a binary file into the array",
	ArgsUsage: "<file>",
	Flags: append([]cli.Flag{
		&cli.UintFlag{
			Name:  "offset",
			Usage: "start position in the array",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "do not ask for confirmation",
		},
	}, eepromFlags...),
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(1, "expected 1 argument, got %d", c.NArg())
		}
		addr, err := parseAddr(c.String("addr"))
		if err != nil {
			return console.Exit(1, "%v", err)
		}
		part, err := eepromConfig(c.String("part"))
		if err != nil {
			return console.Exit(1, "%v", err)
		}
		data, err := os.ReadFile(c.Args().Get(0))
		if err != nil {
			return console.Exit(1, "could not read input file: %v", err)
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %v", err)
		}

		if !c.Bool("yes") {
			answer, err := console.YesOrNo(fmt.Sprintf("write %d byte(s) to EEPROM at %#02x?", len(data), byte(addr)))
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

		ee, err := eeprom.NewEE24(bus, addr, part)
		if err != nil {
			return console.Exit(1, "%v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		err = ee.WriteAt(ctx, uint(c.Uint("offset")), data)
		if err != nil {
			return console.Exit(1, "load failed: %v", err)
		}
		console.PInfof(console.PictoMemory, "wrote %d byte(s) at offset %d", len(data), c.Uint("offset"))
		return nil
	},
}
