package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mklimuk/twi"
	"github.com/mklimuk/twi/adapter"
	"github.com/mklimuk/twi/eeprom"
	"github.com/mklimuk/twi/i2c"
	"github.com/mklimuk/twi/pkg/config"
	"github.com/mklimuk/twi/sim"
	"github.com/urfave/cli/v2"
)

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if transport := c.String("transport"); transport != "" {
		cfg.Transport = transport
		if err = cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// openBus builds the transaction engine for the configured transport.
// The returned cleanup releases transport resources and is safe to defer.
func openBus(cfg config.Config) (twi.Bus, func(), error) {
	switch cfg.Transport {
	case config.TransportSim:
		peripheral := sim.NewPeripheral()
		if len(cfg.Devices) == 0 {
			peripheral.Attach(eeprom.DefaultAddress, sim.NewMemory())
		}
		for _, addr := range cfg.Devices {
			peripheral.Attach(twi.Addr(addr), sim.NewMemory())
		}
		master := twi.NewMaster(peripheral,
			twi.WithCoreClock(cfg.CoreClock),
			twi.WithBusClock(cfg.BusClock))
		if err := master.Init(); err != nil {
			return nil, nil, fmt.Errorf("could not initialize engine: %w", err)
		}
		return master, func() {}, nil
	case config.TransportHID:
		bridge := adapter.NewHIDBridge()
		master := twi.NewMaster(bridge,
			twi.WithCoreClock(cfg.CoreClock),
			twi.WithBusClock(cfg.BusClock))
		if err := master.Init(); err != nil {
			return nil, nil, fmt.Errorf("could not initialize engine: %w", err)
		}
		return master, func() {}, nil
	case config.TransportSystem:
		bus, err := i2c.NewSystemBus(cfg.SystemBus)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open system bus: %w", err)
		}
		return bus, func() { _ = bus.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown transport %q", cfg.Transport)
}

func parseAddr(raw string) (twi.Addr, error) {
	raw = strings.TrimPrefix(strings.ToLower(raw), "0x")
	parsed, err := strconv.ParseUint(raw, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("could not decode address %q: %w", raw, err)
	}
	if parsed > 0x7F {
		return 0, twi.ErrInvalidAddress
	}
	return twi.Addr(parsed), nil
}

func parseHexBytes(raw string) ([]byte, error) {
	raw = strings.TrimPrefix(strings.ToLower(raw), "0x")
	if len(raw)%2 != 0 {
		raw = "0" + raw
	}
	buf := make([]byte, len(raw)/2)
	for i := 0; i < len(buf); i++ {
		parsed, err := strconv.ParseUint(raw[2*i:2*i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("could not decode payload %q: %w", raw, err)
		}
		buf[i] = byte(parsed)
	}
	return buf, nil
}
