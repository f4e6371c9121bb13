// Package config holds the CLI configuration and the build metadata
// injected by the dev tool.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Injected at build time.
var (
	Version   string
	Commit    string
	BuildDate string
)

const (
	TransportSim    = "sim"
	TransportHID    = "hid"
	TransportSystem = "system"
)

type Config struct {
	// CoreClock is the devboard core frequency in Hz.
	CoreClock uint32 `yaml:"core_clock"`
	// BusClock is the target SCL frequency in Hz.
	BusClock uint32 `yaml:"bus_clock"`
	// Transport selects how the engine reaches the bus: sim, hid or
	// system.
	Transport string `yaml:"transport"`
	// SystemBus names the kernel bus when Transport is system.
	SystemBus string `yaml:"system_bus"`
	// Devices maps human labels to 7-bit addresses for scan output.
	Devices map[string]byte `yaml:"devices"`
}

func Default() Config {
	return Config{
		CoreClock: 16_000_000,
		BusClock:  100_000,
		Transport: TransportSim,
	}
}

// Load reads the YAML configuration at path. A missing file is not an
// error, the defaults apply.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("could not read config file %s: %w", path, err)
	}
	if err = yaml.Unmarshal(raw, &config); err != nil {
		return config, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	if err = config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

func (c Config) Validate() error {
	switch c.Transport {
	case TransportSim, TransportHID, TransportSystem:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.CoreClock == 0 || c.BusClock == 0 {
		return fmt.Errorf("clocks must be non-zero")
	}
	for name, addr := range c.Devices {
		if addr > 0x7F {
			return fmt.Errorf("device %s address %#02x out of 7-bit range", name, addr)
		}
	}
	return nil
}

// Label returns the configured name for an address, if any.
func (c Config) Label(addr byte) (string, bool) {
	for name, a := range c.Devices {
		if a == addr {
			return name, true
		}
	}
	return "", false
}
