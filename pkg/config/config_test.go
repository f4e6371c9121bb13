package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
core_clock: 8000000
bus_clock: 400000
transport: system
system_bus: "/dev/i2c-1"
devices:
  eeprom: 0x50
  expander: 0x20
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(8_000_000), cfg.CoreClock)
	assert.Equal(t, uint32(400_000), cfg.BusClock)
	assert.Equal(t, TransportSystem, cfg.Transport)
	assert.Equal(t, "/dev/i2c-1", cfg.SystemBus)
	assert.Equal(t, byte(0x50), cfg.Devices["eeprom"])
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport: [broken"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.Transport = "uart"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.BusClock = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Devices = map[string]byte{"ghost": 0x90}
	assert.Error(t, cfg.Validate())
}

func TestLabel(t *testing.T) {
	cfg := Default()
	cfg.Devices = map[string]byte{"eeprom": 0x50}

	label, ok := cfg.Label(0x50)
	assert.True(t, ok)
	assert.Equal(t, "eeprom", label)

	_, ok = cfg.Label(0x27)
	assert.False(t, ok)
}
