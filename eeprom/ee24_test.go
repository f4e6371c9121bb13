package eeprom_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/twi"
	"github.com/mklimuk/twi/eeprom"
	"github.com/mklimuk/twi/sim"
)

func newTestBus(t *testing.T, mems map[twi.Addr]*sim.Memory) twi.Bus {
	t.Helper()
	peripheral := sim.NewPeripheral()
	for addr, mem := range mems {
		peripheral.Attach(addr, mem)
	}
	master := twi.NewMaster(peripheral)
	require.NoError(t, master.Init())
	return master
}

func pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(0xC3 ^ i)
	}
	return out
}

func TestEE24_Geometry(t *testing.T) {
	bus := newTestBus(t, nil)
	_, err := eeprom.NewEE24(bus, eeprom.DefaultAddress, eeprom.Config{Size: 256, PageSize: 0})
	assert.Error(t, err)
	_, err = eeprom.NewEE24(bus, eeprom.DefaultAddress, eeprom.Config{Size: 100, PageSize: 8})
	assert.Error(t, err)
	_, err = eeprom.NewEE24(bus, eeprom.DefaultAddress, eeprom.Config{Size: 4096, PageSize: 32})
	assert.Error(t, err)
	_, err = eeprom.NewEE24(bus, eeprom.DefaultAddress, eeprom.Conf24C02)
	assert.NoError(t, err)
}

func TestEE24_WriteReadRoundTrip(t *testing.T) {
	mem := sim.NewMemory()
	bus := newTestBus(t, map[twi.Addr]*sim.Memory{eeprom.DefaultAddress: mem})
	ee, err := eeprom.NewEE24(bus, eeprom.DefaultAddress, eeprom.Conf24C02)
	require.NoError(t, err)

	// 20 bytes at offset 3 spans three 8-byte pages
	data := pattern(20)
	require.NoError(t, ee.WriteAt(context.Background(), 3, data))
	assert.Equal(t, data, mem.Bytes(3, len(data)))

	got := make([]byte, len(data))
	require.NoError(t, ee.ReadAt(context.Background(), 3, got))
	assert.Equal(t, data, got)
}

func TestEE24_WindowCrossing(t *testing.T) {
	// 24C04 maps its second 256-byte bank to the next device address
	low := sim.NewMemory()
	high := sim.NewMemory()
	bus := newTestBus(t, map[twi.Addr]*sim.Memory{
		eeprom.DefaultAddress:     low,
		eeprom.DefaultAddress + 1: high,
	})
	ee, err := eeprom.NewEE24(bus, eeprom.DefaultAddress, eeprom.Conf24C04)
	require.NoError(t, err)

	data := pattern(12)
	require.NoError(t, ee.WriteAt(context.Background(), 250, data))
	assert.Equal(t, data[:6], low.Bytes(250, 6))
	assert.Equal(t, data[6:], high.Bytes(0, 6))

	got := make([]byte, len(data))
	require.NoError(t, ee.ReadAt(context.Background(), 250, got))
	assert.Equal(t, data, got)
}

func TestEE24_OutOfRange(t *testing.T) {
	mem := sim.NewMemory()
	bus := newTestBus(t, map[twi.Addr]*sim.Memory{eeprom.DefaultAddress: mem})
	ee, err := eeprom.NewEE24(bus, eeprom.DefaultAddress, eeprom.Conf24C02)
	require.NoError(t, err)

	buf := make([]byte, 16)
	assert.ErrorIs(t, ee.ReadAt(context.Background(), 250, buf), eeprom.ErrOutOfRange)
	assert.ErrorIs(t, ee.WriteAt(context.Background(), 250, buf), eeprom.ErrOutOfRange)

	// last byte of the array is still reachable
	assert.NoError(t, ee.WriteAt(context.Background(), 255, []byte{0x5A}))
	assert.Equal(t, []byte{0x5A}, mem.Bytes(255, 1))
}

func TestEE24_Dump(t *testing.T) {
	mem := sim.NewMemory()
	data := pattern(256)
	mem.Load(0, data)
	bus := newTestBus(t, map[twi.Addr]*sim.Memory{eeprom.DefaultAddress: mem})
	ee, err := eeprom.NewEE24(bus, eeprom.DefaultAddress, eeprom.Conf24C02)
	require.NoError(t, err)

	dump, err := ee.Dump(context.Background())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, dump))
}
