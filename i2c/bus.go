// Package i2c exposes a kernel-owned I2C controller through the same
// transaction-level interfaces as the register-level engine, for hosts
// where /dev/i2c is available and the controller cannot be driven
// directly.
package i2c

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/mklimuk/twi"
)

var _ twi.Bus = &SystemBus{}

type SystemBus struct {
	bus i2c.BusCloser
}

func NewSystemBus(dev string) (*SystemBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	return &SystemBus{
		bus: bus,
	}, nil
}

func (b *SystemBus) ReadFromAddr(ctx context.Context, address twi.Addr, buffer []byte) error {
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *SystemBus) WriteToAddr(ctx context.Context, address twi.Addr, buffer []byte) error {
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *SystemBus) ReadByteFromReg(ctx context.Context, address twi.Addr, reg byte) (byte, error) {
	var buf [1]byte
	err := b.ReadFromReg(ctx, address, reg, buf[:])
	return buf[0], err
}

func (b *SystemBus) ReadFromReg(ctx context.Context, address twi.Addr, reg byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), []byte{reg}, buffer)
	if err != nil {
		return fmt.Errorf("could not read reg %#02x from i2c bus %x: %w", reg, address, err)
	}
	return nil
}

func (b *SystemBus) WriteByteToReg(ctx context.Context, address twi.Addr, reg byte, value byte) error {
	return b.WriteToReg(ctx, address, reg, []byte{value})
}

func (b *SystemBus) WriteToReg(ctx context.Context, address twi.Addr, reg byte, buffer []byte) error {
	out := make([]byte, 0, len(buffer)+1)
	out = append(out, reg)
	out = append(out, buffer...)
	return b.WriteToAddr(ctx, address, out)
}

// Ping issues an address-only write, which is how the kernel probes a
// bus as well.
func (b *SystemBus) Ping(ctx context.Context, address twi.Addr) error {
	if err := b.bus.Tx(uint16(address), []byte{}, nil); err != nil {
		return fmt.Errorf("%w: %v", twi.ErrNoDevice, err)
	}
	return nil
}

// Release is a no-op, the kernel releases the bus after every transfer.
func (b *SystemBus) Release(ctx context.Context) error {
	return nil
}

func (b *SystemBus) Close() error {
	return b.bus.Close()
}
