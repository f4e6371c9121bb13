// Package gpio drives I2C port expanders attached to the TWI bus.
package gpio

import (
	"context"
	"fmt"
	"sync"

	"github.com/mklimuk/twi"
)

const DefaultPCF8574Address twi.Addr = 0x20

// PCF8574 is an 8-bit quasi-bidirectional port expander. Pins driven
// high double as inputs; the device has no direction registers, only
// the output latch, so the driver keeps a shadow of the last written
// value for read-modify-write pin operations.
type PCF8574 struct {
	mx        sync.Mutex
	transport twi.Bus
	address   twi.Addr
	shadow    byte
}

type PCF8574Config struct {
	Address twi.Addr
}

type PCF8574ConfigOption func(*PCF8574Config)

func WithAddress(address twi.Addr) PCF8574ConfigOption {
	return func(c *PCF8574Config) {
		c.Address = address
	}
}

func NewPCF8574(transport twi.Bus, opts ...PCF8574ConfigOption) *PCF8574 {
	config := &PCF8574Config{
		Address: DefaultPCF8574Address,
	}
	for _, opt := range opts {
		opt(config)
	}
	return &PCF8574{transport: transport, address: config.Address, shadow: 0xFF}
}

// Reset drives every pin high, the power-on default that also makes
// all pins usable as inputs.
func (dev *PCF8574) Reset(ctx context.Context) error {
	if err := dev.WriteBits(ctx, 0xFF); err != nil {
		return fmt.Errorf("pcf8574: reset failed: %w", err)
	}
	return nil
}

// WriteBits drives the whole port at once.
func (dev *PCF8574) WriteBits(ctx context.Context, value byte) error {
	dev.mx.Lock()
	defer dev.mx.Unlock()
	return dev.writeBits(ctx, value)
}

func (dev *PCF8574) writeBits(ctx context.Context, value byte) error {
	if err := dev.transport.WriteToAddr(ctx, dev.address, []byte{value}); err != nil {
		return fmt.Errorf("pcf8574: could not write port: %w", err)
	}
	dev.shadow = value
	return nil
}

// ReadBits samples the whole port.
func (dev *PCF8574) ReadBits(ctx context.Context) (byte, error) {
	var buf [1]byte
	if err := dev.transport.ReadFromAddr(ctx, dev.address, buf[:]); err != nil {
		return 0, fmt.Errorf("pcf8574: could not read port: %w", err)
	}
	return buf[0], nil
}

// SetPin drives one pin, leaving the others at their last written
// state.
func (dev *PCF8574) SetPin(ctx context.Context, pin int, high bool) error {
	if pin < 0 || pin > 7 {
		return fmt.Errorf("pcf8574: pin %d out of range", pin)
	}
	dev.mx.Lock()
	defer dev.mx.Unlock()
	value := dev.shadow
	if high {
		value |= 1 << pin
	} else {
		value &^= 1 << pin
	}
	return dev.writeBits(ctx, value)
}

// Pin samples one pin. The pin must have been written high to act as
// an input.
func (dev *PCF8574) Pin(ctx context.Context, pin int) (bool, error) {
	if pin < 0 || pin > 7 {
		return false, fmt.Errorf("pcf8574: pin %d out of range", pin)
	}
	bits, err := dev.ReadBits(ctx)
	if err != nil {
		return false, err
	}
	return bits&(1<<pin) != 0, nil
}
