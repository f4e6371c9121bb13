// Package eeprom drives 24Cxx-series serial EEPROMs over the TWI bus.
package eeprom

import (
	"context"
	"fmt"
	"time"

	"github.com/mklimuk/twi"
)

const DefaultAddress twi.Addr = 0x50

// Config describes one part of the 24Cxx family. Parts up to 24C16
// use a single word-address byte and map the overflow into the low
// bits of the device address (the address window).
type Config struct {
	// Size is the capacity in bytes.
	Size uint
	// PageSize is the write page size in bytes, always a power of two.
	PageSize uint
	// WriteDelay bounds the internal write cycle for parts that do not
	// answer acknowledge polling.
	WriteDelay time.Duration
}

var (
	Conf24C02 = Config{Size: 256, PageSize: 8, WriteDelay: 5 * time.Millisecond}
	Conf24C04 = Config{Size: 512, PageSize: 16, WriteDelay: 5 * time.Millisecond}
	Conf24C08 = Config{Size: 1024, PageSize: 16, WriteDelay: 5 * time.Millisecond}
	Conf24C16 = Config{Size: 2048, PageSize: 16, WriteDelay: 5 * time.Millisecond}
)

var ErrOutOfRange = fmt.Errorf("access beyond end of EEPROM array")

type EE24 struct {
	transport twi.Bus
	address   twi.Addr
	config    Config
}

func NewEE24(transport twi.Bus, address twi.Addr, config Config) (*EE24, error) {
	if config.Size == 0 || config.PageSize == 0 || config.Size%config.PageSize != 0 {
		return nil, fmt.Errorf("eeprom: inconsistent geometry %d/%d", config.Size, config.PageSize)
	}
	if config.Size > 2048 {
		return nil, fmt.Errorf("eeprom: parts above 2 KiB use two word-address bytes and are not supported")
	}
	return &EE24{transport: transport, address: address, config: config}, nil
}

// deviceAddr folds the high bits of the memory position into the
// device address window, 256 bytes per address.
func (e *EE24) deviceAddr(pos uint) twi.Addr {
	return e.address + twi.Addr(pos>>8)
}

// ReadAt fills buf starting at offset, crossing address windows as
// needed.
func (e *EE24) ReadAt(ctx context.Context, offset uint, buf []byte) error {
	if offset+uint(len(buf)) > e.config.Size {
		return ErrOutOfRange
	}
	pos := offset
	for len(buf) > 0 {
		// stay inside the current 256-byte window
		n := uint(len(buf))
		if left := 256 - pos%256; n > left {
			n = left
		}
		err := e.transport.ReadFromReg(ctx, e.deviceAddr(pos), byte(pos), buf[:n])
		if err != nil {
			return fmt.Errorf("eeprom: read at %#04x failed: %w", pos, err)
		}
		pos += n
		buf = buf[n:]
	}
	return nil
}

// WriteAt stores data starting at offset. Writes are chunked to page
// boundaries and every page is followed by acknowledge polling until
// the part finishes its internal write cycle.
func (e *EE24) WriteAt(ctx context.Context, offset uint, data []byte) error {
	if offset+uint(len(data)) > e.config.Size {
		return ErrOutOfRange
	}
	pos := offset
	for len(data) > 0 {
		n := e.config.PageSize - pos%e.config.PageSize
		if n > uint(len(data)) {
			n = uint(len(data))
		}
		err := e.transport.WriteToReg(ctx, e.deviceAddr(pos), byte(pos), data[:n])
		if err != nil {
			return fmt.Errorf("eeprom: write at %#04x failed: %w", pos, err)
		}
		if err = e.waitWriteCycle(ctx, e.deviceAddr(pos)); err != nil {
			return err
		}
		pos += n
		data = data[n:]
	}
	return nil
}

// waitWriteCycle polls the device address until the part acknowledges
// again; it ignores the address while the internal write is running.
// WriteDelay bounds the poll for parts that do not support polling.
func (e *EE24) waitWriteCycle(ctx context.Context, address twi.Addr) error {
	deadline := time.Now().Add(e.config.WriteDelay)
	for {
		if err := e.transport.Ping(ctx, address); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Dump reads the whole array.
func (e *EE24) Dump(ctx context.Context) ([]byte, error) {
	buf := make([]byte, e.config.Size)
	if err := e.ReadAt(ctx, 0, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
