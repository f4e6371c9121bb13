package compat

import (
	"context"
	"encoding/binary"
	"fmt"

	"gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/twi"
)

var _ i2c.Connector = &Connector{}

// Connector adapts a *twi.Master to gobot's i2c.Connector so gobot
// drivers can be started against the engine. There is a single
// physical bus, the bus number is ignored.
type Connector struct {
	master *twi.Master
}

func NewConnector(master *twi.Master) *Connector {
	return &Connector{master: master}
}

func (c *Connector) GetI2cConnection(address int, busNr int) (i2c.Connection, error) {
	if address < 0 || address > 0x7F {
		return nil, twi.ErrInvalidAddress
	}
	return &connection{master: c.master, address: twi.Addr(address)}, nil
}

func (c *Connector) DefaultI2cBus() int {
	return 0
}

var _ i2c.Connection = &connection{}

// connection implements gobot's SMBus-flavoured operation set on top
// of the engine's transactions. Words travel little-endian, as SMBus
// specifies.
type connection struct {
	master  *twi.Master
	address twi.Addr
}

func (c *connection) Read(p []byte) (int, error) {
	if err := c.master.Read(context.Background(), c.address, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *connection) Write(p []byte) (int, error) {
	if err := c.master.Write(context.Background(), c.address, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *connection) Close() error {
	return c.master.Release(context.Background())
}

func (c *connection) ReadByte() (byte, error) {
	return c.master.ReadByte(context.Background(), c.address)
}

func (c *connection) ReadByteData(reg uint8) (uint8, error) {
	return c.master.ReadByteFromReg(context.Background(), c.address, reg)
}

func (c *connection) ReadWordData(reg uint8) (uint16, error) {
	var buf [2]byte
	if err := c.master.ReadFromReg(context.Background(), c.address, reg, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (c *connection) ReadBlockData(reg uint8, b []byte) error {
	return c.master.ReadFromReg(context.Background(), c.address, reg, b)
}

func (c *connection) WriteByte(val byte) error {
	return c.master.WriteByte(context.Background(), c.address, val)
}

func (c *connection) WriteByteData(reg uint8, val uint8) error {
	return c.master.WriteByteToReg(context.Background(), c.address, reg, val)
}

func (c *connection) WriteWordData(reg uint8, val uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], val)
	return c.master.WriteToReg(context.Background(), c.address, reg, buf[:])
}

func (c *connection) WriteBlockData(reg uint8, b []byte) error {
	if len(b) > 32 {
		return fmt.Errorf("block write limited to 32 bytes, got %d", len(b))
	}
	return c.master.WriteToReg(context.Background(), c.address, reg, b)
}

func (c *connection) WriteBytes(b []byte) error {
	if err := c.master.Write(context.Background(), c.address, b); err != nil {
		return err
	}
	return nil
}
