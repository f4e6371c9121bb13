// Package compat exposes the TWI master through the bus interfaces of
// the periph.io and gobot ecosystems, so device drivers written for
// either can run on top of the register-level engine unchanged.
package compat

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/twi"
)

var _ i2c.Bus = &PeriphBus{}

// PeriphBus adapts a *twi.Master to periph.io's i2c.Bus.
type PeriphBus struct {
	master *twi.Master
	name   string
}

func NewPeriphBus(master *twi.Master) *PeriphBus {
	return &PeriphBus{master: master, name: "twi"}
}

func (b *PeriphBus) String() string {
	return b.name
}

// Tx writes w then reads r under a single transaction; the direction
// switch uses a repeated start as periph devices expect.
func (b *PeriphBus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return twi.ErrInvalidAddress
	}
	ctx := context.Background()
	address := twi.Addr(addr)
	switch {
	case len(r) == 0:
		return b.master.Write(ctx, address, w)
	case len(w) == 0:
		return b.master.Read(ctx, address, r)
	default:
		return b.master.WriteRead(ctx, address, w, r)
	}
}

// SetSpeed is rejected: the engine's bit rate is fixed when the
// peripheral is initialized and there is no re-initialization path.
func (b *PeriphBus) SetSpeed(f physic.Frequency) error {
	return fmt.Errorf("bit rate is fixed at initialization, cannot set %s", f)
}
