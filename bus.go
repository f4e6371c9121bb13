package twi

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("TWI engine is busy (previous job not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address Addr, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address Addr, buffer []byte) error
	Release(ctx context.Context) error
}

type RegisterReader interface {
	ReadByteFromReg(ctx context.Context, address Addr, reg byte) (byte, error)
	ReadFromReg(ctx context.Context, address Addr, reg byte, buffer []byte) error
}

type RegisterWriter interface {
	WriteByteToReg(ctx context.Context, address Addr, reg byte, value byte) error
	WriteToReg(ctx context.Context, address Addr, reg byte, buffer []byte) error
}

type Prober interface {
	Ping(ctx context.Context, address Addr) error
}

// Bus is the transaction-level interface device drivers should depend on.
// It is satisfied both by *Master and by transports that delegate
// transactions to an external controller (see the i2c package).
type Bus interface {
	AddressableReader
	AddressableWriter
	RegisterReader
	RegisterWriter
	Prober
}
