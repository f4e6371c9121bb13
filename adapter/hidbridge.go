package adapter

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/twi"
	"github.com/mklimuk/twi/cmd/twi/console"
	"github.com/mklimuk/twi/twictx"
)

const VendorID = 0x16C0
const ProductID = 0x05DF

// Bridge protocol commands. The firmware exposes the raw TWI register
// file of the devboard over 64-byte HID reports.
const (
	cmdReadRegister  byte = 0xE0
	cmdWriteRegister byte = 0xE1
	cmdStatus        byte = 0xE2
)

const resultOK byte = 0x00

var ErrCommandFailed = errors.New("bridge command failed")
var ErrUnknownRegister = errors.New("register index not exposed by the bridge")

// HIDBridge tunnels TWI register access to a devboard over USB HID,
// letting the Master drive a remote peripheral as if its registers
// were local. One report per register access; the devboard answers
// after it has applied the write or sampled the register.
type HIDBridge struct {
	mx           sync.Mutex
	request      []byte
	response     []byte
	responseWait time.Duration

	// ctx carries the verbose flag for report dumps; register access
	// methods have no context parameter of their own.
	ctx context.Context
}

func NewHIDBridge() *HIDBridge {
	return &HIDBridge{
		request:      make([]byte, 64),
		response:     make([]byte, 64),
		responseWait: 5 * time.Millisecond,
		ctx:          context.Background(),
	}
}

// WithContext returns a copy of the bridge sharing the same buffers
// but dumping report traffic when ctx carries the verbose flag.
func (d *HIDBridge) WithContext(ctx context.Context) *HIDBridge {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.ctx = ctx
	return d
}

var _ twi.Registers = &HIDBridge{}

func (d *HIDBridge) Read(reg twi.Register) (byte, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdReadRegister
	d.request[1] = registerIndex(reg)
	if err := d.send(d.ctx, true); err != nil {
		return 0, fmt.Errorf("read of %s failed: %w", reg, err)
	}
	if d.response[1] != resultOK {
		return 0, fmt.Errorf("read of %s: %w", reg, ErrCommandFailed)
	}
	return d.response[2], nil
}

func (d *HIDBridge) Write(reg twi.Register, value byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdWriteRegister
	d.request[1] = registerIndex(reg)
	d.request[2] = value
	if err := d.send(d.ctx, true); err != nil {
		return fmt.Errorf("write of %s failed: %w", reg, err)
	}
	if d.response[1] != resultOK {
		return fmt.Errorf("write of %s: %w", reg, ErrCommandFailed)
	}
	return nil
}

type BridgeStatus struct {
	FirmwareVersion byte
	BusHeld         bool
	LastStatusCode  byte
}

// Status asks the firmware for its bookkeeping view of the bus.
func (d *HIDBridge) Status(ctx context.Context) (*BridgeStatus, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatus
	if err := d.send(ctx, true); err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	if d.response[1] != resultOK {
		return nil, ErrCommandFailed
	}
	return &BridgeStatus{
		FirmwareVersion: d.response[2],
		BusHeld:         d.response[3] != 0,
		LastStatusCode:  d.response[4],
	}, nil
}

func registerIndex(reg twi.Register) byte {
	switch reg {
	case twi.BitRate:
		return 0x00
	case twi.StatusReg:
		return 0x01
	case twi.Data:
		return 0x02
	case twi.Control:
		return 0x03
	}
	return 0xFF
}

func (d *HIDBridge) send(ctx context.Context, response bool) error {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) == 0 {
		return fmt.Errorf("bridge device not found")
	}
	if len(devs) > 1 {
		return fmt.Errorf("ambiguous device identification")
	}
	dev, err := devs[0].Open()
	if err != nil {
		return fmt.Errorf("error opening device: %w", err)
	}
	defer func() {
		_ = dev.Close()
	}()
	verbose := twictx.IsVerbose(ctx)
	if verbose {
		console.Printf("sending report to bridge:\n%s\n", hex.Dump(d.request))
	}
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short write: %d", n)
	}
	if !response {
		return nil
	}
	time.Sleep(d.responseWait)
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short read: %d", n)
	}
	if verbose {
		console.Printf("read report from bridge:\n%s\n", hex.Dump(d.response))
	}
	return nil
}

func (d *HIDBridge) resetBuffers() {
	resetBuffer(d.request)
	resetBuffer(d.response)
}

func resetBuffer(buf []byte) {
	for i := range buf {
		buf[i] = 0x00
	}
}
