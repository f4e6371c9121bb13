package twi

import (
	"context"
	"fmt"
	"sync"
)

var ErrAlreadyInitialized = fmt.Errorf("engine already initialized")
var ErrClockConfig = fmt.Errorf("bus clock not realizable from core clock")

// DefaultCoreClock and DefaultBusClock reproduce the reference
// configuration: a 16 MHz core driving a 100 kHz bus.
const (
	DefaultCoreClock uint32 = 16_000_000
	DefaultBusClock  uint32 = 100_000
)

type MasterOpts struct {
	CoreClock uint32
	BusClock  uint32
}

type MasterOpt func(*MasterOpts)

func WithCoreClock(hz uint32) MasterOpt {
	return func(o *MasterOpts) {
		o.CoreClock = hz
	}
}

func WithBusClock(hz uint32) MasterOpt {
	return func(o *MasterOpts) {
		o.BusClock = hz
	}
}

// Master drives a TWI peripheral in master mode through its register
// set. Every public transaction is atomic: it acquires the engine,
// walks the start/address/data phases verifying the status code after
// each job, and releases the bus with a stop condition on success and
// on every failure path.
//
// Concurrent calls are serialized internally; the hardware supports a
// single transaction in flight.
//
// The job wait is a busy poll on the interrupt flag with no timeout of
// its own, matching the hardware contract. Callers that cannot afford
// an unbounded wait on a wedged bus should bound it through ctx.
type Master struct {
	mx     sync.Mutex
	regs   Registers
	config MasterOpts
	ready  bool
}

func NewMaster(regs Registers, opts ...MasterOpt) *Master {
	config := MasterOpts{
		CoreClock: DefaultCoreClock,
		BusClock:  DefaultBusClock,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &Master{regs: regs, config: config}
}

// Init computes the bit-rate divisor and prescaler for the configured
// clocks, programs them and enables the peripheral. It must be called
// once before any transaction.
func (m *Master) Init() error {
	m.mx.Lock()
	defer m.mx.Unlock()
	if m.ready {
		return ErrAlreadyInitialized
	}
	divisor, prescaler, err := bitrate(m.config.CoreClock, m.config.BusClock)
	if err != nil {
		return err
	}
	if err = m.regs.Write(BitRate, divisor); err != nil {
		return fmt.Errorf("twi: could not program bit rate: %w", err)
	}
	if err = m.regs.Write(StatusReg, prescaler&prescalerMask); err != nil {
		return fmt.Errorf("twi: could not program prescaler: %w", err)
	}
	if err = m.regs.Write(Control, ctlEnable); err != nil {
		return fmt.Errorf("twi: could not enable engine: %w", err)
	}
	m.ready = true
	return nil
}

// bitrate solves SCL = core / (16 + 2*divisor*4^prescaler) for the
// smallest prescaler whose divisor fits in one byte.
func bitrate(core, bus uint32) (divisor byte, prescaler byte, err error) {
	if core == 0 || bus == 0 {
		return 0, 0, ErrClockConfig
	}
	period := core / bus
	if period < 16 {
		return 0, 0, ErrClockConfig
	}
	rest := period - 16
	scale := uint32(1)
	for p := byte(0); p < 4; p++ {
		d := rest / (2 * scale)
		if d <= 0xFF {
			return byte(d), p, nil
		}
		scale *= 4
	}
	return 0, 0, ErrClockConfig
}

// Ping checks whether a device acknowledges its address. The bus is
// left idle regardless of the outcome. A missing device reports
// ErrNoDevice through errors.Is.
func (m *Master) Ping(ctx context.Context, address Addr) error {
	return m.transact(ctx, address, func(ctx context.Context) error {
		if err := m.phaseStart(ctx, false); err != nil {
			return err
		}
		return m.addressWrite(ctx, address)
	})
}

// WriteByte writes a single byte to a device with no register address.
func (m *Master) WriteByte(ctx context.Context, address Addr, value byte) error {
	return m.Write(ctx, address, []byte{value})
}

// WriteByteToReg writes a single byte into a register of the device.
func (m *Master) WriteByteToReg(ctx context.Context, address Addr, reg byte, value byte) error {
	return m.Write(ctx, address, []byte{reg, value})
}

// Write transmits buffer to the device. The first byte failing its
// acknowledge check aborts the transaction; remaining bytes are not
// sent.
func (m *Master) Write(ctx context.Context, address Addr, buffer []byte) error {
	return m.transact(ctx, address, func(ctx context.Context) error {
		return m.writePhase(ctx, address, buffer)
	})
}

// WriteToReg transmits the register address followed by buffer.
func (m *Master) WriteToReg(ctx context.Context, address Addr, reg byte, buffer []byte) error {
	out := make([]byte, 0, len(buffer)+1)
	out = append(out, reg)
	out = append(out, buffer...)
	return m.Write(ctx, address, out)
}

// ReadByte reads a single byte from a device with no register address.
func (m *Master) ReadByte(ctx context.Context, address Addr) (byte, error) {
	var buf [1]byte
	err := m.Read(ctx, address, buf[:])
	return buf[0], err
}

// ReadByteFromReg reads a single byte from a register of the device.
func (m *Master) ReadByteFromReg(ctx context.Context, address Addr, reg byte) (byte, error) {
	var buf [1]byte
	err := m.ReadFromReg(ctx, address, reg, buf[:])
	return buf[0], err
}

// Read fills buffer from the device. Every byte but the last is
// acknowledged to request continuation; the last byte is answered with
// NACK so the device stops sending.
func (m *Master) Read(ctx context.Context, address Addr, buffer []byte) error {
	if len(buffer) == 0 {
		return ErrInvalidLength
	}
	return m.transact(ctx, address, func(ctx context.Context) error {
		if err := m.phaseStart(ctx, false); err != nil {
			return err
		}
		return m.readPhase(ctx, address, buffer)
	})
}

// ReadFromReg selects a register with a write phase, then reads buffer
// after a repeated start.
func (m *Master) ReadFromReg(ctx context.Context, address Addr, reg byte, buffer []byte) error {
	return m.WriteRead(ctx, address, []byte{reg}, buffer)
}

// WriteRead transmits w, then switches direction with a repeated start
// (never a stop) and fills r. This is the combined transaction shape
// register reads are built from.
func (m *Master) WriteRead(ctx context.Context, address Addr, w, r []byte) error {
	if len(r) == 0 {
		return ErrInvalidLength
	}
	return m.transact(ctx, address, func(ctx context.Context) error {
		if err := m.writePhase(ctx, address, w); err != nil {
			return err
		}
		if err := m.phaseStart(ctx, true); err != nil {
			return err
		}
		return m.readPhase(ctx, address, r)
	})
}

// WriteToAddr implements AddressableWriter.
func (m *Master) WriteToAddr(ctx context.Context, address Addr, buffer []byte) error {
	return m.Write(ctx, address, buffer)
}

// ReadFromAddr implements AddressableReader.
func (m *Master) ReadFromAddr(ctx context.Context, address Addr, buffer []byte) error {
	return m.Read(ctx, address, buffer)
}

// Release forces a stop condition, releasing the bus without running a
// transaction. Useful after a previous owner left the bus held.
func (m *Master) Release(ctx context.Context) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	if !m.ready {
		return ErrNotInitialized
	}
	return m.stopCond()
}

var _ Bus = (*Master)(nil)

// transact runs fn holding the engine and guarantees the closing stop
// condition on both outcomes.
func (m *Master) transact(ctx context.Context, address Addr, fn func(context.Context) error) error {
	if !address.valid() {
		return ErrInvalidAddress
	}
	m.mx.Lock()
	defer m.mx.Unlock()
	if !m.ready {
		return ErrNotInitialized
	}
	if err := fn(ctx); err != nil {
		// best effort release, the failure to report is the original one
		_ = m.stopCond()
		return err
	}
	return m.stopCond()
}

// writePhase runs start, SLA+W and the payload bytes. An empty payload
// degenerates to an address probe.
func (m *Master) writePhase(ctx context.Context, address Addr, buffer []byte) error {
	if err := m.phaseStart(ctx, false); err != nil {
		return err
	}
	if err := m.addressWrite(ctx, address); err != nil {
		return err
	}
	for _, b := range buffer {
		if err := m.transmit(ctx, b); err != nil {
			return err
		}
		if err := m.expect(PhaseDataWrite, StatusDataSentAck); err != nil {
			return err
		}
	}
	return nil
}

// readPhase runs SLA+R and the receive loop with the ACK/NACK placement
// rule: ACK everything but the final byte.
func (m *Master) readPhase(ctx context.Context, address Addr, buffer []byte) error {
	if err := m.transmit(ctx, address.slaR()); err != nil {
		return err
	}
	if err := m.expect(PhaseAddressRead, StatusAddrReadAck); err != nil {
		return err
	}
	last := len(buffer) - 1
	for i := range buffer {
		ack := i < last
		b, err := m.receive(ctx, ack)
		if err != nil {
			return err
		}
		want := StatusDataRecvNack
		if ack {
			want = StatusDataRecvAck
		}
		if err = m.expect(PhaseDataRead, want); err != nil {
			return err
		}
		buffer[i] = b
	}
	return nil
}

func (m *Master) addressWrite(ctx context.Context, address Addr) error {
	if err := m.transmit(ctx, address.slaW()); err != nil {
		return err
	}
	return m.expect(PhaseAddressWrite, StatusAddrWriteAck)
}

// phaseStart asserts a start condition and verifies the matching code:
// a fresh start opens the transaction, a repeated one switches
// direction mid-transaction without releasing the bus.
func (m *Master) phaseStart(ctx context.Context, repeated bool) error {
	if err := m.regs.Write(Control, ctlInterrupt|ctlStart|ctlEnable); err != nil {
		return fmt.Errorf("twi: start condition write failed: %w", err)
	}
	if err := m.waitJob(ctx); err != nil {
		return err
	}
	if repeated {
		return m.expect(PhaseRepeatedStart, StatusRepeatedStart)
	}
	return m.expect(PhaseStart, StatusStart)
}

func (m *Master) transmit(ctx context.Context, value byte) error {
	if err := m.regs.Write(Data, value); err != nil {
		return fmt.Errorf("twi: data register write failed: %w", err)
	}
	if err := m.regs.Write(Control, ctlInterrupt|ctlEnable); err != nil {
		return fmt.Errorf("twi: transmit trigger failed: %w", err)
	}
	return m.waitJob(ctx)
}

func (m *Master) receive(ctx context.Context, ack bool) (byte, error) {
	ctl := ctlInterrupt | ctlEnable
	if ack {
		ctl |= ctlEnableAck
	}
	if err := m.regs.Write(Control, ctl); err != nil {
		return 0, fmt.Errorf("twi: receive trigger failed: %w", err)
	}
	if err := m.waitJob(ctx); err != nil {
		return 0, err
	}
	b, err := m.regs.Read(Data)
	if err != nil {
		return 0, fmt.Errorf("twi: data register read failed: %w", err)
	}
	return b, nil
}

// stopCond asserts the stop condition. The hardware clears it on its
// own, there is no completion flag to wait on.
func (m *Master) stopCond() error {
	if err := m.regs.Write(Control, ctlInterrupt|ctlStop|ctlEnable); err != nil {
		return fmt.Errorf("twi: stop condition write failed: %w", err)
	}
	return nil
}

// waitJob polls the interrupt flag until the current job completes.
// The poll observes ctx so a wedged bus can be abandoned by the caller.
func (m *Master) waitJob(ctx context.Context) error {
	for {
		ctl, err := m.regs.Read(Control)
		if err != nil {
			return fmt.Errorf("twi: control register read failed: %w", err)
		}
		if ctl&ctlInterrupt != 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (m *Master) expect(phase Phase, want Status) error {
	raw, err := m.regs.Read(StatusReg)
	if err != nil {
		return fmt.Errorf("twi: status register read failed: %w", err)
	}
	observed := Status(raw & StatusMask)
	if observed != want {
		return &StatusError{Phase: phase, Expected: want, Observed: observed}
	}
	return nil
}
