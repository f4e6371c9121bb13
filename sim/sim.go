// Package sim provides a software model of the TWI peripheral for use
// in tests and in the CLI when no hardware is present. The model
// completes every bus job synchronously, so a driver polling the
// interrupt flag sees the job finished on the first read.
package sim

import (
	"sync"

	"github.com/mklimuk/twi"
)

// statusIdle is what the status register reads when no relevant state
// is available (bus released).
const statusIdle = 0xF8

// statusBusError marks an illegal start/stop sequence on the wire.
const statusBusError = 0x00

const (
	ctlInterrupt byte = 1 << 7
	ctlEnableAck byte = 1 << 6
	ctlStart     byte = 1 << 5
	ctlStop      byte = 1 << 4
	ctlEnable    byte = 1 << 2
)

// Peripheral implements twi.Registers over an in-memory bus with
// attachable slave devices. It additionally records the decoded
// primitive operations so tests can assert exact wire traces.
type Peripheral struct {
	mx sync.Mutex

	bitrate   byte
	prescaler byte
	control   byte
	data      byte
	status    byte

	started   bool
	addressed bool
	reading   bool
	active    Device

	devices map[twi.Addr]Device
	trace   []Op

	loseArbitration bool
	breakStart      bool
	hangNextJob     bool
}

func NewPeripheral() *Peripheral {
	return &Peripheral{
		status:  statusIdle,
		devices: make(map[twi.Addr]Device),
	}
}

// Attach connects a slave device at the given 7-bit address.
func (p *Peripheral) Attach(address twi.Addr, dev Device) {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.devices[address] = dev
}

// InjectArbitrationLoss makes the next address byte lose arbitration.
func (p *Peripheral) InjectArbitrationLoss() {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.loseArbitration = true
}

// InjectBusError makes the next start condition fail its status check.
func (p *Peripheral) InjectBusError() {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.breakStart = true
}

// HangNextJob leaves the interrupt flag cleared after the next
// triggered job, wedging any busy wait until the caller gives up.
func (p *Peripheral) HangNextJob() {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.hangNextJob = true
}

// Idle reports whether the bus has been released with a stop condition.
func (p *Peripheral) Idle() bool {
	p.mx.Lock()
	defer p.mx.Unlock()
	return !p.started
}

// Trace returns the primitive operations decoded so far.
func (p *Peripheral) Trace() []Op {
	p.mx.Lock()
	defer p.mx.Unlock()
	out := make([]Op, len(p.trace))
	copy(out, p.trace)
	return out
}

// ResetTrace clears the recorded operations.
func (p *Peripheral) ResetTrace() {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.trace = nil
}

// BitRate returns the programmed divisor and prescaler bits.
func (p *Peripheral) BitRate() (divisor, prescaler byte) {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.bitrate, p.prescaler
}

func (p *Peripheral) Read(reg twi.Register) (byte, error) {
	p.mx.Lock()
	defer p.mx.Unlock()
	switch reg {
	case twi.BitRate:
		return p.bitrate, nil
	case twi.Control:
		return p.control, nil
	case twi.StatusReg:
		return p.status | p.prescaler, nil
	case twi.Data:
		return p.data, nil
	}
	return 0, nil
}

func (p *Peripheral) Write(reg twi.Register, value byte) error {
	p.mx.Lock()
	defer p.mx.Unlock()
	switch reg {
	case twi.BitRate:
		p.bitrate = value
	case twi.StatusReg:
		p.prescaler = value & 0x03
	case twi.Data:
		p.data = value
	case twi.Control:
		p.writeControl(value)
	}
	return nil
}

// writeControl decodes a control write and, when the interrupt flag is
// written, runs the requested job to completion.
func (p *Peripheral) writeControl(value byte) {
	p.control = value
	if value&ctlEnable == 0 || value&ctlInterrupt == 0 {
		// engine setup only, no job triggered
		return
	}
	if p.hangNextJob {
		p.hangNextJob = false
		p.control = value &^ ctlInterrupt
		return
	}
	switch {
	case value&ctlStart != 0:
		p.jobStart()
	case value&ctlStop != 0:
		p.jobStop()
	case p.started && !p.addressed:
		p.jobAddress()
	case p.addressed && !p.reading:
		p.jobTransmit()
	case p.addressed && p.reading:
		p.jobReceive(value&ctlEnableAck != 0)
	default:
		p.status = statusBusError
	}
	// the model is synchronous, the job is already done
	p.control |= ctlInterrupt
}

func (p *Peripheral) jobStart() {
	p.record(Op{Kind: OpStart})
	if p.breakStart {
		p.breakStart = false
		p.status = statusBusError
		return
	}
	if p.started {
		p.status = byte(twi.StatusRepeatedStart)
	} else {
		p.status = byte(twi.StatusStart)
	}
	p.started = true
	p.addressed = false
}

func (p *Peripheral) jobStop() {
	p.record(Op{Kind: OpStop})
	if p.active != nil {
		p.active.Stop()
	}
	p.started = false
	p.addressed = false
	p.active = nil
	p.status = statusIdle
}

func (p *Peripheral) jobAddress() {
	sla := p.data
	p.record(Op{Kind: OpTransmit, Byte: sla})
	read := sla&0x01 != 0
	if p.loseArbitration {
		p.loseArbitration = false
		p.started = false
		p.status = byte(twi.StatusArbitrationLost)
		return
	}
	dev, ok := p.devices[twi.Addr(sla>>1)]
	if ok && dev.Start(read) {
		p.active = dev
		p.addressed = true
		p.reading = read
		if read {
			p.status = byte(twi.StatusAddrReadAck)
		} else {
			p.status = byte(twi.StatusAddrWriteAck)
		}
		return
	}
	if read {
		p.status = byte(twi.StatusAddrReadNack)
	} else {
		p.status = byte(twi.StatusAddrWriteNack)
	}
}

func (p *Peripheral) jobTransmit() {
	p.record(Op{Kind: OpTransmit, Byte: p.data})
	if p.active.WriteByte(p.data) {
		p.status = byte(twi.StatusDataSentAck)
	} else {
		p.status = byte(twi.StatusDataSentNack)
	}
}

func (p *Peripheral) jobReceive(ack bool) {
	p.data = p.active.ReadByte(ack)
	if ack {
		p.record(Op{Kind: OpReceiveAck, Byte: p.data})
		p.status = byte(twi.StatusDataRecvAck)
	} else {
		p.record(Op{Kind: OpReceiveNack, Byte: p.data})
		p.status = byte(twi.StatusDataRecvNack)
	}
}

func (p *Peripheral) record(op Op) {
	p.trace = append(p.trace, op)
}
