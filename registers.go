package twi

// Register identifies one of the four peripheral registers of the TWI
// engine. The engine never touches anything outside this set.
type Register int

const (
	// BitRate is the SCL bit-rate divisor register (TWBR).
	BitRate Register = iota
	// Control is the control register (TWCR); writing it with the
	// interrupt flag set triggers the next bus job.
	Control
	// StatusReg is the status register (TWSR); the upper five bits carry
	// the status code, the lowest two select the prescaler.
	StatusReg
	// Data is the data register (TWDR) holding the byte to transmit or
	// the byte last received.
	Data
)

func (r Register) String() string {
	switch r {
	case BitRate:
		return "TWBR"
	case Control:
		return "TWCR"
	case StatusReg:
		return "TWSR"
	case Data:
		return "TWDR"
	}
	return "unknown"
}

// Registers gives the driver exclusive access to the peripheral register
// set. A value of this type is a capability: whoever holds it owns the
// bus. Backends are the simulated peripheral (sim package) and the USB
// register bridge (adapter package).
type Registers interface {
	Read(reg Register) (byte, error)
	Write(reg Register, value byte) error
}

// Control register bits.
const (
	ctlInterrupt  byte = 1 << 7 // TWINT, set by hardware on job completion
	ctlEnableAck  byte = 1 << 6 // TWEA, acknowledge the received byte
	ctlStart      byte = 1 << 5 // TWSTA, transmit a (repeated) start condition
	ctlStop       byte = 1 << 4 // TWSTO, transmit a stop condition
	ctlEnable     byte = 1 << 2 // TWEN, enable the engine
	prescalerMask byte = 0x03   // TWPS1:0 in the status register
)

const (
	dirWrite byte = 0
	dirRead  byte = 1
)

// Addr is a 7-bit device address, right aligned. The driver composes the
// direction bit internally.
type Addr byte

const maxAddr Addr = 0x7F

func (a Addr) valid() bool {
	return a <= maxAddr
}

// slaW returns the address byte with the write direction bit.
func (a Addr) slaW() byte {
	return byte(a)<<1 | dirWrite
}

// slaR returns the address byte with the read direction bit.
func (a Addr) slaR() byte {
	return byte(a)<<1 | dirRead
}
