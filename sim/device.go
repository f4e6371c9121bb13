package sim

// Device models a slave attached to the simulated bus. Start is called
// when the device is addressed and returns whether the address byte is
// acknowledged. WriteByte returns whether the payload byte is
// acknowledged. ReadByte returns the next byte to hand to the master;
// ack tells the device whether the master requested continuation.
type Device interface {
	Start(read bool) bool
	WriteByte(b byte) bool
	ReadByte(ack bool) byte
	Stop()
}

// Memory is a 256-byte register-file slave in the style of small
// EEPROMs and sensor register maps: the first byte written after
// SLA+W sets the internal pointer, subsequent bytes land at the
// pointer which auto-increments. Reads start at the pointer and
// auto-increment as well; a repeated start preserves it.
type Memory struct {
	mem     [256]byte
	ptr     byte
	pointed bool

	// NackAddress makes the device refuse its own address, as a
	// powered-down or busy part would.
	NackAddress bool
	// NackAfter limits how many payload bytes are acknowledged per
	// transaction before the device starts answering NACK. Negative
	// means no limit.
	NackAfter int

	acked int
}

func NewMemory() *Memory {
	return &Memory{NackAfter: -1}
}

// Load copies data into the register file starting at offset.
func (m *Memory) Load(offset byte, data []byte) {
	for i, b := range data {
		m.mem[offset+byte(i)] = b
	}
}

// Bytes returns a copy of the register file window [offset, offset+n).
func (m *Memory) Bytes(offset byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.mem[offset+byte(i)]
	}
	return out
}

func (m *Memory) Start(read bool) bool {
	if m.NackAddress {
		return false
	}
	if !read {
		m.pointed = false
	}
	m.acked = 0
	return true
}

func (m *Memory) WriteByte(b byte) bool {
	if m.NackAfter >= 0 && m.acked >= m.NackAfter {
		return false
	}
	m.acked++
	if !m.pointed {
		m.ptr = b
		m.pointed = true
		return true
	}
	m.mem[m.ptr] = b
	m.ptr++
	return true
}

func (m *Memory) ReadByte(ack bool) byte {
	b := m.mem[m.ptr]
	m.ptr++
	return b
}

func (m *Memory) Stop() {}
