package sim

import "fmt"

// OpKind identifies a primitive bus operation decoded from register
// traffic.
type OpKind int

const (
	OpStart OpKind = iota
	OpTransmit
	OpReceiveAck
	OpReceiveNack
	OpStop
)

// Op is one primitive operation as seen on the wire. Byte carries the
// transmitted or received value for transmit/receive kinds.
type Op struct {
	Kind OpKind
	Byte byte
}

func (o Op) String() string {
	switch o.Kind {
	case OpStart:
		return "start"
	case OpTransmit:
		return fmt.Sprintf("transmit(%#02x)", o.Byte)
	case OpReceiveAck:
		return fmt.Sprintf("receive_ack(%#02x)", o.Byte)
	case OpReceiveNack:
		return fmt.Sprintf("receive_nack(%#02x)", o.Byte)
	case OpStop:
		return "stop"
	}
	return "unknown"
}

// Kinds projects a trace onto operation kinds only, which is what most
// trace assertions care about.
func Kinds(trace []Op) []OpKind {
	kinds := make([]OpKind, len(trace))
	for i, op := range trace {
		kinds[i] = op.Kind
	}
	return kinds
}
