package twi

import "fmt"

// Status is a master-mode status code as reported in the upper five bits
// of the status register after each completed bus job.
type Status byte

// StatusMask strips the reserved and prescaler bits before comparison.
const StatusMask = 0xF8

const (
	// StatusStart - start condition transmitted.
	StatusStart Status = 0x08
	// StatusRepeatedStart - repeated start condition transmitted.
	StatusRepeatedStart Status = 0x10
	// StatusAddrWriteAck - SLA+W transmitted, ACK received.
	StatusAddrWriteAck Status = 0x18
	// StatusAddrWriteNack - SLA+W transmitted, NACK received.
	StatusAddrWriteNack Status = 0x20
	// StatusDataSentAck - data byte transmitted, ACK received.
	StatusDataSentAck Status = 0x28
	// StatusDataSentNack - data byte transmitted, NACK received.
	StatusDataSentNack Status = 0x30
	// StatusArbitrationLost - arbitration lost in SLA or data.
	StatusArbitrationLost Status = 0x38
	// StatusAddrReadAck - SLA+R transmitted, ACK received.
	StatusAddrReadAck Status = 0x40
	// StatusAddrReadNack - SLA+R transmitted, NACK received.
	StatusAddrReadNack Status = 0x48
	// StatusDataRecvAck - data byte received, ACK returned.
	StatusDataRecvAck Status = 0x50
	// StatusDataRecvNack - data byte received, NACK returned.
	StatusDataRecvNack Status = 0x58
)

func (s Status) String() string {
	switch s {
	case StatusStart:
		return "start transmitted"
	case StatusRepeatedStart:
		return "repeated start transmitted"
	case StatusAddrWriteAck:
		return "SLA+W transmitted, ACK"
	case StatusAddrWriteNack:
		return "SLA+W transmitted, NACK"
	case StatusDataSentAck:
		return "data transmitted, ACK"
	case StatusDataSentNack:
		return "data transmitted, NACK"
	case StatusArbitrationLost:
		return "arbitration lost"
	case StatusAddrReadAck:
		return "SLA+R transmitted, ACK"
	case StatusAddrReadNack:
		return "SLA+R transmitted, NACK"
	case StatusDataRecvAck:
		return "data received, ACK returned"
	case StatusDataRecvNack:
		return "data received, NACK returned"
	}
	return fmt.Sprintf("unknown status %#02x", byte(s))
}
