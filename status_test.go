package twi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mklimuk/twi"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status   twi.Status
		expected string
	}{
		{twi.StatusStart, "start transmitted"},
		{twi.StatusRepeatedStart, "repeated start transmitted"},
		{twi.StatusAddrWriteAck, "SLA+W transmitted, ACK"},
		{twi.StatusAddrWriteNack, "SLA+W transmitted, NACK"},
		{twi.StatusDataSentAck, "data transmitted, ACK"},
		{twi.StatusDataSentNack, "data transmitted, NACK"},
		{twi.StatusArbitrationLost, "arbitration lost"},
		{twi.StatusAddrReadAck, "SLA+R transmitted, ACK"},
		{twi.StatusAddrReadNack, "SLA+R transmitted, NACK"},
		{twi.StatusDataRecvAck, "data received, ACK returned"},
		{twi.StatusDataRecvNack, "data received, NACK returned"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.status.String())
	}
	assert.Contains(t, twi.Status(0x00).String(), "unknown")
}
