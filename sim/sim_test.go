package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/twi"
)

const (
	trigger = ctlInterrupt | ctlEnable
	doStart = ctlInterrupt | ctlStart | ctlEnable
	doStop  = ctlInterrupt | ctlStop | ctlEnable
)

func status(t *testing.T, p *Peripheral) byte {
	t.Helper()
	raw, err := p.Read(twi.StatusReg)
	require.NoError(t, err)
	return raw & 0xF8
}

func TestPeripheral_StartStop(t *testing.T) {
	p := NewPeripheral()

	require.NoError(t, p.Write(twi.Control, doStart))
	assert.Equal(t, byte(twi.StatusStart), status(t, p))
	assert.False(t, p.Idle())

	// a second start on a held bus is a repeated start
	require.NoError(t, p.Write(twi.Control, doStart))
	assert.Equal(t, byte(twi.StatusRepeatedStart), status(t, p))

	require.NoError(t, p.Write(twi.Control, doStop))
	assert.True(t, p.Idle())
	assert.Equal(t, byte(statusIdle), status(t, p))
}

func TestPeripheral_AddressRouting(t *testing.T) {
	p := NewPeripheral()
	p.Attach(0x50, NewMemory())

	require.NoError(t, p.Write(twi.Control, doStart))
	require.NoError(t, p.Write(twi.Data, 0xA0)) // SLA+W for 0x50
	require.NoError(t, p.Write(twi.Control, trigger))
	assert.Equal(t, byte(twi.StatusAddrWriteAck), status(t, p))

	require.NoError(t, p.Write(twi.Control, doStop))

	// nobody lives at 0x31
	require.NoError(t, p.Write(twi.Control, doStart))
	require.NoError(t, p.Write(twi.Data, 0x62))
	require.NoError(t, p.Write(twi.Control, trigger))
	assert.Equal(t, byte(twi.StatusAddrWriteNack), status(t, p))
}

func TestPeripheral_JobCompletesSynchronously(t *testing.T) {
	p := NewPeripheral()
	require.NoError(t, p.Write(twi.Control, doStart))
	ctl, err := p.Read(twi.Control)
	require.NoError(t, err)
	assert.NotZero(t, ctl&ctlInterrupt, "interrupt flag must be set once the job is done")
}

func TestPeripheral_HangNextJob(t *testing.T) {
	p := NewPeripheral()
	p.HangNextJob()
	require.NoError(t, p.Write(twi.Control, doStart))
	ctl, err := p.Read(twi.Control)
	require.NoError(t, err)
	assert.Zero(t, ctl&ctlInterrupt, "wedged job must keep the interrupt flag cleared")
}

func TestMemory_PointerSemantics(t *testing.T) {
	m := NewMemory()

	// write transaction: pointer byte then payload with auto-increment
	assert.True(t, m.Start(false))
	assert.True(t, m.WriteByte(0x10))
	assert.True(t, m.WriteByte(0xAA))
	assert.True(t, m.WriteByte(0xBB))
	m.Stop()
	assert.Equal(t, []byte{0xAA, 0xBB}, m.Bytes(0x10, 2))

	// read transaction continues at the pointer
	assert.True(t, m.Start(false))
	assert.True(t, m.WriteByte(0x10))
	assert.True(t, m.Start(true))
	assert.Equal(t, byte(0xAA), m.ReadByte(true))
	assert.Equal(t, byte(0xBB), m.ReadByte(false))
}

func TestMemory_NackAfter(t *testing.T) {
	m := NewMemory()
	m.NackAfter = 1
	assert.True(t, m.Start(false))
	assert.True(t, m.WriteByte(0x00))
	assert.False(t, m.WriteByte(0x01))
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "start", Op{Kind: OpStart}.String())
	assert.Equal(t, "transmit(0xa0)", Op{Kind: OpTransmit, Byte: 0xA0}.String())
	assert.Equal(t, "receive_ack(0x01)", Op{Kind: OpReceiveAck, Byte: 0x01}.String())
	assert.Equal(t, "receive_nack(0x02)", Op{Kind: OpReceiveNack, Byte: 0x02}.String())
	assert.Equal(t, "stop", Op{Kind: OpStop}.String())
}
