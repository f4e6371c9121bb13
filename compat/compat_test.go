package compat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/twi"
	"github.com/mklimuk/twi/compat"
	"github.com/mklimuk/twi/sim"
)

const memAddr twi.Addr = 0x50

func newTestMaster(t *testing.T) (*twi.Master, *sim.Memory) {
	t.Helper()
	mem := sim.NewMemory()
	peripheral := sim.NewPeripheral()
	peripheral.Attach(memAddr, mem)
	master := twi.NewMaster(peripheral)
	require.NoError(t, master.Init())
	return master, mem
}

func TestPeriphBus_Tx(t *testing.T) {
	master, mem := newTestMaster(t)
	bus := compat.NewPeriphBus(master)

	assert.Equal(t, "twi", bus.String())

	// write only: pointer byte plus payload
	require.NoError(t, bus.Tx(uint16(memAddr), []byte{0x10, 0xAA, 0xBB}, nil))
	assert.Equal(t, []byte{0xAA, 0xBB}, mem.Bytes(0x10, 2))

	// write then read switches direction with a repeated start
	got := make([]byte, 2)
	require.NoError(t, bus.Tx(uint16(memAddr), []byte{0x10}, got))
	assert.Equal(t, []byte{0xAA, 0xBB}, got)

	// read only continues from the device pointer
	got = make([]byte, 1)
	require.NoError(t, bus.Tx(uint16(memAddr), nil, got))

	assert.ErrorIs(t, bus.Tx(0x90, []byte{0x00}, nil), twi.ErrInvalidAddress)
}

func TestPeriphBus_TxNoDevice(t *testing.T) {
	master, _ := newTestMaster(t)
	bus := compat.NewPeriphBus(master)
	assert.ErrorIs(t, bus.Tx(0x27, []byte{0x00}, nil), twi.ErrNoDevice)
}

func TestPeriphBus_SetSpeed(t *testing.T) {
	master, _ := newTestMaster(t)
	bus := compat.NewPeriphBus(master)
	assert.Error(t, bus.SetSpeed(0))
}

func TestConnector_GetI2cConnection(t *testing.T) {
	master, _ := newTestMaster(t)
	connector := compat.NewConnector(master)

	assert.Equal(t, 0, connector.DefaultI2cBus())

	_, err := connector.GetI2cConnection(0x90, 0)
	assert.ErrorIs(t, err, twi.ErrInvalidAddress)
	_, err = connector.GetI2cConnection(-1, 0)
	assert.ErrorIs(t, err, twi.ErrInvalidAddress)

	conn, err := connector.GetI2cConnection(int(memAddr), 0)
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.NoError(t, conn.Close())
}

func TestConnection_ByteAndBlockOps(t *testing.T) {
	master, mem := newTestMaster(t)
	connector := compat.NewConnector(master)
	conn, err := connector.GetI2cConnection(int(memAddr), 0)
	require.NoError(t, err)

	require.NoError(t, conn.WriteByteData(0x20, 0x42))
	assert.Equal(t, []byte{0x42}, mem.Bytes(0x20, 1))

	val, err := conn.ReadByteData(0x20)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), val)

	require.NoError(t, conn.WriteBlockData(0x30, []byte{0x01, 0x02, 0x03}))
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, mem.Bytes(0x30, 3))

	block := make([]byte, 3)
	require.NoError(t, conn.ReadBlockData(0x30, block))
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, block)

	assert.Error(t, conn.WriteBlockData(0x00, make([]byte, 33)))
}

func TestConnection_WordOpsAreLittleEndian(t *testing.T) {
	master, mem := newTestMaster(t)
	connector := compat.NewConnector(master)
	conn, err := connector.GetI2cConnection(int(memAddr), 0)
	require.NoError(t, err)

	require.NoError(t, conn.WriteWordData(0x40, 0x1234))
	assert.Equal(t, []byte{0x34, 0x12}, mem.Bytes(0x40, 2))

	word, err := conn.ReadWordData(0x40)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), word)
}

func TestConnection_RawReadWrite(t *testing.T) {
	master, mem := newTestMaster(t)
	connector := compat.NewConnector(master)
	conn, err := connector.GetI2cConnection(int(memAddr), 0)
	require.NoError(t, err)

	// raw write: first byte sets the pointer
	n, err := conn.Write([]byte{0x00, 0xDE, 0xAD})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0xDE, 0xAD}, mem.Bytes(0x00, 2))

	require.NoError(t, conn.WriteByte(0x00))
	buf := make([]byte, 2)
	n, err = conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xDE, 0xAD}, buf)

	require.NoError(t, conn.WriteBytes([]byte{0x05, 0x77}))
	assert.Equal(t, []byte{0x77}, mem.Bytes(0x05, 1))
}
