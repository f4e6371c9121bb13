package twi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitrate(t *testing.T) {
	tests := []struct {
		name      string
		core, bus uint32
		divisor   byte
		prescaler byte
		err       error
	}{
		{name: "16MHz/100kHz", core: 16_000_000, bus: 100_000, divisor: 72, prescaler: 0},
		{name: "16MHz/400kHz", core: 16_000_000, bus: 400_000, divisor: 12, prescaler: 0},
		{name: "8MHz/100kHz", core: 8_000_000, bus: 100_000, divisor: 32, prescaler: 0},
		{name: "20MHz/10kHz needs prescaler", core: 20_000_000, bus: 10_000, divisor: 248, prescaler: 1},
		{name: "1MHz/1kHz needs large prescaler", core: 1_000_000, bus: 1_000, divisor: 123, prescaler: 1},
		{name: "bus faster than core can clock", core: 1_000_000, bus: 400_000, err: ErrClockConfig},
		{name: "zero bus clock", core: 16_000_000, bus: 0, err: ErrClockConfig},
		{name: "zero core clock", core: 0, bus: 100_000, err: ErrClockConfig},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			divisor, prescaler, err := bitrate(test.core, test.bus)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.divisor, divisor)
			assert.Equal(t, test.prescaler, prescaler)
		})
	}
}

func TestAddrComposition(t *testing.T) {
	assert.Equal(t, byte(0xA0), Addr(0x50).slaW())
	assert.Equal(t, byte(0xA1), Addr(0x50).slaR())
	assert.Equal(t, byte(0x4F), Addr(0x27).slaR())
	assert.True(t, Addr(0x7F).valid())
	assert.False(t, Addr(0x80).valid())
}
