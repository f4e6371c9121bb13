package twi

import (
	"errors"
	"fmt"
)

// Phase names the transaction step a status check belongs to.
type Phase string

const (
	PhaseStart         Phase = "start"
	PhaseRepeatedStart Phase = "repeated start"
	PhaseAddressWrite  Phase = "address+write"
	PhaseAddressRead   Phase = "address+read"
	PhaseDataWrite     Phase = "data write"
	PhaseDataRead      Phase = "data read"
)

var ErrNoDevice = errors.New("no device responded at this address")
var ErrArbitrationLost = errors.New("bus arbitration lost")
var ErrInvalidAddress = fmt.Errorf("device address out of 7-bit range")
var ErrInvalidLength = fmt.Errorf("transfer length must be at least 1")
var ErrNotInitialized = fmt.Errorf("engine not initialized, call Init first")

// StatusError reports a failed status check: which phase was being
// verified, the code it required and the code the hardware reported.
type StatusError struct {
	Phase    Phase
	Expected Status
	Observed Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: expected %q (%#02x), observed %q (%#02x)",
		e.Phase, e.Expected, byte(e.Expected), e.Observed, byte(e.Observed))
}

// Is maps well-known observed codes to sentinel errors so callers can
// use errors.Is without inspecting status codes themselves.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNoDevice:
		return e.Observed == StatusAddrWriteNack || e.Observed == StatusAddrReadNack
	case ErrArbitrationLost:
		return e.Observed == StatusArbitrationLost
	}
	return false
}
