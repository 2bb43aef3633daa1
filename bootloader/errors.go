package bootloader

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is matched by every StateError.
	ErrInvalidState = errors.New("invalid session state")

	// ErrNotAcknowledged is returned by Download when the device ignored the handshake.
	ErrNotAcknowledged = errors.New("bootloader did not acknowledge handshake")
)

// StateError indicates an operation was called out of order.
// The session state is left unchanged.
type StateError struct {
	Operation string
	Current   State
	Required  State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s requires state %s, session is %s",
		e.Operation, e.Required, e.Current)
}

// Is reports whether target is ErrInvalidState.
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// VerifyMismatchError indicates the read-out differs from the image.
type VerifyMismatchError struct {
	// Address is the byte address of the first differing byte
	Address  uint32
	Expected byte
	Actual   byte
}

// WordAddress returns the program word address of the mismatch.
func (e *VerifyMismatchError) WordAddress() uint32 {
	return e.Address / 2
}

func (e *VerifyMismatchError) Error() string {
	return fmt.Sprintf("verify mismatch at 0x%04X (word 0x%04X): expected 0x%02X, got 0x%02X",
		e.Address, e.WordAddress(), e.Expected, e.Actual)
}
