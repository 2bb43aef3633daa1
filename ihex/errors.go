package ihex

import (
	"errors"
	"fmt"
)

// ErrEmptyImage is returned when an address bound is requested from an image with no data.
var ErrEmptyImage = errors.New("image is empty")

// ErrSkipped wraps every reason a line is not accepted as a record.
var ErrSkipped = errors.New("record skipped")

// AddressError indicates that an operation needed a byte the image does not define.
type AddressError struct {
	Address uint32
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address 0x%08X is not defined in image", e.Address)
}
