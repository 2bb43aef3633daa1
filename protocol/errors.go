package protocol

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned by Stream.ReadByte when no byte arrives within the read timeout.
var ErrTimeout = errors.New("read timeout")

// TimeoutError reports that the device did not answer during an operation.
// It matches ErrTimeout with errors.Is.
type TimeoutError struct {
	// Operation is the protocol step that was waiting
	Operation string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no response from device", e.Operation)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// AckError reports that the device answered with an unexpected marker byte.
type AckError struct {
	// Operation is the protocol step that expected the marker
	Operation string

	// Expected is the marker the protocol requires
	Expected Marker

	// Actual is the byte the device sent
	Actual Marker
}

func (e *AckError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Operation, e.Expected, e.Actual)
}

// StreamError wraps a failure of the underlying byte stream.
type StreamError struct {
	// Operation is the protocol step that was using the stream
	Operation string

	// Err is the transport error
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s: stream failure: %v", e.Operation, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if err is or wraps a timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsAckError returns true if err is or wraps an AckError.
func IsAckError(err error) bool {
	var ackErr *AckError
	return errors.As(err, &ackErr)
}
