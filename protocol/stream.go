package protocol

import (
	"io"
	"time"
)

// Stream is the byte-stream the bootloader is reached through.
// Implementations are not required to be safe for concurrent use; one
// session owns a stream for the duration of one download.
type Stream interface {
	io.Writer
	io.Closer

	// ReadByte blocks for at most ReadTimeout and returns ErrTimeout if no
	// byte arrived in time.
	ReadByte() (byte, error)

	// Available returns the number of bytes that can be read without blocking.
	Available() (int, error)

	// DiscardInput drops every byte received but not yet read.
	DiscardInput() error

	// ReadTimeout returns the current read timeout.
	ReadTimeout() time.Duration

	// SetReadTimeout changes the read timeout for subsequent reads.
	SetReadTimeout(t time.Duration) error
}
