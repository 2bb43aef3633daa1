package protocol

import "time"

// HandshakeSequence is written by the host to start a download.
// The bootloader shifts received bytes through a 4-byte window until it matches.
var HandshakeSequence = [4]byte{0x52, 0xA3, 0x4D, 0xF6}

// Marker bytes sent by the bootloader.
const (
	// MarkerBootEntry is sent once after reset when the bootloader stays in boot mode
	MarkerBootEntry Marker = 'U'

	// MarkerHandshakeAck acknowledges the handshake; erase starts right after it
	MarkerHandshakeAck Marker = 'E'

	// MarkerHandshakeAckAlt is the lowercase acknowledgment used by older firmware builds
	MarkerHandshakeAckAlt Marker = 'e'

	// MarkerEraseComplete signals the application area is erased and writing may begin
	MarkerEraseComplete Marker = 'W'

	// MarkerPageAck acknowledges one programmed page
	MarkerPageAck Marker = 'W'

	// MarkerReadout precedes the flash read-out used for verification
	MarkerReadout Marker = 'R'
)

// Timing and sizing defaults.
const (
	// HandshakeTimeout is the shortened read timeout while waiting for the handshake ack
	HandshakeTimeout = 50 * time.Millisecond

	// DefaultReadTimeout is the standard read timeout for erase, page and read-out bytes
	DefaultReadTimeout = 2 * time.Second

	// DefaultPageSize is the number of bytes per page write (32 program words)
	DefaultPageSize = 64

	// MaxPageSize bounds the page size accepted by BuildPage
	MaxPageSize = 4096

	// DefaultBaudRate is the bootloader UART speed (8-N-1)
	DefaultBaudRate = 115200

	// VerifyProgressInterval is the number of read-out bytes between verify progress reports
	VerifyProgressInterval = 128
)
