// Package protocol implements the wire contract of the PIC16F15214 serial bootloader.
//
// The protocol has no framing: every exchange is a fixed byte sequence from
// the host answered by single marker bytes from the device.
//
// # Protocol Overview
//
//	host   -> device  52 A3 4D F6          handshake
//	device -> host    'E'                  handshake ack, erase starts
//	device -> host    'W'                  erase complete
//	host   -> device  page (64 bytes)      repeated for the application area
//	device -> host    'W'                  page ack
//	device -> host    'R'                  read-out follows
//	device -> host    N bytes              application area, ascending
//
// Pages are raw little-endian program words. The bootloader writes them
// from the start of the application area onward; the host does not send
// addresses.
//
// # Byte Stream
//
// Transports implement Stream. Reads are single bytes bounded by a read
// timeout that the session lowers during the handshake; Available is the
// non-blocking check used while streaming the read-out:
//
//	b, err := s.ReadByte()
//	if protocol.IsTimeout(err) {
//	    // device silent
//	}
//
// # Error Handling
//
// Failures are reported with structured types:
//   - TimeoutError: the device sent nothing in time (matches ErrTimeout)
//   - AckError: the device sent a different marker than required
//   - StreamError: the transport failed; the stream should be closed
//
// Example:
//
//	if err := protocol.ReadAck(s, "erase", protocol.MarkerEraseComplete); err != nil {
//	    // err.Error() returns: "erase: expected 'W' (0x57), got 'E' (0x45)"
//	}
package protocol
