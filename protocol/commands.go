package protocol

import "fmt"

// BuildHandshake returns the bytes that ask the bootloader to start a download.
func BuildHandshake() []byte {
	frame := make([]byte, len(HandshakeSequence))
	copy(frame, HandshakeSequence[:])
	return frame
}

// BuildPage validates one page of program data and returns it ready to send.
// The device takes exactly pageSize raw bytes per page, little-endian words,
// with no header or checksum.
func BuildPage(data []byte, pageSize int) ([]byte, error) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		return nil, fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, pageSize)
	}
	if pageSize%2 != 0 {
		return nil, fmt.Errorf("page size must be a whole number of words, got %d bytes", pageSize)
	}
	if len(data) != pageSize {
		return nil, fmt.Errorf("page must be exactly %d bytes, got %d", pageSize, len(data))
	}

	frame := make([]byte, pageSize)
	copy(frame, data)
	return frame, nil
}
