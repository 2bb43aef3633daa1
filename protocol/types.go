package protocol

import "fmt"

// Marker is a single-byte status signal from the bootloader.
type Marker byte

func (m Marker) String() string {
	if m >= 0x20 && m < 0x7F {
		return fmt.Sprintf("'%c' (0x%02X)", byte(m), byte(m))
	}
	return fmt.Sprintf("0x%02X", byte(m))
}
