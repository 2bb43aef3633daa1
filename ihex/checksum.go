package ihex

import "fmt"

// Checksum computes the 8-bit record checksum over length, offset, type and payload.
// The result is the two's complement of the byte sum, so that all bytes of a
// valid record including its checksum add up to zero.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}

// HexToVal decodes a string of hex digits (either case) into its value.
// At most 8 digits are accepted.
func HexToVal(s string) (uint32, error) {
	if len(s) > 8 {
		return 0, fmt.Errorf("hex value %q overflows 32 bits", s)
	}

	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			v = v<<4 | uint32(c-'0')
		case c >= 'A' && c <= 'F':
			v = v<<4 | uint32(c-'A'+10)
		case c >= 'a' && c <= 'f':
			v = v<<4 | uint32(c-'a'+10)
		default:
			return 0, fmt.Errorf("invalid character %q in hex conversion", c)
		}
	}
	return v, nil
}
