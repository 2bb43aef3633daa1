package ihex

import "fmt"

// RecordType identifies the kind of an Intel HEX record.
type RecordType byte

// Record types. Only data and extended linear address records have an
// effect on the image; every other type is accepted and ignored.
const (
	RecordData            RecordType = 0x00
	RecordEOF             RecordType = 0x01
	RecordExtendedSegment RecordType = 0x02
	RecordStartSegment    RecordType = 0x03
	RecordExtendedLinear  RecordType = 0x04
	RecordStartLinear     RecordType = 0x05
)

func (t RecordType) String() string {
	switch t {
	case RecordData:
		return "data"
	case RecordEOF:
		return "end of file"
	case RecordExtendedSegment:
		return "extended segment address"
	case RecordStartSegment:
		return "start segment address"
	case RecordExtendedLinear:
		return "extended linear address"
	case RecordStartLinear:
		return "start linear address"
	default:
		return fmt.Sprintf("unknown (0x%02X)", byte(t))
	}
}

// Record is a single decoded line of an Intel HEX file.
type Record struct {
	// Length is the declared payload byte count
	Length byte

	// Offset is the 16-bit load offset
	Offset uint16

	// Type is the record type
	Type RecordType

	// Data is the record payload
	Data []byte

	// Checksum is the trailing checksum byte as written in the file
	Checksum byte
}

// Sum computes the checksum the record should carry.
func (r *Record) Sum() byte {
	header := []byte{r.Length, byte(r.Offset >> 8), byte(r.Offset), byte(r.Type)}
	return Checksum(append(header, r.Data...))
}

// Valid reports whether the stored checksum matches the computed one.
func (r *Record) Valid() bool {
	return r.Sum() == r.Checksum
}
