package ihex

import (
	"fmt"
	"slices"
)

// Image is a sparse byte-addressable memory map built from Intel HEX records.
// An absent address means the location is unprogrammed.
//
// Image is not safe for concurrent mutation.
type Image struct {
	memory   map[uint32]byte
	warnings []string
}

// Segment is a contiguous run of defined bytes.
type Segment struct {
	Address uint32
	Data    []byte
}

// New returns an empty image.
func New() *Image {
	return &Image{memory: make(map[uint32]byte)}
}

// Len returns the number of defined addresses.
func (img *Image) Len() int {
	return len(img.memory)
}

// Get returns the byte at addr and whether it is defined.
func (img *Image) Get(addr uint32) (byte, bool) {
	v, ok := img.memory[addr]
	return v, ok
}

// Set defines the byte at addr, replacing any previous value.
func (img *Image) Set(addr uint32, v byte) {
	img.memory[addr] = v
}

// Warnings returns the non-fatal diagnostics collected by load and merge, oldest first.
func (img *Image) Warnings() []string {
	return slices.Clone(img.warnings)
}

// Addresses returns every defined address in ascending order.
func (img *Image) Addresses() []uint32 {
	keys := make([]uint32, 0, len(img.memory))
	for k := range img.memory {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// LowestAddress returns the smallest defined address.
func (img *Image) LowestAddress() (uint32, error) {
	if len(img.memory) == 0 {
		return 0, ErrEmptyImage
	}
	first := true
	var low uint32
	for k := range img.memory {
		if first || k < low {
			low = k
			first = false
		}
	}
	return low, nil
}

// HighestAddress returns the largest defined address.
func (img *Image) HighestAddress() (uint32, error) {
	if len(img.memory) == 0 {
		return 0, ErrEmptyImage
	}
	var high uint32
	for k := range img.memory {
		if k > high {
			high = k
		}
	}
	return high, nil
}

// Bounds returns the lowest and highest defined addresses.
func (img *Image) Bounds() (low, high uint32, err error) {
	if low, err = img.LowestAddress(); err != nil {
		return 0, 0, err
	}
	high, err = img.HighestAddress()
	return low, high, err
}

// Crop removes every address outside [start, end).
func (img *Image) Crop(start, end uint32) {
	for k := range img.memory {
		if k < start || k >= end {
			delete(img.memory, k)
		}
	}
}

// Fill defines every absent address in [start, end) as value.
func (img *Image) Fill(start, end uint32, value byte) {
	for addr := uint64(start); addr < uint64(end); addr++ {
		if _, ok := img.memory[uint32(addr)]; !ok {
			img.memory[uint32(addr)] = value
		}
	}
}

// Fill16 walks [start, end) two bytes at a time and, wherever the low byte of a
// word is absent, writes value little-endian (low byte at addr, high byte at
// addr+1). The high byte is written even if it was already defined: a missing
// low byte marks the whole program word as unprogrammed.
func (img *Image) Fill16(start, end uint32, value uint16) {
	for addr := uint64(start); addr < uint64(end); addr += 2 {
		a := uint32(addr)
		if _, ok := img.memory[a]; ok {
			continue
		}
		img.memory[a] = byte(value)
		img.memory[a+1] = byte(value >> 8)
	}
}

// Merge copies every byte of other into img. Addresses already defined are
// overwritten and reported. The new warnings are returned and also appended
// to img's warnings.
func (img *Image) Merge(other *Image) []string {
	var added []string
	for _, k := range other.Addresses() {
		v := other.memory[k]
		if old, ok := img.memory[k]; ok {
			added = append(added, fmt.Sprintf(
				"address 0x%X is being overwritten in merge: original value 0x%02X, new value 0x%02X",
				k, old, v))
		}
		img.memory[k] = v
	}
	img.warnings = append(img.warnings, added...)
	return added
}

// SubArray returns length contiguous bytes starting at start.
// Every address in the range must be defined; otherwise an *AddressError
// names the first missing one.
func (img *Image) SubArray(start, length uint32) ([]byte, error) {
	out := make([]byte, length)
	for i := uint32(0); i < length; i++ {
		v, ok := img.memory[start+i]
		if !ok {
			return nil, &AddressError{Address: start + i}
		}
		out[i] = v
	}
	return out, nil
}

// Segments returns the defined bytes grouped into maximal contiguous runs, ascending.
func (img *Image) Segments() []Segment {
	var segs []Segment
	for _, k := range img.Addresses() {
		n := len(segs)
		if n > 0 {
			last := &segs[n-1]
			if uint64(last.Address)+uint64(len(last.Data)) == uint64(k) {
				last.Data = append(last.Data, img.memory[k])
				continue
			}
		}
		segs = append(segs, Segment{Address: k, Data: []byte{img.memory[k]}})
	}
	return segs
}

// Clone returns a deep copy of the image, warnings included.
func (img *Image) Clone() *Image {
	memory := make(map[uint32]byte, len(img.memory))
	for k, v := range img.memory {
		memory[k] = v
	}
	return &Image{memory: memory, warnings: slices.Clone(img.warnings)}
}
