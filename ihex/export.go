package ihex

import (
	"bufio"
	"fmt"
	"io"

	"github.com/marcinbor85/gohex"
	"github.com/spf13/afero"
)

// HexLineLength is the payload size of data records produced by WriteHex.
const HexLineLength = 16

// WriteBinary writes one byte per address in [start, end), substituting fill
// for absent addresses.
func (img *Image) WriteBinary(w io.Writer, start, end uint32, fill byte) error {
	if end < start {
		return fmt.Errorf("invalid range: end 0x%X is below start 0x%X", end, start)
	}

	buf := make([]byte, end-start)
	for i := range buf {
		v, ok := img.memory[start+uint32(i)]
		if !ok {
			v = fill
		}
		buf[i] = v
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write binary: %w", err)
	}
	return nil
}

// ExportBinary writes a flat binary of [start, end) to path on fs.
func (img *Image) ExportBinary(fs afero.Fs, path string, start, end uint32, fill byte) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := img.WriteBinary(f, start, end, fill); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteHex re-encodes the image as Intel HEX, one segment at a time.
func (img *Image) WriteHex(w io.Writer) error {
	mem := gohex.NewMemory()
	for _, seg := range img.Segments() {
		if err := mem.AddBinary(seg.Address, seg.Data); err != nil {
			return fmt.Errorf("add segment at 0x%X: %w", seg.Address, err)
		}
	}

	if err := mem.DumpIntelHex(w, HexLineLength); err != nil {
		return fmt.Errorf("dump intel hex: %w", err)
	}
	return nil
}

// WriteTwoColumn writes one "ADDRESS VALUE" line per defined byte, ascending.
func (img *Image) WriteTwoColumn(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, k := range img.Addresses() {
		if _, err := fmt.Fprintf(bw, "%X %2X\n", k, img.memory[k]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
