package ihex

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/afero"
)

// Constants for Intel HEX record parsing.
const (
	// StartCode is the character every record line begins with
	StartCode = ':'

	// MinimumRecordLength is the length of a record with no payload in characters:
	// start code(1) + length(2) + offset(4) + type(2) + checksum(2)
	MinimumRecordLength = 11

	// ExtendedAddressLength is the payload size of an extended linear address record
	ExtendedAddressLength = 2

	// MaxLineLength bounds a single input line, whitespace included
	MaxLineLength = 1024 * 1024

	lengthOffset     = 1
	offsetOffset     = 3
	recordTypeOffset = 7
	dataOffset       = 9
)

// Load reads an Intel HEX file from disk.
// When enforceChecksum is false, records with a wrong checksum are accepted.
//
// Example:
//
//	img, err := ihex.Load("app.hex", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	low, _ := img.LowestAddress()
//	fmt.Printf("first byte at 0x%X\n", low)
func Load(path string, enforceChecksum bool) (*Image, error) {
	return LoadFS(afero.NewOsFs(), path, enforceChecksum)
}

// LoadFS reads an Intel HEX file from the given filesystem.
func LoadFS(fs afero.Fs, path string, enforceChecksum bool) (*Image, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadReader(f, enforceChecksum)
}

// LoadReader reads Intel HEX records from any io.Reader.
// Malformed lines are skipped; only a read failure fails the load.
//
// Example:
//
//	img, err := ihex.LoadReader(strings.NewReader(":0400000048656C6C77\n"), true)
func LoadReader(r io.Reader, enforceChecksum bool) (*Image, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineLength)

	memory := make(map[uint32]byte)
	var warnings []string
	var extendedAddress uint32

	for scanner.Scan() {
		rec, err := ParseRecord(scanner.Text())
		if err != nil {
			continue
		}
		if enforceChecksum && !rec.Valid() {
			continue
		}

		switch rec.Type {
		case RecordData:
			base := extendedAddress<<16 + uint32(rec.Offset)
			for i, b := range rec.Data {
				addr := base + uint32(i)
				if _, ok := memory[addr]; ok {
					warnings = append(warnings, fmt.Sprintf("address 0x%X is defined multiple times", addr))
				}
				memory[addr] = b
			}

		case RecordExtendedLinear:
			if len(rec.Data) != ExtendedAddressLength {
				continue
			}
			extendedAddress = uint32(rec.Data[0])<<8 | uint32(rec.Data[1])

		default:
			// end of file and unsupported types carry no data
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &Image{memory: memory, warnings: warnings}, nil
}

// ParseRecord decodes a single line into a Record.
// Whitespace anywhere in the line is ignored. The checksum is decoded but
// not checked; use Record.Valid for that.
//
// Every rejection wraps ErrSkipped.
func ParseRecord(line string) (*Record, error) {
	line = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, line)

	if strings.IndexFunc(line, notRecordChar) >= 0 {
		return nil, fmt.Errorf("%w: invalid character", ErrSkipped)
	}

	if len(line) < MinimumRecordLength {
		return nil, fmt.Errorf("%w: record too short: got %d characters, minimum is %d",
			ErrSkipped, len(line), MinimumRecordLength)
	}

	if line[0] != StartCode {
		return nil, fmt.Errorf("%w: missing start code", ErrSkipped)
	}

	length, err := HexToVal(line[lengthOffset:offsetOffset])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSkipped, err)
	}

	if expected := int(length)*2 + MinimumRecordLength; expected != len(line) {
		return nil, fmt.Errorf("%w: length mismatch: got %d characters, expected %d",
			ErrSkipped, len(line), expected)
	}

	raw, err := hex.DecodeString(line[lengthOffset:])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex data: %v", ErrSkipped, err)
	}

	payloadStart := (dataOffset - lengthOffset) / 2
	rec := &Record{
		Length:   raw[0],
		Offset:   uint16(raw[1])<<8 | uint16(raw[2]),
		Type:     RecordType(raw[(recordTypeOffset-lengthOffset)/2]),
		Data:     make([]byte, length),
		Checksum: raw[len(raw)-1],
	}
	copy(rec.Data, raw[payloadStart:payloadStart+int(length)])

	return rec, nil
}

func notRecordChar(r rune) bool {
	switch {
	case r == StartCode:
		return false
	case r >= '0' && r <= '9', r >= 'A' && r <= 'F', r >= 'a' && r <= 'f':
		return false
	default:
		return true
	}
}
