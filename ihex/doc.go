// Package ihex provides a sparse firmware image model loaded from Intel HEX files.
//
// # Record Format
//
// Each record is one ASCII line:
//
//	:LLAAAATT[DD...]CC
//	  LL   = payload byte count
//	  AAAA = 16-bit offset (big-endian)
//	  TT   = record type (00 data, 01 end of file, 04 extended linear address)
//	  DD   = LL payload bytes
//	  CC   = two's complement of the sum of all preceding bytes
//
// Example data record:
//
//	:0400000048656C6C77
//	  04   = 4 bytes
//	  0000 = offset 0x0000
//	  00   = data
//	  48656C6C = "Hell"
//	  77   = checksum
//
// # Loading
//
// The loader is deliberately permissive. Lines that are not well formed
// records (comments, blank lines, wrong length field, bad characters) are
// dropped without failing the load. Checksum enforcement is optional since
// some toolchains emit records with non-standard checksums:
//
//	img, err := ihex.Load("app.hex", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, w := range img.Warnings() {
//	    fmt.Println("warning:", w)
//	}
//
// Addresses defined more than once keep the last value and add a warning.
//
// # Shaping An Image
//
// Images are mutated in place to match a device layout before programming:
//
//	img.Crop(0x300, 0x2000)           // keep the application area only
//	img.Fill16(0x300, 0x2000, 0x3FFF) // unprogrammed 14-bit words
//
//	page, err := img.SubArray(0x300, 64)
//
// # Exports
//
//	img.WriteBinary(w, 0x300, 0x2000, 0xFF) // flat binary, gaps filled
//	img.WriteHex(w)                          // Intel HEX re-encoding
//	img.WriteTwoColumn(w)                    // "ADDR VV" listing
package ihex
