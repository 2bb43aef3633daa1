// Package profile describes the memory layout and link settings of a
// bootloader target and prepares firmware images for it.
//
// Profiles are stored as TOML:
//
//	name = "PIC16F15214"
//	app_start = 0x0300
//	app_end = 0x2000
//	fill_word = 0x3FFF
//	page_size = 64
//	baud_rate = 115200
//	read_timeout_ms = 2000
//	handshake_ack = "E"
//	enforce_checksum = true
//	load_complete_address = 0x1FFE
//	load_complete_word = 0x14B7
//
// Fields left out of a file keep the PIC16F15214 defaults.
package profile

import (
	"fmt"
	"time"

	"github.com/moffa90/go-picboot/bootloader"
	"github.com/moffa90/go-picboot/ihex"
	"github.com/moffa90/go-picboot/protocol"
	"github.com/moffa90/go-picboot/serialport"
	"github.com/moffa90/go-picboot/simulator"
)

// Profile is a bootloader target. Addresses are byte addresses; a program
// word at word address w occupies bytes 2w and 2w+1, little-endian.
type Profile struct {
	// Name identifies the target
	Name string `toml:"name" validate:"required"`

	// AppStart is the first byte of the application area
	AppStart uint32 `toml:"app_start"`

	// AppEnd is one past the last byte of the application area
	AppEnd uint32 `toml:"app_end" validate:"gtfield=AppStart"`

	// FillWord is written to every program word the image leaves undefined
	FillWord uint16 `toml:"fill_word"`

	// PageSize is the number of bytes the bootloader programs per page
	PageSize int `toml:"page_size" validate:"gt=0,lte=4096,even"`

	// BaudRate is the UART speed
	BaudRate int `toml:"baud_rate" validate:"gt=0"`

	// ReadTimeoutMS is the standard read timeout in milliseconds
	ReadTimeoutMS int `toml:"read_timeout_ms" validate:"gt=0"`

	// HandshakeAck is the single character acknowledging the handshake
	HandshakeAck string `toml:"handshake_ack" validate:"len=1"`

	// EnforceChecksum makes the loader skip records with a bad checksum
	EnforceChecksum bool `toml:"enforce_checksum"`

	// LoadCompleteAddress is where the application must place LoadCompleteWord
	LoadCompleteAddress uint32 `toml:"load_complete_address"`

	// LoadCompleteWord tells the bootloader an application is present.
	// Zero disables the check.
	LoadCompleteWord uint16 `toml:"load_complete_word"`
}

// Default returns the PIC16F15214 profile.
func Default() Profile {
	return Profile{
		Name:                "PIC16F15214",
		AppStart:            0x0300,
		AppEnd:              0x2000,
		FillWord:            0x3FFF,
		PageSize:            protocol.DefaultPageSize,
		BaudRate:            protocol.DefaultBaudRate,
		ReadTimeoutMS:       int(protocol.DefaultReadTimeout / time.Millisecond),
		HandshakeAck:        string(rune(protocol.MarkerHandshakeAck)),
		EnforceChecksum:     true,
		LoadCompleteAddress: 0x1FFE,
		LoadCompleteWord:    0x14B7,
	}
}

// ReadTimeout returns ReadTimeoutMS as a duration.
func (p Profile) ReadTimeout() time.Duration {
	return time.Duration(p.ReadTimeoutMS) * time.Millisecond
}

// Ack returns the handshake acknowledgment marker.
func (p Profile) Ack() protocol.Marker {
	if len(p.HandshakeAck) == 0 {
		return protocol.MarkerHandshakeAck
	}
	return protocol.Marker(p.HandshakeAck[0])
}

// Prepare shapes img for download: bytes outside the application area are
// dropped and every undefined word inside it is set to FillWord. It returns
// warnings about the result; img is modified in place.
func (p Profile) Prepare(img *ihex.Image) []string {
	var warnings []string

	img.Crop(p.AppStart, p.AppEnd)
	if img.Len() == 0 {
		warnings = append(warnings, fmt.Sprintf(
			"image has no data in the application area 0x%04X-0x%04X", p.AppStart, p.AppEnd-1))
	}

	if p.LoadCompleteWord != 0 {
		lo, okLo := img.Get(p.LoadCompleteAddress)
		hi, okHi := img.Get(p.LoadCompleteAddress + 1)
		if !okLo || !okHi || uint16(hi)<<8|uint16(lo) != p.LoadCompleteWord {
			warnings = append(warnings, fmt.Sprintf(
				"load-complete word 0x%04X not found at 0x%04X; the device will stay in the bootloader after reset",
				p.LoadCompleteWord, p.LoadCompleteAddress))
		}
	}

	img.Fill16(p.AppStart, p.AppEnd, p.FillWord)
	return warnings
}

// SessionOptions returns the bootloader options matching the profile.
func (p Profile) SessionOptions() []bootloader.Option {
	return []bootloader.Option{
		bootloader.WithPageSize(p.PageSize),
		bootloader.WithReadTimeout(p.ReadTimeout()),
		bootloader.WithHandshakeAck(p.Ack()),
	}
}

// SerialConfig returns the serial link settings for the profile.
func (p Profile) SerialConfig() serialport.Config {
	cfg := serialport.DefaultConfig()
	cfg.BaudRate = p.BaudRate
	cfg.ReadTimeout = p.ReadTimeout()
	return cfg
}

// SimulatorOptions returns options for a simulated device with this layout.
func (p Profile) SimulatorOptions() []simulator.Option {
	return []simulator.Option{
		simulator.WithAppArea(p.AppStart, p.AppEnd),
		simulator.WithErasedWord(p.FillWord),
		simulator.WithPageSize(p.PageSize),
		simulator.WithHandshakeAck(p.Ack()),
	}
}
