package simulator

import (
	"time"

	"github.com/moffa90/go-picboot/protocol"
)

// Config describes the simulated part and the faults to inject.
type Config struct {
	// AppStart and AppEnd bound the application area in byte addresses [AppStart, AppEnd)
	AppStart uint32
	AppEnd   uint32

	// ErasedWord is the value of an erased program word
	ErasedWord uint16

	// PageSize is the number of bytes programmed per page
	PageSize int

	// HandshakeAck is sent when the handshake matches
	HandshakeAck protocol.Marker

	// PageAck is sent after every page
	PageAck byte

	// SilentHandshake makes the device ignore the handshake
	SilentHandshake bool

	// BootBanner queues 'U' at power-up
	BootBanner bool

	// CorruptAddresses are inverted in the read-out
	CorruptAddresses []uint32

	// ReadoutLimit truncates the read-out; negative sends it whole
	ReadoutLimit int

	// WriteErr fails every Write
	WriteErr error

	// Latency delays every Write
	Latency time.Duration
}

func defaultConfig() Config {
	return Config{
		AppStart:     0x0300,
		AppEnd:       0x2000,
		ErasedWord:   0x3FFF,
		PageSize:     protocol.DefaultPageSize,
		HandshakeAck: protocol.MarkerHandshakeAck,
		PageAck:      byte(protocol.MarkerPageAck),
		ReadoutLimit: -1,
	}
}

// Option configures a Device.
type Option func(*Config)

// WithAppArea sets the application area [start, end). Both bounds should be
// page aligned.
func WithAppArea(start, end uint32) Option {
	return func(c *Config) {
		if end > start {
			c.AppStart = start
			c.AppEnd = end
		}
	}
}

// WithErasedWord sets the value erased words read back as.
func WithErasedWord(word uint16) Option {
	return func(c *Config) {
		c.ErasedWord = word
	}
}

// WithPageSize sets the page size in bytes.
func WithPageSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.PageSize = size
		}
	}
}

// WithHandshakeAck sets the marker sent for an accepted handshake.
func WithHandshakeAck(ack protocol.Marker) Option {
	return func(c *Config) {
		c.HandshakeAck = ack
	}
}

// WithPageAck sets the byte sent after each page.
func WithPageAck(b byte) Option {
	return func(c *Config) {
		c.PageAck = b
	}
}

// WithSilentHandshake makes the device never answer the handshake.
func WithSilentHandshake() Option {
	return func(c *Config) {
		c.SilentHandshake = true
	}
}

// WithBootBanner queues the boot-entry marker at power-up.
func WithBootBanner() Option {
	return func(c *Config) {
		c.BootBanner = true
	}
}

// WithCorruptByte inverts the byte at addr in the read-out.
func WithCorruptByte(addr uint32) Option {
	return func(c *Config) {
		c.CorruptAddresses = append(c.CorruptAddresses, addr)
	}
}

// WithReadoutLimit stops the read-out after n bytes, as a device that
// resets mid-transfer would.
func WithReadoutLimit(n int) Option {
	return func(c *Config) {
		c.ReadoutLimit = n
	}
}

// WithWriteError makes every Write fail with err.
func WithWriteError(err error) Option {
	return func(c *Config) {
		c.WriteErr = err
	}
}

// WithLatency delays every Write by d.
func WithLatency(d time.Duration) Option {
	return func(c *Config) {
		c.Latency = d
	}
}
