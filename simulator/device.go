package simulator

import (
	"errors"
	"sync"
	"time"

	"github.com/moffa90/go-picboot/ihex"
	"github.com/moffa90/go-picboot/protocol"
)

// ErrClosed is returned by every operation on a closed Device.
var ErrClosed = errors.New("simulator: device closed")

type phase int

const (
	phaseBoot phase = iota
	phaseProgramming
	phaseDone
)

// Device is an in-memory bootloader.
type Device struct {
	mu sync.Mutex

	config  Config
	phase   phase
	window  [4]byte
	flash   []byte
	pending []byte
	next    uint32
	tx      []byte
	rx      []byte
	timeout time.Duration
	closed  bool
}

// New creates a powered-up Device waiting for the handshake.
func New(opts ...Option) *Device {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Device{
		config:  cfg,
		flash:   make([]byte, cfg.AppEnd-cfg.AppStart),
		timeout: protocol.DefaultReadTimeout,
	}
	d.erase()
	if cfg.BootBanner {
		d.tx = append(d.tx, byte(protocol.MarkerBootEntry))
	}
	return d
}

// Write feeds host bytes into the bootloader.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	if d.config.WriteErr != nil {
		return 0, d.config.WriteErr
	}
	if d.config.Latency > 0 {
		time.Sleep(d.config.Latency)
	}

	d.rx = append(d.rx, p...)
	for _, b := range p {
		d.receive(b)
	}
	return len(p), nil
}

func (d *Device) receive(b byte) {
	switch d.phase {
	case phaseBoot:
		copy(d.window[:], d.window[1:])
		d.window[3] = b
		if d.window != protocol.HandshakeSequence || d.config.SilentHandshake {
			return
		}
		d.tx = append(d.tx, byte(d.config.HandshakeAck))
		d.erase()
		d.tx = append(d.tx, byte(protocol.MarkerEraseComplete))
		d.next = d.config.AppStart
		d.pending = d.pending[:0]
		d.phase = phaseProgramming

	case phaseProgramming:
		d.pending = append(d.pending, b)
		if len(d.pending) < d.config.PageSize {
			return
		}
		d.program(d.pending)
		d.pending = d.pending[:0]
		d.tx = append(d.tx, d.config.PageAck)

		if d.next >= d.config.AppEnd {
			d.tx = append(d.tx, byte(protocol.MarkerReadout))
			d.tx = append(d.tx, d.readout()...)
			d.phase = phaseDone
		}

	case phaseDone:
		// bytes after the read-out are ignored until reset
	}
}

func (d *Device) program(page []byte) {
	for _, b := range page {
		if d.next >= d.config.AppEnd {
			return
		}
		d.flash[d.next-d.config.AppStart] = b
		d.next++
	}
}

func (d *Device) readout() []byte {
	out := make([]byte, len(d.flash))
	copy(out, d.flash)
	for _, addr := range d.config.CorruptAddresses {
		if addr >= d.config.AppStart && addr < d.config.AppEnd {
			out[addr-d.config.AppStart] ^= 0xFF
		}
	}
	if limit := d.config.ReadoutLimit; limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (d *Device) erase() {
	for i := range d.flash {
		if i%2 == 0 {
			d.flash[i] = byte(d.config.ErasedWord)
		} else {
			d.flash[i] = byte(d.config.ErasedWord >> 8)
		}
	}
}

// ReadByte pops the next queued response byte or returns protocol.ErrTimeout.
func (d *Device) ReadByte() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	if len(d.tx) == 0 {
		return 0, protocol.ErrTimeout
	}
	b := d.tx[0]
	d.tx = d.tx[1:]
	return b, nil
}

// Available returns the number of queued response bytes.
func (d *Device) Available() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	return len(d.tx), nil
}

// DiscardInput drops every queued response byte.
func (d *Device) DiscardInput() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	d.tx = nil
	return nil
}

// ReadTimeout returns the last timeout set.
func (d *Device) ReadTimeout() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timeout
}

// SetReadTimeout records t. Reads never wait, so it only matters to callers
// that check it was restored.
func (d *Device) SetReadTimeout(t time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	d.timeout = t
	return nil
}

// Close disconnects the device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Flash returns a copy of the application area as programmed.
func (d *Device) Flash() *ihex.Image {
	d.mu.Lock()
	defer d.mu.Unlock()

	img := ihex.New()
	for i, b := range d.flash {
		img.Set(d.config.AppStart+uint32(i), b)
	}
	return img
}

// Received returns every byte the host has written.
func (d *Device) Received() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]byte, len(d.rx))
	copy(out, d.rx)
	return out
}

// PagesWritten returns the number of complete pages programmed since the handshake.
func (d *Device) PagesWritten() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase == phaseBoot {
		return 0
	}
	return int(d.next-d.config.AppStart) / d.config.PageSize
}
