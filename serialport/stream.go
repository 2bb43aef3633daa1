package serialport

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/moffa90/go-picboot/protocol"
)

// DefaultPeekTimeout bounds how long Available waits for a byte.
const DefaultPeekTimeout = time.Millisecond

const lookAheadSize = 256

// Config holds the serial link settings.
type Config struct {
	// BaudRate is the UART speed; the bootloader uses 115200
	BaudRate int

	// ReadTimeout is the initial read timeout for ReadByte
	ReadTimeout time.Duration

	// PeekTimeout is how long Available waits for incoming bytes
	PeekTimeout time.Duration

	// Factory opens the port; nil uses DefaultPortFactory
	Factory PortFactory
}

// DefaultConfig returns the bootloader's link settings.
func DefaultConfig() Config {
	return Config{
		BaudRate:    protocol.DefaultBaudRate,
		ReadTimeout: protocol.DefaultReadTimeout,
		PeekTimeout: DefaultPeekTimeout,
		Factory:     DefaultPortFactory,
	}
}

// Mode returns the 8-N-1 serial mode for cfg.
func (c Config) Mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Stream is a protocol.Stream over a serial port.
type Stream struct {
	port        Port
	readTimeout time.Duration
	peekTimeout time.Duration
	applied     time.Duration
	lookAhead   []byte
}

var _ protocol.Stream = (*Stream)(nil)

// Open opens path with cfg and wraps it in a Stream.
func Open(path string, cfg Config) (*Stream, error) {
	if path == "" {
		return nil, errors.New("serial port path cannot be empty")
	}
	if cfg.BaudRate <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", cfg.BaudRate)
	}

	factory := cfg.Factory
	if factory == nil {
		factory = DefaultPortFactory
	}

	port, err := factory(path, cfg.Mode())
	if err != nil {
		return nil, err
	}

	s, err := NewStream(port, cfg)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return s, nil
}

// NewStream wraps an already open port and applies the read timeout.
func NewStream(port Port, cfg Config) (*Stream, error) {
	if port == nil {
		return nil, errors.New("port cannot be nil")
	}

	s := &Stream{
		port:        port,
		readTimeout: cfg.ReadTimeout,
		peekTimeout: cfg.PeekTimeout,
		applied:     -1,
	}
	if s.readTimeout <= 0 {
		s.readTimeout = protocol.DefaultReadTimeout
	}
	if s.peekTimeout <= 0 {
		s.peekTimeout = DefaultPeekTimeout
	}

	if err := s.apply(s.readTimeout); err != nil {
		return nil, err
	}
	return s, nil
}

// Write sends p to the device.
func (s *Stream) Write(p []byte) (int, error) {
	n, err := s.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("serial write: %w", err)
	}
	return n, nil
}

// ReadByte returns the next byte, waiting at most the read timeout.
func (s *Stream) ReadByte() (byte, error) {
	if len(s.lookAhead) > 0 {
		b := s.lookAhead[0]
		s.lookAhead = s.lookAhead[1:]
		return b, nil
	}

	if err := s.apply(s.readTimeout); err != nil {
		return 0, err
	}

	var buf [1]byte
	n, err := s.port.Read(buf[:])
	if err != nil {
		return 0, fmt.Errorf("serial read: %w", err)
	}
	if n == 0 {
		return 0, protocol.ErrTimeout
	}
	return buf[0], nil
}

// Available returns the number of bytes that ReadByte can return without
// waiting. When nothing is buffered it waits up to the peek timeout.
func (s *Stream) Available() (int, error) {
	if len(s.lookAhead) > 0 {
		return len(s.lookAhead), nil
	}

	if err := s.apply(s.peekTimeout); err != nil {
		return 0, err
	}

	buf := make([]byte, lookAheadSize)
	n, err := s.port.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("serial read: %w", err)
	}
	s.lookAhead = buf[:n]
	return n, nil
}

// DiscardInput drops everything received but not yet read.
func (s *Stream) DiscardInput() error {
	s.lookAhead = nil
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}
	return nil
}

// ReadTimeout returns the timeout used by ReadByte.
func (s *Stream) ReadTimeout() time.Duration {
	return s.readTimeout
}

// SetReadTimeout changes the timeout used by ReadByte.
func (s *Stream) SetReadTimeout(t time.Duration) error {
	if t <= 0 {
		return fmt.Errorf("read timeout must be positive, got %s", t)
	}
	s.readTimeout = t
	return s.apply(t)
}

// Close closes the port.
func (s *Stream) Close() error {
	return s.port.Close()
}

// apply sets the port timeout only when it differs from the last one set.
func (s *Stream) apply(t time.Duration) error {
	if t == s.applied {
		return nil
	}
	if err := s.port.SetReadTimeout(t); err != nil {
		s.applied = -1
		return fmt.Errorf("set read timeout: %w", err)
	}
	s.applied = t
	return nil
}
