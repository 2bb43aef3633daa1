package bootloader

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/moffa90/go-picboot/protocol"
)

// Config holds the session configuration.
type Config struct {
	// ProgressCallback is called during the download to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// ReadTimeout, when set, replaces the stream's read timeout from the
	// erase wait on. Zero keeps whatever the stream is configured with.
	ReadTimeout time.Duration

	// HandshakeTimeout is the shortened read timeout while waiting for the handshake ack
	HandshakeTimeout time.Duration

	// PageSize is the number of bytes sent per page
	PageSize int

	// HandshakeAck is the marker that acknowledges the handshake
	HandshakeAck protocol.Marker

	// VerifyIdleTimeout aborts Verify when no read-out byte arrives for this
	// long. Zero waits forever; cancel the context instead.
	VerifyIdleTimeout time.Duration

	// PollInterval is the pause between empty Available checks during Verify
	PollInterval time.Duration

	// Clock drives elapsed time, polling and the idle timeout
	Clock clockwork.Clock
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		HandshakeTimeout: protocol.HandshakeTimeout,
		PageSize:         protocol.DefaultPageSize,
		HandshakeAck:     protocol.MarkerHandshakeAck,
		PollInterval:     time.Millisecond,
		Clock:            clockwork.NewRealClock(),
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithProgressCallback sets a callback function to track download progress.
//
// Example:
//
//	sess := bootloader.New(stream,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the session operations.
//
// Example:
//
//	sess := bootloader.New(stream, bootloader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithReadTimeout sets the read timeout for erase, page acks and read-out.
//
// Example:
//
//	sess := bootloader.New(stream, bootloader.WithReadTimeout(5*time.Second))
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}

// WithHandshakeTimeout sets the read timeout used while waiting for the handshake ack.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.HandshakeTimeout = timeout
		}
	}
}

// WithPageSize sets the number of bytes per page.
// Sizes that are odd, zero or above protocol.MaxPageSize are ignored.
//
// Example:
//
//	sess := bootloader.New(stream, bootloader.WithPageSize(32))
func WithPageSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= protocol.MaxPageSize && size%2 == 0 {
			c.PageSize = size
		}
	}
}

// WithHandshakeAck sets the marker expected after the handshake.
// Older firmware builds answer with protocol.MarkerHandshakeAckAlt.
func WithHandshakeAck(ack protocol.Marker) Option {
	return func(c *Config) {
		c.HandshakeAck = ack
	}
}

// WithVerifyIdleTimeout bounds how long Verify waits between read-out bytes.
//
// Example:
//
//	sess := bootloader.New(stream, bootloader.WithVerifyIdleTimeout(3*time.Second))
func WithVerifyIdleTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout >= 0 {
			c.VerifyIdleTimeout = timeout
		}
	}
}

// WithPollInterval sets the pause between empty Available checks during Verify.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval > 0 {
			c.PollInterval = interval
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
	}
}
