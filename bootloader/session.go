package bootloader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moffa90/go-picboot/ihex"
	"github.com/moffa90/go-picboot/protocol"
)

// Session drives one firmware download over a byte stream.
// It walks Idle → Initiating → Erasing → Writing → Verifying → Complete,
// dropping to Failed on the first error. There are no retries; a failed
// session is discarded and a new one created after resetting the device.
//
// Session is not safe for concurrent use.
type Session struct {
	stream  protocol.Stream
	config  Config
	state   State
	started time.Time
}

// New creates a new Session on stream with the given options.
//
// Example:
//
//	stream, _ := serialport.Open("/dev/ttyUSB0", serialport.DefaultConfig())
//	sess := bootloader.New(stream,
//	    bootloader.WithProgressCallback(progressFunc),
//	    bootloader.WithReadTimeout(2*time.Second),
//	)
func New(stream protocol.Stream, opts ...Option) *Session {
	if stream == nil {
		panic("stream cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		stream: stream,
		config: cfg,
		state:  StateIdle,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state
}

// Download performs the complete sequence:
//  1. Initiate the handshake
//  2. Wait for the erase to finish
//  3. Send every page of the image
//  4. Verify the read-out against the image
//
// The image should already be cropped and filled to the application area;
// see profile.Profile.Prepare.
//
// Example:
//
//	img, _ := ihex.Load("app.hex", true)
//	profile.Default().Prepare(img)
//	err := sess.Download(context.Background(), img)
func (s *Session) Download(ctx context.Context, img *ihex.Image) error {
	ok, err := s.Initiate(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAcknowledged
	}

	if err := s.WaitForEraseCompletion(ctx); err != nil {
		return err
	}

	if err := s.SendImage(ctx, img); err != nil {
		return err
	}

	if err := s.Verify(ctx, img); err != nil {
		return err
	}

	s.logInfo("download complete",
		"bytes", img.Len(),
		"elapsed", s.elapsed().String(),
	)
	return nil
}

// Initiate discards stale input, sends the handshake and waits briefly for
// the acknowledgment. It returns true when the device acknowledged and is
// now erasing. A silent or wrong answer returns false with a nil error and
// leaves the session Failed; only a failing stream returns an error.
//
// The read timeout is lowered to the handshake timeout for the single
// acknowledgment read and the stream's prior timeout is restored afterwards,
// whatever the outcome.
func (s *Session) Initiate(ctx context.Context) (bool, error) {
	const op = "initiate"
	if err := s.require(op, StateIdle); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, s.fail(op, fmt.Errorf("cancelled: %w", err))
	}

	s.started = s.config.Clock.Now()
	s.setState(StateInitiating)

	if err := s.stream.DiscardInput(); err != nil {
		return false, s.fail(op, &protocol.StreamError{Operation: "discard input", Err: err})
	}

	if _, err := s.stream.Write(protocol.BuildHandshake()); err != nil {
		return false, s.fail(op, &protocol.StreamError{Operation: "write handshake", Err: err})
	}

	prior := s.stream.ReadTimeout()
	if err := s.stream.SetReadTimeout(s.config.HandshakeTimeout); err != nil {
		return false, s.fail(op, &protocol.StreamError{Operation: "set handshake timeout", Err: err})
	}
	b, readErr := s.stream.ReadByte()
	if err := s.stream.SetReadTimeout(prior); err != nil {
		return false, s.fail(op, &protocol.StreamError{Operation: "restore read timeout", Err: err})
	}

	if readErr != nil {
		s.logDebug("handshake not acknowledged", "error", readErr)
		s.setState(StateFailed)
		return false, nil
	}
	if protocol.Marker(b) != s.config.HandshakeAck {
		s.logDebug("handshake not acknowledged",
			"expected", s.config.HandshakeAck.String(),
			"got", protocol.Marker(b).String(),
		)
		s.setState(StateFailed)
		return false, nil
	}

	s.logDebug("handshake acknowledged")
	s.setState(StateErasing)
	return true, nil
}

// WaitForEraseCompletion blocks for one marker byte signalling that the
// application area is erased. A timeout set with WithReadTimeout is applied
// to the stream first and stays in effect for the rest of the session.
func (s *Session) WaitForEraseCompletion(ctx context.Context) error {
	const op = "wait for erase completion"
	if err := s.require(op, StateErasing); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return s.fail(op, fmt.Errorf("cancelled: %w", err))
	}

	if t := s.config.ReadTimeout; t > 0 && t != s.stream.ReadTimeout() {
		if err := s.stream.SetReadTimeout(t); err != nil {
			return s.fail(op, &protocol.StreamError{Operation: "set read timeout", Err: err})
		}
	}

	if err := protocol.ReadAck(s.stream, "erase", protocol.MarkerEraseComplete); err != nil {
		return s.fail(op, err)
	}

	s.logDebug("erase complete")
	s.setState(StateWriting)
	return nil
}

// SendImage writes the image page by page from its lowest address through
// its highest, waiting for an acknowledgment after each page. Every address
// covered by a page must be defined in the image. Pages already written
// stay written if a later page fails.
func (s *Session) SendImage(ctx context.Context, img *ihex.Image) error {
	const op = "send image"
	if err := s.require(op, StateWriting); err != nil {
		return err
	}
	if img == nil {
		return s.fail(op, errors.New("image cannot be nil"))
	}

	low, high, err := img.Bounds()
	if err != nil {
		return s.fail(op, err)
	}

	pageSize := uint64(s.config.PageSize)
	total := int(uint64(high) - uint64(low) + 1)
	sent := 0

	for addr := uint64(low); addr <= uint64(high); addr += pageSize {
		if err := ctx.Err(); err != nil {
			return s.fail(op, fmt.Errorf("cancelled: %w", err))
		}

		data, err := img.SubArray(uint32(addr), uint32(pageSize))
		if err != nil {
			return s.fail(op, fmt.Errorf("page 0x%04X: %w", addr, err))
		}

		page, err := protocol.BuildPage(data, s.config.PageSize)
		if err != nil {
			return s.fail(op, err)
		}

		pageOp := fmt.Sprintf("page 0x%04X", addr)
		if _, err := s.stream.Write(page); err != nil {
			return s.fail(op, &protocol.StreamError{Operation: pageOp, Err: err})
		}

		if err := protocol.ReadAck(s.stream, pageOp, protocol.MarkerPageAck); err != nil {
			return s.fail(op, err)
		}

		sent += len(page)
		s.reportProgress(Progress{
			Phase:            StateWriting,
			Address:          uint32(addr),
			MaxAddress:       high,
			BytesTransferred: sent,
			TotalBytes:       total,
			Percentage:       percentage(sent, total),
			ElapsedTime:      s.elapsed(),
		})
	}

	s.logDebug("image sent",
		"start", fmt.Sprintf("0x%04X", low),
		"end", fmt.Sprintf("0x%04X", high),
		"bytes", sent,
	)
	s.setState(StateVerifying)
	return nil
}

// Verify reads back the device's read-out and compares it with the image.
//
// The device announces the read-out with one marker byte, which is
// consumed and ignored, then streams highest-lowest+1 bytes. Bytes are
// collected as they become available. A device that stops sending is only
// abandoned when ctx is cancelled or the idle timeout set with
// WithVerifyIdleTimeout expires. The image is not modified.
func (s *Session) Verify(ctx context.Context, img *ihex.Image) error {
	const op = "verify"
	if err := s.require(op, StateVerifying); err != nil {
		return err
	}
	if img == nil {
		return s.fail(op, errors.New("image cannot be nil"))
	}

	low, high, err := img.Bounds()
	if err != nil {
		return s.fail(op, err)
	}
	length := int(uint64(high) - uint64(low) + 1)

	lead, err := s.stream.ReadByte()
	if err != nil {
		if protocol.IsTimeout(err) {
			return s.fail(op, &protocol.TimeoutError{Operation: "read-out start"})
		}
		return s.fail(op, &protocol.StreamError{Operation: "read-out start", Err: err})
	}
	if protocol.Marker(lead) != protocol.MarkerReadout {
		s.logDebug("unexpected read-out marker", "got", protocol.Marker(lead).String())
	}

	readout, err := s.collect(ctx, low, high)
	if err != nil {
		return s.fail(op, err)
	}

	for i, actual := range readout {
		addr := low + uint32(i)
		expected, ok := img.Get(addr)
		if !ok {
			return s.fail(op, &ihex.AddressError{Address: addr})
		}
		if expected != actual {
			return s.fail(op, &VerifyMismatchError{
				Address:  addr,
				Expected: expected,
				Actual:   actual,
			})
		}
	}

	s.logDebug("read-out matches image", "bytes", length)
	s.setState(StateComplete)
	return nil
}

// collect polls the stream until the read-out of [low, high] has been read.
func (s *Session) collect(ctx context.Context, low, high uint32) ([]byte, error) {
	clock := s.config.Clock
	length := int(uint64(high) - uint64(low) + 1)
	buf := make([]byte, 0, length)
	lastByte := clock.Now()

	for len(buf) < length {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled after %d of %d bytes: %w", len(buf), length, err)
		}

		n, err := s.stream.Available()
		if err != nil {
			return nil, &protocol.StreamError{Operation: "read-out", Err: err}
		}

		if n == 0 {
			if idle := s.config.VerifyIdleTimeout; idle > 0 && clock.Since(lastByte) >= idle {
				return nil, &protocol.TimeoutError{
					Operation: fmt.Sprintf("read-out after %d of %d bytes", len(buf), length),
				}
			}
			select {
			case <-ctx.Done():
			case <-clock.After(s.config.PollInterval):
			}
			continue
		}

		for i := 0; i < n && len(buf) < length; i++ {
			b, err := s.stream.ReadByte()
			if err != nil {
				return nil, &protocol.StreamError{Operation: "read-out", Err: err}
			}
			buf = append(buf, b)

			if len(buf)%protocol.VerifyProgressInterval == 0 {
				s.reportProgress(Progress{
					Phase:            StateVerifying,
					Address:          low + uint32(len(buf)-1),
					MaxAddress:       high,
					BytesTransferred: len(buf),
					TotalBytes:       length,
					Percentage:       percentage(len(buf), length),
					ElapsedTime:      s.elapsed(),
				})
			}
		}
		lastByte = clock.Now()
	}

	return buf, nil
}

// require returns a StateError when the session is not in want.
func (s *Session) require(op string, want State) error {
	if s.state != want {
		s.logError("operation out of order",
			"operation", op,
			"state", s.state.String(),
			"required", want.String(),
		)
		return &StateError{Operation: op, Current: s.state, Required: want}
	}
	return nil
}

// fail moves the session to Failed and returns err.
func (s *Session) fail(op string, err error) error {
	s.logError(op+" failed", "error", err)
	s.setState(StateFailed)
	return err
}

func (s *Session) setState(state State) {
	if s.state == state {
		return
	}
	s.state = state

	p := Progress{Phase: state, ElapsedTime: s.elapsed()}
	if state == StateComplete {
		p.Percentage = 100
	}
	s.reportProgress(p)
}

func (s *Session) elapsed() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	return s.config.Clock.Since(s.started)
}

func percentage(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	p := float64(done) / float64(total) * 100
	if p > 100 {
		p = 100
	}
	return p
}

// reportProgress calls the progress callback if configured.
func (s *Session) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
