// Package bootloader drives a firmware download to a PIC16F15214 serial bootloader.
//
// # Overview
//
// A Session walks the device through the download sequence:
//   - Initiate: send the handshake and wait briefly for the acknowledgment
//   - WaitForEraseCompletion: wait while the application area is erased
//   - SendImage: write the image one page at a time, each page acknowledged
//   - Verify: read back the whole image and compare it byte by byte
//
// Each step is only allowed in its state; calling one out of order returns
// a *StateError and leaves the session untouched. Any other failure moves
// the session to StateFailed. There are no retries: reset the device and
// start a new Session.
//
// # Basic Usage
//
//	stream, err := serialport.Open("/dev/ttyUSB0", serialport.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	img, err := ihex.Load("app.hex", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	profile.Default().Prepare(img)
//
//	sess := bootloader.New(stream)
//	if err := sess.Download(context.Background(), img); err != nil {
//	    log.Fatal(err)
//	}
//
// # Step by Step
//
// The steps can be driven individually, for example to retry the handshake
// while the user resets the board:
//
//	for {
//	    sess := bootloader.New(stream)
//	    ok, err := sess.Initiate(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    if ok {
//	        return finish(ctx, sess, img)
//	    }
//	    time.Sleep(500 * time.Millisecond)
//	}
//
// # Progress Tracking
//
//	sess := bootloader.New(stream,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
//
// # Verify Read-out
//
// The device streams the read-out without flow control, so Verify polls the
// stream and never gives up on its own by default. Bound it with a context
// or an idle timeout:
//
//	sess := bootloader.New(stream, bootloader.WithVerifyIdleTimeout(3*time.Second))
//
// # Error Handling
//
// The package provides structured error types:
//   - StateError: operation called in the wrong state (matches ErrInvalidState)
//   - VerifyMismatchError: read-out differs from the image, with the first address
//   - ErrNotAcknowledged: Download could not start because the handshake went unanswered
//   - protocol.TimeoutError, protocol.AckError, protocol.StreamError: device and transport failures
//   - ihex.AddressError: the image has a gap inside a page
//
// # Logging
//
// Integrate with any logging framework through the Logger interface; the
// internal/logging package adapts zerolog.
package bootloader
