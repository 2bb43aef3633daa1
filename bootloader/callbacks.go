package bootloader

import "time"

// Progress contains information about the download progress.
// Passed to ProgressCallback on every state change, after every page and
// every protocol.VerifyProgressInterval bytes of read-out.
type Progress struct {
	// Phase is the session state the report belongs to
	Phase State

	// Address is the page address just acknowledged while writing, or the
	// last read-out address received while verifying
	Address uint32

	// MaxAddress is the highest address of the image
	MaxAddress uint32

	// BytesTransferred counts page bytes sent while writing and read-out
	// bytes received while verifying
	BytesTransferred int

	// TotalBytes is the number of bytes the current phase will transfer
	TotalBytes int

	// Percentage is the completion of the current phase (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since Initiate
	ElapsedTime time.Duration
}

// ProgressCallback is called synchronously from the session.
// Implementations should return quickly; the device keeps sending while
// the callback runs.
//
// Example:
//
//	sess := bootloader.New(stream,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s] %.1f%% 0x%04X/0x%04X\n",
//	            p.Phase, p.Percentage, p.Address, p.MaxAddress)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the session.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	sess := bootloader.New(stream, bootloader.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
