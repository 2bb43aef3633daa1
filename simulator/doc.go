// Package simulator provides an in-memory PIC bootloader for tests, examples
// and dry runs of the CLI.
//
// A Device implements protocol.Stream and behaves like the bootloader
// firmware: it waits for the handshake, erases the application area,
// programs every page it receives and streams the whole application area
// back once the last page is written. Responses are queued synchronously
// inside Write, so a session driving a Device never blocks.
//
// Faults are injected with options:
//
//	dev := simulator.New(
//	    simulator.WithCorruptByte(0x0400), // read-out differs at 0x0400
//	    simulator.WithPageAck('X'),        // pages answered with 'X'
//	)
package simulator
