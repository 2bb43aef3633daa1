// Package serialport adapts a go.bug.st/serial port to protocol.Stream.
//
// The bootloader UART runs at 115200 baud, 8 data bits, no parity, one stop
// bit. Open returns a Stream ready for a bootloader.Session:
//
//	stream, err := serialport.Open("/dev/ttyUSB0", serialport.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//
// go.bug.st/serial reports an expired read timeout as a zero-length read
// with a nil error; Stream turns that into protocol.ErrTimeout. The library
// has no way to ask how many bytes are waiting, so Available reads whatever
// arrives within a short peek timeout into a look-ahead buffer that later
// ReadByte calls drain first.
package serialport
