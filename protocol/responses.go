package protocol

// CheckAck compares a received byte against the marker an operation expects.
// Returns an *AckError on mismatch.
func CheckAck(operation string, got byte, want Marker) error {
	if Marker(got) != want {
		return &AckError{
			Operation: operation,
			Expected:  want,
			Actual:    Marker(got),
		}
	}
	return nil
}

// ReadAck reads one byte from s and checks it against want.
// A read timeout becomes a *TimeoutError, any other read failure a *StreamError.
func ReadAck(s Stream, operation string, want Marker) error {
	b, err := s.ReadByte()
	if err != nil {
		if IsTimeout(err) {
			return &TimeoutError{Operation: operation}
		}
		return &StreamError{Operation: operation, Err: err}
	}
	return CheckAck(operation, b, want)
}
