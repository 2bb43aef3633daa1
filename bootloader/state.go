package bootloader

import "fmt"

// State is the position of a Session in the download sequence.
type State int

const (
	// StateIdle is the initial state; only Initiate is allowed
	StateIdle State = iota

	// StateInitiating is held while the handshake is exchanged
	StateInitiating

	// StateErasing means the device acknowledged and is erasing the application area
	StateErasing

	// StateWriting means erase completed and pages may be sent
	StateWriting

	// StateVerifying means every page was acknowledged and the read-out is expected
	StateVerifying

	// StateComplete means the read-out matched the image
	StateComplete

	// StateFailed is terminal; a new Session is needed to retry
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateInitiating: "initiating",
	StateErasing:    "erasing",
	StateWriting:    "writing",
	StateVerifying:  "verifying",
	StateComplete:   "complete",
	StateFailed:     "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further operation is possible in s.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}
