package model

import "fmt"

// StateKind is the coarse lifecycle position of the player
type StateKind int

const (
	StateDisconnected StateKind = iota
	StateRegistration
	StateIdle
	StateSearching
	StatePlaying
)

// Server-reported state codes
const (
	CodeRegistration uint64 = 0
	CodeIdle         uint64 = 1
	CodeSearching    uint64 = 2
	CodePlaying      uint64 = 3
)

func (k StateKind) String() string {
	switch k {
	case StateDisconnected:
		return "disconnected"
	case StateRegistration:
		return "registration"
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StatePlaying:
		return "playing"
	default:
		return fmt.Sprintf("StateKind(%d)", int(k))
	}
}

// State is the locally tracked session state.
// Reason is only set when Kind is StateDisconnected.
type State struct {
	Kind   StateKind
	Reason string
}

// Convenience values for the states that carry no data
var (
	Registration = State{Kind: StateRegistration}
	Idle         = State{Kind: StateIdle}
	Searching    = State{Kind: StateSearching}
	Playing      = State{Kind: StatePlaying}
)

// Disconnected builds the synthetic state used for codes the client does not know
func Disconnected(reason string) State {
	return State{Kind: StateDisconnected, Reason: reason}
}

// IsDisconnected reports whether the state is the synthetic disconnected state
func (s State) IsDisconnected() bool {
	return s.Kind == StateDisconnected
}

func (s State) String() string {
	if s.Kind == StateDisconnected {
		return fmt.Sprintf("disconnected (%s)", s.Reason)
	}
	return s.Kind.String()
}

// StateFromCode maps a server state code to a State
func StateFromCode(code uint64) State {
	switch code {
	case CodeRegistration:
		return Registration
	case CodeIdle:
		return Idle
	case CodeSearching:
		return Searching
	case CodePlaying:
		return Playing
	default:
		return Disconnected(fmt.Sprintf("unknown state id %d", code))
	}
}
