package model

import "fmt"

// EventKind identifies what happened to the session
type EventKind int

const (
	EventRegistered EventKind = iota
	EventSearchStarted
	EventIdled
	EventRequestSent
	EventStateReported
)

// Event is a successful operation outcome that may move the state machine.
// InGame is only meaningful for EventRequestSent, Code for EventStateReported.
type Event struct {
	Kind   EventKind
	InGame bool
	Code   uint64
}

// Registered is emitted by a successful register call
func Registered() Event { return Event{Kind: EventRegistered} }

// SearchStarted is emitted by a successful search call
func SearchStarted() Event { return Event{Kind: EventSearchStarted} }

// Idled is emitted by a successful idle call
func Idled() Event { return Event{Kind: EventIdled} }

// RequestSent is emitted by a successful send-request call
func RequestSent(inGame bool) Event { return Event{Kind: EventRequestSent, InGame: inGame} }

// StateReported is emitted by a successful state query
func StateReported(code uint64) Event { return Event{Kind: EventStateReported, Code: code} }

func (e Event) String() string {
	switch e.Kind {
	case EventRegistered:
		return "registered"
	case EventSearchStarted:
		return "search-started"
	case EventIdled:
		return "idled"
	case EventRequestSent:
		return fmt.Sprintf("request-sent(in_game=%t)", e.InGame)
	case EventStateReported:
		return fmt.Sprintf("state-reported(%d)", e.Code)
	default:
		return fmt.Sprintf("EventKind(%d)", int(e.Kind))
	}
}

// Transition is the only place the session state changes.
// No transition is terminal; a state report always overwrites.
func Transition(current State, ev Event) State {
	switch ev.Kind {
	case EventRegistered:
		return Idle
	case EventSearchStarted:
		return Searching
	case EventIdled:
		return Idle
	case EventRequestSent:
		if ev.InGame {
			return Playing
		}
		return current
	case EventStateReported:
		return StateFromCode(ev.Code)
	default:
		return current
	}
}
