package session

import "github.com/vovakirdan/baseraid/internal/battle"

// Event represents a message sent from the session to its participant.
type Event interface {
	event()
}

// Outcome is the final accounting of a finished battle.
type Outcome struct {
	Result battle.Result
	Reason EndReason
}

// StateEvent carries the authoritative battle state.
// Seq increases by one per event so clients can drop stale frames.
// Outcome is nil until the battle ends.
type StateEvent struct {
	Seq            uint64
	Phase          Phase
	Snapshot       battle.Snapshot
	TicksRemaining uint64
	Troops         map[string]int
	Outcome        *Outcome
}

func (StateEvent) event() {}

// ErrorEvent reports a rejected command. The session keeps running and
// state is unchanged.
type ErrorEvent struct {
	Code    ErrorCode
	Message string
}

func (ErrorEvent) event() {}
