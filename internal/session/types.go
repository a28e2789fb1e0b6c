// Package session runs a single authoritative raid battle.
// One goroutine owns the simulation: it processes attacker commands,
// advances fixed ticks, and broadcasts state, so simulation state is
// never touched concurrently.
package session

// BattleID uniquely identifies a battle session.
type BattleID string

// Phase tracks where a battle is in its lifecycle.
// Phases only move forward: setup, running, ended.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseRunning
	PhaseEnded
)

// String returns the wire name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EndReason describes why a battle ended.
type EndReason int

const (
	// EndReasonBaseDestroyed means every defender building was destroyed.
	EndReasonBaseDestroyed EndReason = iota

	// EndReasonNoUnits means no attacking unit remained able to act.
	EndReasonNoUnits

	// EndReasonTimeout means the tick budget ran out.
	EndReasonTimeout

	// EndReasonStopped means the attacker ended the battle explicitly.
	EndReasonStopped

	// EndReasonDisconnect means the attacker's connection went away.
	EndReasonDisconnect
)

// String returns the stable token used on the wire and in storage.
func (r EndReason) String() string {
	switch r {
	case EndReasonBaseDestroyed:
		return "base_destroyed"
	case EndReasonNoUnits:
		return "no_units"
	case EndReasonTimeout:
		return "timeout"
	case EndReasonStopped:
		return "stopped"
	case EndReasonDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// ErrorCode is a stable machine-readable code for command rejections.
type ErrorCode string

const (
	ErrorCodeWrongPhase      ErrorCode = "wrong_phase"
	ErrorCodeUnknownUnit     ErrorCode = "unknown_unit"
	ErrorCodeTroopsExhausted ErrorCode = "troops_exhausted"
	ErrorCodeInvalidPosition ErrorCode = "invalid_position"
	ErrorCodeNoUnitsDeployed ErrorCode = "no_units_deployed"
)
