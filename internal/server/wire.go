// Package server exposes battle sessions over websockets.
// Each connection is one attacker raiding one defender base; the hub
// assembles the battle from the catalog and layout library, and the
// client pumps translate between wire envelopes and session messages.
package server

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/baseraid/internal/battle"
	"github.com/vovakirdan/baseraid/internal/session"
)

// ProtocolVersion is bumped whenever the wire format changes shape.
const ProtocolVersion = 1

// Envelope is the versioned frame for every websocket message.
// Data is kept as RawMessage so handlers can defer deserialization to the
// concrete payload type.
type Envelope struct {
	V    int             `json:"v"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client to server message types.
const (
	TypeDeployUnit  = "deploy_unit"
	TypeStartBattle = "start_battle"
	TypeEndBattle   = "end_battle"
)

// Server to client message types.
const (
	TypeState = "state"
	TypeError = "error"
)

// ErrorCodeBadRequest flags envelopes the server could not understand.
// Session-level rejections use the session package's own codes.
const ErrorCodeBadRequest session.ErrorCode = "bad_request"

// DeployUnitPayload asks for one unit at a battlefield position.
type DeployUnitPayload struct {
	Kind string  `json:"kind"`
	Row  float64 `json:"row"`
	Col  float64 `json:"col"`
}

// StatePayload is the authoritative battle state pushed to the client.
type StatePayload struct {
	Seq            uint64          `json:"seq"`
	Phase          string          `json:"phase"`
	TicksRemaining uint64          `json:"ticksRemaining"`
	Troops         map[string]int  `json:"troops"`
	Snapshot       battle.Snapshot `json:"snapshot"`
	Outcome        *OutcomePayload `json:"outcome,omitempty"`
}

// OutcomePayload is the final accounting, present only on the last state.
type OutcomePayload struct {
	Reason             string           `json:"reason"`
	DestructionPercent int              `json:"destructionPercent"`
	Stars              int              `json:"stars"`
	Loot               battle.Resources `json:"loot"`
	Ticks              uint64           `json:"ticks"`
}

// ErrorPayload reports a rejected command.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEnvelope wraps a payload in a versioned envelope.
func NewEnvelope(msgType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal data: %w", err)
	}
	return Envelope{V: ProtocolVersion, Type: msgType, Data: raw}, nil
}

// DecodeEnvelope parses and version-checks a raw websocket frame.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.V != ProtocolVersion {
		return Envelope{}, fmt.Errorf("unsupported protocol version %d, want %d", env.V, ProtocolVersion)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("envelope missing type")
	}
	return env, nil
}

// DecodeCommand converts a client envelope into a session command.
func DecodeCommand(env Envelope) (session.Command, error) {
	switch env.Type {
	case TypeDeployUnit:
		var p DeployUnitPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		return session.DeployUnitCmd{Kind: p.Kind, Row: p.Row, Col: p.Col}, nil
	case TypeStartBattle:
		return session.StartBattleCmd{}, nil
	case TypeEndBattle:
		return session.EndBattleCmd{}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
}

// EncodeEvent converts a session event into its wire envelope.
func EncodeEvent(evt session.Event) (Envelope, error) {
	switch e := evt.(type) {
	case session.StateEvent:
		payload := StatePayload{
			Seq:            e.Seq,
			Phase:          e.Phase.String(),
			TicksRemaining: e.TicksRemaining,
			Troops:         e.Troops,
			Snapshot:       e.Snapshot,
		}
		if e.Outcome != nil {
			payload.Outcome = &OutcomePayload{
				Reason:             e.Outcome.Reason.String(),
				DestructionPercent: e.Outcome.Result.DestructionPercent,
				Stars:              e.Outcome.Result.Stars,
				Loot:               e.Outcome.Result.Loot,
				Ticks:              e.Outcome.Result.Ticks,
			}
		}
		return NewEnvelope(TypeState, payload)
	case session.ErrorEvent:
		return NewEnvelope(TypeError, ErrorPayload{Code: string(e.Code), Message: e.Message})
	default:
		return Envelope{}, fmt.Errorf("unknown event type %T", evt)
	}
}
