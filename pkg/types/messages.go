package types

import "encoding/json"

// Server -> Client envelope. Every frame on the channel is a named event
// plus an event-specific JSON payload. Unknown event names are ignored by
// the engine for forward compatibility.
type ServerEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client -> Server envelope.
type ClientCommand struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Outbound command payloads. Field names are the wire contract with the
// authoritative match server; optional fields carry omitempty.

type JoinTeamMatch struct {
	MatchID string `json:"matchId"`
	UserID  string `json:"userId"`
	PartyID string `json:"partyId,omitempty"`
}

type SubmitAnswer struct {
	MatchID string `json:"matchId"`
	UserID  string `json:"userId"`
	Answer  string `json:"answer"`
}

type TypingUpdate struct {
	MatchID      string `json:"matchId"`
	UserID       string `json:"userId"`
	CurrentInput string `json:"currentInput"`
}

type UpdateSlotAssignment struct {
	MatchID  string `json:"matchId"`
	UserID   string `json:"userId"`
	PlayerID string `json:"playerId"`
	NewSlot  string `json:"newSlot"`
}

type ConfirmSlots struct {
	MatchID string `json:"matchId"`
	UserID  string `json:"userId"`
}

type AnchorCallin struct {
	MatchID     string `json:"matchId"`
	UserID      string `json:"userId"`
	TargetRound int    `json:"targetRound"`
	TargetSlot  int    `json:"targetSlot"`
	Half        int    `json:"half"`
}

type AnchorSolo struct {
	MatchID string `json:"matchId"`
}

type AnchorSoloDecision struct {
	MatchID  string `json:"matchId"`
	UserID   string `json:"userId"`
	Decision string `json:"decision"` // "solo" | "relay"
}

type IGLTimeout struct {
	MatchID string `json:"matchId"`
	UserID  string `json:"userId"`
}

type InitiateQuitVote struct {
	MatchID string `json:"matchId"`
}

type CastQuitVote struct {
	MatchID string `json:"matchId"`
	Vote    string `json:"vote"` // "yes" = quit, "no" = stay
}

type LeaveMatch struct {
	MatchID string `json:"matchId"`
}
