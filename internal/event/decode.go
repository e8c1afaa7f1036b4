package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mathrelay/client/internal/engine"
)

// ErrUnknownEvent marks an event name this client has no handler for. The
// dispatcher drops those silently so newer servers stay compatible.
var ErrUnknownEvent = errors.New("unknown event")

// ErrMalformedEvent marks a payload missing a field the handler cannot
// default. Malformed events are dropped and logged, never fatal.
var ErrMalformedEvent = errors.New("malformed event payload")

// Decode validates and normalizes one named event payload into a typed
// record. Optional fields default defensively inside the engine handlers;
// only fields a handler cannot proceed without are required here.
func Decode(name string, data []byte) (engine.Event, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}

	switch name {
	case engine.EvtMatchState:
		var e engine.FullState
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.MatchID == "" {
			return nil, malformed(name, "matchId")
		}
		if e.Team1 == nil || e.Team2 == nil {
			return nil, malformed(name, "team1/team2")
		}
		return e, nil

	case engine.EvtPreMatchCountdown, engine.EvtRoundCountdown:
		var e engine.CountdownStart
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		e.Name = name
		return e, nil

	case engine.EvtPreMatchCountdownTick, engine.EvtStrategyTimeUpdate,
		engine.EvtBreakTimeUpdate, engine.EvtHalftimeTimeUpdate,
		engine.EvtRoundCountdownTick, engine.EvtTimeoutWarning,
		engine.EvtHandoffCountdown:
		var aux struct {
			RemainingMs int64 `json:"remainingMs"`
			DurationMs  int64 `json:"durationMs"`
		}
		if err := unmarshal(name, data, &aux); err != nil {
			return nil, err
		}
		ms := aux.RemainingMs
		if ms == 0 {
			ms = aux.DurationMs
		}
		return engine.TimeUpdate{Name: name, RemainingMs: ms}, nil

	case engine.EvtStrategyPhaseStart:
		var e engine.StrategyPhaseStart
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		return e, nil

	case engine.EvtSlotAssignments, engine.EvtOpponentSlots:
		var e engine.SlotsUpdated
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		e.Name = name
		return e, nil

	case engine.EvtTeamReady:
		var e engine.TeamReady
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.TeamID == "" {
			return nil, malformed(name, "teamId")
		}
		return e, nil

	case engine.EvtMatchStart, engine.EvtRoundStart:
		var e engine.RoundStart
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.Team1ActivePlayerID == "" || e.Team2ActivePlayerID == "" {
			return nil, malformed(name, "team1ActivePlayerId/team2ActivePlayerId")
		}
		e.Name = name
		return e, nil

	case engine.EvtQuestionUpdate, engine.EvtNewQuestion:
		var e engine.QuestionUpdate
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.UserID == "" || e.Question == nil {
			return nil, malformed(name, "userId/question")
		}
		e.Name = name
		return e, nil

	case engine.EvtTypingUpdate:
		var e engine.TypingEcho
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.UserID == "" {
			return nil, malformed(name, "userId")
		}
		return e, nil

	case engine.EvtAnswerResult, engine.EvtTeammateAnswer:
		var e engine.AnswerResult
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.UserID == "" {
			return nil, malformed(name, "userId")
		}
		e.Name = name
		return e, nil

	case engine.EvtQuestionTimeout, engine.EvtTeammateTimeout:
		var e engine.QuestionTimeoutEvt
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.UserID == "" {
			return nil, malformed(name, "userId")
		}
		e.Name = name
		return e, nil

	case engine.EvtFirstToFinishBonus:
		var e engine.FirstToFinishBonus
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.TeamID == "" {
			return nil, malformed(name, "teamId")
		}
		return e, nil

	case engine.EvtSoloDecisionPhase:
		var e engine.SoloDecisionPhase
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		return e, nil

	case engine.EvtSoloDecisionMade:
		var e engine.SoloDecisionMade
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.TeamID == "" {
			return nil, malformed(name, "teamId")
		}
		return e, nil

	case engine.EvtSoloDecisionsRevealed:
		var e engine.SoloDecisionsRevealed
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		return e, nil

	case engine.EvtSlotChange, engine.EvtOpponentSlotChange:
		var e engine.SlotChange
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.TeamID == "" {
			return nil, malformed(name, "teamId")
		}
		if e.ActivePlayerID == "" {
			return nil, malformed(name, "activePlayerId")
		}
		e.Name = name
		return e, nil

	case engine.EvtRoundComplete:
		var e engine.RoundComplete
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.TeamID == "" {
			return nil, malformed(name, "teamId")
		}
		return e, nil

	case engine.EvtRoundBreak, engine.EvtHalftime:
		var e engine.BreakStart
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		e.Name = name
		return e, nil

	case engine.EvtTimeoutCalled:
		var e engine.TimeoutCalled
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		return e, nil

	case engine.EvtTeamReadyForNext:
		var e engine.TeamReadyForNext
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.TeamID == "" {
			return nil, malformed(name, "teamId")
		}
		return e, nil

	case engine.EvtDoubleCallinActivated, engine.EvtDoubleCallinSuccess:
		var e engine.DoubleCallin
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		e.Name = name
		return e, nil

	case engine.EvtClockUpdate:
		var e engine.ClockUpdate
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		return e, nil

	case engine.EvtMatchEnd:
		var e engine.MatchEnd
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		return e, nil

	case engine.EvtQuitVoteStarted:
		var e engine.QuitVoteStarted
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.InitiatorID == "" {
			return nil, malformed(name, "initiatorId")
		}
		return e, nil

	case engine.EvtQuitVoteUpdate:
		var e engine.QuitVoteUpdate
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.UserID == "" || e.Vote == "" {
			return nil, malformed(name, "userId/vote")
		}
		return e, nil

	case engine.EvtQuitVoteResult:
		var e engine.QuitVoteResult
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.Result != "quit" && e.Result != "stay" {
			return nil, malformed(name, "result")
		}
		return e, nil

	case engine.EvtTeamForfeit:
		var e engine.TeamForfeit
		if err := unmarshal(name, data, &e); err != nil {
			return nil, err
		}
		if e.TeamID == "" {
			return nil, malformed(name, "teamId")
		}
		return e, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
}

func unmarshal(name string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedEvent, name, err)
	}
	return nil
}

func malformed(name, field string) error {
	return fmt.Errorf("%w: %s missing %s", ErrMalformedEvent, name, field)
}
