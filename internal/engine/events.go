package engine

// Wire names of every inbound event the engine understands. Names the
// decoder does not recognize are dropped silently for forward compatibility.
const (
	EvtMatchState            = "match_state"
	EvtPreMatchCountdown     = "pre_match_countdown_start"
	EvtPreMatchCountdownTick = "pre_match_countdown_tick"
	EvtStrategyPhaseStart    = "strategy_phase_start"
	EvtStrategyTimeUpdate    = "strategy_time_update"
	EvtSlotAssignments       = "slot_assignments_updated"
	EvtOpponentSlots         = "opponent_slots_updated"
	EvtTeamReady             = "team_ready"
	EvtMatchStart            = "match_start"
	EvtQuestionUpdate        = "question_update"
	EvtNewQuestion           = "new_question"
	EvtTypingUpdate          = "typing_update"
	EvtAnswerResult          = "answer_result"
	EvtTeammateAnswer        = "teammate_answer"
	EvtTimeoutWarning        = "timeout_warning"
	EvtQuestionTimeout       = "question_timeout"
	EvtTeammateTimeout       = "teammate_timeout"
	EvtFirstToFinishBonus    = "first_to_finish_bonus"
	EvtSoloDecisionPhase     = "solo_decision_phase"
	EvtSoloDecisionMade      = "solo_decision_made"
	EvtSoloDecisionsRevealed = "solo_decisions_revealed"
	EvtSlotChange            = "slot_change"
	EvtOpponentSlotChange    = "opponent_slot_change"
	EvtHandoffCountdown      = "handoff_countdown"
	EvtRoundComplete         = "round_complete"
	EvtRoundBreak            = "round_break"
	EvtBreakTimeUpdate       = "break_time_update"
	EvtTimeoutCalled         = "timeout_called"
	EvtHalftime              = "halftime"
	EvtHalftimeTimeUpdate    = "halftime_time_update"
	EvtTeamReadyForNext      = "team_ready_for_next"
	EvtDoubleCallinActivated = "double_callin_activated"
	EvtDoubleCallinSuccess   = "double_callin_success"
	EvtRoundCountdown        = "round_countdown"
	EvtRoundCountdownTick    = "round_countdown_tick"
	EvtRoundStart            = "round_start"
	EvtClockUpdate           = "clock_update"
	EvtMatchEnd              = "match_end"
	EvtQuitVoteStarted       = "quit_vote_started"
	EvtQuitVoteUpdate        = "quit_vote_update"
	EvtQuitVoteResult        = "quit_vote_result"
	EvtTeamForfeit           = "team_forfeit"
)

// Event is a decoded inbound event record. Optional wire fields are pointers
// so handlers can tell "absent" from zero and fall back to defensive
// defaults instead of clobbering state.
type Event interface {
	EventName() string
}

// FullState replaces the whole snapshot (subject to the terminal guard).
type FullState struct {
	MatchID        string         `json:"matchId"`
	Phase          Phase          `json:"phase"`
	Round          int            `json:"round"`
	Half           int            `json:"half"`
	GameClockMs    int64          `json:"gameClockMs"`
	RelayClockMs   int64          `json:"relayClockMs"`
	Team1          *TeamState     `json:"team1"`
	Team2          *TeamState     `json:"team2"`
	MyTeamID       string         `json:"isMyTeam"`
	Mode           string         `json:"mode"`
	SlotOperations []string       `json:"slotOperations"`
	Abilities      *AbilityLedger `json:"abilities"`
}

func (FullState) EventName() string { return EvtMatchState }

// CountdownStart begins a phase countdown; the wire carries seconds.
type CountdownStart struct {
	Name        string `json:"-"`
	DurationSec int    `json:"durationSec"`
	Round       int    `json:"round"`
}

func (e CountdownStart) EventName() string { return e.Name }

// TimeUpdate is an absolute remaining-time correction for the current
// countdown. The server value always wins over local interpolation.
type TimeUpdate struct {
	Name        string `json:"-"`
	RemainingMs int64  `json:"remainingMs"`
}

func (e TimeUpdate) EventName() string { return e.Name }

type StrategyPhaseStart struct {
	DurationSec   int                       `json:"durationSec"`
	MySlots       map[string]SlotAssignment `json:"mySlots"`
	OpponentSlots map[string]SlotAssignment `json:"opponentSlots"`
}

func (StrategyPhaseStart) EventName() string { return EvtStrategyPhaseStart }

// SlotsUpdated carries a (re)assignment of one side's strategy-phase slots.
type SlotsUpdated struct {
	Name  string                    `json:"-"`
	Slots map[string]SlotAssignment `json:"slots"`
}

func (e SlotsUpdated) EventName() string { return e.Name }

type TeamReady struct {
	TeamID string `json:"teamId"`
}

func (TeamReady) EventName() string { return EvtTeamReady }

// RoundStart begins live play; match_start and round_start share the shape.
type RoundStart struct {
	Name                string `json:"-"`
	Round               int    `json:"round"`
	Half                int    `json:"half"`
	Team1ActivePlayerID string `json:"team1ActivePlayerId"`
	Team2ActivePlayerID string `json:"team2ActivePlayerId"`
}

func (e RoundStart) EventName() string { return e.Name }

// QuestionUpdate delivers the active player's current question.
type QuestionUpdate struct {
	Name     string    `json:"-"`
	UserID   string    `json:"userId"`
	Question *Question `json:"question"`
}

func (e QuestionUpdate) EventName() string { return e.Name }

// TypingEcho mirrors a teammate's in-progress input for spectation.
type TypingEcho struct {
	UserID       string `json:"userId"`
	CurrentInput string `json:"currentInput"`
}

func (TypingEcho) EventName() string { return EvtTypingUpdate }

// AnswerResult applies the server's absolute post-answer values. Total and
// Correct are the only locally-incremented fields because the server does
// not echo them back.
type AnswerResult struct {
	Name            string `json:"-"`
	UserID          string `json:"userId"`
	TeamID          string `json:"teamId"`
	IsCorrect       bool   `json:"isCorrect"`
	NewTeamScore    *int   `json:"newTeamScore"`
	NewStreak       *int   `json:"newStreak"`
	NewPlayerScore  *int   `json:"newPlayerScore"`
	NewPlayerStreak *int   `json:"newPlayerStreak"`
	QuestionsInSlot *int   `json:"questionsInSlot"`
	AnswerTimeMs    int64  `json:"answerTimeMs"`
}

func (e AnswerResult) EventName() string { return e.Name }

// QuestionTimeoutEvt marks a question expiring unanswered.
type QuestionTimeoutEvt struct {
	Name            string `json:"-"`
	UserID          string `json:"userId"`
	TeamID          string `json:"teamId"`
	NewTeamScore    *int   `json:"newTeamScore"`
	NewStreak       *int   `json:"newStreak"`
	QuestionsInSlot *int   `json:"questionsInSlot"`
}

func (e QuestionTimeoutEvt) EventName() string { return e.Name }

type FirstToFinishBonus struct {
	TeamID       string `json:"teamId"`
	Bonus        int    `json:"bonus"`
	NewTeamScore *int   `json:"newTeamScore"`
}

func (FirstToFinishBonus) EventName() string { return EvtFirstToFinishBonus }

type SoloDecisionPhase struct {
	DurationSec int `json:"durationSec"`
}

func (SoloDecisionPhase) EventName() string { return EvtSoloDecisionPhase }

type SoloDecisionMade struct {
	TeamID string `json:"teamId"`
}

func (SoloDecisionMade) EventName() string { return EvtSoloDecisionMade }

type SoloDecisionsRevealed struct {
	Decisions map[string]string `json:"decisions"` // teamId -> "solo" | "relay"
}

func (SoloDecisionsRevealed) EventName() string { return EvtSoloDecisionsRevealed }

// SlotChange advances a team's relay to a new station. slot_change and
// opponent_slot_change share one mode-parameterized handler.
type SlotChange struct {
	Name           string `json:"-"`
	TeamID         string `json:"teamId"`
	NewSlot        int    `json:"newSlot"`
	ActivePlayerID string `json:"activePlayerId"`
}

func (e SlotChange) EventName() string { return e.Name }

type RoundComplete struct {
	TeamID string `json:"teamId"`
	Round  int    `json:"round"`
}

func (RoundComplete) EventName() string { return EvtRoundComplete }

// BreakStart covers round_break and halftime.
type BreakStart struct {
	Name        string `json:"-"`
	Round       int    `json:"round"`
	DurationSec int    `json:"durationSec"`
}

func (e BreakStart) EventName() string { return e.Name }

// TimeoutCalled confirms an IGL tactical timeout. RemainingTimeouts is the
// authoritative credit count when present; ActivationID dedupes duplicate
// deliveries when it is not.
type TimeoutCalled struct {
	TeamID             string `json:"teamId"`
	ByUserID           string `json:"byUserId"`
	ActivationID       string `json:"activationId"`
	RemainingTimeouts  *int   `json:"remainingTimeouts"`
	NewBreakDurationMs *int64 `json:"newBreakDurationMs"`
	ExtensionMs        int64  `json:"extensionMs"`
}

func (TimeoutCalled) EventName() string { return EvtTimeoutCalled }

type TeamReadyForNext struct {
	TeamID string `json:"teamId"`
}

func (TeamReadyForNext) EventName() string { return EvtTeamReadyForNext }

// DoubleCallin confirms a double call-in. Applying it twice must not extend
// a break twice, so an absolute NewBreakDurationMs always wins over the
// ExtensionMs fallback.
type DoubleCallin struct {
	Name               string `json:"-"`
	TeamID             string `json:"teamId"`
	Half               int    `json:"half"`
	TargetRound        int    `json:"targetRound"`
	TargetSlot         int    `json:"targetSlot"`
	NewBreakDurationMs *int64 `json:"newBreakDurationMs"`
	ExtensionMs        int64  `json:"extensionMs"`
}

func (e DoubleCallin) EventName() string { return e.Name }

type ClockUpdate struct {
	GameClockMs  *int64 `json:"gameClockMs"`
	RelayClockMs *int64 `json:"relayClockMs"`
}

func (ClockUpdate) EventName() string { return EvtClockUpdate }

type MatchEnd struct {
	WinnerTeamID  string `json:"winnerTeamId"`
	Forfeit       bool   `json:"forfeit"`
	ForfeitTeamID string `json:"forfeitTeamId"`
}

func (MatchEnd) EventName() string { return EvtMatchEnd }

type QuitVoteStarted struct {
	InitiatorID string `json:"initiatorId"`
	ExpiresAtMs int64  `json:"expiresAtMs"`
	DurationSec int    `json:"durationSec"`
}

func (QuitVoteStarted) EventName() string { return EvtQuitVoteStarted }

type QuitVoteUpdate struct {
	UserID string `json:"userId"`
	Vote   string `json:"vote"` // "yes" | "no"
}

func (QuitVoteUpdate) EventName() string { return EvtQuitVoteUpdate }

type QuitVoteResult struct {
	Result string            `json:"result"` // "quit" | "stay"
	Votes  map[string]string `json:"votes"`
}

func (QuitVoteResult) EventName() string { return EvtQuitVoteResult }

type TeamForfeit struct {
	TeamID string `json:"teamId"`
}

func (TeamForfeit) EventName() string { return EvtTeamForfeit }
