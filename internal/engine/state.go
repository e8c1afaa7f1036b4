package engine

// MatchState is the canonical client-side snapshot of one relay match. It is
// created by the first full-state event from the server, patched in place by
// every later event, and frozen (no phase regression) once the match ends.
// All fields mirror server intent; the engine never invents scores or timers.
type MatchState struct {
	MatchID      string `json:"matchId"`
	Phase        Phase  `json:"phase"`
	Round        int    `json:"round"`
	Half         int    `json:"half"`
	GameClockMs  int64  `json:"gameClockMs"`
	RelayClockMs int64  `json:"relayClockMs"`

	Team1 *TeamState `json:"team1"`
	Team2 *TeamState `json:"team2"`

	// MyTeamID matches exactly one of Team1.TeamID / Team2.TeamID.
	MyTeamID string `json:"isMyTeam"`

	Mode           string   `json:"mode,omitempty"`           // "5v5" (default) or "2v2"
	SlotOperations []string `json:"slotOperations,omitempty"` // ordered relay stations this match

	// CountdownMs is the server-authoritative remaining time of whatever
	// countdown the current phase carries. Local tick loops interpolate it
	// for display but every *_time_update event overwrites it wholesale.
	CountdownMs int64 `json:"countdownMs,omitempty"`

	Strategy  *StrategyState `json:"strategy,omitempty"`
	QuitVote  *QuitVoteState `json:"quitVote,omitempty"`
	Abilities AbilityLedger  `json:"abilities"`

	WinnerTeamID  string `json:"winnerTeamId,omitempty"`
	ForfeitTeamID string `json:"forfeitTeamId,omitempty"`

	// Finalized shadows Phase == post_match and arms the stale-update guard.
	Finalized bool `json:"finalized"`
}

type TeamState struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	TeamTag  string `json:"teamTag"`
	LeaderID string `json:"leaderId"`

	Score         int `json:"score"`
	CurrentStreak int `json:"currentStreak"`

	// SlotAssignments maps operation name to player id, bijective per team.
	SlotAssignments map[string]string       `json:"slotAssignments"`
	Players         map[string]*PlayerState `json:"players"`

	CurrentSlot     int `json:"currentSlot"`     // 1-based index into SlotOperations
	QuestionsInSlot int `json:"questionsInSlot"` // 0..QuestionsPerSlot

	ReadyForNext     bool   `json:"readyForNext,omitempty"`
	SoloDecisionMade bool   `json:"soloDecisionMade,omitempty"`
	SoloDecision     string `json:"soloDecision,omitempty"` // "solo" | "relay", revealed only
}

type PlayerState struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`

	// Cosmetic references are opaque to the engine; the rendering layer
	// resolves them against the inventory service.
	Cosmetics map[string]string `json:"cosmetics,omitempty"`

	Slot string `json:"slot"` // assigned operation

	Score             int   `json:"score"`
	Correct           int   `json:"correct"`
	Total             int   `json:"total"`
	Streak            int   `json:"streak"`
	MaxStreak         int   `json:"maxStreak"`
	TotalAnswerTimeMs int64 `json:"totalAnswerTimeMs"`

	IsActive   bool `json:"isActive"`
	IsComplete bool `json:"isComplete"`
	IsIGL      bool `json:"isIgl"`
	IsAnchor   bool `json:"isAnchor"`

	CurrentQuestion *Question `json:"currentQuestion,omitempty"`
	CurrentInput    string    `json:"currentInput,omitempty"`
}

type Question struct {
	Prompt    string `json:"prompt"`
	Operation string `json:"operation"`
	Seq       int    `json:"seq"`
}

// StrategyState exists only while Phase == strategy.
type StrategyState struct {
	MySlots       map[string]SlotAssignment `json:"mySlots"`
	OpponentSlots map[string]SlotAssignment `json:"opponentSlots"`
	CountdownMs   int64                     `json:"countdownMs"`
	MyReady       bool                      `json:"myReady"`
	OpponentReady bool                      `json:"opponentReady"`
}

type SlotAssignment struct {
	PlayerID  string            `json:"playerId"`
	Operation string            `json:"operation"`
	IsIGL     bool              `json:"isIgl,omitempty"`
	IsAnchor  bool              `json:"isAnchor,omitempty"`
	Cosmetics map[string]string `json:"cosmetics,omitempty"`
}

// QuitVoteState tracks the bounded-time forfeit consensus for the local team.
// Resolution only ever comes from the server's quit_vote_result event.
type QuitVoteState struct {
	InitiatorID string            `json:"initiatorId"`
	Votes       map[string]string `json:"votes"` // playerId -> "yes" | "no"
	ExpiresAtMs int64             `json:"expiresAtMs"`
	Result      string            `json:"result,omitempty"` // "" while pending, then "quit" | "stay"
}

// AbilityLedger mirrors server-confirmed usage of the rate-limited team
// abilities. Usage flags only ever transition false -> true within their
// scope; timeout credits are mirrored from server confirmations.
type AbilityLedger struct {
	DoubleCallinUsed   [2]bool         `json:"doubleCallinUsed"` // index half-1
	AnchorSoloUsed     bool            `json:"anchorSoloUsed"`
	TimeoutsRemaining  int             `json:"timeoutsRemaining"`
	TimeoutActivations map[string]bool `json:"timeoutActivations,omitempty"` // activation ids already applied
}

const (
	// QuestionsPerSlot is the relay quota before hand-off to the next slot.
	QuestionsPerSlot = 5

	// StartingTimeouts is the per-match tactical timeout credit.
	StartingTimeouts = 2

	ModeDefault = "5v5"
	ModeReduced = "2v2"
)

// defaultSlotOperations returns the ordered relay stations for a mode when
// the server snapshot does not spell them out.
func defaultSlotOperations(mode string) []string {
	if mode == ModeReduced {
		return []string{"addition", "multiplication"}
	}
	return []string{"addition", "subtraction", "multiplication", "division", "mixed"}
}

// Team returns the team with the given id, or nil.
func (s *MatchState) Team(teamID string) *TeamState {
	if s == nil {
		return nil
	}
	if s.Team1 != nil && s.Team1.TeamID == teamID {
		return s.Team1
	}
	if s.Team2 != nil && s.Team2.TeamID == teamID {
		return s.Team2
	}
	return nil
}

// MyTeam returns the locally-controlled team, or nil before the first snapshot.
func (s *MatchState) MyTeam() *TeamState { return s.Team(s.MyTeamID) }

// OpponentTeam returns the other team.
func (s *MatchState) OpponentTeam() *TeamState {
	if s == nil {
		return nil
	}
	if s.Team1 != nil && s.Team1.TeamID != s.MyTeamID {
		return s.Team1
	}
	return s.Team2
}

// teamForPlayer finds the team whose roster contains playerID.
func (s *MatchState) teamForPlayer(playerID string) *TeamState {
	for _, t := range []*TeamState{s.Team1, s.Team2} {
		if t == nil {
			continue
		}
		if _, ok := t.Players[playerID]; ok {
			return t
		}
	}
	return nil
}

func (s *MatchState) eachTeam(fn func(*TeamState)) {
	for _, t := range []*TeamState{s.Team1, s.Team2} {
		if t != nil {
			fn(t)
		}
	}
}

// SlotCount is the mode-aware relay length.
func (s *MatchState) SlotCount() int {
	if n := len(s.SlotOperations); n > 0 {
		return n
	}
	return len(defaultSlotOperations(s.Mode))
}

// clearActive benches every player on the team: no current question, no
// active flag. Used on every transition out of live play.
func (t *TeamState) clearActive() {
	for _, p := range t.Players {
		p.IsActive = false
		p.CurrentQuestion = nil
		p.CurrentInput = ""
	}
}

// setActivePlayer makes exactly playerID active on the team. An id missing
// from the roster leaves the team with no active player.
func (t *TeamState) setActivePlayer(playerID string) {
	for id, p := range t.Players {
		p.IsActive = id == playerID
		if !p.IsActive {
			p.CurrentQuestion = nil
			p.CurrentInput = ""
		}
	}
}

// ActivePlayer returns the currently active player on the team, or nil.
func (t *TeamState) ActivePlayer() *PlayerState {
	for _, p := range t.Players {
		if p.IsActive {
			return p
		}
	}
	return nil
}

// AverageAnswerMs is the player's mean answer latency so far.
func (p *PlayerState) AverageAnswerMs() int64 {
	if p.Total == 0 {
		return 0
	}
	return p.TotalAnswerTimeMs / int64(p.Total)
}

// merge folds an incoming ledger into the local one without ever clearing a
// usage flag: abilities already observed as used stay used even if a stale
// snapshot says otherwise.
func (l *AbilityLedger) merge(in AbilityLedger) {
	l.DoubleCallinUsed[0] = l.DoubleCallinUsed[0] || in.DoubleCallinUsed[0]
	l.DoubleCallinUsed[1] = l.DoubleCallinUsed[1] || in.DoubleCallinUsed[1]
	l.AnchorSoloUsed = l.AnchorSoloUsed || in.AnchorSoloUsed
	if in.TimeoutsRemaining < l.TimeoutsRemaining {
		l.TimeoutsRemaining = in.TimeoutsRemaining
	}
	for id := range in.TimeoutActivations {
		if l.TimeoutActivations == nil {
			l.TimeoutActivations = make(map[string]bool)
		}
		l.TimeoutActivations[id] = true
	}
}

// DoubleCallinAvailable reports whether the double call-in is still unused
// for the given half (1 or 2).
func (l *AbilityLedger) DoubleCallinAvailable(half int) bool {
	if half < 1 || half > 2 {
		return false
	}
	return !l.DoubleCallinUsed[half-1]
}
