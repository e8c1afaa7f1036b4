package engine

// Apply folds one decoded event into the match state and returns the state
// pointer to use afterwards (a new one only when a full snapshot replaces
// the tree). Each event performs at most one logical transition. A non-nil
// error means the event was rejected and the state is untouched; none of
// the errors are fatal and the dispatcher just logs them.
func Apply(s *MatchState, ev Event) (*MatchState, error) {
	if fs, ok := ev.(FullState); ok {
		return applyFullState(s, fs)
	}
	if s == nil {
		return nil, ErrNoMatchState
	}

	switch e := ev.(type) {
	case CountdownStart:
		return s, s.applyCountdownStart(e)
	case TimeUpdate:
		return s, s.applyTimeUpdate(e)
	case StrategyPhaseStart:
		return s, s.applyStrategyStart(e)
	case SlotsUpdated:
		return s, s.applySlotsUpdated(e)
	case TeamReady:
		return s, s.applyTeamReady(e)
	case RoundStart:
		return s, s.applyRoundStart(e)
	case QuestionUpdate:
		return s, s.applyQuestionUpdate(e)
	case TypingEcho:
		return s, s.applyTypingEcho(e)
	case AnswerResult:
		return s, s.applyAnswer(e)
	case QuestionTimeoutEvt:
		return s, s.applyQuestionTimeout(e)
	case FirstToFinishBonus:
		return s, s.applyFirstToFinish(e)
	case SoloDecisionPhase:
		return s, s.applySoloDecisionPhase(e)
	case SoloDecisionMade:
		return s, s.applySoloDecisionMade(e)
	case SoloDecisionsRevealed:
		return s, s.applySoloDecisionsRevealed(e)
	case SlotChange:
		return s, s.applySlotChange(e)
	case RoundComplete:
		return s, s.applyRoundComplete(e)
	case BreakStart:
		return s, s.applyBreakStart(e)
	case TimeoutCalled:
		return s, s.applyTimeoutCalled(e)
	case TeamReadyForNext:
		return s, s.applyTeamReadyForNext(e)
	case DoubleCallin:
		return s, s.applyDoubleCallin(e)
	case ClockUpdate:
		return s, s.applyClockUpdate(e)
	case MatchEnd:
		return s, s.applyMatchEnd(e)
	case QuitVoteStarted:
		return s, s.applyQuitVoteStarted(e)
	case QuitVoteUpdate:
		return s, s.applyQuitVoteUpdate(e)
	case QuitVoteResult:
		return s, s.applyQuitVoteResult(e)
	case TeamForfeit:
		return s, s.applyTeamForfeit(e)
	default:
		// Decoded but unhandled: treat like an unknown event.
		return s, nil
	}
}

// applyFullState replaces the snapshot wholesale. A non-terminal snapshot
// arriving after the match has finalized (reconnect race) is rejected so it
// cannot wipe the results screen.
func applyFullState(s *MatchState, e FullState) (*MatchState, error) {
	if s != nil && s.Finalized && e.Phase != PhasePostMatch {
		return s, ErrStaleTerminalUpdate
	}

	ns := &MatchState{
		MatchID:        e.MatchID,
		Phase:          e.Phase,
		Round:          e.Round,
		Half:           e.Half,
		GameClockMs:    e.GameClockMs,
		RelayClockMs:   e.RelayClockMs,
		Team1:          e.Team1,
		Team2:          e.Team2,
		MyTeamID:       e.MyTeamID,
		Mode:           e.Mode,
		SlotOperations: e.SlotOperations,
	}
	if ns.Phase == "" {
		ns.Phase = PhasePreMatch
	}
	if ns.Round == 0 {
		ns.Round = 1
	}
	if ns.Half == 0 {
		ns.Half = 1
	}
	if len(ns.SlotOperations) == 0 {
		ns.SlotOperations = defaultSlotOperations(ns.Mode)
	}
	ns.eachTeam(normalizeTeam)
	if pausePhases[ns.Phase] {
		ns.eachTeam(func(t *TeamState) { t.clearActive() })
	}

	// Usage flags and credits survive snapshot replacement monotonically:
	// an ability observed as used never flips back to available.
	led := AbilityLedger{TimeoutsRemaining: StartingTimeouts}
	if s != nil {
		led = s.Abilities
	}
	if e.Abilities != nil {
		led.merge(*e.Abilities)
	}
	ns.Abilities = led

	// A pending quit vote is session-local and not part of server snapshots.
	if s != nil {
		ns.QuitVote = s.QuitVote
	}
	if ns.Phase == PhasePostMatch {
		ns.Finalized = true
	}
	return ns, nil
}

func normalizeTeam(t *TeamState) {
	if t.Players == nil {
		t.Players = make(map[string]*PlayerState)
	}
	if t.SlotAssignments == nil {
		t.SlotAssignments = make(map[string]string)
	}
	if t.CurrentSlot == 0 {
		t.CurrentSlot = 1
	}
}

func (s *MatchState) applyCountdownStart(e CountdownStart) error {
	switch e.Name {
	case EvtRoundCountdown:
		if err := s.setPhase(PhaseRoundCountdown); err != nil {
			return err
		}
		if e.Round > 0 {
			s.Round = e.Round
		}
	case EvtPreMatchCountdown:
		if err := s.setPhase(PhasePreMatch); err != nil {
			return err
		}
	}
	if e.DurationSec > 0 {
		s.CountdownMs = int64(e.DurationSec) * 1000
	}
	return nil
}

// applyTimeUpdate overwrites the remaining countdown with the server's
// absolute value. Drift correction works by replacement, never adjustment.
func (s *MatchState) applyTimeUpdate(e TimeUpdate) error {
	s.CountdownMs = e.RemainingMs
	if e.Name == EvtStrategyTimeUpdate && s.Strategy != nil {
		s.Strategy.CountdownMs = e.RemainingMs
	}
	return nil
}

func (s *MatchState) applyStrategyStart(e StrategyPhaseStart) error {
	if err := s.setPhase(PhaseStrategy); err != nil {
		return err
	}
	s.Strategy = &StrategyState{
		MySlots:       e.MySlots,
		OpponentSlots: e.OpponentSlots,
		CountdownMs:   int64(e.DurationSec) * 1000,
	}
	if s.Strategy.MySlots == nil {
		s.Strategy.MySlots = make(map[string]SlotAssignment)
	}
	if s.Strategy.OpponentSlots == nil {
		s.Strategy.OpponentSlots = make(map[string]SlotAssignment)
	}
	s.CountdownMs = s.Strategy.CountdownMs
	return nil
}

func (s *MatchState) applySlotsUpdated(e SlotsUpdated) error {
	if s.Strategy == nil {
		// Late assignment echo outside the strategy phase still updates the
		// roster mapping below, it just has no strategy board to refresh.
	} else if e.Name == EvtSlotAssignments {
		s.Strategy.MySlots = e.Slots
	} else {
		s.Strategy.OpponentSlots = e.Slots
	}

	team := s.MyTeam()
	if e.Name == EvtOpponentSlots {
		team = s.OpponentTeam()
	}
	if team == nil {
		return ErrUnknownTeam
	}
	// Role flags are optional on the wire: a payload that names no IGL or
	// anchor leaves the current marks alone instead of stripping them.
	var hasIGL, hasAnchor bool
	for _, a := range e.Slots {
		hasIGL = hasIGL || a.IsIGL
		hasAnchor = hasAnchor || a.IsAnchor
	}
	for _, a := range e.Slots {
		if a.PlayerID == "" {
			continue
		}
		if a.Operation != "" {
			team.SlotAssignments[a.Operation] = a.PlayerID
		}
		p := team.Players[a.PlayerID]
		if p == nil {
			continue
		}
		p.Slot = a.Operation
		if hasIGL {
			p.IsIGL = a.IsIGL
		}
		if hasAnchor {
			p.IsAnchor = a.IsAnchor
		}
	}
	return nil
}

func (s *MatchState) applyTeamReady(e TeamReady) error {
	if s.Strategy == nil {
		return nil
	}
	if e.TeamID == s.MyTeamID {
		s.Strategy.MyReady = true
	} else {
		s.Strategy.OpponentReady = true
	}
	return nil
}

// applyRoundStart begins live play: exactly one server-designated active
// player per team, relay counters back to their starting values.
func (s *MatchState) applyRoundStart(e RoundStart) error {
	if err := s.setPhase(PhaseActive); err != nil {
		return err
	}
	if e.Round > 0 {
		s.Round = e.Round
	}
	if e.Half > 0 {
		s.Half = e.Half
	}
	s.eachTeam(func(t *TeamState) {
		t.CurrentSlot = 1
		t.QuestionsInSlot = 0
		for _, p := range t.Players {
			p.IsComplete = false
		}
	})
	// A missing designation keeps the team's current holder rather than
	// benching everyone mid-phase.
	if s.Team1 != nil && e.Team1ActivePlayerID != "" {
		s.Team1.setActivePlayer(e.Team1ActivePlayerID)
	}
	if s.Team2 != nil && e.Team2ActivePlayerID != "" {
		s.Team2.setActivePlayer(e.Team2ActivePlayerID)
	}
	return nil
}

func (s *MatchState) applyQuestionUpdate(e QuestionUpdate) error {
	team := s.teamForPlayer(e.UserID)
	if team == nil {
		return ErrUnknownPlayer
	}
	p := team.Players[e.UserID]
	p.CurrentQuestion = e.Question
	p.CurrentInput = ""
	return nil
}

func (s *MatchState) applyTypingEcho(e TypingEcho) error {
	team := s.teamForPlayer(e.UserID)
	if team == nil {
		return ErrUnknownPlayer
	}
	team.Players[e.UserID].CurrentInput = e.CurrentInput
	return nil
}

func (s *MatchState) applyFirstToFinish(e FirstToFinishBonus) error {
	team := s.Team(e.TeamID)
	if team == nil {
		return ErrUnknownTeam
	}
	if e.NewTeamScore != nil {
		team.Score = *e.NewTeamScore
	} else {
		team.Score += e.Bonus
	}
	return nil
}

func (s *MatchState) applySoloDecisionPhase(e SoloDecisionPhase) error {
	if err := s.setPhase(PhaseAnchorDecision); err != nil {
		return err
	}
	s.eachTeam(func(t *TeamState) {
		t.SoloDecisionMade = false
		t.SoloDecision = ""
	})
	if e.DurationSec > 0 {
		s.CountdownMs = int64(e.DurationSec) * 1000
	}
	return nil
}

func (s *MatchState) applySoloDecisionMade(e SoloDecisionMade) error {
	team := s.Team(e.TeamID)
	if team == nil {
		return ErrUnknownTeam
	}
	team.SoloDecisionMade = true
	return nil
}

func (s *MatchState) applySoloDecisionsRevealed(e SoloDecisionsRevealed) error {
	for teamID, decision := range e.Decisions {
		team := s.Team(teamID)
		if team == nil {
			continue
		}
		team.SoloDecision = decision
		if teamID == s.MyTeamID && decision == "solo" {
			s.Abilities.AnchorSoloUsed = true
		}
	}
	return nil
}

func (s *MatchState) applyRoundComplete(e RoundComplete) error {
	team := s.Team(e.TeamID)
	if team == nil {
		return ErrUnknownTeam
	}
	team.clearActive()
	return nil
}

func (s *MatchState) applyBreakStart(e BreakStart) error {
	next := PhaseBreak
	if e.Name == EvtHalftime {
		next = PhaseHalftime
	}
	if err := s.setPhase(next); err != nil {
		return err
	}
	if e.Round > 0 {
		s.Round = e.Round
	}
	if e.DurationSec > 0 {
		s.CountdownMs = int64(e.DurationSec) * 1000
	}
	s.eachTeam(func(t *TeamState) { t.ReadyForNext = false })
	return nil
}

func (s *MatchState) applyTeamReadyForNext(e TeamReadyForNext) error {
	team := s.Team(e.TeamID)
	if team == nil {
		return ErrUnknownTeam
	}
	team.ReadyForNext = true
	return nil
}

func (s *MatchState) applyClockUpdate(e ClockUpdate) error {
	if e.GameClockMs != nil {
		s.GameClockMs = *e.GameClockMs
	}
	if e.RelayClockMs != nil {
		s.RelayClockMs = *e.RelayClockMs
	}
	return nil
}

func (s *MatchState) applyMatchEnd(e MatchEnd) error {
	if err := s.setPhase(PhasePostMatch); err != nil {
		return err
	}
	if e.WinnerTeamID != "" {
		s.WinnerTeamID = e.WinnerTeamID
	}
	if e.Forfeit && e.ForfeitTeamID != "" {
		s.ForfeitTeamID = e.ForfeitTeamID
	}
	return nil
}

func (s *MatchState) applyTeamForfeit(e TeamForfeit) error {
	if err := s.setPhase(PhasePostMatch); err != nil {
		return err
	}
	s.ForfeitTeamID = e.TeamID
	if winner := s.OpponentOf(e.TeamID); winner != nil {
		s.WinnerTeamID = winner.TeamID
	}
	return nil
}

// OpponentOf returns the team opposing teamID, or nil.
func (s *MatchState) OpponentOf(teamID string) *TeamState {
	if s.Team1 != nil && s.Team1.TeamID != teamID {
		return s.Team1
	}
	if s.Team2 != nil && s.Team2.TeamID != teamID {
		return s.Team2
	}
	return nil
}
