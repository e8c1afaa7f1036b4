package engine

// Relay progression: each team walks an ordered list of operation slots
// (mode-dependent length) and answers QuestionsPerSlot questions per slot.
// Scores, streaks and questionsInSlot come from the server as absolutes;
// only Total/Correct are derived locally because the server never echoes
// them back.

func (s *MatchState) applyAnswer(e AnswerResult) error {
	team := s.Team(e.TeamID)
	if team == nil {
		team = s.teamForPlayer(e.UserID)
	}
	if team == nil {
		return ErrUnknownTeam
	}
	p := team.Players[e.UserID]
	if p == nil {
		return ErrUnknownPlayer
	}

	if e.NewTeamScore != nil {
		team.Score = *e.NewTeamScore
	}
	if e.NewStreak != nil {
		team.CurrentStreak = *e.NewStreak
	}
	if e.QuestionsInSlot != nil {
		team.QuestionsInSlot = *e.QuestionsInSlot
	}
	if e.NewPlayerScore != nil {
		p.Score = *e.NewPlayerScore
	}
	if e.NewPlayerStreak != nil {
		p.Streak = *e.NewPlayerStreak
	}
	if p.Streak > p.MaxStreak {
		p.MaxStreak = p.Streak
	}

	p.Total++
	if e.IsCorrect {
		p.Correct++
	}
	p.TotalAnswerTimeMs += e.AnswerTimeMs
	p.CurrentQuestion = nil
	p.CurrentInput = ""

	if team.QuestionsInSlot >= QuestionsPerSlot {
		p.IsActive = false
		p.IsComplete = true
	}
	return nil
}

// applyQuestionTimeout counts an expired question: an attempt without a
// correct answer. Streaks reset unless the server supplies an absolute.
func (s *MatchState) applyQuestionTimeout(e QuestionTimeoutEvt) error {
	team := s.Team(e.TeamID)
	if team == nil {
		team = s.teamForPlayer(e.UserID)
	}
	if team == nil {
		return ErrUnknownTeam
	}
	p := team.Players[e.UserID]
	if p == nil {
		return ErrUnknownPlayer
	}

	if e.NewTeamScore != nil {
		team.Score = *e.NewTeamScore
	}
	if e.NewStreak != nil {
		team.CurrentStreak = *e.NewStreak
	} else {
		team.CurrentStreak = 0
	}
	if e.QuestionsInSlot != nil {
		team.QuestionsInSlot = *e.QuestionsInSlot
	}
	p.Streak = 0
	p.Total++
	p.CurrentQuestion = nil
	p.CurrentInput = ""

	if team.QuestionsInSlot >= QuestionsPerSlot {
		p.IsActive = false
		p.IsComplete = true
	}
	return nil
}

// applySlotChange hands the relay to the next station. slot_change and
// opponent_slot_change both land here; the only difference is which team id
// the payload names. A designated player missing from the roster makes the
// whole event a no-op so a half-applied hand-off can never strand a team
// with zero or two active players; a payload without a designated player
// keeps the current holder active rather than benching everyone.
func (s *MatchState) applySlotChange(e SlotChange) error {
	team := s.Team(e.TeamID)
	if team == nil {
		return ErrUnknownTeam
	}
	if e.ActivePlayerID != "" {
		if _, ok := team.Players[e.ActivePlayerID]; !ok {
			return ErrUnknownPlayer
		}
	}

	slot := e.NewSlot
	if slot < 1 {
		slot = team.CurrentSlot + 1
	}
	if limit := s.SlotCount(); slot > limit {
		slot = limit
	}
	team.CurrentSlot = slot
	team.QuestionsInSlot = 0
	for _, p := range team.Players {
		p.IsComplete = false
	}
	if e.ActivePlayerID != "" {
		team.setActivePlayer(e.ActivePlayerID)
	}
	return nil
}

// CurrentOperation is the operation name of the team's current slot.
func (s *MatchState) CurrentOperation(t *TeamState) string {
	ops := s.SlotOperations
	if len(ops) == 0 {
		ops = defaultSlotOperations(s.Mode)
	}
	if t == nil || t.CurrentSlot < 1 || t.CurrentSlot > len(ops) {
		return ""
	}
	return ops[t.CurrentSlot-1]
}
