package engine

// Quit-vote coordination. The local countdown is cosmetic; resolution only
// ever arrives as quit_vote_result and the match only ends on the explicit
// team_forfeit / match_end confirmation, never on the vote result alone.

func (s *MatchState) applyQuitVoteStarted(e QuitVoteStarted) error {
	if s.QuitVote != nil && s.QuitVote.Result == "" {
		// At most one vote runs per team at a time.
		return nil
	}
	votes := make(map[string]string)
	if e.InitiatorID != "" {
		votes[e.InitiatorID] = "yes"
	}
	s.QuitVote = &QuitVoteState{
		InitiatorID: e.InitiatorID,
		Votes:       votes,
		ExpiresAtMs: e.ExpiresAtMs,
	}
	return nil
}

func (s *MatchState) applyQuitVoteUpdate(e QuitVoteUpdate) error {
	if s.QuitVote == nil || s.QuitVote.Result != "" {
		return ErrVoteNotActive
	}
	if e.UserID == "" {
		return nil
	}
	switch e.Vote {
	case "yes", "no":
		s.QuitVote.Votes[e.UserID] = e.Vote
	}
	return nil
}

func (s *MatchState) applyQuitVoteResult(e QuitVoteResult) error {
	if s.QuitVote == nil {
		// A result without a locally-observed vote still displays.
		s.QuitVote = &QuitVoteState{Votes: make(map[string]string)}
	}
	for id, v := range e.Votes {
		s.QuitVote.Votes[id] = v
	}
	switch e.Result {
	case "quit", "stay":
		s.QuitVote.Result = e.Result
	}
	return nil
}

// ClearQuitVote drops a resolved vote after its display grace period.
func (s *MatchState) ClearQuitVote() {
	if s.QuitVote != nil && s.QuitVote.Result != "" {
		s.QuitVote = nil
	}
}
