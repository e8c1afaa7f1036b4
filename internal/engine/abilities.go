package engine

// Ability confirmations are idempotent. Usage flags only move false -> true
// and a duplicate delivery must not extend a break twice, so an absolute
// duration from the server always wins over the additive fallback.

func (s *MatchState) applyDoubleCallin(e DoubleCallin) error {
	if e.TeamID == "" || e.TeamID == s.MyTeamID {
		half := e.Half
		if half < 1 || half > 2 {
			half = s.Half
		}
		if half >= 1 && half <= 2 {
			s.Abilities.DoubleCallinUsed[half-1] = true
		}
	}
	if e.Name != EvtDoubleCallinActivated {
		return nil
	}
	if e.NewBreakDurationMs != nil {
		s.CountdownMs = *e.NewBreakDurationMs
	} else if e.ExtensionMs > 0 {
		s.CountdownMs += e.ExtensionMs
	}
	return nil
}

func (s *MatchState) applyTimeoutCalled(e TimeoutCalled) error {
	if e.TeamID == "" || e.TeamID == s.MyTeamID {
		switch {
		case e.RemainingTimeouts != nil:
			s.Abilities.TimeoutsRemaining = *e.RemainingTimeouts
		case e.ActivationID != "":
			if !s.Abilities.TimeoutActivations[e.ActivationID] {
				if s.Abilities.TimeoutActivations == nil {
					s.Abilities.TimeoutActivations = make(map[string]bool)
				}
				s.Abilities.TimeoutActivations[e.ActivationID] = true
				if s.Abilities.TimeoutsRemaining > 0 {
					s.Abilities.TimeoutsRemaining--
				}
			}
		default:
			if s.Abilities.TimeoutsRemaining > 0 {
				s.Abilities.TimeoutsRemaining--
			}
		}
	}
	if e.NewBreakDurationMs != nil {
		s.CountdownMs = *e.NewBreakDurationMs
	} else if e.ExtensionMs > 0 {
		s.CountdownMs += e.ExtensionMs
	}
	return nil
}
