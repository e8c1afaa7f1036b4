package engine

type Phase string

const (
	PhasePreMatch       Phase = "pre_match"
	PhaseStrategy       Phase = "strategy"
	PhaseRoundCountdown Phase = "round_countdown"
	PhaseActive         Phase = "active"
	PhaseBreak          Phase = "break"
	PhaseHalftime       Phase = "halftime"
	PhaseAnchorDecision Phase = "anchor_decision"
	PhasePostMatch      Phase = "post_match"
)

// pausePhases are the phases during which no player may be active.
var pausePhases = map[Phase]bool{
	PhaseRoundCountdown: true,
	PhaseBreak:          true,
	PhaseHalftime:       true,
	PhaseAnchorDecision: true,
	PhasePostMatch:      true,
}

// setPhase moves the match to next, enforcing the terminal guard: once
// post_match has been observed no other phase is ever accepted again, so a
// stale full-state or phase event arriving after match end cannot overwrite
// finalized results.
func (s *MatchState) setPhase(next Phase) error {
	if s.Finalized && next != PhasePostMatch {
		return ErrStaleTerminalUpdate
	}
	s.Phase = next
	if pausePhases[next] {
		s.eachTeam(func(t *TeamState) { t.clearActive() })
	}
	if next != PhaseStrategy {
		s.Strategy = nil
	}
	if next == PhasePostMatch {
		s.Finalized = true
	}
	return nil
}
