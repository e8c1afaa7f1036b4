package engine

import "errors"

var ErrNoMatchState = errors.New("no match state yet")
var ErrStaleTerminalUpdate = errors.New("stale update after match end")
var ErrUnknownTeam = errors.New("unknown team")
var ErrUnknownPlayer = errors.New("unknown player")
var ErrAbilityUsed = errors.New("ability already used")
var ErrNotLeader = errors.New("only the team leader may do this")
var ErrVoteNotActive = errors.New("no quit vote in progress")
