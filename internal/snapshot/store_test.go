package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathrelay/client/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	return st
}

func terminalState(matchID string) *engine.MatchState {
	return &engine.MatchState{
		MatchID:   matchID,
		Phase:     engine.PhasePostMatch,
		Round:     4,
		Half:      2,
		Finalized: true,
		MyTeamID:  "A",
		Team1: &engine.TeamState{
			TeamID: "A",
			Score:  420,
			Players: map[string]*engine.PlayerState{
				"p1": {PlayerID: "p1", Score: 180, Correct: 17, Total: 20, MaxStreak: 9},
			},
		},
		Team2:        &engine.TeamState{TeamID: "B", Score: 395},
		WinnerTeamID: "A",
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := openTestStore(t)

	require.NoError(t, st.Save("m1", terminalState("m1")))

	got, err := st.Load("m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, engine.PhasePostMatch, got.Phase)
	assert.True(t, got.Finalized)
	assert.Equal(t, 420, got.Team1.Score)
	assert.Equal(t, 9, got.Team1.Players["p1"].MaxStreak)
	assert.Equal(t, "A", got.WinnerTeamID)
}

func TestLoadMissingMatchIsNil(t *testing.T) {
	st := openTestStore(t)
	got, err := st.Load("never-played")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveUpsertsPerMatch(t *testing.T) {
	st := openTestStore(t)

	first := terminalState("m1")
	first.Team1.Score = 100
	require.NoError(t, st.Save("m1", first))

	second := terminalState("m1")
	second.Team1.Score = 200
	require.NoError(t, st.Save("m1", second))

	got, err := st.Load("m1")
	require.NoError(t, err)
	assert.Equal(t, 200, got.Team1.Score)
}

func TestClearRemovesOnlyThatMatch(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.Save("m1", terminalState("m1")))
	require.NoError(t, st.Save("m2", terminalState("m2")))

	require.NoError(t, st.Clear("m1"))

	got, err := st.Load("m1")
	require.NoError(t, err)
	assert.Nil(t, got)

	kept, err := st.Load("m2")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestClearMissingMatchIsHarmless(t *testing.T) {
	st := openTestStore(t)
	assert.NoError(t, st.Clear("never-played"))
}
