package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveTestState(t *testing.T) *MatchState {
	t.Helper()
	s := newTestState(t)
	s, err := Apply(s, RoundStart{Name: EvtMatchStart, Round: 1, Half: 1, Team1ActivePlayerID: "p1", Team2ActivePlayerID: "o1"})
	require.NoError(t, err)
	return s
}

// Scenario: an answer_result hitting the slot quota applies every absolute
// verbatim and benches the player.
func TestAnswerResultAtQuotaCompletesSlot(t *testing.T) {
	s := liveTestState(t)
	s.Team1.Players["p1"].CurrentQuestion = &Question{Prompt: "3+4", Operation: "addition"}

	s, err := Apply(s, AnswerResult{
		Name:            EvtAnswerResult,
		UserID:          "p1",
		TeamID:          "A",
		IsCorrect:       true,
		NewTeamScore:    iptr(120),
		NewStreak:       iptr(3),
		NewPlayerScore:  iptr(40),
		QuestionsInSlot: iptr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, 120, s.Team1.Score)
	assert.Equal(t, 3, s.Team1.CurrentStreak)
	assert.Equal(t, 5, s.Team1.QuestionsInSlot)

	p := s.Team1.Players["p1"]
	assert.Equal(t, 40, p.Score)
	assert.False(t, p.IsActive)
	assert.True(t, p.IsComplete)
	assert.Nil(t, p.CurrentQuestion)
}

// Scores come back as absolutes, so replays or repeated answers never
// double-accumulate; only total/correct grow by local increment.
func TestAnswerSequenceNeverDoubleAccumulates(t *testing.T) {
	s := liveTestState(t)

	results := []AnswerResult{
		{Name: EvtAnswerResult, UserID: "p1", TeamID: "A", IsCorrect: true, NewTeamScore: iptr(20), NewPlayerScore: iptr(20), NewStreak: iptr(1), QuestionsInSlot: iptr(1), AnswerTimeMs: 1500},
		{Name: EvtAnswerResult, UserID: "p1", TeamID: "A", IsCorrect: true, NewTeamScore: iptr(45), NewPlayerScore: iptr(45), NewStreak: iptr(2), QuestionsInSlot: iptr(2), AnswerTimeMs: 2500},
		{Name: EvtAnswerResult, UserID: "p1", TeamID: "A", IsCorrect: false, NewTeamScore: iptr(45), NewPlayerScore: iptr(45), NewStreak: iptr(0), QuestionsInSlot: iptr(3), AnswerTimeMs: 4000},
		{Name: EvtAnswerResult, UserID: "p1", TeamID: "A", IsCorrect: true, NewTeamScore: iptr(70), NewPlayerScore: iptr(70), NewStreak: iptr(1), QuestionsInSlot: iptr(4), AnswerTimeMs: 2000},
	}

	var err error
	for _, r := range results {
		s, err = Apply(s, r)
		require.NoError(t, err)
	}

	assert.Equal(t, 70, s.Team1.Score, "team score equals last absolute")
	p := s.Team1.Players["p1"]
	assert.Equal(t, 70, p.Score, "player score equals last absolute")
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 3, p.Correct)
	assert.Equal(t, int64(10000), p.TotalAnswerTimeMs)
	assert.Equal(t, int64(2500), p.AverageAnswerMs())
}

func TestAnswerResultMissingAbsolutesKeepsState(t *testing.T) {
	s := liveTestState(t)
	s.Team1.Score = 55
	s.Team1.Players["p1"].Score = 30

	s, err := Apply(s, AnswerResult{Name: EvtAnswerResult, UserID: "p1", TeamID: "A", IsCorrect: true})
	require.NoError(t, err)

	assert.Equal(t, 55, s.Team1.Score)
	assert.Equal(t, 30, s.Team1.Players["p1"].Score)
	assert.Equal(t, 1, s.Team1.Players["p1"].Total)
}

func TestMaxStreakIsMonotonic(t *testing.T) {
	s := liveTestState(t)

	steps := []int{1, 2, 3, 0, 1}
	var err error
	for i, streak := range steps {
		s, err = Apply(s, AnswerResult{
			Name:            EvtAnswerResult,
			UserID:          "p1",
			TeamID:          "A",
			IsCorrect:       streak > 0,
			NewPlayerStreak: iptr(streak),
			QuestionsInSlot: iptr(i % QuestionsPerSlot),
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, s.Team1.Players["p1"].MaxStreak)
	assert.Equal(t, 1, s.Team1.Players["p1"].Streak)
}

func TestQuestionTimeoutResetsStreaks(t *testing.T) {
	s := liveTestState(t)
	s.Team1.CurrentStreak = 4
	s.Team1.Players["p1"].Streak = 4

	s, err := Apply(s, QuestionTimeoutEvt{Name: EvtQuestionTimeout, UserID: "p1", TeamID: "A", QuestionsInSlot: iptr(2)})
	require.NoError(t, err)

	assert.Equal(t, 0, s.Team1.CurrentStreak)
	p := s.Team1.Players["p1"]
	assert.Equal(t, 0, p.Streak)
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, 0, p.Correct)
	assert.Equal(t, 2, s.Team1.QuestionsInSlot)
}

func TestSlotChangeHandsOffRelay(t *testing.T) {
	s := liveTestState(t)
	s.Team1.Players["p1"].IsComplete = true

	s, err := Apply(s, SlotChange{Name: EvtSlotChange, TeamID: "A", NewSlot: 2, ActivePlayerID: "p2"})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Team1.CurrentSlot)
	assert.Equal(t, 0, s.Team1.QuestionsInSlot)
	assert.True(t, s.Team1.Players["p2"].IsActive)
	assert.False(t, s.Team1.Players["p1"].IsActive)
	assert.False(t, s.Team1.Players["p1"].IsComplete)
}

// The same handler drives the opponent's relay without touching my team.
func TestOpponentSlotChangeLeavesMyTeamAlone(t *testing.T) {
	s := liveTestState(t)

	s, err := Apply(s, SlotChange{Name: EvtOpponentSlotChange, TeamID: "B", NewSlot: 3, ActivePlayerID: "o3"})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Team2.CurrentSlot)
	assert.True(t, s.Team2.Players["o3"].IsActive)
	assert.Equal(t, 1, s.Team1.CurrentSlot)
	assert.True(t, s.Team1.Players["p1"].IsActive)
}

// A hand-off without a designated player must never bench the whole team:
// the current holder stays active while phase is active.
func TestSlotChangeWithoutDesignatedPlayerKeepsHolder(t *testing.T) {
	s := liveTestState(t)

	s, err := Apply(s, SlotChange{Name: EvtSlotChange, TeamID: "A", NewSlot: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Team1.CurrentSlot)
	require.NotNil(t, s.Team1.ActivePlayer())
	assert.Equal(t, "p1", s.Team1.ActivePlayer().PlayerID)
}

// A hand-off naming a player outside the roster must not half-apply.
func TestSlotChangeUnknownPlayerIsNoOp(t *testing.T) {
	s := liveTestState(t)

	_, err := Apply(s, SlotChange{Name: EvtSlotChange, TeamID: "A", NewSlot: 2, ActivePlayerID: "ghost"})
	assert.ErrorIs(t, err, ErrUnknownPlayer)
	assert.Equal(t, 1, s.Team1.CurrentSlot)
	assert.True(t, s.Team1.Players["p1"].IsActive)
}

func TestSlotChangeClampsToModeLength(t *testing.T) {
	fs := testFullState()
	fs.Mode = ModeReduced
	s, err := Apply(nil, fs)
	require.NoError(t, err)
	s, err = Apply(s, RoundStart{Name: EvtMatchStart, Team1ActivePlayerID: "p1", Team2ActivePlayerID: "o1"})
	require.NoError(t, err)

	s, err = Apply(s, SlotChange{Name: EvtSlotChange, TeamID: "A", NewSlot: 5, ActivePlayerID: "p2"})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Team1.CurrentSlot)
	assert.Equal(t, "multiplication", s.CurrentOperation(s.Team1))
}

func TestTypingEchoAndQuestionUpdate(t *testing.T) {
	s := liveTestState(t)

	s, err := Apply(s, QuestionUpdate{Name: EvtQuestionUpdate, UserID: "p1", Question: &Question{Prompt: "6*7", Operation: "multiplication", Seq: 2}})
	require.NoError(t, err)
	require.NotNil(t, s.Team1.Players["p1"].CurrentQuestion)
	assert.Equal(t, "6*7", s.Team1.Players["p1"].CurrentQuestion.Prompt)

	s, err = Apply(s, TypingEcho{UserID: "p1", CurrentInput: "4"})
	require.NoError(t, err)
	assert.Equal(t, "4", s.Team1.Players["p1"].CurrentInput)
}

func TestFirstToFinishBonus(t *testing.T) {
	s := liveTestState(t)
	s.Team1.Score = 100

	s, err := Apply(s, FirstToFinishBonus{TeamID: "A", Bonus: 25, NewTeamScore: iptr(125)})
	require.NoError(t, err)
	assert.Equal(t, 125, s.Team1.Score)

	// Without an absolute the bonus falls back to an increment.
	s, err = Apply(s, FirstToFinishBonus{TeamID: "A", Bonus: 10})
	require.NoError(t, err)
	assert.Equal(t, 135, s.Team1.Score)
}
