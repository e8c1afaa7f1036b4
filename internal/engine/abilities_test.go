package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario: a duplicated double_callin_activated with an absolute break
// duration marks the half used once and never extends the break twice.
func TestDoubleCallinDuplicateDeliveryIsIdempotent(t *testing.T) {
	s := newTestState(t)
	s, err := Apply(s, BreakStart{Name: EvtRoundBreak, DurationSec: 30})
	require.NoError(t, err)

	ev := DoubleCallin{Name: EvtDoubleCallinActivated, TeamID: "A", Half: 1, NewBreakDurationMs: i64ptr(45000)}

	s, err = Apply(s, ev)
	require.NoError(t, err)
	assert.True(t, s.Abilities.DoubleCallinUsed[0])
	assert.Equal(t, int64(45000), s.CountdownMs)

	s, err = Apply(s, ev)
	require.NoError(t, err)
	assert.True(t, s.Abilities.DoubleCallinUsed[0])
	assert.Equal(t, int64(45000), s.CountdownMs, "absolute duration must not stack")
}

func TestDoubleCallinExtensionFallback(t *testing.T) {
	s := newTestState(t)
	s, err := Apply(s, BreakStart{Name: EvtRoundBreak, DurationSec: 30})
	require.NoError(t, err)

	s, err = Apply(s, DoubleCallin{Name: EvtDoubleCallinActivated, TeamID: "A", Half: 2, ExtensionMs: 15000})
	require.NoError(t, err)
	assert.Equal(t, int64(45000), s.CountdownMs)
	assert.True(t, s.Abilities.DoubleCallinUsed[1])
	assert.False(t, s.Abilities.DoubleCallinUsed[0], "halves are independent scopes")
}

func TestDoubleCallinHalvesAreIndependent(t *testing.T) {
	s := newTestState(t)

	s, err := Apply(s, DoubleCallin{Name: EvtDoubleCallinSuccess, TeamID: "A", Half: 1})
	require.NoError(t, err)
	assert.True(t, s.Abilities.DoubleCallinAvailable(2))
	assert.False(t, s.Abilities.DoubleCallinAvailable(1))
}

func TestOpponentDoubleCallinDoesNotTouchMyLedger(t *testing.T) {
	s := newTestState(t)

	s, err := Apply(s, DoubleCallin{Name: EvtDoubleCallinActivated, TeamID: "B", Half: 1})
	require.NoError(t, err)
	assert.False(t, s.Abilities.DoubleCallinUsed[0])
}

func TestTimeoutCreditsMirrorServerValue(t *testing.T) {
	s := newTestState(t)
	require.Equal(t, 2, s.Abilities.TimeoutsRemaining)

	s, err := Apply(s, TimeoutCalled{TeamID: "A", ByUserID: "p1", RemainingTimeouts: iptr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Abilities.TimeoutsRemaining)

	// Duplicate confirmation with the same absolute stays put.
	s, err = Apply(s, TimeoutCalled{TeamID: "A", ByUserID: "p1", RemainingTimeouts: iptr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Abilities.TimeoutsRemaining)
}

func TestTimeoutActivationIDDedupe(t *testing.T) {
	s := newTestState(t)

	ev := TimeoutCalled{TeamID: "A", ByUserID: "p1", ActivationID: "to-1"}
	s, err := Apply(s, ev)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Abilities.TimeoutsRemaining)

	s, err = Apply(s, ev)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Abilities.TimeoutsRemaining, "same activation id decrements once")

	s, err = Apply(s, TimeoutCalled{TeamID: "A", ByUserID: "p1", ActivationID: "to-2"})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Abilities.TimeoutsRemaining)

	// Credits never go negative.
	s, err = Apply(s, TimeoutCalled{TeamID: "A", ByUserID: "p1", ActivationID: "to-3"})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Abilities.TimeoutsRemaining)
}

func TestTimeoutExtendsBreakAbsoluteWins(t *testing.T) {
	s := newTestState(t)
	s, err := Apply(s, BreakStart{Name: EvtRoundBreak, DurationSec: 30})
	require.NoError(t, err)

	s, err = Apply(s, TimeoutCalled{TeamID: "A", NewBreakDurationMs: i64ptr(90000), ExtensionMs: 60000})
	require.NoError(t, err)
	assert.Equal(t, int64(90000), s.CountdownMs, "absolute wins over extension")
}

// Usage flags only move false -> true within their scope.
func TestLedgerMergeIsMonotonic(t *testing.T) {
	led := AbilityLedger{TimeoutsRemaining: 1, AnchorSoloUsed: true}
	led.DoubleCallinUsed[0] = true

	led.merge(AbilityLedger{TimeoutsRemaining: 2})

	assert.True(t, led.DoubleCallinUsed[0])
	assert.True(t, led.AnchorSoloUsed)
	assert.Equal(t, 1, led.TimeoutsRemaining, "credits never replenish from a stale snapshot")
}
