package countdown

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRunner(t *testing.T) (*Runner, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	return NewRunner(clock, zap.NewNop()), clock
}

// recv waits for one value with a real-time guard so tests never hang.
func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for value")
		var zero T
		return zero
	}
}

func recvNothing[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("expected nothing, got %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCountdownTicksDownAndCompletes(t *testing.T) {
	r, clock := newTestRunner(t)

	ticks := make(chan time.Duration, 8)
	done := make(chan struct{}, 1)
	r.Start(KindBreak, 2*TickInterval, func(left time.Duration) { ticks <- left }, func() { done <- struct{}{} })

	clock.BlockUntil(1)
	clock.Advance(TickInterval)
	assert.Equal(t, TickInterval, recv(t, ticks))

	clock.Advance(TickInterval)
	assert.Equal(t, time.Duration(0), recv(t, ticks))
	recv(t, done)
	assert.False(t, r.Running(KindBreak))
}

func TestStartReplacesRunningCountdownOfSameKind(t *testing.T) {
	r, clock := newTestRunner(t)

	first := make(chan time.Duration, 8)
	r.Start(KindStrategy, time.Hour, func(left time.Duration) { first <- left }, nil)
	clock.BlockUntil(1)

	second := make(chan time.Duration, 8)
	r.Start(KindStrategy, 4*TickInterval, func(left time.Duration) { second <- left }, nil)

	clock.Advance(TickInterval)
	assert.Equal(t, 3*TickInterval, recv(t, second))
	recvNothing(t, first)
	assert.True(t, r.Running(KindStrategy))
}

func TestStopCancelsOneKind(t *testing.T) {
	r, clock := newTestRunner(t)

	ticks := make(chan time.Duration, 8)
	r.Start(KindQuitVote, time.Minute, func(left time.Duration) { ticks <- left }, nil)
	clock.BlockUntil(1)

	r.Stop(KindQuitVote)
	assert.False(t, r.Running(KindQuitVote))
	clock.Advance(TickInterval)
	recvNothing(t, ticks)
}

func TestStopAllFreezesEverything(t *testing.T) {
	r, clock := newTestRunner(t)

	ticks := make(chan time.Duration, 16)
	r.Start(KindBreak, time.Minute, func(left time.Duration) { ticks <- left }, nil)
	r.Start(KindQuestion, time.Minute, func(left time.Duration) { ticks <- left }, nil)
	clock.BlockUntil(2)

	r.StopAll()
	assert.False(t, r.Running(KindBreak))
	assert.False(t, r.Running(KindQuestion))
	clock.Advance(TickInterval)
	recvNothing(t, ticks)
}

func TestDoneCallbackFiresOnce(t *testing.T) {
	r, clock := newTestRunner(t)

	done := make(chan struct{}, 4)
	r.Start(KindHandoff, TickInterval, nil, func() { done <- struct{}{} })
	clock.BlockUntil(1)
	clock.Advance(TickInterval)
	recv(t, done)

	clock.Advance(10 * TickInterval)
	recvNothing(t, done)
}

func TestRunningReflectsLifecycle(t *testing.T) {
	r, clock := newTestRunner(t)
	require.False(t, r.Running(KindPreMatch))

	r.Start(KindPreMatch, time.Minute, nil, nil)
	assert.True(t, r.Running(KindPreMatch))
	clock.BlockUntil(1)
	r.Stop(KindPreMatch)
	assert.False(t, r.Running(KindPreMatch))
}
