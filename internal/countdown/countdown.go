package countdown

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Kind names one family of local countdown. Starting a kind replaces any
// running timer of the same kind, so a stale loop can never keep ticking
// under a fresh one.
type Kind string

const (
	KindPreMatch  Kind = "pre_match"
	KindStrategy  Kind = "strategy"
	KindRound     Kind = "round_countdown"
	KindBreak     Kind = "break"
	KindHalftime  Kind = "halftime"
	KindDecision  Kind = "anchor_decision"
	KindQuestion  Kind = "question"
	KindHandoff   Kind = "handoff"
	KindQuitVote  Kind = "quit_vote"
	KindVoteClear Kind = "vote_clear"
)

// TickInterval is the display interpolation step.
const TickInterval = 250 * time.Millisecond

// Runner owns every local countdown loop. The loops only interpolate
// remaining time for display; the server's absolute time updates overwrite
// them. The clock is injected so tests drive time with a fake.
type Runner struct {
	clock clockwork.Clock
	log   *zap.Logger

	mu     sync.Mutex
	active map[Kind]chan struct{}
}

func NewRunner(clock clockwork.Clock, log *zap.Logger) *Runner {
	return &Runner{
		clock:  clock,
		log:    log,
		active: make(map[Kind]chan struct{}),
	}
}

// Start launches (or replaces) the countdown of the given kind. onTick is
// invoked every TickInterval with the interpolated remaining duration and
// onDone once when it reaches zero. Both may be nil. Callbacks run on the
// runner goroutine; callees must not block.
func (r *Runner) Start(kind Kind, remaining time.Duration, onTick func(time.Duration), onDone func()) {
	stop := make(chan struct{})

	r.mu.Lock()
	if prev, ok := r.active[kind]; ok {
		close(prev)
	}
	r.active[kind] = stop
	r.mu.Unlock()

	go r.run(kind, remaining, stop, onTick, onDone)
}

func (r *Runner) run(kind Kind, remaining time.Duration, stop chan struct{}, onTick func(time.Duration), onDone func()) {
	ticker := r.clock.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			// A replacement may have landed while the tick was pending.
			select {
			case <-stop:
				return
			default:
			}
			remaining -= TickInterval
			if remaining <= 0 {
				r.release(kind, stop)
				if onTick != nil {
					onTick(0)
				}
				if onDone != nil {
					onDone()
				}
				return
			}
			if onTick != nil {
				onTick(remaining)
			}
		}
	}
}

// Stop cancels the countdown of one kind, if running.
func (r *Runner) Stop(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stop, ok := r.active[kind]; ok {
		close(stop)
		delete(r.active, kind)
	}
}

// StopAll cancels every running countdown. Used on disconnect (ticks freeze,
// last state stays displayed) and on session teardown.
func (r *Runner) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for kind, stop := range r.active {
		close(stop)
		delete(r.active, kind)
	}
}

// Clock exposes the runner's time source so callers derive deadlines from
// the same clock the tick loops run on.
func (r *Runner) Clock() clockwork.Clock { return r.clock }

// Running reports whether a countdown of the kind is live.
func (r *Runner) Running(kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[kind]
	return ok
}

// release clears the bookkeeping entry when a loop finishes on its own,
// unless a replacement has already taken the slot.
func (r *Runner) release(kind Kind, stop chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.active[kind]; ok && cur == stop {
		delete(r.active, kind)
	}
}
