package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mathrelay/client/internal/countdown"
	"github.com/mathrelay/client/internal/engine"
	"github.com/mathrelay/client/internal/event"
)

// Store persists terminal match snapshots across reloads.
type Store interface {
	Save(matchID string, state *engine.MatchState) error
	Load(matchID string) (*engine.MatchState, error)
	Clear(matchID string) error
}

type Msg interface{ isSessionMsg() }

// FromChannel carries one raw named event off the transport.
type FromChannel struct {
	Name    string
	Payload []byte
}

func (FromChannel) isSessionMsg() {}

// Connectivity flips the transport flag. Disconnecting freezes local
// countdowns and keeps the last-known state on display.
type Connectivity struct{ Connected bool }

func (Connectivity) isSessionMsg() {}

type Subscribe struct {
	ID     string
	Outbox chan Snapshot
}

func (Subscribe) isSessionMsg() {}

type Unsubscribe struct{ ID string }

func (Unsubscribe) isSessionMsg() {}

type GetState struct{ Reply chan View }

func (GetState) isSessionMsg() {}

// Leave is the intentional return-to-menu action: it clears the durable
// snapshot and tears the session down.
type Leave struct{ Reply chan error }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// displayTick is posted by countdown loops; it only adjusts the displayed
// remaining time, never game state.
type displayTick struct{ remainingMs int64 }

func (displayTick) isSessionMsg() {}

// clearVote fires after the post-resolution display grace.
type clearVote struct{}

func (clearVote) isSessionMsg() {}

// Snapshot is what subscribers (the rendering layer) receive after every
// applied event. State is shared; subscribers must treat it as read-only.
type Snapshot struct {
	Version   int
	Connected bool
	State     *engine.MatchState
}

// View is the test/status reflection of session internals.
type View struct {
	Version        int
	Connected      bool
	NumSubscribers int
	State          *engine.MatchState
}

const (
	quitVoteDefault = 30 * time.Second
	voteClearDelay  = 3 * time.Second
)

// Session is the single point of sequencing: one goroutine owns the match
// state, every inbound event is fully applied before the next is read, and
// nothing else ever mutates the tree.
type Session struct {
	matchID string
	inbox   chan Msg
	state   *engine.MatchState
	version int

	connected bool
	subs      map[string]chan Snapshot

	store  Store
	timers *countdown.Runner
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a session for one match. If the store holds a terminal
// snapshot for the match it becomes the effective state immediately, ahead
// of any channel event; the terminal guard then keeps stale replays out.
func New(parent context.Context, matchID string, store Store, timers *countdown.Runner, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		matchID: matchID,
		inbox:   make(chan Msg, 256),
		subs:    make(map[string]chan Snapshot),
		store:   store,
		timers:  timers,
		log:     log.With(zap.String("match_id", matchID)),
		ctx:     ctx,
		cancel:  cancel,
	}

	if restored, err := store.Load(matchID); err != nil {
		s.log.Warn("snapshot restore failed", zap.Error(err))
	} else if restored != nil && restored.Finalized {
		s.state = restored
		s.version = 1
		s.log.Info("restored terminal snapshot", zap.String("phase", string(restored.Phase)))
	}

	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

// View blocks until the session reflects its current state.
func (s *Session) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case s.inbox <- GetState{Reply: reply}:
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-s.ctx.Done():
		return View{}, s.ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case FromChannel:
				s.handleEvent(msg.Name, msg.Payload)

			case Connectivity:
				s.connected = msg.Connected
				if !msg.Connected {
					// Freeze, don't clear: last-known state stays up
					// through the grace period.
					s.timers.StopAll()
					s.log.Warn("channel disconnected")
				} else {
					s.log.Info("channel connected")
				}
				s.broadcast()

			case Subscribe:
				s.subs[msg.ID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: s.version, Connected: s.connected, State: s.state}

			case Unsubscribe:
				delete(s.subs, msg.ID)

			case GetState:
				msg.Reply <- View{
					Version:        s.version,
					Connected:      s.connected,
					NumSubscribers: len(s.subs),
					State:          s.state,
				}

			case displayTick:
				if s.state != nil && !s.state.Finalized {
					s.state.CountdownMs = msg.remainingMs
					s.broadcast()
				}

			case clearVote:
				if s.state != nil {
					s.state.ClearQuitVote()
					s.version++
					s.broadcast()
				}

			case Leave:
				err := s.store.Clear(s.matchID)
				if err != nil {
					s.log.Warn("snapshot clear failed", zap.Error(err))
				}
				if msg.Reply != nil {
					msg.Reply <- err
				}
				s.shutdown()
				return

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// handleEvent is the decode -> apply -> broadcast pipeline for one event.
// Errors are classified per the failure taxonomy; none of them stop the loop.
func (s *Session) handleEvent(name string, payload []byte) {
	ev, err := event.Decode(name, payload)
	if err != nil {
		if errors.Is(err, event.ErrUnknownEvent) {
			s.log.Debug("ignoring unknown event", zap.String("event", name))
		} else {
			s.log.Warn("dropping malformed event", zap.String("event", name), zap.Error(err))
		}
		return
	}

	wasFinal := s.state != nil && s.state.Finalized
	next, err := engine.Apply(s.state, ev)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrStaleTerminalUpdate):
			s.log.Debug("dropping stale post-terminal event", zap.String("event", name))
		case errors.Is(err, engine.ErrNoMatchState):
			s.log.Debug("event before first snapshot", zap.String("event", name))
		case errors.Is(err, engine.ErrUnknownTeam), errors.Is(err, engine.ErrUnknownPlayer):
			s.log.Warn("event references unknown entity", zap.String("event", name), zap.Error(err))
		default:
			s.log.Warn("event rejected", zap.String("event", name), zap.Error(err))
		}
		return
	}

	s.state = next
	s.version++
	s.log.Debug("applied event", zap.String("event", name), zap.Int("version", s.version))

	if !wasFinal && s.state.Finalized {
		s.timers.StopAll()
		if err := s.store.Save(s.matchID, s.state); err != nil {
			// Non-fatal: in-memory state stays authoritative this session.
			s.log.Warn("terminal snapshot write failed", zap.Error(err))
		} else {
			s.log.Info("terminal snapshot persisted", zap.String("phase", string(s.state.Phase)))
		}
	}

	s.syncCountdowns(ev)
	s.broadcast()
}

// syncCountdowns restarts the local display loops that the event affects.
// Server time always wins: every (re)start seeds from the state's absolute
// CountdownMs, and starting a kind replaces its previous loop.
func (s *Session) syncCountdowns(ev engine.Event) {
	if s.state == nil || s.state.Finalized {
		return
	}

	switch name := ev.EventName(); name {
	case engine.EvtPreMatchCountdown, engine.EvtPreMatchCountdownTick:
		s.restartPhaseCountdown(countdown.KindPreMatch)
	case engine.EvtStrategyPhaseStart, engine.EvtStrategyTimeUpdate:
		s.restartPhaseCountdown(countdown.KindStrategy)
	case engine.EvtRoundCountdown, engine.EvtRoundCountdownTick:
		s.restartPhaseCountdown(countdown.KindRound)
	case engine.EvtRoundBreak, engine.EvtBreakTimeUpdate:
		s.restartPhaseCountdown(countdown.KindBreak)
	case engine.EvtHalftime, engine.EvtHalftimeTimeUpdate:
		s.restartPhaseCountdown(countdown.KindHalftime)
	case engine.EvtSoloDecisionPhase:
		s.restartPhaseCountdown(countdown.KindDecision)
	case engine.EvtTimeoutWarning:
		s.restartPhaseCountdown(countdown.KindQuestion)
	case engine.EvtHandoffCountdown:
		s.restartPhaseCountdown(countdown.KindHandoff)

	case engine.EvtTimeoutCalled, engine.EvtDoubleCallinActivated:
		// Break extensions re-seed whichever pause countdown is running.
		switch s.state.Phase {
		case engine.PhaseBreak:
			s.restartPhaseCountdown(countdown.KindBreak)
		case engine.PhaseHalftime:
			s.restartPhaseCountdown(countdown.KindHalftime)
		}

	case engine.EvtMatchStart, engine.EvtRoundStart:
		for _, k := range []countdown.Kind{
			countdown.KindPreMatch, countdown.KindStrategy, countdown.KindRound,
			countdown.KindBreak, countdown.KindHalftime, countdown.KindDecision,
			countdown.KindHandoff,
		} {
			s.timers.Stop(k)
		}

	case engine.EvtQuitVoteStarted:
		remaining := quitVoteDefault
		if qvs, ok := ev.(engine.QuitVoteStarted); ok {
			remaining = quitVoteRemaining(qvs, s.timers.Clock().Now())
		}
		// Cosmetic only; expiry resolves nothing, the server does.
		s.timers.Start(countdown.KindQuitVote, remaining, nil, nil)

	case engine.EvtQuitVoteResult:
		s.timers.Stop(countdown.KindQuitVote)
		s.timers.Start(countdown.KindVoteClear, voteClearDelay, nil, func() {
			s.post(clearVote{})
		})
	}
}

// quitVoteRemaining picks the cosmetic vote countdown: an absolute expiry
// wins, then the server-sent duration, then the default.
func quitVoteRemaining(ev engine.QuitVoteStarted, now time.Time) time.Duration {
	if ev.ExpiresAtMs > 0 {
		if ms := ev.ExpiresAtMs - now.UnixMilli(); ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	if ev.DurationSec > 0 {
		return time.Duration(ev.DurationSec) * time.Second
	}
	return quitVoteDefault
}

func (s *Session) restartPhaseCountdown(kind countdown.Kind) {
	ms := s.state.CountdownMs
	if ms <= 0 {
		s.timers.Stop(kind)
		return
	}
	s.timers.Start(kind, time.Duration(ms)*time.Millisecond, func(left time.Duration) {
		s.post(displayTick{remainingMs: left.Milliseconds()})
	}, nil)
}

// post delivers a message from a timer goroutine without ever blocking the
// runner; display messages are droppable.
func (s *Session) post(m Msg) {
	select {
	case s.inbox <- m:
	default:
	}
}

func (s *Session) broadcast() {
	snap := Snapshot{Version: s.version, Connected: s.connected, State: s.state}
	for id, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Subscriber is slow or gone - drop it.
			close(ch)
			delete(s.subs, id)
		}
	}
}

func (s *Session) shutdown() {
	s.timers.StopAll()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.cancel()
}

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }
