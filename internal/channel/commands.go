package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coder/websocket"

	"github.com/mathrelay/client/internal/engine"
	"github.com/mathrelay/client/internal/session"
	"github.com/mathrelay/client/pkg/types"
)

var ErrNotConnected = errors.New("channel not connected")

// send marshals one outbound command envelope onto the channel.
func (c *Client) send(ctx context.Context, event string, data any) error {
	conn := c.getConn()
	if conn == nil {
		return ErrNotConnected
	}
	payload, err := json.Marshal(types.ClientCommand{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	wctx, cancel := context.WithTimeout(ctx, c.cfg.WriteTimeout)
	defer cancel()
	if err := conn.Write(wctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

// Join announces this player to the match room. Sent automatically after
// every (re)connect.
func (c *Client) Join(ctx context.Context) error {
	return c.send(ctx, "join_team_match", types.JoinTeamMatch{
		MatchID: c.cfg.MatchID,
		UserID:  c.cfg.UserID,
		PartyID: c.cfg.PartyID,
	})
}

func (c *Client) SubmitAnswer(ctx context.Context, answer string) error {
	return c.send(ctx, "submit_answer", types.SubmitAnswer{
		MatchID: c.cfg.MatchID,
		UserID:  c.cfg.UserID,
		Answer:  answer,
	})
}

func (c *Client) TypingUpdate(ctx context.Context, currentInput string) error {
	return c.send(ctx, "typing_update", types.TypingUpdate{
		MatchID:      c.cfg.MatchID,
		UserID:       c.cfg.UserID,
		CurrentInput: currentInput,
	})
}

func (c *Client) UpdateSlotAssignment(ctx context.Context, playerID, newSlot string) error {
	return c.send(ctx, "update_slot_assignment", types.UpdateSlotAssignment{
		MatchID:  c.cfg.MatchID,
		UserID:   c.cfg.UserID,
		PlayerID: playerID,
		NewSlot:  newSlot,
	})
}

func (c *Client) ConfirmSlots(ctx context.Context) error {
	return c.send(ctx, "confirm_slots", types.ConfirmSlots{
		MatchID: c.cfg.MatchID,
		UserID:  c.cfg.UserID,
	})
}

// AnchorCallin requests a double call-in. The request only goes out if the
// local ledger still shows the ability available for the half; the server
// confirmation is what actually marks it used.
func (c *Client) AnchorCallin(ctx context.Context, targetRound, targetSlot, half int) error {
	v, err := c.view(ctx)
	if err != nil {
		return err
	}
	if v.State != nil && !v.State.Abilities.DoubleCallinAvailable(half) {
		return fmt.Errorf("double call-in half %d: %w", half, engine.ErrAbilityUsed)
	}
	return c.send(ctx, "anchor_callin", types.AnchorCallin{
		MatchID:     c.cfg.MatchID,
		UserID:      c.cfg.UserID,
		TargetRound: targetRound,
		TargetSlot:  targetSlot,
		Half:        half,
	})
}

// AnchorSoloRequest requests the once-per-match solo override.
func (c *Client) AnchorSoloRequest(ctx context.Context) error {
	v, err := c.view(ctx)
	if err != nil {
		return err
	}
	if v.State != nil && v.State.Abilities.AnchorSoloUsed {
		return fmt.Errorf("anchor solo: %w", engine.ErrAbilityUsed)
	}
	return c.send(ctx, "anchor_solo", types.AnchorSolo{MatchID: c.cfg.MatchID})
}

func (c *Client) AnchorSoloDecision(ctx context.Context, decision string) error {
	return c.send(ctx, "anchor_solo_decision", types.AnchorSoloDecision{
		MatchID:  c.cfg.MatchID,
		UserID:   c.cfg.UserID,
		Decision: decision,
	})
}

// IGLTimeout requests a tactical timeout if credits remain locally. The
// credit count itself is only ever decremented from server confirmations.
func (c *Client) IGLTimeout(ctx context.Context) error {
	v, err := c.view(ctx)
	if err != nil {
		return err
	}
	if v.State != nil && v.State.Abilities.TimeoutsRemaining <= 0 {
		return fmt.Errorf("timeout: %w", engine.ErrAbilityUsed)
	}
	return c.send(ctx, "igl_timeout", types.IGLTimeout{
		MatchID: c.cfg.MatchID,
		UserID:  c.cfg.UserID,
	})
}

// InitiateQuitVote is leader-only; anyone else gets ErrNotLeader locally.
func (c *Client) InitiateQuitVote(ctx context.Context) error {
	v, err := c.view(ctx)
	if err != nil {
		return err
	}
	if v.State != nil {
		if team := v.State.MyTeam(); team != nil && team.LeaderID != c.cfg.UserID {
			return engine.ErrNotLeader
		}
	}
	return c.send(ctx, "initiate_quit_vote", types.InitiateQuitVote{MatchID: c.cfg.MatchID})
}

func (c *Client) CastQuitVote(ctx context.Context, vote string) error {
	return c.send(ctx, "cast_quit_vote", types.CastQuitVote{
		MatchID: c.cfg.MatchID,
		Vote:    vote,
	})
}

// LeaveMatch tells the server we're gone; the session-side cleanup (snapshot
// clear, teardown) happens through the session's Leave message.
func (c *Client) LeaveMatch(ctx context.Context) error {
	return c.send(ctx, "leave_match", types.LeaveMatch{MatchID: c.cfg.MatchID})
}

func (c *Client) view(ctx context.Context) (session.View, error) {
	return c.sess.View(ctx)
}
