package channel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mathrelay/client/internal/session"
	"github.com/mathrelay/client/pkg/types"
)

// Config describes the channel endpoint and the local identity.
type Config struct {
	URL     string // websocket endpoint, e.g. wss://host/ws
	MatchID string
	UserID  string
	PartyID string

	DialTimeout  time.Duration
	WriteTimeout time.Duration

	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

func (c *Config) defaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.ReconnectMin == 0 {
		c.ReconnectMin = time.Second
	}
	if c.ReconnectMax == 0 {
		c.ReconnectMax = 30 * time.Second
	}
}

// Client owns the persistent event channel: it dials, joins the match room,
// pumps inbound frames into the session inbox, and redials with capped
// backoff when the connection drops. It never interprets events itself.
type Client struct {
	cfg   Config
	sess  *session.Session
	clock clockwork.Clock
	log   *zap.Logger

	id string

	mu   sync.Mutex
	conn connWriter
}

// connWriter is the slice of *websocket.Conn the emitters need; tests
// substitute a capture.
type connWriter interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
}

func New(cfg Config, sess *session.Session, clock clockwork.Clock, log *zap.Logger) *Client {
	cfg.defaults()
	return &Client{
		cfg:   cfg,
		sess:  sess,
		clock: clock,
		log:   log.With(zap.String("match_id", cfg.MatchID)),
		id:    uuid.NewString(),
	}
}

// Run dials and pumps the channel until ctx is cancelled or the session
// shuts down. Every disconnect flips the connectivity flag (the session
// freezes countdowns and keeps last-known state) and triggers a redial
// unless the match has already finalized.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.cfg.ReconnectMin

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.sess.Done():
			return nil
		default:
		}

		if c.finalized(ctx) {
			c.log.Info("match finalized, not reconnecting")
			return nil
		}

		conn, err := c.dial(ctx)
		if err != nil {
			c.log.Warn("dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !c.sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, c.cfg.ReconnectMax)
			continue
		}
		backoff = c.cfg.ReconnectMin

		c.setConn(conn)
		c.sess.Inbox() <- session.Connectivity{Connected: true}
		if err := c.Join(ctx); err != nil {
			c.log.Warn("join failed", zap.Error(err))
		}

		err = c.readLoop(ctx, conn)
		c.setConn(nil)
		c.sess.Inbox() <- session.Connectivity{Connected: false}

		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			c.log.Info("channel closed", zap.Error(err))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("channel read failed, reconnecting", zap.Error(err))
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(1 << 20)
	c.log.Info("channel connected", zap.String("connection_id", c.id))
	return conn, nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var env types.ServerEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn("bad frame", zap.Error(err))
			continue
		}
		if env.Event == "" {
			c.log.Warn("frame without event name")
			continue
		}
		c.sess.Inbox() <- session.FromChannel{Name: env.Event, Payload: env.Data}
	}
}

func (c *Client) setConn(conn connWriter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
}

func (c *Client) getConn() connWriter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// sleep waits out the backoff on the injected clock; false means ctx ended.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	t := c.clock.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.Chan():
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) finalized(ctx context.Context) bool {
	vctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	v, err := c.sess.View(vctx)
	if err != nil {
		return false
	}
	return v.State != nil && v.State.Finalized
}
