package pushchannel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-go-golems/shopchat/pkg/chatwire"
)

// State is the push channel's connection state. Transitions:
// Idle -> Connecting -> Open, Open -> Reconnecting -> Connecting on abnormal
// close, any state -> Closed on explicit teardown. Closed is terminal.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// EventKind distinguishes state transitions from inbound frames on the shared
// event stream.
type EventKind int

const (
	EventStateChange EventKind = iota
	EventFrame
)

// Event is one observable occurrence on the channel. State events carry the
// entered state (and the triggering error for Reconnecting); frame events
// carry a decoded push envelope.
type Event struct {
	Kind  EventKind
	State State
	Err   error
	Frame *chatwire.PushFrame
}

var (
	ErrNoSession      = errors.New("push channel requires a session id")
	ErrAlreadyStarted = errors.New("push channel already started")
)

// DefaultReconnectDelay is the fixed wait between reconnect attempts.
const DefaultReconnectDelay = 3 * time.Second

const eventBufferSize = 64

// Channel owns one persistent websocket connection scoped to a session id.
// It retries abnormal closes forever with a fixed delay and only reaches
// Closed through Close.
type Channel struct {
	url    string
	dialer *websocket.Dialer
	policy backoff.BackOff
	logger zerolog.Logger
	events chan Event

	mu      sync.Mutex
	state   State
	conn    *websocket.Conn
	cancel  context.CancelFunc
	started bool
}

type Option func(*Channel)

// WithBackoff replaces the reconnect delay policy. The production contract is
// a constant interval; tests shorten it.
func WithBackoff(b backoff.BackOff) Option {
	return func(c *Channel) {
		if b != nil {
			c.policy = b
		}
	}
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) {
		if d != nil {
			c.dialer = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Channel) {
		c.logger = l
	}
}

// New builds a channel for wsBaseURL/{sessionID}. An empty session id is
// allowed here; Start will refuse to leave Idle without one.
func New(wsBaseURL, sessionID string, opts ...Option) *Channel {
	c := &Channel{
		dialer: websocket.DefaultDialer,
		policy: backoff.NewConstantBackOff(DefaultReconnectDelay),
		logger: zerolog.Nop(),
		events: make(chan Event, eventBufferSize),
		state:  StateIdle,
	}
	if sessionID != "" {
		c.url = wsBaseURL + "/" + sessionID
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events exposes the channel's observable stream. The channel never closes it;
// consumers select against their own context.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// State returns the current connection state. Diagnostic only; never a source
// of truth for message delivery.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start launches the dial/read loop. Without a session id the channel stays
// Idle and Start returns ErrNoSession.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.url == "" {
		c.mu.Unlock()
		return ErrNoSession
	}
	if c.state == StateClosed {
		c.mu.Unlock()
		return errors.New("push channel is closed")
	}
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(runCtx)
	return nil
}

// Close tears the channel down from any state. Idempotent. Cancels any pending
// retry wait, closes the live connection and emits a final Closed event.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.logger.Debug().Msg("push channel closed")
	c.emit(Event{Kind: EventStateChange, State: StateClosed})
}

// Send writes one JSON frame, best effort. Frames are dropped unless the
// channel is Open; delivery is not acknowledged.
func (c *Channel) Send(v any) error {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()
	if !open || conn == nil {
		c.logger.Debug().Str("state", c.State().String()).Msg("push send dropped, channel not open")
		return nil
	}
	if err := conn.WriteJSON(v); err != nil {
		return errors.Wrap(err, "push send")
	}
	return nil
}

func (c *Channel) run(ctx context.Context) {
	for {
		if !c.transition(StateConnecting, nil) {
			return
		}
		conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn().Err(err).Str("url", c.url).Msg("push channel dial failed")
			if !c.retryAfterDelay(ctx, err) {
				return
			}
			continue
		}

		c.setConn(conn)
		c.policy.Reset()
		if !c.transition(StateOpen, nil) {
			_ = conn.Close()
			return
		}
		c.logger.Info().Str("url", c.url).Msg("push channel connected")

		err = c.readLoop(conn)
		c.setConn(nil)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		c.logger.Warn().Err(err).Msg("push channel connection lost")
		if !c.retryAfterDelay(ctx, err) {
			return
		}
	}
}

func (c *Channel) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var frame chatwire.PushFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.Warn().Err(err).Msg("discarding undecodable push frame")
			continue
		}
		c.emit(Event{Kind: EventFrame, State: StateOpen, Frame: &frame})
	}
}

// retryAfterDelay enters Reconnecting and waits out the backoff interval.
// Returns false when the channel was closed or the context cancelled.
func (c *Channel) retryAfterDelay(ctx context.Context, cause error) bool {
	if !c.transition(StateReconnecting, cause) {
		return false
	}
	d := c.policy.NextBackOff()
	if d == backoff.Stop {
		d = DefaultReconnectDelay
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// transition moves to next unless the channel is already Closed, emitting a
// state-change event. Returns false when Closed won the race.
func (c *Channel) transition(next State, cause error) bool {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return false
	}
	c.state = next
	c.mu.Unlock()

	c.emit(Event{Kind: EventStateChange, State: next, Err: cause})
	return true
}

func (c *Channel) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

// emit never blocks; a slow consumer loses events rather than stalling the
// read loop.
func (c *Channel) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.logger.Warn().Str("state", ev.State.String()).Msg("push event dropped, consumer too slow")
	}
}
