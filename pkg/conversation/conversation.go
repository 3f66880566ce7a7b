package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-go-golems/shopchat/pkg/chatwire"
	"github.com/go-go-golems/shopchat/pkg/pushchannel"
	"github.com/go-go-golems/shopchat/pkg/session"
	"github.com/go-go-golems/shopchat/pkg/transport"
)

// Sender identifies who produced a log entry.
type Sender int

const (
	SenderUser Sender = iota
	SenderAssistant
)

func (s Sender) String() string {
	if s == SenderUser {
		return "user"
	}
	return "assistant"
}

// ErrorNoticeText is the user-facing body of an error notice appended when a
// send fails.
const ErrorNoticeText = "Sorry, I encountered an error. Please try again."

// Message is one entry in the append-only conversation log. IDs come from a
// local monotonic sequence, decoupled from wall clocks, so ordering survives
// clock skew and rapid successive sends.
type Message struct {
	ID          int64
	Sender      Sender
	Text        string
	ImageBase64 string
	Products    []chatwire.Product
	Kind        chatwire.MessageKind
	CreatedAt   time.Time
	// ServerTimestamp is the backend's reply timestamp, kept for display only;
	// it never participates in ordering.
	ServerTimestamp time.Time
}

// MessageSender is the slice of the transport client the conversation needs.
type MessageSender interface {
	SendMessage(ctx context.Context, in transport.SendMessageInput) (*chatwire.ChatResponse, error)
}

// SessionSource reports the session's lifecycle state and id.
type SessionSource interface {
	SessionID() (string, bool)
	Status() session.Status
}

// View is a copied snapshot of the conversation for rendering.
type View struct {
	Messages      []Message
	Typing        bool
	Connection    pushchannel.State
	Session       session.Status
	SessionActive bool
}

// Rejection reasons for Submit. A rejected submit leaves the log untouched.
var (
	ErrEmptySubmission = errors.New("submission needs text or an image")
	ErrSessionInactive = errors.New("session is not active")
	ErrSendInFlight    = errors.New("a send is already in flight")
)

// Conversation merges user intents, transport replies and push events into one
// ordered log plus status flags. It is the only writer of the log; a user
// message is always appended strictly before its assistant or error
// counterpart because both appends happen on the same Submit call.
type Conversation struct {
	sender  MessageSender
	session SessionSource
	logger  zerolog.Logger
	clock   func() time.Time

	mu      sync.Mutex
	log     []Message
	nextSeq int64
	typing  bool
	conn    pushchannel.State

	updates chan struct{}
}

type Option func(*Conversation)

// WithClock overrides the timestamp source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) {
		if now != nil {
			c.clock = now
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Conversation) {
		c.logger = l
	}
}

func New(sender MessageSender, session SessionSource, opts ...Option) *Conversation {
	c := &Conversation{
		sender:  sender,
		session: session,
		logger:  zerolog.Nop(),
		clock:   time.Now,
		nextSeq: 1,
		conn:    pushchannel.StateIdle,
		updates: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit sends one message. Rejections (empty submission, inactive session,
// send in flight) return an error with no log mutation. An accepted submit
// always appends exactly two entries — the optimistic user message and, once
// the transport resolves, either the assistant reply or an error notice — and
// returns nil even when the transport failed: send failures surface in the
// log, not as faults.
func (c *Conversation) Submit(ctx context.Context, text, imageBase64 string) error {
	if text == "" && imageBase64 == "" {
		return ErrEmptySubmission
	}
	sessionID, ok := c.session.SessionID()
	if !ok {
		return ErrSessionInactive
	}

	c.mu.Lock()
	if c.typing {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.typing = true
	c.appendLocked(Message{
		Sender:      SenderUser,
		Text:        text,
		ImageBase64: imageBase64,
		Kind:        chatwire.KindPlainText,
	})
	c.mu.Unlock()
	c.notify()

	reply, err := c.sender.SendMessage(ctx, transport.SendMessageInput{
		Text:        text,
		ImageBase64: imageBase64,
		SessionID:   sessionID,
	})

	c.mu.Lock()
	if err != nil {
		c.logger.Warn().Err(err).Msg("send failed, appending error notice")
		c.appendLocked(Message{
			Sender: SenderAssistant,
			Text:   ErrorNoticeText,
			Kind:   chatwire.KindErrorNotice,
		})
	} else {
		// unknown discriminators are rejected at the transport boundary
		kind, kindErr := reply.Kind()
		if kindErr != nil {
			kind = chatwire.KindPlainText
		}
		c.appendLocked(Message{
			Sender:          SenderAssistant,
			Text:            reply.Response,
			Products:        reply.Products,
			Kind:            kind,
			ServerTimestamp: reply.Timestamp,
		})
	}
	c.typing = false
	c.mu.Unlock()
	c.notify()
	return nil
}

// QuickAction seeds the conversation with a suggested prompt.
func (c *Conversation) QuickAction(ctx context.Context, text string) error {
	return c.Submit(ctx, text, "")
}

// ObserveConnection folds a push channel event into the displayed connection
// status. Push events never touch the message log.
func (c *Conversation) ObserveConnection(ev pushchannel.Event) {
	if ev.Kind != pushchannel.EventStateChange {
		return
	}
	c.mu.Lock()
	c.conn = ev.State
	c.mu.Unlock()
	c.notify()
}

// Typing reports whether a send is in flight.
func (c *Conversation) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// Snapshot copies the current materialized view.
func (c *Conversation) Snapshot() View {
	_, active := c.session.SessionID()
	status := c.session.Status()
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]Message, len(c.log))
	copy(msgs, c.log)
	return View{
		Messages:      msgs,
		Typing:        c.typing,
		Connection:    c.conn,
		Session:       status,
		SessionActive: active,
	}
}

// Refresh wakes observers to re-read the snapshot, for state the conversation
// does not own (session lifecycle changes).
func (c *Conversation) Refresh() {
	c.notify()
}

// Updates signals view changes, coalesced: a pending signal absorbs later
// ones until consumed.
func (c *Conversation) Updates() <-chan struct{} {
	return c.updates
}

func (c *Conversation) appendLocked(m Message) {
	m.ID = c.nextSeq
	c.nextSeq++
	m.CreatedAt = c.clock()
	c.log = append(c.log, m)
}

func (c *Conversation) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}
