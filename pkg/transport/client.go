package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-go-golems/shopchat/pkg/chatwire"
)

// ErrTransport is the single failure kind of the request/reply transport.
// Network errors, timeouts, non-success statuses and decode failures all wrap it.
var ErrTransport = errors.New("transport failure")

// Error carries the failed operation and its cause. errors.Is(err, ErrTransport)
// holds for every Error.
type Error struct {
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Op + ": transport failure"
	}
	return e.Op + ": transport failure: " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return ErrTransport }

func failed(op string, cause error) error {
	return &Error{Op: op, Cause: cause}
}

const defaultRequestTimeout = 30 * time.Second

// Client issues request/reply calls to the assistant backend. It never retries;
// retry policy belongs to callers.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid base URL %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultRequestTimeout},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateSession asks the backend for a fresh session id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var out chatwire.SessionCreateResponse
	if err := c.postJSON(ctx, "create_session", "/session/create", nil, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", failed("create_session", errors.New("empty session id in response"))
	}
	c.logger.Debug().Str("session_id", out.SessionID).Msg("session created")
	return out.SessionID, nil
}

// SendMessageInput carries one outbound chat message. Text may be empty only
// when ImageBase64 is present; callers enforce this before invoking.
type SendMessageInput struct {
	Text        string
	ImageBase64 string
	SessionID   string
}

// SendMessage posts one message and returns exactly one assistant reply. The
// reply discriminator is validated against the closed kind set; unknown tags
// fail the call.
func (c *Client) SendMessage(ctx context.Context, in SendMessageInput) (*chatwire.ChatResponse, error) {
	req := chatwire.ChatRequest{
		Message:   in.Text,
		Image:     in.ImageBase64,
		SessionID: in.SessionID,
	}
	var out chatwire.ChatResponse
	if err := c.postJSON(ctx, "send_message", "/chat", req, &out); err != nil {
		return nil, err
	}
	if _, err := out.Kind(); err != nil {
		return nil, failed("send_message", err)
	}
	for _, p := range out.Products {
		if err := p.Validate(); err != nil {
			return nil, failed("send_message", err)
		}
	}
	c.logger.Debug().
		Str("message_type", out.MessageType).
		Int("products", len(out.Products)).
		Msg("chat reply received")
	return &out, nil
}

// Health probes the backend. Diagnostics only; never on a critical path.
func (c *Client) Health(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, failed("health", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, failed("health", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failed("health", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, failed("health", errors.Errorf("status %d", resp.StatusCode))
	}
	return json.RawMessage(body), nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return failed(op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return failed(op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return failed(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("backend returned non-success status")
		return failed(op, errors.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return failed(op, errors.Wrap(err, "decode response"))
	}
	return nil
}
