package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/shopchat/pkg/chatwire"
)

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("not a url")
	require.Error(t, err)

	_, err = New("")
	require.Error(t, err)
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/session/create", r.URL.Path)
		_ = json.NewEncoder(w).Encode(chatwire.SessionCreateResponse{SessionID: "sess-1"})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	id, err := c.CreateSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sess-1", id)
}

func TestCreateSessionEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.CreateSession(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTransport))
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)
		var req chatwire.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "show me shoes", req.Message)
		require.Equal(t, "sess-1", req.SessionID)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"response":     "here you go",
			"session_id":   "sess-1",
			"timestamp":    "2025-01-02T03:04:05Z",
			"message_type": "product_recommendation",
			"products": []map[string]any{
				{"id": "p-1", "name": "Shoe", "description": "", "price": 10.0, "in_stock": true},
			},
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	resp, err := c.SendMessage(context.Background(), SendMessageInput{Text: "show me shoes", SessionID: "sess-1"})
	require.NoError(t, err)
	require.Equal(t, "here you go", resp.Response)
	require.Len(t, resp.Products, 1)

	kind, err := resp.Kind()
	require.NoError(t, err)
	require.Equal(t, chatwire.KindProductRecommendation, kind)
}

func TestSendMessageUnknownKindFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response":     "hi",
			"session_id":   "sess-1",
			"timestamp":    "2025-01-02T03:04:05Z",
			"message_type": "telepathy",
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.SendMessage(context.Background(), SendMessageInput{Text: "hi"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTransport))
}

func TestSendMessageInvalidProductFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response":     "hi",
			"session_id":   "sess-1",
			"timestamp":    "2025-01-02T03:04:05Z",
			"message_type": "product_recommendation",
			"products": []map[string]any{
				{"id": "p-1", "name": "Shoe", "description": "", "price": -5.0, "in_stock": true},
			},
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.SendMessage(context.Background(), SendMessageInput{Text: "hi"})
	require.Error(t, err)
}

func TestNonSuccessStatusIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.SendMessage(context.Background(), SendMessageInput{Text: "hi"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTransport))

	var te *Error
	require.True(t, errors.As(err, &te))
	require.Equal(t, "send_message", te.Op)
}

func TestNetworkErrorIsTransportFailure(t *testing.T) {
	c, err := New("http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = c.CreateSession(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTransport))
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	raw, err := c.Health(context.Background())
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"ok"}`, string(raw))
}
