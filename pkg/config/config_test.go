package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHOPCHAT_API_BASE_URL", "")
	t.Setenv("SHOPCHAT_WS_BASE_URL", "")
	t.Setenv("SHOPCHAT_REQUEST_TIMEOUT", "")
	t.Setenv("SHOPCHAT_RECONNECT_DELAY", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	require.Equal(t, "ws://localhost:8000/ws", cfg.WSBaseURL)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, 3*time.Second, cfg.ReconnectDelay)
}

func TestLoadDerivesSecureWS(t *testing.T) {
	t.Setenv("SHOPCHAT_API_BASE_URL", "https://assistant.example.com")
	t.Setenv("SHOPCHAT_WS_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "wss://assistant.example.com/ws", cfg.WSBaseURL)
}

func TestLoadExplicitWSBase(t *testing.T) {
	t.Setenv("SHOPCHAT_API_BASE_URL", "http://localhost:8000")
	t.Setenv("SHOPCHAT_WS_BASE_URL", "ws://push.example.com/stream")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "ws://push.example.com/stream", cfg.WSBaseURL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SHOPCHAT_API_BASE_URL", "not a url")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("SHOPCHAT_API_BASE_URL", "http://localhost:8000")
	t.Setenv("SHOPCHAT_WS_BASE_URL", "http://not-ws.example.com")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("SHOPCHAT_WS_BASE_URL", "")
	t.Setenv("SHOPCHAT_REQUEST_TIMEOUT", "zero")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("SHOPCHAT_REQUEST_TIMEOUT", "-3")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadCustomDurations(t *testing.T) {
	t.Setenv("SHOPCHAT_API_BASE_URL", "http://localhost:8000")
	t.Setenv("SHOPCHAT_WS_BASE_URL", "")
	t.Setenv("SHOPCHAT_REQUEST_TIMEOUT", "5")
	t.Setenv("SHOPCHAT_RECONNECT_DELAY", "1")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, time.Second, cfg.ReconnectDelay)
}
