package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client's runtime configuration. Everything is sourced from
// the environment; there is no further runtime configuration surface.
type Config struct {
	// APIBaseURL is the request/reply transport base (http/https).
	APIBaseURL string
	// WSBaseURL is the push channel base (ws/wss), without the session id.
	WSBaseURL string
	// RequestTimeout bounds each request/reply call.
	RequestTimeout time.Duration
	// ReconnectDelay is the fixed wait between push channel reconnects.
	ReconnectDelay time.Duration
}

const (
	defaultAPIBaseURL     = "http://localhost:8000"
	defaultRequestTimeout = 30 * time.Second
	defaultReconnectDelay = 3 * time.Second
)

// LoadEnvFile loads a dotenv file if it exists. A missing file is not an
// error; a malformed one is.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Load reads the configuration from environment variables. When
// SHOPCHAT_WS_BASE_URL is unset, the websocket base is derived from the API
// base (http -> ws, https -> wss, path /ws).
func Load() (*Config, error) {
	apiBase := getEnvOrDefault("SHOPCHAT_API_BASE_URL", defaultAPIBaseURL)
	u, err := url.Parse(apiBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid SHOPCHAT_API_BASE_URL %q", apiBase)
	}

	wsBase := strings.TrimSpace(os.Getenv("SHOPCHAT_WS_BASE_URL"))
	if wsBase == "" {
		wsBase, err = deriveWSBase(u)
		if err != nil {
			return nil, err
		}
	} else {
		wu, err := url.Parse(wsBase)
		if err != nil || (wu.Scheme != "ws" && wu.Scheme != "wss") {
			return nil, fmt.Errorf("invalid SHOPCHAT_WS_BASE_URL %q", wsBase)
		}
	}

	timeout, err := parseSecondsEnv("SHOPCHAT_REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	delay, err := parseSecondsEnv("SHOPCHAT_RECONNECT_DELAY", defaultReconnectDelay)
	if err != nil {
		return nil, err
	}

	return &Config{
		APIBaseURL:     strings.TrimRight(apiBase, "/"),
		WSBaseURL:      strings.TrimRight(wsBase, "/"),
		RequestTimeout: timeout,
		ReconnectDelay: delay,
	}, nil
}

func deriveWSBase(api *url.URL) (string, error) {
	scheme := ""
	switch api.Scheme {
	case "http":
		scheme = "ws"
	case "https":
		scheme = "wss"
	default:
		return "", fmt.Errorf("cannot derive websocket URL from scheme %q", api.Scheme)
	}
	return scheme + "://" + api.Host + "/ws", nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseSecondsEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: want positive seconds", key, raw)
	}
	return time.Duration(secs) * time.Second, nil
}
