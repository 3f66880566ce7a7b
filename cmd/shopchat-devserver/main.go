package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/shopchat/pkg/chatwire"
)

// A stand-in backend so the client can be exercised end to end without the
// real assistant. Replies are canned; the websocket only carries pings.

func main() {
	var addr string

	rootCmd := &cobra.Command{
		Use:   "shopchat-devserver",
		Short: "Canned shopping-assistant backend for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			log.Logger = logger

			s := &server{logger: logger}
			r := chi.NewRouter()
			r.Post("/session/create", s.createSession)
			r.Post("/chat", s.chat)
			r.Get("/health", s.health)
			r.Get("/ws/{sessionID}", s.ws)

			logger.Info().Str("addr", addr).Msg("devserver listening")
			return http.ListenAndServe(addr, r)
		},
	}
	rootCmd.Flags().StringVar(&addr, "addr", ":8000", "HTTP listen address")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type server struct {
	logger zerolog.Logger
}

func (s *server) createSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	s.logger.Info().Str("session_id", id).Msg("session created")
	writeJSON(w, http.StatusOK, chatwire.SessionCreateResponse{SessionID: id})
}

func (s *server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatwire.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" && req.Image == "" {
		http.Error(w, "message or image required", http.StatusBadRequest)
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp := chatwire.ChatResponse{
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
	lower := strings.ToLower(req.Message)
	switch {
	case req.Image != "":
		resp.MessageType = string(chatwire.KindImageSearchResult)
		resp.Response = "I found these visually similar items:"
		resp.Products = similarProducts()
	case strings.Contains(lower, "product") || strings.Contains(lower, "show") ||
		strings.Contains(lower, "deal") || strings.Contains(lower, "sport"):
		resp.MessageType = string(chatwire.KindProductRecommendation)
		resp.Response = "Here are some picks you might like:"
		resp.Products = catalog()
	default:
		resp.MessageType = string(chatwire.KindPlainText)
		resp.Response = "You said: " + req.Message + ". Ask me to show you products!"
	}

	s.logger.Info().Str("session_id", sessionID).Str("message_type", resp.MessageType).Msg("chat reply")
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *server) ws(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.logger.Info().Str("session_id", sessionID).Msg("push connection opened")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	defer func() { _ = conn.Close() }()
	for {
		select {
		case <-done:
			s.logger.Info().Str("session_id", sessionID).Msg("push connection closed")
			return
		case <-ticker.C:
			frame := chatwire.PushFrame{Type: "ping"}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response failed")
	}
}

func score(v float64) *float64 { return &v }

func catalog() []chatwire.Product {
	return []chatwire.Product{
		{
			ID:          "p-1001",
			Name:        "Trail Running Shoes",
			Description: "Lightweight trail shoes with a grippy outsole.",
			Price:       89.99,
			Category:    "Footwear",
			SubCategory: "Running",
			Brand:       "Stride",
			Color:       "Blue",
			Gender:      "Unisex",
			InStock:     true,
			Features:    []string{"breathable mesh", "rock plate"},
		},
		{
			ID:          "p-1002",
			Name:        "Compression Training Tee",
			Description: "Moisture-wicking tee for high-intensity workouts.",
			Price:       24.50,
			Category:    "Apparel",
			SubCategory: "Tops",
			Brand:       "CoreFit",
			Color:       "Black",
			InStock:     true,
		},
		{
			ID:          "p-1003",
			Name:        "Insulated Water Bottle",
			Description: "Keeps drinks cold for 24 hours.",
			Price:       18.00,
			Category:    "Accessories",
			Brand:       "Hydra",
			InStock:     false,
		},
	}
}

func similarProducts() []chatwire.Product {
	items := catalog()
	scores := []float64{0.93, 0.81, 0.64}
	for i := range items {
		items[i].SimilarityScore = score(scores[i])
	}
	return items
}
