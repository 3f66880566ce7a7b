package chatwire

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// MessageKind is the closed set of reply discriminators the backend may emit.
// Unknown tags are a decode failure, not a pass-through.
type MessageKind string

const (
	KindPlainText             MessageKind = "text"
	KindProductRecommendation MessageKind = "product_recommendation"
	KindImageSearchResult     MessageKind = "image_search"
	KindErrorNotice           MessageKind = "error"
)

// ErrUnknownKind is returned when the wire carries a discriminator outside the
// closed variant set.
var ErrUnknownKind = errors.New("unknown message kind")

// ParseMessageKind validates a wire discriminator against the closed set.
func ParseMessageKind(s string) (MessageKind, error) {
	switch k := MessageKind(s); k {
	case KindPlainText, KindProductRecommendation, KindImageSearchResult, KindErrorNotice:
		return k, nil
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q", s)
}

func (k MessageKind) String() string { return string(k) }

// Product is a structured catalog item attached to assistant replies.
// Immutable once attached to a message.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category,omitempty"`
	SubCategory string   `json:"sub_category,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Color       string   `json:"color,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	ImageBase64 string   `json:"image_base64,omitempty"`
	InStock     bool     `json:"in_stock"`
	// SimilarityScore is only populated for visual-search results.
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	Features        []string `json:"features,omitempty"`
}

// Validate enforces the numeric bounds of the wire contract.
func (p Product) Validate() error {
	if p.Price < 0 {
		return errors.Errorf("product %s: negative price %v", p.ID, p.Price)
	}
	if p.SimilarityScore != nil && (*p.SimilarityScore < 0 || *p.SimilarityScore > 1) {
		return errors.Errorf("product %s: similarity score %v out of [0,1]", p.ID, *p.SimilarityScore)
	}
	return nil
}

// ChatRequest is the POST /chat body. Image is a base64-encoded payload; the
// caller guarantees message or image is present.
type ChatRequest struct {
	Message   string `json:"message"`
	Image     string `json:"image,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the raw POST /chat reply before kind validation.
type ChatResponse struct {
	Response    string    `json:"response"`
	Products    []Product `json:"products,omitempty"`
	SessionID   string    `json:"session_id"`
	Timestamp   time.Time `json:"timestamp"`
	MessageType string    `json:"message_type"`
}

// Kind validates the discriminator against the closed variant set.
func (r ChatResponse) Kind() (MessageKind, error) {
	return ParseMessageKind(r.MessageType)
}

// SessionCreateResponse is the POST /session/create reply.
type SessionCreateResponse struct {
	SessionID string `json:"session_id"`
}

// PushFrame is the envelope for server-initiated push events. The payload is
// opaque to the client core; consumers decode Data as needed.
type PushFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
