package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/shopchat/pkg/chatwire"
	"github.com/go-go-golems/shopchat/pkg/conversation"
	"github.com/go-go-golems/shopchat/pkg/pushchannel"
	"github.com/go-go-golems/shopchat/pkg/session"
)

func TestRenderProductCard(t *testing.T) {
	sim := 0.87
	out := renderProductCard(chatwire.Product{
		ID:              "p-1",
		Name:            "Trail Running Shoes",
		Description:     "Grippy outsole.",
		Price:           89.99,
		Category:        "Footwear",
		InStock:         true,
		SimilarityScore: &sim,
	}, 80)

	require.Contains(t, out, "Trail Running Shoes")
	require.Contains(t, out, "$89.99")
	require.Contains(t, out, "In Stock")
	require.Contains(t, out, "87% match")
	// no brand on the wire renders the placeholder
	require.Contains(t, out, "Generic")
}

func TestRenderProductCardOutOfStock(t *testing.T) {
	out := renderProductCard(chatwire.Product{Name: "Bottle", Brand: "Hydra", Price: 18}, 80)
	require.Contains(t, out, "Out of Stock")
	require.Contains(t, out, "Hydra")
	require.NotContains(t, out, "match")
}

func TestRenderWelcomeListsQuickActions(t *testing.T) {
	out := renderWelcome(80)
	require.Contains(t, out, "Welcome to AI Shopping Assistant")
	require.Contains(t, out, "[1] Browse popular items")
	require.Contains(t, out, "[4] Search by image")
}

func TestRenderMessage(t *testing.T) {
	msg := conversation.Message{
		ID:        1,
		Sender:    conversation.SenderUser,
		Text:      "show me shoes",
		Kind:      chatwire.KindPlainText,
		CreatedAt: time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC),
	}
	out := renderMessage(msg, 80)
	require.Contains(t, out, "You")
	require.Contains(t, out, "show me shoes")
	require.Contains(t, out, "15:04")
}

func TestRenderHeaderStates(t *testing.T) {
	open := renderHeader(conversation.View{
		Connection:    pushchannel.StateOpen,
		Session:       session.StatusActive,
		SessionActive: true,
	}, 0)
	require.Contains(t, open, "Online")
	require.Contains(t, open, "Active")

	down := renderHeader(conversation.View{
		Connection: pushchannel.StateReconnecting,
		Session:    session.StatusFailed,
	}, 0)
	require.Contains(t, down, "Connecting...")
	require.Contains(t, down, "Unavailable")
}
