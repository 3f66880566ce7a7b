package chatwire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseMessageKind(t *testing.T) {
	for _, s := range []string{"text", "product_recommendation", "image_search", "error"} {
		k, err := ParseMessageKind(s)
		require.NoError(t, err)
		require.Equal(t, s, k.String())
	}

	_, err := ParseMessageKind("recommendation_v2")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownKind))

	_, err = ParseMessageKind("")
	require.Error(t, err)
}

func TestProductRoundTrip(t *testing.T) {
	sim := 0.87
	p := Product{
		ID:              "p-42",
		Name:            "Canvas Sneakers",
		Description:     "Classic low-top sneakers.",
		Price:           59.95,
		Category:        "Footwear",
		SubCategory:     "Casual",
		Brand:           "Plimsoll",
		Color:           "White",
		Gender:          "Unisex",
		ImageURL:        "https://img.example.com/p-42.jpg",
		InStock:         true,
		SimilarityScore: &sim,
		Features:        []string{"rubber sole", "cotton upper"},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got Product
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, p, got)
	require.Equal(t, 59.95, got.Price)
	require.True(t, got.InStock)
	require.NotNil(t, got.SimilarityScore)
	require.Equal(t, 0.87, *got.SimilarityScore)
}

func TestProductOptionalFieldsOmitted(t *testing.T) {
	data, err := json.Marshal(Product{ID: "p-1", Name: "Socks", Price: 4})
	require.NoError(t, err)
	require.NotContains(t, string(data), "similarity_score")
	require.NotContains(t, string(data), "image_url")
	require.NotContains(t, string(data), "image_base64")
	require.Contains(t, string(data), "in_stock")
}

func TestProductValidate(t *testing.T) {
	require.NoError(t, Product{ID: "p", Price: 0}.Validate())

	require.Error(t, Product{ID: "p", Price: -1}.Validate())

	bad := 1.5
	require.Error(t, Product{ID: "p", SimilarityScore: &bad}.Validate())

	edge := 1.0
	require.NoError(t, Product{ID: "p", SimilarityScore: &edge}.Validate())
}

func TestChatResponseKind(t *testing.T) {
	raw := `{"response":"hi","session_id":"s1","timestamp":"2025-01-02T03:04:05Z","message_type":"product_recommendation"}`
	var resp ChatResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	k, err := resp.Kind()
	require.NoError(t, err)
	require.Equal(t, KindProductRecommendation, k)
	require.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), resp.Timestamp)

	resp.MessageType = "mystery"
	_, err = resp.Kind()
	require.Error(t, err)
}
