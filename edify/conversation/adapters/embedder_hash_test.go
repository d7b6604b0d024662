package adapters

import (
	"context"
	"testing"

	"github.com/Akshay-i95/edify-v3/edify/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHashEmbedder_deterministic tests that identical text encodes identically
func TestHashEmbedder_deterministic(t *testing.T) {
	embedder := NewHashEmbedder(64)

	first, err := embedder.Embed(context.Background(), []string{"formative assessment feedback"})
	require.NoError(t, err)
	second, err := embedder.Embed(context.Background(), []string{"formative assessment feedback"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first[0], 64)
	assert.Equal(t, 64, embedder.Dimension())
}

// TestHashEmbedder_similarity tests that shared vocabulary raises cosine
// similarity above unrelated text
func TestHashEmbedder_similarity(t *testing.T) {
	embedder := NewHashEmbedder(64)

	vectors, err := embedder.Embed(context.Background(), []string{
		"formative assessment gives teachers feedback",
		"what is formative assessment feedback",
		"orbital mechanics of jupiter moons",
	})
	require.NoError(t, err)

	related := conversation.Cosine(vectors[0], vectors[1])
	unrelated := conversation.Cosine(vectors[0], vectors[2])

	assert.Greater(t, related, unrelated)
	assert.Greater(t, related, 0.3)
}

// TestHashEmbedder_emptyText tests that empty text yields a zero vector
func TestHashEmbedder_emptyText(t *testing.T) {
	embedder := NewHashEmbedder(8)

	vectors, err := embedder.Embed(context.Background(), []string{""})
	require.NoError(t, err)

	assert.Equal(t, make([]float64, 8), vectors[0])
}
