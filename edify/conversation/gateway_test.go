package conversation

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns canned vectors by exact text and counts Embed calls.
// Texts without a canned vector fall back to the default vector.
type stubEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float64
	fallback []float64
	dims     int
	calls    int
}

func newStubEmbedder(dims int) *stubEmbedder {
	fallback := make([]float64, dims)
	fallback[dims-1] = 1
	return &stubEmbedder{
		vectors:  make(map[string][]float64),
		fallback: fallback,
		dims:     dims,
	}
}

func (s *stubEmbedder) set(text string, vec []float64) {
	s.vectors[text] = vec
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	out := make([][]float64, len(texts))
	for i, text := range texts {
		if vec, ok := s.vectors[text]; ok {
			out[i] = vec
		} else {
			out[i] = s.fallback
		}
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return s.dims }

func (s *stubEmbedder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// failingEmbedder always errors, simulating an unreachable collaborator
type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return nil, errors.New("collaborator unreachable")
}

func (failingEmbedder) Dimension() int { return 3 }

// TestEmbeddingGateway_Encode_memoization tests per-request caching by text
func TestEmbeddingGateway_Encode_memoization(t *testing.T) {
	embedder := newStubEmbedder(3)
	gateway := NewEmbeddingGateway(embedder, NewMetricsCollector())

	first, err := gateway.Encode(context.Background(), "same text")
	require.NoError(t, err)
	second, err := gateway.Encode(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, embedder.callCount())
}

// TestEmbeddingGateway_Encode_failure tests the unavailable taxonomy
func TestEmbeddingGateway_Encode_failure(t *testing.T) {
	gateway := NewEmbeddingGateway(failingEmbedder{}, nil)

	_, err := gateway.Encode(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

// TestEmbeddingGateway_Encode_malformedVector tests dims and NaN validation
func TestEmbeddingGateway_Encode_malformedVector(t *testing.T) {
	embedder := newStubEmbedder(3)
	embedder.set("wrong dims", []float64{1, 0})
	embedder.set("has nan", []float64{1, math.NaN(), 0})

	gateway := NewEmbeddingGateway(embedder, nil)

	_, err := gateway.Encode(context.Background(), "wrong dims")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)

	_, err = gateway.Encode(context.Background(), "has nan")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

// TestEmbeddingGateway_Encode_nilEmbedder tests the unconfigured case
func TestEmbeddingGateway_Encode_nilEmbedder(t *testing.T) {
	gateway := NewEmbeddingGateway(nil, nil)

	_, err := gateway.Encode(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

// TestEmbeddingGateway_EncodeAll tests positional results with nil for
// empty or failed texts
func TestEmbeddingGateway_EncodeAll(t *testing.T) {
	embedder := newStubEmbedder(3)
	embedder.set("bad", []float64{math.NaN(), 0, 0})
	gateway := NewEmbeddingGateway(embedder, nil)

	results := gateway.EncodeAll(context.Background(), "good", "", "bad")

	require.Len(t, results, 3)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.Nil(t, results[2])
}

// TestCosine tests similarity bounds and degenerate inputs
func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)

	// Negative similarity clamps to zero
	assert.Equal(t, 0.0, Cosine([]float64{1, 0}, []float64{-1, 0}))

	// Degenerate vectors yield zero
	assert.Equal(t, 0.0, Cosine(nil, []float64{1}))
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 0}))
	assert.Equal(t, 0.0, Cosine([]float64{1, 0}, []float64{1, 0, 0}))
}
