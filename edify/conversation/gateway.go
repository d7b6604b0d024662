package conversation

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"gonum.org/v1/gonum/floats"
)

// EmbeddingGateway wraps the external embedding collaborator. It memoizes
// encodings by exact text for the lifetime of one request; the cache is owned
// by a single invocation and is never shared across requests.
type EmbeddingGateway struct {
	embedder Embedder
	metrics  *MetricsCollector

	mu    sync.Mutex
	cache map[string][]float64
}

// NewEmbeddingGateway creates a gateway for one request
func NewEmbeddingGateway(embedder Embedder, metrics *MetricsCollector) *EmbeddingGateway {
	return &EmbeddingGateway{
		embedder: embedder,
		metrics:  metrics,
		cache:    make(map[string][]float64),
	}
}

// Encode returns the embedding for text, memoized within this request.
// Returns ErrEmbeddingUnavailable when the collaborator fails or produces a
// malformed vector; callers must treat that as "semantic signal absent".
func (g *EmbeddingGateway) Encode(ctx context.Context, text string) ([]float64, error) {
	if g.embedder == nil {
		return nil, fmt.Errorf("%w: no embedder configured", ErrEmbeddingUnavailable)
	}

	g.mu.Lock()
	if vec, ok := g.cache[text]; ok {
		g.mu.Unlock()
		if g.metrics != nil {
			g.metrics.RecordCacheHit()
		}
		return vec, nil
	}
	g.mu.Unlock()

	start := time.Now()
	vectors, err := g.embedder.Embed(ctx, []string{text})
	if g.metrics != nil {
		g.metrics.RecordEmbedding(time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 vector, got %d", ErrEmbeddingUnavailable, len(vectors))
	}

	vec := vectors[0]
	if err := g.validate(vec); err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.cache[text] = vec
	g.mu.Unlock()

	return vec, nil
}

// EncodeAll encodes the given texts concurrently. The returned slice is
// positional: a nil entry marks a text whose encoding failed or was empty.
// Encoding failures never fail the batch.
func (g *EmbeddingGateway) EncodeAll(ctx context.Context, texts ...string) [][]float64 {
	results := make([][]float64, len(texts))

	var wg conc.WaitGroup
	for i, text := range texts {
		if text == "" {
			continue
		}
		wg.Go(func() {
			vec, err := g.Encode(ctx, text)
			if err != nil {
				return
			}
			results[i] = vec
		})
	}
	wg.Wait()

	return results
}

// validate rejects vectors with wrong dimensionality or NaN components
func (g *EmbeddingGateway) validate(vec []float64) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", ErrEmbeddingUnavailable)
	}
	if dim := g.embedder.Dimension(); dim > 0 && len(vec) != dim {
		return fmt.Errorf("%w: expected dimension %d, got %d", ErrEmbeddingUnavailable, dim, len(vec))
	}
	for _, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite vector component", ErrEmbeddingUnavailable)
		}
	}
	return nil
}

// Cosine returns the cosine similarity of two vectors clamped to [0, 1].
// Degenerate vectors (zero norm, mismatched length) yield 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := floats.Dot(a, b) / (normA * normB)
	return clamp01(sim)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
