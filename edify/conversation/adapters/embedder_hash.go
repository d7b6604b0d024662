package adapters

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/Akshay-i95/edify-v3/edify/conversation"

	"gonum.org/v1/gonum/floats"
)

// HashEmbedder is a deterministic bag-of-words embedder for development and
// tests. Each token hashes to a fixed pseudo-random direction; a text's
// vector is the normalized sum of its token directions, so texts sharing
// vocabulary land close in the space. It is not a substitute for a real
// encoder.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hash embedder with the given dimensionality.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 64
	}
	return &HashEmbedder{dims: dims}
}

// Embed encodes each text into a deterministic unit vector.
func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = e.encode(text)
	}
	return vectors, nil
}

// Dimension returns the embedding dimensionality.
func (e *HashEmbedder) Dimension() int {
	return e.dims
}

func (e *HashEmbedder) encode(text string) []float64 {
	vec := make([]float64, e.dims)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'()[]")
		if token == "" {
			continue
		}
		floats.Add(vec, e.tokenDirection(token))
	}

	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

// tokenDirection maps a token to a fixed direction via iterated FNV hashing
func (e *HashEmbedder) tokenDirection(token string) []float64 {
	dir := make([]float64, e.dims)

	h := fnv.New64a()
	h.Write([]byte(token))
	state := h.Sum64()

	for i := range dir {
		// xorshift advance keeps components decorrelated across dimensions
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		dir[i] = float64(state%2048)/1024.0 - 1.0
	}

	if norm := floats.Norm(dir, 2); norm > 0 {
		floats.Scale(1/norm, dir)
	}
	return dir
}

// Ensure HashEmbedder implements the Embedder port.
var _ conversation.Embedder = (*HashEmbedder)(nil)
