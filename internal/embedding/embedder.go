// Package embedding maps text to fixed-dimension dense vectors.
// It defines a provider-agnostic Embedder interface with an OpenAI-backed
// implementation and a deterministic mock for tests and offline runs.
package embedding

import (
	"context"
	"errors"
	"math"
)

// Common errors for embedding operations
var (
	ErrEmptyTexts      = errors.New("no texts provided for embedding")
	ErrMissingAPIKey   = errors.New("missing embedding API key")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Embedder generates vector embeddings for text. Implementations must be
// stateless, side-effect-free and deterministic for a fixed model
// configuration.
type Embedder interface {
	// Embed generates a vector embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving
	// input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the embedding model identifier.
	Model() string

	// Dimension returns the embedding vector dimension.
	Dimension() int
}

// Normalize returns a unit-length copy of v. The zero vector is returned
// unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Dot returns the dot product of a and b. For unit vectors this is their
// cosine similarity.
func Dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
