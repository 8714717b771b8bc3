package embedding

import (
	"context"
	"hash/fnv"
	"strings"
)

// MockEmbedder is a deterministic, offline Embedder for tests and mock
// mode. It hashes whitespace tokens into a fixed-dimension bag-of-words
// vector, so texts sharing vocabulary come out cosine-similar while
// unrelated texts do not. Not a semantic model, but stable and
// side-effect-free.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &MockEmbedder{dimension: dimension}
}

func (m *MockEmbedder) Model() string {
	return "mock-hash-embedder"
}

func (m *MockEmbedder) Dimension() int {
	return m.dimension
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, m.dimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[int(h.Sum32())%m.dimension] += 1.0
	}
	return vector, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}
