// Package retriever answers free-text queries with the nearest indexed
// passages and an aggregate grounding score.
package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Hkishore1/ClaimsRAG/internal/config"
	"github.com/Hkishore1/ClaimsRAG/internal/embedding"
	"github.com/Hkishore1/ClaimsRAG/internal/entity"
	"github.com/Hkishore1/ClaimsRAG/internal/ingest"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const previewTokens = 8

// Retriever performs nearest-neighbor retrieval over the corpus index.
// The corpus handle is injected at construction and never mutated, so a
// single Retriever is safe for unlimited concurrent callers. Query
// embeddings are cached: the embedder is deterministic for a fixed model
// configuration, so repeated queries can skip the collaborator call.
type Retriever struct {
	corpus     *ingest.Corpus
	embedder   embedding.Embedder
	queryCache *gocache.Cache
	logger     *zap.Logger
}

func NewRetriever(corpus *ingest.Corpus, embedder embedding.Embedder, cacheCfg config.CacheConfig, logger *zap.Logger) *Retriever {
	return &Retriever{
		corpus:     corpus,
		embedder:   embedder,
		queryCache: gocache.New(cacheCfg.TTL, cacheCfg.CleanupInterval),
		logger:     logger,
	}
}

// Ready reports whether the index was built.
func (r *Retriever) Ready() bool {
	return r.corpus != nil && r.corpus.Index != nil
}

// Corpus returns the immutable corpus handle, or nil before indexing.
func (r *Retriever) Corpus() *ingest.Corpus {
	return r.corpus
}

// Retrieve embeds the query, searches the index for the top-k chunks and
// scores each hit with the exact cosine similarity between the normalized
// query vector and the stored normalized chunk vector. Results keep the
// index proximity order (closest first, ties by insertion order). The
// grounding score is the mean similarity, 0.0 when nothing was retrieved.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (entity.Retrieval, error) {
	if !r.Ready() {
		return entity.Retrieval{}, entity.ErrIndexNotReady
	}
	if strings.TrimSpace(query) == "" {
		return entity.Retrieval{}, entity.ErrEmptyQuery
	}

	start := time.Now()

	queryVec, err := r.embedQuery(ctx, query)
	if err != nil {
		return entity.Retrieval{}, fmt.Errorf("embed query: %w", err)
	}

	if k > r.corpus.Index.Len() {
		k = r.corpus.Index.Len()
	}

	hits, err := r.corpus.Index.Search(queryVec, k)
	if err != nil {
		return entity.Retrieval{}, fmt.Errorf("search index: %w", err)
	}

	results := make([]entity.RetrievalResult, 0, len(hits))
	var similaritySum float64
	for _, hit := range hits {
		chunk := r.corpus.Chunks[hit.Ordinal]
		similarity := embedding.Dot(queryVec, chunk.Vector)
		similaritySum += similarity
		results = append(results, entity.RetrievalResult{
			Document:   chunk.Document,
			Preview:    citationPreview(chunk.Text),
			Text:       chunk.Text,
			Similarity: similarity,
		})
	}

	grounding := 0.0
	if len(results) > 0 {
		grounding = similaritySum / float64(len(results))
	}

	retrieval := entity.Retrieval{
		Results:        results,
		GroundingScore: grounding,
		LatencyMs:      time.Since(start).Milliseconds(),
	}

	r.logger.Debug("retrieval complete",
		zap.Int("k", k),
		zap.Int("hits", len(results)),
		zap.Float64("grounding_score", grounding),
		zap.Int64("latency_ms", retrieval.LatencyMs),
	)

	return retrieval, nil
}

// embedQuery returns the normalized query embedding, consulting the TTL
// cache first.
func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if cached, ok := r.queryCache.Get(query); ok {
		return cached.([]float32), nil
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	normalized := embedding.Normalize(vector)
	r.queryCache.SetDefault(query, normalized)
	return normalized, nil
}

// citationPreview keeps the first eight whitespace-separated tokens.
func citationPreview(text string) string {
	fields := strings.Fields(text)
	if len(fields) > previewTokens {
		fields = fields[:previewTokens]
	}
	return strings.Join(fields, " ")
}
