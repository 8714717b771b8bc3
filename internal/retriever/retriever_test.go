package retriever

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hkishore1/ClaimsRAG/internal/config"
	"github.com/Hkishore1/ClaimsRAG/internal/embedding"
	"github.com/Hkishore1/ClaimsRAG/internal/entity"
	"github.com/Hkishore1/ClaimsRAG/internal/ingest"
	pkgRetry "github.com/Hkishore1/ClaimsRAG/internal/pkg/retry"
	"go.uber.org/zap"
)

func buildTestCorpus(t *testing.T, docs map[string]string) (*ingest.Corpus, embedding.Embedder) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write doc: %v", err)
		}
	}

	cfg := &config.Config{
		DataDir:      dir,
		ChunkSize:    200,
		ChunkOverlap: 30,
		EmbeddingCfg: config.EmbeddingConfig{
			Dimension: 128,
			BatchSize: 16,
			Retry:     *pkgRetry.DefaultRetryConfig(),
		},
		IndexCfg: config.IndexConfig{M: 8, EfConstruction: 32, EfSearch: 32},
	}

	embedder := embedding.NewMockEmbedder(128)
	corpus, err := ingest.NewBuilder(cfg, embedder, zap.NewNop()).Build(context.Background())
	if err != nil {
		t.Fatalf("build corpus: %v", err)
	}
	return corpus, embedder
}

func newTestRetriever(t *testing.T, docs map[string]string) *Retriever {
	corpus, embedder := buildTestCorpus(t, docs)
	return NewRetriever(corpus, embedder, config.CacheConfig{}, zap.NewNop())
}

func TestRetrieve_NotReady(t *testing.T) {
	r := NewRetriever(nil, embedding.NewMockEmbedder(64), config.CacheConfig{}, zap.NewNop())

	_, err := r.Retrieve(context.Background(), "anything", 3)
	if !errors.Is(err, entity.ErrIndexNotReady) {
		t.Errorf("expected ErrIndexNotReady, got %v", err)
	}
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	r := newTestRetriever(t, map[string]string{
		"policy_101.txt": "Policy 101 covers water damage up to $50,000.",
	})

	_, err := r.Retrieve(context.Background(), "   ", 3)
	if !errors.Is(err, entity.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestRetrieve_FindsRelevantDocument(t *testing.T) {
	r := newTestRetriever(t, map[string]string{
		"policy_101.txt": "Policy 101 covers water damage up to $50,000.",
		"policy_201.txt": "Policy 201 covers fire damage up to $75,000.",
		"faq_claims.txt": "How to file a claim: upload the claim form and photos.",
	})

	retrieval, err := r.Retrieve(context.Background(), "What does policy 101 cover?", 1)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	if len(retrieval.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(retrieval.Results))
	}
	if retrieval.Results[0].Document != "policy_101.txt" {
		t.Errorf("expected policy_101.txt, got %s", retrieval.Results[0].Document)
	}
	if retrieval.GroundingScore <= 0 {
		t.Errorf("expected positive grounding score, got %f", retrieval.GroundingScore)
	}
}

func TestRetrieve_OrderedBySimilarity(t *testing.T) {
	r := newTestRetriever(t, map[string]string{
		"policy_101.txt": "Policy 101 covers water damage up to $50,000.",
		"policy_201.txt": "Policy 201 covers fire damage up to $75,000.",
		"faq_claims.txt": "How to file a claim: upload the claim form and photos.",
	})

	retrieval, err := r.Retrieve(context.Background(), "water damage policy", 3)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	if len(retrieval.Results) > 3 {
		t.Fatalf("got more results than requested: %d", len(retrieval.Results))
	}
	for i := 1; i < len(retrieval.Results); i++ {
		if retrieval.Results[i].Similarity > retrieval.Results[i-1].Similarity {
			t.Errorf("results not in descending similarity order at %d", i)
		}
	}
}

func TestRetrieve_GroundingScoreBounds(t *testing.T) {
	r := newTestRetriever(t, map[string]string{
		"policy_101.txt": "Policy 101 covers water damage up to $50,000.",
		"faq_claims.txt": "How to file a claim: upload the claim form and photos.",
	})

	queries := []string{
		"What does policy 101 cover?",
		"zebra quantum syntax unrelated",
		"claim form",
	}
	for _, q := range queries {
		retrieval, err := r.Retrieve(context.Background(), q, 2)
		if err != nil {
			t.Fatalf("retrieve %q failed: %v", q, err)
		}
		if retrieval.GroundingScore < -1 || retrieval.GroundingScore > 1 {
			t.Errorf("grounding score out of [-1,1] for %q: %f", q, retrieval.GroundingScore)
		}
	}
}

func TestRetrieve_GroundingScoreIsMean(t *testing.T) {
	r := newTestRetriever(t, map[string]string{
		"policy_101.txt": "Policy 101 covers water damage up to $50,000.",
		"policy_201.txt": "Policy 201 covers fire damage up to $75,000.",
	})

	retrieval, err := r.Retrieve(context.Background(), "policy damage coverage", 2)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(retrieval.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(retrieval.Results))
	}

	mean := (retrieval.Results[0].Similarity + retrieval.Results[1].Similarity) / 2
	diff := retrieval.GroundingScore - mean
	if diff < -1e-9 || diff > 1e-9 {
		t.Errorf("grounding score %f is not the mean %f", retrieval.GroundingScore, mean)
	}
}

func TestRetrieve_CitationPreview(t *testing.T) {
	r := newTestRetriever(t, map[string]string{
		"faq.txt": "How to file a claim: upload the claim form and photos within thirty days.",
	})

	retrieval, err := r.Retrieve(context.Background(), "file a claim", 1)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	preview := retrieval.Results[0].Preview
	if got := len(strings.Fields(preview)); got > 8 {
		t.Errorf("preview has %d tokens, want at most 8: %q", got, preview)
	}
	if preview == "" {
		t.Error("preview is empty")
	}
}

func TestRetrieve_KClampedToIndexSize(t *testing.T) {
	r := newTestRetriever(t, map[string]string{
		"one.txt": "A single short document.",
	})

	retrieval, err := r.Retrieve(context.Background(), "document", 6)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(retrieval.Results) > r.Corpus().Index.Len() {
		t.Errorf("returned %d results for an index of %d", len(retrieval.Results), r.Corpus().Index.Len())
	}
}

func TestRetrieve_RepeatedQueryUsesCache(t *testing.T) {
	corpus, _ := buildTestCorpus(t, map[string]string{
		"policy_101.txt": "Policy 101 covers water damage up to $50,000.",
	})
	counting := &countingEmbedder{inner: embedding.NewMockEmbedder(128)}
	r := NewRetriever(corpus, counting, config.CacheConfig{}, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := r.Retrieve(context.Background(), "water damage", 1); err != nil {
			t.Fatalf("retrieve failed: %v", err)
		}
	}

	if counting.calls != 1 {
		t.Errorf("expected 1 embedding call for repeated query, got %d", counting.calls)
	}
}

// countingEmbedder counts single-text embedding calls.
type countingEmbedder struct {
	inner *embedding.MockEmbedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) Model() string  { return c.inner.Model() }
func (c *countingEmbedder) Dimension() int { return c.inner.Dimension() }
