package query

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Hkishore1/ClaimsRAG/internal/config"
	"github.com/Hkishore1/ClaimsRAG/internal/entity"
)

type stubRetriever struct {
	ready     bool
	retrieval entity.Retrieval
	err       error
	lastQuery string
	lastK     int
}

func (s *stubRetriever) Ready() bool { return s.ready }

func (s *stubRetriever) Retrieve(_ context.Context, query string, k int) (entity.Retrieval, error) {
	s.lastQuery = query
	s.lastK = k
	if s.err != nil {
		return entity.Retrieval{}, s.err
	}
	return s.retrieval, nil
}

func testConfig() *config.Config {
	return &config.Config{TopKDefault: 3, TopKMax: 6}
}

func sampleRetrieval() entity.Retrieval {
	return entity.Retrieval{
		Results: []entity.RetrievalResult{
			{Document: "policy_101", Preview: "Policy 101 covers water damage", Text: "Policy 101 covers water damage up to $50,000.", Similarity: 0.9},
			{Document: "policy_201", Preview: "Policy 201 covers fire damage", Text: "Policy 201 covers fire damage.", Similarity: 0.7},
		},
		GroundingScore: 0.8,
		LatencyMs:      12,
	}
}

func TestAsk_ComposesAnswerFromSnippets(t *testing.T) {
	retr := &stubRetriever{ready: true, retrieval: sampleRetrieval()}
	uc := NewUsecase(retr, testConfig(), zap.NewNop())

	resp, err := uc.Ask(context.Background(), "what is covered", 2)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	want := "Policy 101 covers water damage up to $50,000. Policy 201 covers fire damage."
	if resp.Answer != want {
		t.Errorf("answer = %q, want %q", resp.Answer, want)
	}
	if len(resp.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(resp.Citations))
	}
	if resp.Citations[0].Doc != "policy_101" {
		t.Errorf("citation doc = %q", resp.Citations[0].Doc)
	}
	if resp.Citations[0].Snippet != "Policy 101 covers water damage" {
		t.Errorf("citation snippet = %q", resp.Citations[0].Snippet)
	}
	if resp.Citations[0].FullSnippet != "Policy 101 covers water damage up to $50,000." {
		t.Errorf("citation full snippet = %q", resp.Citations[0].FullSnippet)
	}
	if resp.Retrieval.K != 2 || resp.Retrieval.GroundingScore != 0.8 || resp.Retrieval.LatencyMs != 12 {
		t.Errorf("unexpected retrieval stats: %+v", resp.Retrieval)
	}
}

func TestAsk_ZeroKUsesDefault(t *testing.T) {
	retr := &stubRetriever{ready: true, retrieval: sampleRetrieval()}
	uc := NewUsecase(retr, testConfig(), zap.NewNop())

	if _, err := uc.Ask(context.Background(), "q", 0); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if retr.lastK != 3 {
		t.Errorf("expected default k 3, got %d", retr.lastK)
	}
}

func TestAsk_RejectsOutOfRangeK(t *testing.T) {
	retr := &stubRetriever{ready: true, retrieval: sampleRetrieval()}
	uc := NewUsecase(retr, testConfig(), zap.NewNop())

	for _, k := range []int{-1, 7, 100} {
		if _, err := uc.Ask(context.Background(), "q", k); !errors.Is(err, entity.ErrInvalidK) {
			t.Errorf("k=%d: expected ErrInvalidK, got %v", k, err)
		}
	}
}

func TestAsk_PropagatesRetrieverErrors(t *testing.T) {
	retr := &stubRetriever{ready: false, err: entity.ErrIndexNotReady}
	uc := NewUsecase(retr, testConfig(), zap.NewNop())

	if _, err := uc.Ask(context.Background(), "q", 3); !errors.Is(err, entity.ErrIndexNotReady) {
		t.Errorf("expected ErrIndexNotReady, got %v", err)
	}
}

func TestComposeAnswer_Empty(t *testing.T) {
	if got := ComposeAnswer(nil); got != "" {
		t.Errorf("expected empty answer, got %q", got)
	}
}
