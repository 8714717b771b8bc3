// Package query implements the one-shot question answering flow: retrieve
// the nearest passages and compose an extractive answer with citations.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/Hkishore1/ClaimsRAG/internal/config"
	"github.com/Hkishore1/ClaimsRAG/internal/entity"
)

// QueryUsecase implements one-shot retrieval business logic
type QueryUsecase struct {
	retriever Retriever
	cfg       *config.Config
	logger    *zap.Logger
}

// NewUsecase creates a new query use case
func NewUsecase(retriever Retriever, cfg *config.Config, logger *zap.Logger) *QueryUsecase {
	return &QueryUsecase{
		retriever: retriever,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ask retrieves the top-k passages for the query and composes the answer by
// concatenating the retrieved snippets in proximity order. A zero k takes
// the configured default; out-of-range values are rejected.
func (uc *QueryUsecase) Ask(ctx context.Context, query string, k int) (*entity.AskResponse, error) {
	k, err := uc.resolveK(k)
	if err != nil {
		return nil, err
	}

	retrieval, err := uc.retriever.Retrieve(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	ctxzap.AddFields(ctx,
		zap.Int("k", k),
		zap.Float64("grounding_score", retrieval.GroundingScore),
	)

	return &entity.AskResponse{
		Answer:    ComposeAnswer(retrieval.Results),
		Citations: ToCitations(retrieval.Results),
		Retrieval: entity.RetrievalDTO{
			K:              k,
			LatencyMs:      retrieval.LatencyMs,
			GroundingScore: retrieval.GroundingScore,
		},
	}, nil
}

// Ready reports whether the underlying index can serve queries.
func (uc *QueryUsecase) Ready() bool {
	return uc.retriever.Ready()
}

func (uc *QueryUsecase) resolveK(k int) (int, error) {
	if k == 0 {
		return uc.cfg.TopKDefault, nil
	}
	if k < 1 || k > uc.cfg.TopKMax {
		return 0, fmt.Errorf("%w: k must be between 1 and %d", entity.ErrInvalidK, uc.cfg.TopKMax)
	}
	return k, nil
}

// ComposeAnswer joins the retrieved passages with single spaces, keeping
// proximity order.
func ComposeAnswer(results []entity.RetrievalResult) string {
	parts := make([]string, 0, len(results))
	for _, res := range results {
		parts = append(parts, res.Text)
	}
	return strings.Join(parts, " ")
}

// ToCitations converts retrieval results into response citations.
func ToCitations(results []entity.RetrievalResult) []entity.CitationDTO {
	citations := make([]entity.CitationDTO, 0, len(results))
	for _, res := range results {
		citations = append(citations, entity.CitationDTO{
			Doc:         res.Document,
			Snippet:     res.Preview,
			FullSnippet: res.Text,
		})
	}
	return citations
}
