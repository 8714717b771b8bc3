package chat

import (
	"context"

	"github.com/Hkishore1/ClaimsRAG/internal/entity"
)

type Retriever interface {
	Ready() bool
	Retrieve(ctx context.Context, query string, k int) (entity.Retrieval, error)
}

type Decider interface {
	Decide(ctx context.Context, query, grounding, history string) entity.Decision
}

type Responder interface {
	Generate(ctx context.Context, query, grounding, history string) string
}
