package query

import (
	"context"

	"github.com/Hkishore1/ClaimsRAG/internal/entity"
)

type Retriever interface {
	Ready() bool
	Retrieve(ctx context.Context, query string, k int) (entity.Retrieval, error)
}
