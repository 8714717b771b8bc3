package query

import (
	"context"

	"github.com/Hkishore1/ClaimsRAG/internal/entity"
	"github.com/Hkishore1/ClaimsRAG/internal/ingest"
)

type QueryUsecase interface {
	Ask(ctx context.Context, query string, k int) (*entity.AskResponse, error)
	Ready() bool
}

type CorpusProvider interface {
	Corpus() *ingest.Corpus
	Ready() bool
}
