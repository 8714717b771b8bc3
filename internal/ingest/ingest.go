// Package ingest loads plain-text documents from disk and builds the
// immutable retrieval corpus: chunks, their normalized embeddings, and the
// vector index over them. The corpus is built once at startup and passed
// explicitly to retrieval, never held as ambient global state.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Hkishore1/ClaimsRAG/internal/chunker"
	"github.com/Hkishore1/ClaimsRAG/internal/config"
	"github.com/Hkishore1/ClaimsRAG/internal/embedding"
	"github.com/Hkishore1/ClaimsRAG/internal/entity"
	"github.com/Hkishore1/ClaimsRAG/internal/index"
	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

var ErrNoDocuments = errors.New("no documents found in data directory")

// Corpus is the process-wide immutable retrieval handle.
type Corpus struct {
	Chunks         []entity.Chunk
	Index          *index.HNSW
	Documents      int
	EmbeddingModel string
	ChunkSize      int
	ChunkOverlap   int
	IndexCfg       config.IndexConfig
	BuiltAt        time.Time
}

// Builder assembles a Corpus from a directory of text files.
type Builder struct {
	cfg      *config.Config
	embedder embedding.Embedder
	logger   *zap.Logger
}

func NewBuilder(cfg *config.Config, embedder embedding.Embedder, logger *zap.Logger) *Builder {
	return &Builder{
		cfg:      cfg,
		embedder: embedder,
		logger:   logger,
	}
}

// Build loads every *.txt file under the data directory (one Document per
// file, filename as citation key), chunks them, embeds all chunks in
// batches and builds the HNSW index. Returns ErrNoDocuments when the
// directory holds no usable files.
func (b *Builder) Build(ctx context.Context) (*Corpus, error) {
	docs, err := b.loadDocuments()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	split := chunker.NewRecursiveChunker(b.cfg.ChunkSize, b.cfg.ChunkOverlap)

	var chunks []entity.Chunk
	for _, doc := range docs {
		pieces := split.Split(doc.Content)
		b.logger.Info("chunked document",
			zap.String("document", doc.Name),
			zap.Int("chunks", len(pieces)),
		)
		for _, text := range pieces {
			chunks = append(chunks, entity.Chunk{
				Document: doc.Name,
				Text:     text,
				Ordinal:  len(chunks),
			})
		}
	}
	if len(chunks) == 0 {
		return nil, ErrNoDocuments
	}

	if err := b.embedChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}

	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		vectors[i] = chunks[i].Vector
	}

	idx, err := index.Build(vectors, index.Config{
		M:              b.cfg.IndexCfg.M,
		EfConstruction: b.cfg.IndexCfg.EfConstruction,
		EfSearch:       b.cfg.IndexCfg.EfSearch,
	})
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	b.logger.Info("corpus indexed",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
		zap.String("embedding_model", b.embedder.Model()),
	)

	return &Corpus{
		Chunks:         chunks,
		Index:          idx,
		Documents:      len(docs),
		EmbeddingModel: b.embedder.Model(),
		ChunkSize:      b.cfg.ChunkSize,
		ChunkOverlap:   b.cfg.ChunkOverlap,
		IndexCfg:       b.cfg.IndexCfg,
		BuiltAt:        time.Now(),
	}, nil
}

func (b *Builder) loadDocuments() ([]entity.Document, error) {
	pattern := filepath.Join(b.cfg.DataDir, "*.txt")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	// Glob order is filesystem dependent; chunk ordinals must not be.
	sort.Strings(paths)

	b.logger.Info("loading documents", zap.String("dir", b.cfg.DataDir), zap.Int("files", len(paths)))

	docs := make([]entity.Document, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		docs = append(docs, entity.Document{
			Name:    filepath.Base(path),
			Path:    path,
			Content: string(content),
		})
	}
	return docs, nil
}

// embedChunks fills in normalized vectors for all chunks, batching calls
// to the embedder. Startup-time embedding calls are retried on transient
// failure; per-turn calls elsewhere are not.
func (b *Builder) embedChunks(ctx context.Context, chunks []entity.Chunk) error {
	batchSize := b.cfg.EmbeddingCfg.BatchSize
	if batchSize <= 0 {
		batchSize = 64
	}

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = chunks[i].Text
		}

		vectors, err := retry.DoWithData(func() ([][]float32, error) {
			return b.embedder.EmbedBatch(ctx, texts)
		}, append(b.cfg.EmbeddingCfg.Retry.ToRetryOptions(), retry.Context(ctx))...)
		if err != nil {
			return err
		}

		for i, vector := range vectors {
			chunks[start+i].Vector = embedding.Normalize(vector)
		}
	}
	return nil
}
