package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/Hkishore1/ClaimsRAG/internal/config"
	"github.com/Hkishore1/ClaimsRAG/internal/entity"
	"github.com/Hkishore1/ClaimsRAG/internal/pkg/logger"
	"github.com/Hkishore1/ClaimsRAG/internal/pkg/response"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

type Handler struct {
	usecase   QueryUsecase
	corpus    CorpusProvider
	cfg       *config.Config
	startTime time.Time
}

func NewHandler(usecase QueryUsecase, corpus CorpusProvider, cfg *config.Config) *Handler {
	return &Handler{
		usecase:   usecase,
		corpus:    corpus,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// Ask handles POST /ask - one-shot retrieval question
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")

	var req entity.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.usecase.Ask(ctx, req.Query, req.K)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// Healthz handles GET /healthz - service health and index statistics
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ready := h.corpus.Ready()

	health := entity.HealthResponse{
		Status:         "healthy",
		Timestamp:      time.Now().Format(time.RFC3339),
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
		IndexReady:     ready,
		EmbeddingModel: h.cfg.EmbeddingCfg.Model,
		ChunkSize:      h.cfg.ChunkSize,
		ChunkOverlap:   h.cfg.ChunkOverlap,
		HNSWM:          h.cfg.IndexCfg.M,
		HNSWEfSearch:   h.cfg.IndexCfg.EfSearch,
		Version:        Version,
	}
	if corpus := h.corpus.Corpus(); corpus != nil {
		health.DocumentsIndexed = corpus.Documents
		health.ChunksIndexed = len(corpus.Chunks)
	}

	if !ready {
		health.Status = "unhealthy"
		response.JSON(w, http.StatusServiceUnavailable, health)
		return
	}

	response.Success(w, health)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrIndexNotReady):
		h.respondError(ctx, w, http.StatusServiceUnavailable, "index not ready", err)
	case errors.Is(err, entity.ErrEmptyQuery), errors.Is(err, entity.ErrInvalidK), errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
