package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/Hkishore1/ClaimsRAG/internal/entity"
	"github.com/Hkishore1/ClaimsRAG/internal/pkg/logger"
	"github.com/Hkishore1/ClaimsRAG/internal/pkg/response"
)

type Handler struct {
	usecase   ChatUsecase
	formatter TranscriptFormatter
}

func NewHandler(usecase ChatUsecase, formatter TranscriptFormatter) *Handler {
	return &Handler{
		usecase:   usecase,
		formatter: formatter,
	}
}

// Chat handles POST /agent/chat - one conversational turn
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	outcome, err := h.usecase.HandleTurn(ctx, req.SessionID, req.Message, req.K)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toChatResponse(outcome))
}

// GetHistory handles GET /agent/history/{session_id} - recent turns, newest first
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	ctx = logger.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.String("action", "GetHistory"),
	)

	turns, err := h.usecase.History(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toHistoryResponse(sessionID, turns))
}

// ClearHistory handles DELETE /agent/history/{session_id} - drop a session
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	ctx = logger.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.String("action", "ClearHistory"),
	)

	if err := h.usecase.ClearHistory(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session history cleared")

	response.Success(w, map[string]string{
		"message": "history cleared",
	})
}

// ListSessions handles GET /agent/sessions - known session ids
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListSessions")

	sessions, err := h.usecase.Sessions(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if sessions == nil {
		sessions = []string{}
	}
	response.Success(w, entity.SessionsResponse{Sessions: sessions})
}

// ExportHistory handles GET /agent/history/{session_id}/export - PDF transcript
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	ctx = logger.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.String("action", "ExportHistory"),
	)

	turns, err := h.usecase.History(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	// History arrives newest first; the transcript reads top-down.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	data, err := h.formatter.FormatTranscript(sessionID, turns)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to render transcript", err)
		return
	}

	w.Header().Set("Content-Type", h.formatter.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="transcript_`+sessionID+h.formatter.FileExtension()+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrIndexNotReady):
		h.respondError(ctx, w, http.StatusServiceUnavailable, "index not ready", err)
	case errors.Is(err, entity.ErrEmptyMessage), errors.Is(err, entity.ErrInvalidK), errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrSessionNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
