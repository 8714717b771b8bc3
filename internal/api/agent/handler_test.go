package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Hkishore1/ClaimsRAG/internal/entity"
)

type stubChatUsecase struct {
	outcome  *entity.ChatTurnOutcome
	turns    []*entity.ConversationTurn
	sessions []string
	err      error

	lastSessionID string
	lastMessage   string
	lastK         int
	cleared       string
}

func (s *stubChatUsecase) HandleTurn(_ context.Context, sessionID, message string, k int) (*entity.ChatTurnOutcome, error) {
	s.lastSessionID = sessionID
	s.lastMessage = message
	s.lastK = k
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func (s *stubChatUsecase) History(_ context.Context, _ string) ([]*entity.ConversationTurn, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.turns, nil
}

func (s *stubChatUsecase) ClearHistory(_ context.Context, sessionID string) error {
	s.cleared = sessionID
	return s.err
}

func (s *stubChatUsecase) Sessions(_ context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions, nil
}

type stubFormatter struct {
	gotTurns []*entity.ConversationTurn
	data     []byte
}

func (s *stubFormatter) FormatTranscript(_ string, turns []*entity.ConversationTurn) ([]byte, error) {
	s.gotTurns = turns
	return s.data, nil
}

func (s *stubFormatter) ContentType() string   { return "application/pdf" }
func (s *stubFormatter) FileExtension() string { return ".pdf" }

func newTestRouter(uc ChatUsecase, f TranscriptFormatter) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, f))
	return r
}

func TestChat_Success(t *testing.T) {
	conf := 0.7
	uc := &stubChatUsecase{outcome: &entity.ChatTurnOutcome{
		Reply: "Water damage is covered.",
		Citations: []entity.RetrievalResult{
			{Document: "policy_101", Preview: "Policy 101 covers water", Text: "Policy 101 covers water damage."},
		},
		Retrieval:       entity.Retrieval{GroundingScore: 0.82, LatencyMs: 9},
		K:               3,
		SessionID:       "s1",
		ConfidenceScore: conf,
	}}
	router := newTestRouter(uc, &stubFormatter{})

	body := `{"message":"What does policy 101 cover?","session_id":"s1","k":3}`
	req := httptest.NewRequest(http.MethodPost, "/agent/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp entity.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response decode: %v", err)
	}
	if resp.Reply != "Water damage is covered." || resp.SessionID != "s1" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].Doc != "policy_101" {
		t.Errorf("unexpected citations: %+v", resp.Citations)
	}
	if resp.Retrieval.K != 3 || resp.Retrieval.GroundingScore != 0.82 {
		t.Errorf("unexpected retrieval: %+v", resp.Retrieval)
	}
	if resp.ConfidenceScore == nil || *resp.ConfidenceScore != 0.7 {
		t.Errorf("unexpected confidence: %v", resp.ConfidenceScore)
	}
	if uc.lastMessage != "What does policy 101 cover?" || uc.lastK != 3 {
		t.Errorf("usecase got message=%q k=%d", uc.lastMessage, uc.lastK)
	}
}

func TestChat_InvalidBody(t *testing.T) {
	router := newTestRouter(&stubChatUsecase{}, &stubFormatter{})

	req := httptest.NewRequest(http.MethodPost, "/agent/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"empty message", entity.ErrEmptyMessage, http.StatusBadRequest},
		{"invalid k", entity.ErrInvalidK, http.StatusBadRequest},
		{"index not ready", entity.ErrIndexNotReady, http.StatusServiceUnavailable},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubChatUsecase{err: tt.err}, &stubFormatter{})

			req := httptest.NewRequest(http.MethodPost, "/agent/chat", strings.NewReader(`{"message":"x"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	uc := &stubChatUsecase{turns: []*entity.ConversationTurn{
		{Role: entity.RoleAssistant, Text: "answer", Timestamp: ts},
		{Role: entity.RoleUser, Text: "question", Timestamp: ts},
	}}
	router := newTestRouter(uc, &stubFormatter{})

	req := httptest.NewRequest(http.MethodGet, "/agent/history/s1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp entity.HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response decode: %v", err)
	}
	if resp.SessionID != "s1" || len(resp.History) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.History[0].Role != entity.RoleAssistant || resp.History[0].Timestamp != "2024-05-01T12:00:00Z" {
		t.Errorf("unexpected first turn: %+v", resp.History[0])
	}
}

func TestClearHistory(t *testing.T) {
	uc := &stubChatUsecase{}
	router := newTestRouter(uc, &stubFormatter{})

	req := httptest.NewRequest(http.MethodDelete, "/agent/history/s1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if uc.cleared != "s1" {
		t.Errorf("cleared session = %q", uc.cleared)
	}
}

func TestListSessions_EmptyIsArray(t *testing.T) {
	router := newTestRouter(&stubChatUsecase{}, &stubFormatter{})

	req := httptest.NewRequest(http.MethodGet, "/agent/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"sessions":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestExportHistory_ReversesToOldestFirst(t *testing.T) {
	uc := &stubChatUsecase{turns: []*entity.ConversationTurn{
		{Role: entity.RoleAssistant, Text: "newest"},
		{Role: entity.RoleUser, Text: "oldest"},
	}}
	f := &stubFormatter{data: []byte("%PDF-stub")}
	router := newTestRouter(uc, f)

	req := httptest.NewRequest(http.MethodGet, "/agent/history/s1/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "transcript_s1.pdf") {
		t.Errorf("content disposition = %q", got)
	}
	if rec.Body.String() != "%PDF-stub" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
	if len(f.gotTurns) != 2 || f.gotTurns[0].Text != "oldest" {
		t.Errorf("transcript turns not oldest first: %+v", f.gotTurns)
	}
}
