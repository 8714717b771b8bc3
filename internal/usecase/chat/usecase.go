// Package chat implements the conversational flow: sanitize the message,
// persist it, retrieve grounding, ask the decider whether to clarify, and
// either pose the clarification question or generate a grounded reply.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/Hkishore1/ClaimsRAG/internal/config"
	"github.com/Hkishore1/ClaimsRAG/internal/entity"
	"github.com/Hkishore1/ClaimsRAG/internal/pkg/mask"
	"github.com/Hkishore1/ClaimsRAG/internal/repository"
	"github.com/Hkishore1/ClaimsRAG/internal/usecase/query"
)

// DefaultSessionID is used when the caller does not name a session.
const DefaultSessionID = "default"

// ChatUsecase implements conversational business logic
type ChatUsecase struct {
	retriever   Retriever
	decider     Decider
	responder   Responder
	historyRepo repository.HistoryRepository
	cfg         *config.Config
	logger      *zap.Logger
}

// NewUsecase creates a new chat use case
func NewUsecase(
	retriever Retriever,
	decider Decider,
	responder Responder,
	historyRepo repository.HistoryRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *ChatUsecase {
	return &ChatUsecase{
		retriever:   retriever,
		decider:     decider,
		responder:   responder,
		historyRepo: historyRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// HandleTurn runs one conversational turn. The inbound message is masked and
// persisted before any collaborator is consulted; the reply is masked again
// before persisting, so identifiers never reach the store or the caller in
// the clear. Failures past the user-turn write are surfaced without rolling
// that write back.
func (uc *ChatUsecase) HandleTurn(ctx context.Context, sessionID, message string, k int) (*entity.ChatTurnOutcome, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	k, err := uc.resolveK(k)
	if err != nil {
		return nil, err
	}

	userMsg := mask.Aadhaar(strings.TrimSpace(message))
	if userMsg == "" {
		return nil, entity.ErrEmptyMessage
	}

	if _, err := uc.historyRepo.AddTurn(ctx, sessionID, entity.RoleUser, userMsg); err != nil {
		return nil, fmt.Errorf("persist user turn: %w", err)
	}

	history, err := uc.buildConversationContext(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("build conversation context: %w", err)
	}

	retrieval, err := uc.retriever.Retrieve(ctx, userMsg, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	grounding := query.ComposeAnswer(retrieval.Results)

	decision := uc.decider.Decide(ctx, userMsg, grounding, history)

	var reply string
	if decision.NeedsClarification {
		reply = decision.ClarificationQuestion
		ctxzap.Info(ctx, "asking for clarification", zap.String("reason", decision.Reason))
	} else {
		reply = mask.Aadhaar(uc.responder.Generate(ctx, userMsg, grounding, history))
	}

	if _, err := uc.historyRepo.AddTurn(ctx, sessionID, entity.RoleAssistant, reply); err != nil {
		return nil, fmt.Errorf("persist assistant turn: %w", err)
	}

	ctxzap.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.Bool("used_clarification", decision.NeedsClarification),
		zap.Float64("confidence_score", decision.Confidence),
	)

	return &entity.ChatTurnOutcome{
		Reply:             reply,
		Citations:         retrieval.Results,
		Retrieval:         retrieval,
		K:                 k,
		SessionID:         sessionID,
		UsedClarification: decision.NeedsClarification,
		ConfidenceScore:   decision.Confidence,
	}, nil
}

// History returns the most recent turns for the session, newest first.
func (uc *ChatUsecase) History(ctx context.Context, sessionID string) ([]*entity.ConversationTurn, error) {
	turns, err := uc.historyRepo.GetRecent(ctx, sessionID, uc.cfg.HistoryFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return turns, nil
}

// ClearHistory removes every stored turn of the session.
func (uc *ChatUsecase) ClearHistory(ctx context.Context, sessionID string) error {
	if err := uc.historyRepo.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Sessions lists the known session ids, most recently active first.
func (uc *ChatUsecase) Sessions(ctx context.Context) ([]string, error) {
	sessions, err := uc.historyRepo.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (uc *ChatUsecase) resolveK(k int) (int, error) {
	if k == 0 {
		return uc.cfg.TopKDefault, nil
	}
	if k < 1 || k > uc.cfg.TopKMax {
		return 0, fmt.Errorf("%w: k must be between 1 and %d", entity.ErrInvalidK, uc.cfg.TopKMax)
	}
	return k, nil
}
