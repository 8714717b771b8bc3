package agent

import (
	"context"

	"github.com/Hkishore1/ClaimsRAG/internal/entity"
)

type ChatUsecase interface {
	HandleTurn(ctx context.Context, sessionID, message string, k int) (*entity.ChatTurnOutcome, error)
	History(ctx context.Context, sessionID string) ([]*entity.ConversationTurn, error)
	ClearHistory(ctx context.Context, sessionID string) error
	Sessions(ctx context.Context) ([]string, error)
}

type TranscriptFormatter interface {
	FormatTranscript(sessionID string, turns []*entity.ConversationTurn) ([]byte, error)
	ContentType() string
	FileExtension() string
}
