package agent

import (
	"time"

	"github.com/Hkishore1/ClaimsRAG/internal/entity"
)

func toChatResponse(outcome *entity.ChatTurnOutcome) *entity.ChatResponse {
	citations := make([]entity.CitationDTO, 0, len(outcome.Citations))
	for _, res := range outcome.Citations {
		citations = append(citations, entity.CitationDTO{
			Doc:         res.Document,
			Snippet:     res.Preview,
			FullSnippet: res.Text,
		})
	}

	confidence := outcome.ConfidenceScore
	return &entity.ChatResponse{
		Reply:     outcome.Reply,
		Citations: citations,
		Retrieval: entity.RetrievalDTO{
			K:              outcome.K,
			LatencyMs:      outcome.Retrieval.LatencyMs,
			GroundingScore: outcome.Retrieval.GroundingScore,
		},
		SessionID:         outcome.SessionID,
		UsedClarification: outcome.UsedClarification,
		ConfidenceScore:   &confidence,
	}
}

func toHistoryResponse(sessionID string, turns []*entity.ConversationTurn) *entity.HistoryResponse {
	history := make([]entity.TurnDTO, 0, len(turns))
	for _, turn := range turns {
		history = append(history, entity.TurnDTO{
			Role:      turn.Role,
			Text:      turn.Text,
			Timestamp: turn.Timestamp.Format(time.RFC3339),
		})
	}
	return &entity.HistoryResponse{
		SessionID: sessionID,
		History:   history,
	}
}
