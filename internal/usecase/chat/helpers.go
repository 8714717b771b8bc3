package chat

import (
	"context"
	"fmt"
	"strings"
)

const conversationStart = "This is the start of the conversation.\n"

// buildConversationContext formats the most recent turns for prompt use,
// oldest first. The just-persisted user turn is included.
func (uc *ChatUsecase) buildConversationContext(ctx context.Context, sessionID string) (string, error) {
	turns, err := uc.historyRepo.GetRecent(ctx, sessionID, uc.cfg.HistoryContextTurns)
	if err != nil {
		return "", fmt.Errorf("get recent turns: %w", err)
	}

	if len(turns) == 0 {
		return conversationStart, nil
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for i := len(turns) - 1; i >= 0; i-- {
		b.WriteString(capitalize(turns[i].Role))
		b.WriteString(": ")
		b.WriteString(turns[i].Text)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
