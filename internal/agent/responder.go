package agent

import (
	"context"
	"strings"

	"github.com/Hkishore1/ClaimsRAG/internal/llm"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	// fallbackResponseCap bounds the raw-grounding reply used when the
	// collaborator is unavailable.
	fallbackResponseCap = 500

	fallbackApology = "I apologize, but I'm having trouble generating a response at the moment."
)

// Responder produces the final natural-language answer for a turn.
type Responder struct {
	llm llm.LLM
}

func NewResponder(model llm.LLM) *Responder {
	return &Responder{llm: model}
}

// Generate asks the collaborator for a grounded answer. On any failure it
// falls back to a truncated prefix of the grounding text (or a fixed
// apology when there is none), so the turn always yields a reply.
func (r *Responder) Generate(ctx context.Context, query, grounding, history string) string {
	prompt := BuildResponsePrompt(query, grounding, history)

	raw, err := r.llm.Generate(ctx, prompt)
	if err != nil {
		ctxzap.Warn(ctx, "response generation failed, using grounding fallback", zap.Error(err))
		return FallbackResponse(grounding)
	}

	reply := strings.TrimSpace(raw)
	if reply == "" {
		return FallbackResponse(grounding)
	}
	return reply
}

// BuildResponsePrompt assembles the answer-generation prompt. It is
// deterministic in its inputs.
func BuildResponsePrompt(query, grounding, history string) string {
	var b strings.Builder
	b.WriteString("You are a professional insurance claims assistant. Generate a helpful, accurate response.\n\n")
	b.WriteString(history)
	b.WriteString("\nCurrent User Query: ")
	b.WriteString(query)
	b.WriteString("\n\nAvailable Information (Grounding):\n")
	b.WriteString(grounding)
	b.WriteString("\n\nInstructions for Response:\n")
	b.WriteString("1. Use conversation history to maintain context and remember previous interactions\n")
	b.WriteString("2. Answer based ONLY on the grounding information provided\n")
	b.WriteString("3. Be professional, clear, and concise (2-4 sentences)\n")
	b.WriteString("4. If answering about policies, mention the policy number\n")
	b.WriteString("5. If answering about procedures, be specific with steps or timeframes\n")
	b.WriteString("6. If information is incomplete in grounding, acknowledge what you know and what's missing\n")
	b.WriteString("7. Use bullet points for multiple items\n")
	b.WriteString("8. Include relevant numbers, dates, or amounts from the grounding\n\n")
	b.WriteString("Format:\n")
	b.WriteString("- Start with a direct answer\n")
	b.WriteString("- Provide supporting details\n")
	b.WriteString("- End with an offer to help further if appropriate\n\n")
	b.WriteString("Response:")
	return b.String()
}

// FallbackResponse is the deterministic reply used when the collaborator
// fails: the first 500 characters of grounding, or a fixed apology.
func FallbackResponse(grounding string) string {
	if grounding == "" {
		return fallbackApology
	}
	if len(grounding) > fallbackResponseCap {
		return grounding[:fallbackResponseCap]
	}
	return grounding
}
