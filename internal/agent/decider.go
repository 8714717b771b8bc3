// Package agent holds the conversational decision logic: whether a turn
// needs a clarifying question, and how the final reply is generated. Both
// delegate to the text-completion collaborator but always degrade to
// deterministic rule-based behavior when the collaborator fails, so a turn
// never fails outright because the model was unreachable.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Hkishore1/ClaimsRAG/internal/entity"
	"github.com/Hkishore1/ClaimsRAG/internal/llm"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	// minGroundingLength is the rule-based threshold: shorter grounding
	// means the fallback decision asks for clarification.
	minGroundingLength = 50

	fallbackClarificationQuestion = "I don't have enough information to answer your question. " +
		"Could you provide more details or specify which policy (101 or 201) you're referring to?"

	fallbackClarifyConfidence = 0.3
	fallbackProceedConfidence = 0.7
)

var ErrNoJSONObject = errors.New("no JSON object found in response")

// Decider decides per turn whether to ask a clarifying question or
// proceed to answer generation.
type Decider struct {
	llm llm.LLM
}

func NewDecider(model llm.LLM) *Decider {
	return &Decider{llm: model}
}

// Decide builds the clarification prompt, asks the collaborator and
// parses its answer. Any collaborator or parse failure falls back to the
// deterministic rule-based decision; Decide itself never fails.
func (d *Decider) Decide(ctx context.Context, query, grounding, history string) entity.Decision {
	prompt := BuildClarificationPrompt(query, grounding, history)

	raw, err := d.llm.Generate(ctx, prompt)
	if err != nil {
		ctxzap.Warn(ctx, "clarification check failed, using rule-based fallback", zap.Error(err))
		return FallbackDecision(grounding)
	}

	decision, err := ParseDecision(raw)
	if err != nil {
		ctxzap.Warn(ctx, "unparseable clarification response, using rule-based fallback", zap.Error(err))
		return FallbackDecision(grounding)
	}
	return decision
}

// BuildClarificationPrompt assembles the structured prompt requesting a
// JSON decision. It is deterministic in its inputs.
func BuildClarificationPrompt(query, grounding, history string) string {
	if grounding == "" {
		grounding = "No relevant information found."
	}

	var b strings.Builder
	b.WriteString("You are an insurance claims assistant. Analyze the user's query and available information to determine if clarification is needed.\n\n")
	b.WriteString(history)
	b.WriteString("\nCurrent User Query: ")
	b.WriteString(query)
	b.WriteString("\n\nAvailable Information (Grounding):\n")
	b.WriteString(grounding)
	b.WriteString("\n\nTask: Determine if you have enough information to answer the query confidently.\n\n")
	b.WriteString("Analysis Criteria:\n")
	b.WriteString("1. Is the query specific enough? (e.g., mentions policy number, specific dates, claim ID)\n")
	b.WriteString("2. Is there relevant information in the grounding?\n")
	b.WriteString("3. Are there multiple possible interpretations?\n")
	b.WriteString("4. Does the conversation history provide additional context?\n\n")
	b.WriteString("Response Format (JSON):\n")
	b.WriteString("{\n")
	b.WriteString("  \"needs_clarification\": true/false,\n")
	b.WriteString("  \"reason\": \"brief explanation\",\n")
	b.WriteString("  \"clarification_question\": \"specific question to ask user (if needed)\",\n")
	b.WriteString("  \"confidence\": 0.0-1.0\n")
	b.WriteString("}\n\n")
	b.WriteString("If needs_clarification is false, set clarification_question to empty string.\n")
	b.WriteString("Be specific in clarification questions - reference policy numbers, document names, or specific details.\n\n")
	b.WriteString("Response:")
	return b.String()
}

// ParseDecision extracts the decision JSON from the raw collaborator
// output. The collaborator may wrap the object in commentary, so only the
// substring between the first '{' and the last '}' is parsed.
func ParseDecision(raw string) (entity.Decision, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return entity.Decision{}, ErrNoJSONObject
	}

	var parsed struct {
		NeedsClarification    bool     `json:"needs_clarification"`
		Reason                string   `json:"reason"`
		ClarificationQuestion string   `json:"clarification_question"`
		Confidence            *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return entity.Decision{}, fmt.Errorf("decode decision: %w", err)
	}

	confidence := 0.5
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}

	return entity.Decision{
		NeedsClarification:    parsed.NeedsClarification,
		Reason:                parsed.Reason,
		ClarificationQuestion: parsed.ClarificationQuestion,
		Confidence:            confidence,
	}, nil
}

// FallbackDecision is the deterministic rule-based decision used when the
// collaborator is unavailable or unparseable: thin grounding asks for
// clarification, anything else proceeds.
func FallbackDecision(grounding string) entity.Decision {
	if len(grounding) < minGroundingLength {
		return entity.Decision{
			NeedsClarification:    true,
			Reason:                "Insufficient grounding information",
			ClarificationQuestion: fallbackClarificationQuestion,
			Confidence:            fallbackClarifyConfidence,
		}
	}
	return entity.Decision{
		NeedsClarification: false,
		Reason:             "Fallback - sufficient information available",
		Confidence:         fallbackProceedConfidence,
	}
}
