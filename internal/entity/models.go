package entity

import "time"

// Conversation roles stored in history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Document is a single source text file loaded from the data directory.
// The filename doubles as the citation key.
type Document struct {
	Name    string
	Path    string
	Content string
}

// Chunk is a bounded span of document text stored as a retrieval unit.
// Once indexed a chunk is immutable; Vector holds its L2-normalized embedding.
type Chunk struct {
	Document string
	Text     string
	Ordinal  int
	Vector   []float32
}

// RetrievalResult is a single retrieved passage with its exact cosine
// similarity to the query.
type RetrievalResult struct {
	Document   string
	Preview    string
	Text       string
	Similarity float64
}

// Retrieval aggregates the outcome of one retrieval call.
type Retrieval struct {
	Results        []RetrievalResult
	GroundingScore float64
	LatencyMs      int64
}

// ConversationTurn is one append-only history record.
type ConversationTurn struct {
	ID        string
	SessionID string
	Role      string
	Text      string
	Timestamp time.Time
}

// Decision is the clarification decider's outcome for a turn.
type Decision struct {
	NeedsClarification    bool    `json:"needs_clarification"`
	Reason                string  `json:"reason"`
	ClarificationQuestion string  `json:"clarification_question"`
	Confidence            float64 `json:"confidence"`
}

// ChatTurnOutcome is the result of one full conversational turn.
type ChatTurnOutcome struct {
	Reply             string
	Citations         []RetrievalResult
	Retrieval         Retrieval
	K                 int
	SessionID         string
	UsedClarification bool
	ConfidenceScore   float64
}
