package entity

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// CitationDTO references the source backing an answer.
type CitationDTO struct {
	Doc         string `json:"doc"`
	Snippet     string `json:"snippet"`
	FullSnippet string `json:"full_snippet,omitempty"`
}

// RetrievalDTO carries retrieval statistics for a response.
type RetrievalDTO struct {
	K              int     `json:"k"`
	LatencyMs      int64   `json:"latency_ms"`
	GroundingScore float64 `json:"grounding_score"`
}

// AskResponse is the body returned by POST /ask.
type AskResponse struct {
	Answer    string        `json:"answer"`
	Citations []CitationDTO `json:"citations"`
	Retrieval RetrievalDTO  `json:"retrieval"`
}

// ChatRequest is the body of POST /agent/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	K         int    `json:"k"`
}

// ChatResponse is the body returned by POST /agent/chat.
type ChatResponse struct {
	Reply             string        `json:"reply"`
	Citations         []CitationDTO `json:"citations"`
	Retrieval         RetrievalDTO  `json:"retrieval"`
	SessionID         string        `json:"session_id"`
	UsedClarification bool          `json:"used_clarification"`
	ConfidenceScore   *float64      `json:"confidence_score"`
}

// TurnDTO is one history record as returned by the history endpoints.
type TurnDTO struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// HistoryResponse is the body returned by GET /agent/history/{session_id}.
type HistoryResponse struct {
	SessionID string    `json:"session_id"`
	History   []TurnDTO `json:"history"`
}

// SessionsResponse is the body returned by GET /agent/sessions.
type SessionsResponse struct {
	Sessions []string `json:"sessions"`
}

// HealthResponse is the body returned by GET /healthz.
type HealthResponse struct {
	Status           string  `json:"status"`
	Timestamp        string  `json:"timestamp"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	IndexReady       bool    `json:"index_ready"`
	DocumentsIndexed int     `json:"documents_indexed"`
	ChunksIndexed    int     `json:"chunks_indexed"`
	EmbeddingModel   string  `json:"embedding_model"`
	ChunkSize        int     `json:"chunk_size"`
	ChunkOverlap     int     `json:"chunk_overlap"`
	HNSWM            int     `json:"hnsw_m"`
	HNSWEfSearch     int     `json:"hnsw_ef_search"`
	Version          string  `json:"version"`
}

// ErrorResponse is the common error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
