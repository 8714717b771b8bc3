package agent

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers agent routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/agent", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Get("/sessions", h.ListSessions)
		r.Get("/history/{session_id}", h.GetHistory)
		r.Delete("/history/{session_id}", h.ClearHistory)
		r.Get("/history/{session_id}/export", h.ExportHistory)
	})
}
