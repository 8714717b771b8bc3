package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	agentapi "github.com/Hkishore1/ClaimsRAG/internal/api/agent"
	"github.com/Hkishore1/ClaimsRAG/internal/api/docs"
	"github.com/Hkishore1/ClaimsRAG/internal/api/middleware"
	queryapi "github.com/Hkishore1/ClaimsRAG/internal/api/query"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(queryHandler *queryapi.Handler, agentHandler *agentapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.ProcessTime)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	docs.RegisterRoutes(r)

	queryapi.RegisterRoutes(r, queryHandler)
	agentapi.RegisterRoutes(r, agentHandler)

	return r
}
