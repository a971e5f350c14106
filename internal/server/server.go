// Package server exposes the ingestion and dashboard API over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recon-health/recon/internal/config"
	"github.com/recon-health/recon/internal/storage"
)

// defaultUserKey scopes all HTTP traffic to a single local user. Multi-user
// keying stays internal to the storage layer.
const defaultUserKey = "default"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  storage.Store
	log    *slog.Logger
	apiKey string
	goals  config.GoalsConfig
	router chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves the import endpoint unauthenticated.
func New(store storage.Store, apiKey string, goals config.GoalsConfig, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		log:    log,
		apiKey: apiKey,
		goals:  goals,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Import endpoint (API key required when configured)
	s.router.Route("/api/v1/import", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleImport)
	})

	s.router.Get("/api/v1/metrics", s.handleGetMetrics)
	s.router.Delete("/api/v1/metrics", s.handleDeleteMetrics)
	s.router.Get("/api/v1/goals", s.handleGetGoals)
	s.router.Put("/api/v1/goals", s.handlePutGoals)
	s.router.Get("/api/v1/trend/weight", s.handleWeightTrend)
	s.router.Get("/api/v1/records", s.handleRecords)
	s.router.Get("/api/v1/summary", s.handleSummary)
	s.router.Get("/api/v1/imports", s.handleImportLogs)
	s.router.Get("/api/v1/health", s.handleHealth)
}
