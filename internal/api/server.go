package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/seolens/internal/config"
	"github.com/dgallion1/seolens/internal/generate"
	"github.com/dgallion1/seolens/internal/pipeline"
	"github.com/dgallion1/seolens/internal/reportstore"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for seolens.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	claude       *generate.ClaudeClient
	reports      *reportstore.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. claude and reports may
// be nil; the endpoints that need them then answer 503.
func NewServer(orch *pipeline.Orchestrator, claude *generate.ClaudeClient, reports *reportstore.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		claude:       claude,
		reports:      reports,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.SeolensAPIKey, s.log))

		r.Post("/api/generate", s.handleGenerate)
		r.Route("/api/generate/{jobID}", func(r chi.Router) {
			r.Get("/status", s.handleGenerateStatus)
			r.Get("/stream", s.handleGenerateStream)
			r.Get("/sections", s.handleGenerateSections)
			r.Get("/preview", s.handleGeneratePreview)
			r.Post("/copy", s.handleGenerateCopy)
		})

		r.Post("/api/preview", s.handlePreview)
		r.Post("/api/highlight", s.handleHighlight)

		r.Get("/api/reports", s.handleListReports)
		r.Get("/api/reports/{reportID}", s.handleGetReport)
		r.Delete("/api/reports/{reportID}", s.handleDeleteReport)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
