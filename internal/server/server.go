// Package server exposes the ingestion and search pipeline over a small
// JSON REST API, following the teacher's chi-based HTTP server layout.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"atsresume/internal/config"
	"atsresume/internal/ingest"
	"atsresume/internal/obslog"
	"atsresume/internal/persistence"
	"atsresume/internal/search"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Server represents the HTTP API server fronting the ingestion orchestrator
// and search engine.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	orch       *ingest.Orchestrator
	engine     *search.Engine
	db         *persistence.DB
	config     config.Server
	log        zerolog.Logger
}

// New creates a new HTTP server instance wired to an already-built
// orchestrator, search engine, and database handle.
func New(orch *ingest.Orchestrator, engine *search.Engine, db *persistence.DB, cfg config.Server) *Server {
	s := &Server{
		router: chi.NewRouter(),
		orch:   orch,
		engine: engine,
		db:     db,
		config: cfg,
		log:    obslog.With("server"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(securityHeaders)

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/status", s.handleStatus)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Post("/search", s.handleSearch)
		r.Post("/retry/{id}", s.handleRetry)
	})
}

// Start starts the HTTP server, blocking until it stops or fails.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info().Msg("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing).
func (s *Server) Router() *chi.Mux {
	return s.router
}
