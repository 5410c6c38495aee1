// Package web provides the HTTP surface for the import service: the bulk
// import endpoint, audit lookups, and the WebSocket feed that pushes
// dashboard summary changes.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kofiadu/staffsync/internal/audit"
	"github.com/kofiadu/staffsync/internal/config"
	"github.com/kofiadu/staffsync/internal/engine"
	"github.com/kofiadu/staffsync/internal/notify"
	"github.com/kofiadu/staffsync/internal/repository"
)

// Server is the HTTP server for the import service.
type Server struct {
	engine *engine.Service
	db     repository.DBTX
	audits *audit.Store
	hub    *notify.SummaryHub
	cfg    *config.Config
	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server instance.
func NewServer(engineSvc *engine.Service, db repository.DBTX, audits *audit.Store, hub *notify.SummaryHub, cfg *config.Config) *Server {
	s := &Server{
		engine: engineSvc,
		db:     db,
		audits: audits,
		hub:    hub,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/tenants/{tenantID}/imports", s.handleImport)
		r.Get("/imports/{importID}", s.handleGetImport)
	})

	// Dashboard summary feed
	s.router.Get("/ws/summary/{tenantID}", s.handleSummarySocket)
}

// Start begins listening and blocks until the context is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
