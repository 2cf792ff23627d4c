// Copyright (c) 2026 TaskForge. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskforge/taskforge/internal/core/project"
	"github.com/taskforge/taskforge/internal/core/tag"
	"github.com/taskforge/taskforge/internal/core/task"
	"github.com/taskforge/taskforge/internal/core/team"
	"github.com/taskforge/taskforge/internal/platform/config"
	"github.com/taskforge/taskforge/internal/platform/constants"
	"github.com/taskforge/taskforge/internal/platform/middleware"
	"github.com/taskforge/taskforge/internal/users/account"
	"github.com/taskforge/taskforge/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here; no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler. Always returns 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. Returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles credential issuance and the session lifecycle.
	Auth *auth.Handler

	// Account handles the signed-in user's own profile.
	Account *account.Handler

	// Team manages teams and memberships.
	Team *team.Handler

	// Project manages projects within a team.
	Project *project.Handler

	// Task manages tasks, comments, time entries, and tag assignments.
	Task *task.Handler

	// Tag manages team-scoped labels.
	Tag *tag.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())

		// Everything below requires a valid access token.
		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth)

			protected.Mount("/users", h.Account.Routes())

			protected.Route("/teams", func(teams chi.Router) {
				h.Team.RegisterRoutes(teams)
				teams.Route("/{teamID}/projects", h.Project.RegisterTeamRoutes)
				teams.Route("/{teamID}/tags", h.Tag.RegisterTeamRoutes)
			})

			protected.Route("/projects", func(projects chi.Router) {
				h.Project.RegisterRoutes(projects)
				projects.Route("/{projectID}/tasks", h.Task.RegisterProjectRoutes)
			})

			protected.Route("/tasks", h.Task.RegisterRoutes)
			protected.Route("/tags", h.Tag.RegisterRoutes)
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
