package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server is the control-plane HTTP API. It only ever writes transition
// statuses; the engine picks the rows up on its next run and owns the
// terminal statuses.
type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	corePool *pgxpool.Pool
}

func NewServer(logger zerolog.Logger, corePool *pgxpool.Pool) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		corePool: corePool,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestMetrics)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		entities := NewEntities(s.corePool)

		// Typed creation endpoints.
		r.Post("/users", entities.CreateUser)
		r.Post("/domains", entities.CreateDomain)
		r.Post("/subdomains", entities.CreateSubdomain)
		r.Post("/domain-aliases", entities.CreateDomainAlias)
		r.Post("/dns-records", entities.CreateDNSRecord)
		r.Post("/ftp-users", entities.CreateFtpUser)
		r.Post("/mail-accounts", entities.CreateMailAccount)
		r.Post("/certificates", entities.CreateCertificate)

		// Generic read and transition endpoints over every entity table.
		r.Get("/{entity}", entities.List)
		r.Get("/{entity}/{id}", entities.Get)
		r.Patch("/{entity}/{id}/status", entities.Transition)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.corePool.Ping(ctx); err != nil {
		checks["core_db"] = err.Error()
		healthy = false
	} else {
		checks["core_db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
