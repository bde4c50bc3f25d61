// Package server exposes the risk scoring and allocation engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/etnz/riskfolio"
	"github.com/etnz/riskfolio/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Users is the user store used by the handlers, *store.Store implements it.
type Users interface {
	Create(ctx context.Context, name, email string, p riskfolio.Profile) (store.User, error)
	Get(ctx context.Context, id string) (store.User, error)
	UpdateProfile(ctx context.Context, id string, patch riskfolio.Profile) (store.User, error)
	SetRiskScore(ctx context.Context, id string, score riskfolio.RiskScore) error
}

// Config holds server configuration.
type Config struct {
	Addr           string
	RequestTimeout time.Duration // 60s when zero
	Log            zerolog.Logger

	Users     Users
	Scorer    riskfolio.Scorer
	Allocator *riskfolio.Allocator
	Funds     riskfolio.FundCatalog
}

// Server represents the HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	users     Users
	scorer    riskfolio.Scorer
	allocator *riskfolio.Allocator
	funds     riskfolio.FundCatalog
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		users:     cfg.Users,
		scorer:    cfg.Scorer,
		allocator: cfg.Allocator,
		funds:     cfg.Funds,
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	s.setupMiddleware(timeout)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(timeout time.Duration) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(timeout))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/risk-score", s.handleRiskScore)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleCreateUser)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", s.handleGetUser)
				r.Put("/", s.handleUpdateUser)
				r.Post("/portfolio/percentage-mutual-fund", s.handleAllocation)
				r.Post("/portfolio/mutual-funds", s.handleMutualFunds)
			})
		})
	})
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens and serves until Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
