// Package server exposes the diet planner over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"ai-diet-planner/internal/app"
	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/logging"
	"ai-diet-planner/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	app     *app.App
	config  *config.Config
	limiter *RateLimiter
	done    chan struct{}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, a *app.App) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:  router,
		app:     a,
		config:  cfg,
		limiter: NewRateLimiter(defaultRate, defaultCapacity),
		done:    make(chan struct{}),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// MountWebhook routes Telegram updates to h.
func (s *Server) MountWebhook(path string, h http.HandlerFunc) {
	s.router.Post(path, h)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logging.Middleware(logging.Logger()))
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(s.limiter.Middleware)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Get("/bmi", s.handleBMI)

		r.Post("/plans", s.handleGeneratePlan)
		r.Post("/plans/import", s.handleImportPayload)
		r.Post("/plans/import-url", s.handleImportURL)

		r.Post("/users/{userID}/sync", s.handleSync)
		r.Get("/users/{userID}/plans/latest", s.handleLatestPlan)

		r.Route("/plans/{planID}", func(r chi.Router) {
			r.Get("/", s.handleGetPlan)
			r.Post("/revise", s.handleRevisePlan)
			r.Get("/week", s.handleWeek)
			r.Get("/days/{day}", s.handleDay)
			r.Get("/days/{day}/meals/{meal}", s.handleMeal)
			r.Get("/shopping-list", s.handleShoppingList)
		})
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.limiter.startCleanup(30*time.Minute, s.done)

	logging.Info("Starting server", "address", s.server.Addr, "env", s.config.Env)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	close(s.done)

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
