// Package api provides the HTTP API server and handlers for the RankDeck application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rankdeck/rankdeck-server/internal/config"
	"github.com/rankdeck/rankdeck-server/internal/ratelimit"
	"github.com/rankdeck/rankdeck-server/internal/service"
	"github.com/rankdeck/rankdeck-server/internal/store"
	"github.com/rankdeck/rankdeck-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          *store.Store
	sessionService *service.SessionService
	cardService    *service.CardService
	validator      *validation.Validator
	limiter        *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, store *store.Store, sessionService *service.SessionService, cardService *service.CardService, logger *slog.Logger) *Server {
	s := &Server{
		store:          store,
		sessionService: sessionService,
		cardService:    cardService,
		validator:      validation.New(),
		router:         chi.NewRouter(),
		logger:         logger,
	}

	if cfg.RateLimit.Enabled {
		s.limiter = ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-owned resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg *config.Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", ownerTokenHeader},
		MaxAge:         300,
	}))

	if s.limiter != nil {
		s.router.Use(s.rateLimit)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		// Sessions are addressed by slug: the slug is the share link.
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Patch("/", s.handleUpdateSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/cards", s.handleCreateCard)
				r.Patch("/order", s.handleReorderSession)
			})
		})

		// Cards are addressed by id; the owning session is found through the card.
		r.Route("/cards/{id}", func(r chi.Router) {
			r.Patch("/", s.handleUpdateCard)
			r.Delete("/", s.handleDeleteCard)
		})
	})
}
