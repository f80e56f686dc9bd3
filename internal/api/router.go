package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/voiceagent/example-agent/internal/agent"
	"github.com/voiceagent/example-agent/internal/api/handlers"
	"github.com/voiceagent/example-agent/internal/api/middleware"
	"github.com/voiceagent/example-agent/internal/metrics"
)

// RouterConfig carries what NewRouter needs beyond the handlers.
type RouterConfig struct {
	// WebDir is served at / when it exists.
	WebDir string
	// TokenLimiter guards /get_token; nil disables limiting.
	TokenLimiter *rate.Limiter
}

// NewRouter creates the HTTP router: REST endpoints, the agent's SWML and
// SWAIG routes, metrics and the static frontend.
func NewRouter(cfg RouterConfig, h *handlers.Handlers, a *agent.Agent) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// Health & info
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/version", h.VersionInfo)
	r.Get("/get_resource_info", h.ResourceInfo)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if cfg.TokenLimiter != nil {
			r.Use(middleware.RateLimit(cfg.TokenLimiter))
		}
		r.Get("/get_token", h.GetToken)
	})

	// SWML document, SWAIG functions, post-prompt
	a.Mount(r)

	if cfg.WebDir != "" {
		if info, err := os.Stat(cfg.WebDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))
			log.Info().Str("dir", cfg.WebDir).Msg("Serving static files")
		} else {
			log.Debug().Str("dir", cfg.WebDir).Msg("Static directory not found, frontend disabled")
		}
	}

	return r
}
