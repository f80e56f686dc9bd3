// Package server composes the agent service: configuration, telemetry,
// the example agent, vendor API client, startup registration and the HTTP
// router.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(srv.Addr, srv.Handler)
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/voiceagent/example-agent/internal/agent"
	"github.com/voiceagent/example-agent/internal/api"
	"github.com/voiceagent/example-agent/internal/api/handlers"
	"github.com/voiceagent/example-agent/internal/api/middleware"
	"github.com/voiceagent/example-agent/internal/config"
	"github.com/voiceagent/example-agent/internal/example"
	"github.com/voiceagent/example-agent/internal/fabric"
	"github.com/voiceagent/example-agent/internal/registration"
	"github.com/voiceagent/example-agent/internal/store"
	"github.com/voiceagent/example-agent/internal/telemetry"
	"github.com/voiceagent/example-agent/pkg/models"
)

// Server holds the initialized agent service.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store holds the registration state.
	Store store.Store

	Agent  *agent.Agent
	Config *config.Config

	// Addr is the host:port the server should listen on.
	Addr string

	// Registration is the startup reconciliation result, nil when it was
	// skipped or failed.
	Registration *models.Registration

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// Options override collaborators, mainly for tests.
type Options struct {
	// HandlerAPI replaces the Fabric client used for registration.
	HandlerAPI registration.HandlerAPI
	// Tokens replaces the Fabric client used for guest tokens.
	Tokens handlers.TokenIssuer
}

// New loads configuration from the environment and builds the server.
func New(ctx context.Context) (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, cfg, Options{})
}

// NewWithConfig builds the server from an explicit configuration. Handler
// registration runs here, synchronously, so it completes before the
// caller starts accepting traffic. Its failure is logged, not returned.
func NewWithConfig(ctx context.Context, cfg *config.Config, opts Options) (*Server, error) {
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry, cfg.Server.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	if cfg.Agent.EnsureBasicAuthPassword() {
		log.Warn().
			Str("user", cfg.Agent.BasicAuthUser).
			Str("password", cfg.Agent.BasicAuthPassword).
			Msg("SWML_BASIC_AUTH_PASSWORD not set, generated one for this run")
	}

	a, err := example.New(cfg.Agent, nil)
	if err != nil {
		return nil, fmt.Errorf("build agent: %w", err)
	}
	log.Info().Str("agent", a.Name()).Str("route", a.RoutePath()).Int("tools", len(a.Tools().Tools())).Msg("✅ Agent initialized")

	handlerAPI, tokens := opts.HandlerAPI, opts.Tokens
	if cfg.SignalWire.Configured() {
		client := fabric.NewClient(cfg.SignalWire.Host(), cfg.SignalWire.ProjectID, cfg.SignalWire.Token,
			fabric.WithTimeout(cfg.SignalWire.Timeout))
		if handlerAPI == nil {
			handlerAPI = client
		}
		if tokens == nil {
			tokens = client
		}
	}

	dataStore := store.NewMemoryStore(cfg.Agent.Name)

	reg, err := registration.Run(ctx, cfg, handlerAPI, dataStore)
	if err != nil && !errors.Is(err, registration.ErrNotConfigured) {
		log.Warn().Msg("Continuing without a registered handler; /ready will report initializing")
	}

	if !cfg.SignalWire.Configured() {
		tokens = nil
	}
	h := handlers.New(cfg.Agent.Name, cfg.Server.Version, dataStore, tokens)
	router := api.NewRouter(api.RouterConfig{
		WebDir:       cfg.Server.WebDir,
		TokenLimiter: middleware.NewLimiter(cfg.Tokens.RatePerMinute, cfg.Tokens.Burst),
	}, h, a)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Agent:        a,
		Config:       cfg,
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Registration: reg,
		ShutdownFunc: shutdown,
	}, nil
}
