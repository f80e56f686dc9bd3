// Example voice agent service.
//
// Serves one AI agent to the telephony platform and its browser client:
//   - SWML document and SWAIG function callbacks for the agent
//   - startup registration of the agent's call handler
//   - guest tokens for WebRTC clients
//   - static web frontend, health and readiness checks
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voiceagent/example-agent/internal/config"
	"github.com/voiceagent/example-agent/pkg/server"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.Log)

	log.Info().Str("agent", cfg.Agent.Name).Msg("🎙️ Example agent starting...")

	ctx := context.Background()
	srv, err := server.NewWithConfig(ctx, cfg, server.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	httpServer := &http.Server{
		Addr:         srv.Addr,
		Handler:      srv.Handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("🛑 Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP shutdown did not complete")
		}
		if err := srv.ShutdownFunc(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Telemetry flush failed")
		}
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("route", srv.Agent.RoutePath()).
		Msg("🔥 Agent is listening")

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
	<-drained
	log.Info().Msg("👋 Stopped")
}

func setupLogging(cfg config.LogConfig) {
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("level", cfg.Level).Msg("Unknown LOG_LEVEL, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
