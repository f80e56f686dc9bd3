package registration

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/voiceagent/example-agent/internal/config"
	"github.com/voiceagent/example-agent/internal/metrics"
	"github.com/voiceagent/example-agent/internal/store"
	"github.com/voiceagent/example-agent/pkg/models"
)

// Run reconciles the handler once at startup and saves the result. Missing
// configuration returns ErrNotConfigured after a warning; any other failure
// is logged and returned with the store left untouched. Neither is fatal:
// the service keeps serving health checks and reports not ready.
func Run(ctx context.Context, cfg *config.Config, api HandlerAPI, s store.Store) (*models.Registration, error) {
	metrics.SetRegistrationReady(false)

	if !cfg.SignalWire.Configured() || api == nil {
		log.Warn().Msg("SignalWire credentials not configured - skipping SWML handler setup")
		return nil, ErrNotConfigured
	}
	base := cfg.Agent.PublicURL()
	if base == "" {
		log.Warn().Msg("SWML_PROXY_URL_BASE/APP_URL not set - skipping SWML handler setup")
		return nil, ErrNotConfigured
	}

	callback := CallbackURL(base, cfg.Agent.BasicAuthUser, cfg.Agent.BasicAuthPassword, cfg.Agent.Route)
	reg, err := NewReconciler(api, cfg.Agent.Name, callback).Reconcile(ctx)
	if err != nil {
		log.Error().Err(err).Str("handler", cfg.Agent.Name).Msg("SWML handler setup failed")
		return nil, err
	}

	if err := s.SaveRegistration(ctx, reg); err != nil {
		log.Error().Err(err).Msg("Failed to save registration")
		return nil, err
	}
	metrics.SetRegistrationReady(reg.Ready())

	log.Info().
		Str("handler", reg.Name).
		Str("id", reg.ID).
		Str("address", reg.Address).
		Msg("📞 SWML handler registered")
	return reg, nil
}
