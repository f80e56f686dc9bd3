package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voiceagent/example-agent/internal/fabric"
	"github.com/voiceagent/example-agent/internal/metrics"
	"github.com/voiceagent/example-agent/pkg/models"
)

// GuestTokenTTL is how long an issued guest token stays valid.
const GuestTokenTTL = 24 * time.Hour

// GetToken mints a guest token that may only dial the registered address.
// Configuration problems are reported without calling the vendor API.
func (h *Handlers) GetToken(w http.ResponseWriter, r *http.Request) {
	if h.Tokens == nil {
		metrics.ObserveGuestToken("not_configured")
		respondError(w, http.StatusInternalServerError, "SignalWire credentials not configured")
		return
	}

	reg, err := h.Store.GetRegistration(r.Context())
	if err != nil || reg.AddressID == "" {
		metrics.ObserveGuestToken("not_configured")
		respondError(w, http.StatusInternalServerError, "SWML handler not configured yet")
		return
	}

	expireAt := h.Now().Add(GuestTokenTTL).Unix()
	token, err := h.Tokens.CreateGuestToken(r.Context(), fabric.GuestTokenRequest{
		AllowedAddresses: []string{reg.AddressID},
		ExpireAt:         expireAt,
	})
	if err != nil {
		metrics.ObserveGuestToken("error")
		log.Error().Err(err).Str("address_id", reg.AddressID).Msg("Token request failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.ObserveGuestToken("issued")
	log.Debug().Str("address_id", reg.AddressID).Int64("expire_at", expireAt).Msg("Guest token issued")
	respondJSON(w, http.StatusOK, models.GuestToken{Token: token, Address: reg.Address})
}
