package handlers

import (
	"net/http"

	"github.com/voiceagent/example-agent/pkg/models"
)

// Health reports liveness; it never touches the vendor API.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"agent":  h.AgentName,
	})
}

// Ready reports whether the handler registration produced a dialable
// address. It answers 200 either way; the status field tells them apart.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	reg, err := h.Store.GetRegistration(r.Context())
	if err == nil && reg.Ready() {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":  "ready",
			"address": reg.Address,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "initializing"})
}

func (h *Handlers) VersionInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version": h.Version,
		"agent":   h.AgentName,
	})
}

// ResourceInfo dumps the registration state for debugging. The callback
// URL password is redacted.
func (h *Handlers) ResourceInfo(w http.ResponseWriter, r *http.Request) {
	reg, err := h.Store.GetRegistration(r.Context())
	if err != nil {
		respondJSON(w, http.StatusOK, models.Registration{Name: h.AgentName})
		return
	}
	respondJSON(w, http.StatusOK, reg.Redacted())
}
