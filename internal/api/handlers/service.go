// Package handlers implements the HTTP handlers of the agent service's
// REST surface: health, readiness, guest tokens and registration info.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/voiceagent/example-agent/internal/fabric"
	"github.com/voiceagent/example-agent/internal/store"
)

// TokenIssuer mints guest tokens. *fabric.Client implements it.
type TokenIssuer interface {
	CreateGuestToken(ctx context.Context, req fabric.GuestTokenRequest) (string, error)
}

// Handlers holds all handler dependencies.
type Handlers struct {
	AgentName string
	Version   string
	Store     store.Store
	// Tokens is nil when vendor credentials are not configured.
	Tokens TokenIssuer
	Now    func() time.Time
}

// New creates a Handlers instance. tokens may be nil.
func New(agentName, version string, s store.Store, tokens TokenIssuer) *Handlers {
	return &Handlers{
		AgentName: agentName,
		Version:   version,
		Store:     s,
		Tokens:    tokens,
		Now:       time.Now,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
