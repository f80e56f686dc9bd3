package agent

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/voiceagent/example-agent/internal/swaig"
)

// maxBodyBytes bounds callback payloads; post-prompt bodies carry the
// whole conversation log.
const maxBodyBytes = 4 << 20

// Mount registers the agent's routes on r under RoutePath:
//
//	GET|POST {route}              SWML document
//	POST     {route}/swaig        SWAIG function calls
//	POST     {route}/post_prompt  conversation summary
func (a *Agent) Mount(r chi.Router) {
	r.Route(a.RoutePath(), func(r chi.Router) {
		if a.authUser != "" && a.authPassword != "" {
			r.Use(chimw.BasicAuth(a.name, map[string]string{a.authUser: a.authPassword}))
		}
		r.Get("/", a.serveSWML)
		r.Post("/", a.serveSWML)
		r.Post("/swaig", a.serveSWAIG)
		r.Post("/post_prompt", a.servePostPrompt)
	})
}

func (a *Agent) serveSWML(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.Render(r))
}

func (a *Agent) serveSWAIG(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"response": "Invalid request body"})
		return
	}
	req, err := swaig.DecodeRequest(body)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"response": err.Error()})
		return
	}

	logger := log.With().
		Str("agent", a.name).
		Str("function", req.Function).
		Str("call_id", req.CallID).
		Logger()

	res, err := a.tools.Dispatch(r.Context(), req)
	if err != nil {
		if errors.Is(err, swaig.ErrUnknownFunction) {
			logger.Warn().Msg("Unknown SWAIG function")
			respondJSON(w, http.StatusNotFound, map[string]string{"response": "Function not found: " + req.Function})
			return
		}
		logger.Error().Err(err).Msg("SWAIG function failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"response": "Sorry, I couldn't complete that request."})
		return
	}

	logger.Debug().Str("response", res.Response).Msg("SWAIG function completed")
	respondJSON(w, http.StatusOK, res)
}

type postPromptPayload struct {
	CallID         string `json:"call_id"`
	PostPromptData struct {
		Raw         string           `json:"raw"`
		Substituted string           `json:"substituted"`
		Parsed      []map[string]any `json:"parsed"`
	} `json:"post_prompt_data"`
}

func (a *Agent) servePostPrompt(w http.ResponseWriter, r *http.Request) {
	var p postPromptPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	raw := p.PostPromptData.Raw
	if raw == "" {
		raw = p.PostPromptData.Substituted
	}
	a.summarize(r.Context(), Summary{CallID: p.CallID, Raw: raw, Parsed: p.PostPromptData.Parsed})

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
