// Package agent hosts one AI agent: its prompt, language and tool
// configuration, rendered as a SWML document on request, plus the SWAIG
// and post-prompt callbacks the platform makes while a call is running.
package agent

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/voiceagent/example-agent/internal/swaig"
	"github.com/voiceagent/example-agent/internal/swml"
)

// Settings are the per-call knobs of the ai verb. The agent keeps a base
// copy; each request hook works on a clone.
type Settings struct {
	Params    map[string]any
	Languages []swml.Language
	Hints     []string
}

func (s *Settings) SetParam(key string, value any) {
	if s.Params == nil {
		s.Params = map[string]any{}
	}
	s.Params[key] = value
}

func (s *Settings) AddLanguage(l swml.Language) {
	s.Languages = append(s.Languages, l)
}

func (s *Settings) AddHints(hints ...string) {
	s.Hints = append(s.Hints, hints...)
}

func (s Settings) clone() *Settings {
	out := &Settings{
		Languages: append([]swml.Language(nil), s.Languages...),
		Hints:     append([]string(nil), s.Hints...),
	}
	if s.Params != nil {
		out.Params = make(map[string]any, len(s.Params))
		for k, v := range s.Params {
			out.Params[k] = v
		}
	}
	return out
}

// RequestHook customises Settings for one SWML request.
type RequestHook func(r *http.Request, a *Agent, s *Settings)

// Summary is the post-prompt payload sent when a conversation ends.
type Summary struct {
	CallID string
	Raw    string
	Parsed []map[string]any
}

// SummaryHook receives conversation summaries.
type SummaryHook func(ctx context.Context, s Summary)

// Agent is a single AI agent served under one route.
type Agent struct {
	name  string
	route string

	prompt        string
	postPrompt    string
	postPromptURL string
	base          Settings

	tools *swaig.Registry

	authUser     string
	authPassword string
	publicURL    string

	onRequest RequestHook
	onSummary SummaryHook
}

// Option configures an Agent.
type Option func(*Agent)

// WithBasicAuth protects the agent's routes and embeds the credentials
// in the callback URLs handed to the platform.
func WithBasicAuth(user, password string) Option {
	return func(a *Agent) {
		a.authUser = user
		a.authPassword = password
	}
}

// WithPublicURL fixes the externally visible base URL. Without it the
// base is derived from each request's forwarding headers.
func WithPublicURL(base string) Option {
	return func(a *Agent) { a.publicURL = strings.TrimRight(base, "/") }
}

func WithRequestHook(h RequestHook) Option {
	return func(a *Agent) { a.onRequest = h }
}

func WithSummaryHook(h SummaryHook) Option {
	return func(a *Agent) { a.onSummary = h }
}

// New creates an agent served at "/"+route.
func New(name, route string, opts ...Option) *Agent {
	a := &Agent{
		name:  name,
		route: strings.Trim(route, "/"),
		tools: swaig.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Name() string { return a.name }

// RoutePath is the mount point, e.g. "/example".
func (a *Agent) RoutePath() string { return "/" + a.route }

// Tools is the agent's SWAIG registry.
func (a *Agent) Tools() *swaig.Registry { return a.tools }

func (a *Agent) SetPrompt(text string) { a.prompt = strings.TrimSpace(text) }

func (a *Agent) SetPostPrompt(text string) { a.postPrompt = strings.TrimSpace(text) }

// SetPostPromptURL sends summaries elsewhere; by default they are posted
// back to this agent's post_prompt route.
func (a *Agent) SetPostPromptURL(u string) { a.postPromptURL = u }

func (a *Agent) SetParam(key string, value any) { a.base.SetParam(key, value) }

func (a *Agent) AddLanguage(l swml.Language) { a.base.AddLanguage(l) }

func (a *Agent) AddHints(hints ...string) { a.base.AddHints(hints...) }

// BaseURL is the public base URL for r, optionally with the basic-auth
// credentials embedded. Returns "" when nothing is known.
func (a *Agent) BaseURL(r *http.Request, includeAuth bool) string {
	base := a.publicURL
	if base == "" && r != nil {
		base = requestBaseURL(r)
	}
	if base == "" || !includeAuth || a.authUser == "" || a.authPassword == "" {
		return base
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	u.User = url.UserPassword(a.authUser, a.authPassword)
	return u.String()
}

// endpoint is the authenticated URL of one of this agent's sub-routes.
func (a *Agent) endpoint(r *http.Request, sub string) string {
	return a.BaseURL(r, true) + a.RoutePath() + "/" + sub
}

// Render builds the SWML document for one request.
func (a *Agent) Render(r *http.Request) *swml.Document {
	s := a.base.clone()
	if a.onRequest != nil {
		a.onRequest(r, a, s)
	}

	webhook := a.endpoint(r, "swaig")
	ai := &swml.AI{
		Prompt:    swml.Prompt{Text: a.prompt},
		Params:    s.Params,
		Languages: s.Languages,
		Hints:     s.Hints,
	}
	if a.postPrompt != "" {
		ai.PostPrompt = &swml.Prompt{Text: a.postPrompt}
		ai.PostPromptURL = a.postPromptURL
		if ai.PostPromptURL == "" {
			ai.PostPromptURL = a.endpoint(r, "post_prompt")
		}
	}
	if fns := a.tools.Functions(webhook); len(fns) > 0 {
		ai.SWAIG = &swml.SWAIG{
			Defaults:  &swml.SWAIGDefaults{WebHookURL: webhook},
			Functions: fns,
		}
	}

	return swml.New().Answer().AI(ai)
}

func (a *Agent) summarize(ctx context.Context, s Summary) {
	if a.onSummary != nil {
		a.onSummary(ctx, s)
		return
	}
	log.Info().
		Str("agent", a.name).
		Str("call_id", s.CallID).
		Str("summary", s.Raw).
		Msg("Conversation summary")
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if host == "" {
		return ""
	}
	return scheme + "://" + host
}
