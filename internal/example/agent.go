// Package example defines the example agent: its personality, call
// settings and three demonstration tools.
package example

import (
	"net/http"
	"time"

	"github.com/voiceagent/example-agent/internal/agent"
	"github.com/voiceagent/example-agent/internal/config"
	"github.com/voiceagent/example-agent/internal/swml"
)

// DisplayName is the agent's human-readable name.
const DisplayName = "Example Agent"

const prompt = `
You are a helpful example assistant demonstrating SignalWire AI capabilities.

You have access to three tools that you can use:
1. greet_user - Greet someone by name
2. echo_message - Repeat back what the user said
3. increment_counter - Increment a counter (demonstrates state persistence)

Be friendly and helpful. When users interact with you, use the appropriate
tool to demonstrate the feature. Explain what each tool does when you use it.

For example:
- If someone says their name, use greet_user to greet them
- If they want you to repeat something, use echo_message
- If they want to count or track something, use increment_counter
`

const postPrompt = "Summarize this conversation briefly, including any greetings, " +
	"echoed messages, and the final counter value if it was used."

var hints = []string{"SignalWire", "SWAIG", "example", "counter", "increment"}

// New builds the example agent from configuration. now stamps tool
// events; nil means time.Now.
func New(cfg config.AgentConfig, now func() time.Time, opts ...agent.Option) (*agent.Agent, error) {
	opts = append([]agent.Option{
		agent.WithBasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPassword),
		agent.WithPublicURL(cfg.PublicURL()),
		agent.WithRequestHook(configureCall),
	}, opts...)

	a := agent.New(DisplayName, cfg.Route, opts...)
	a.SetPrompt(prompt)
	// Summaries are only requested when someone collects them.
	if cfg.PostPromptURL != "" {
		a.SetPostPrompt(postPrompt)
		a.SetPostPromptURL(cfg.PostPromptURL)
	}

	if err := NewTools(now).Register(a.Tools()); err != nil {
		return nil, err
	}
	return a, nil
}

// configureCall sets avatar videos, voice and speech hints per request.
// The media URLs depend on the public base, which may come from the
// request's forwarding headers.
func configureCall(r *http.Request, a *agent.Agent, s *agent.Settings) {
	if base := a.BaseURL(r, false); base != "" {
		s.SetParam("video_idle_file", base+"/example_idle.mp4")
		s.SetParam("video_talking_file", base+"/example_talking.mp4")
	}

	s.AddLanguage(swml.Language{Name: "English", Code: "en-US", Voice: "elevenlabs.rachel"})
	s.AddHints(hints...)
}
