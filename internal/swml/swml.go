// Package swml models the SWML call-instruction documents returned to the
// platform: a versioned set of named sections, each a list of verbs.
package swml

// Version is the SWML document version this service emits.
const Version = "1.0.0"

// Document is a SWML document. Execution starts at the "main" section.
type Document struct {
	Version  string            `json:"version"`
	Sections map[string][]Verb `json:"sections"`
}

// Verb is a single instruction, keyed by verb name: {"answer": {}}.
type Verb map[string]any

// New returns an empty document with a main section.
func New() *Document {
	return &Document{
		Version:  Version,
		Sections: map[string][]Verb{"main": {}},
	}
}

// Add appends a verb to section, creating the section if needed.
func (d *Document) Add(section, verb string, params any) *Document {
	if params == nil {
		params = map[string]any{}
	}
	d.Sections[section] = append(d.Sections[section], Verb{verb: params})
	return d
}

// Answer appends an answer verb to main.
func (d *Document) Answer() *Document {
	return d.Add("main", "answer", nil)
}

// AI appends an ai verb to main.
func (d *Document) AI(ai *AI) *Document {
	return d.Add("main", "ai", ai)
}

// UserEvent returns a one-verb document that delivers event to the
// connected client, used as a SWAIG action.
func UserEvent(event map[string]any) *Document {
	return New().Add("main", "user_event", map[string]any{"event": event})
}

// AI is the parameter block of the ai verb.
type AI struct {
	Prompt        Prompt         `json:"prompt"`
	PostPrompt    *Prompt        `json:"post_prompt,omitempty"`
	PostPromptURL string         `json:"post_prompt_url,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
	Languages     []Language     `json:"languages,omitempty"`
	Hints         []string       `json:"hints,omitempty"`
	SWAIG         *SWAIG         `json:"SWAIG,omitempty"`
}

type Prompt struct {
	Text string `json:"text"`
}

type Language struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Voice string `json:"voice,omitempty"`
}

// SWAIG lists the functions the AI may call back into.
type SWAIG struct {
	Defaults  *SWAIGDefaults `json:"defaults,omitempty"`
	Functions []Function     `json:"functions,omitempty"`
}

type SWAIGDefaults struct {
	WebHookURL string `json:"web_hook_url,omitempty"`
}

type Function struct {
	Function    string `json:"function"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
	WebHookURL  string `json:"web_hook_url,omitempty"`
}
