package swaig

import (
	"encoding/json"

	"github.com/voiceagent/example-agent/internal/swml"
)

// Result is what a tool hands back: text for the AI to speak, events for
// the client UI, and an optional replacement state bag.
type Result struct {
	Response   string
	Events     []map[string]any
	GlobalData map[string]any
}

func NewResult(response string) *Result {
	return &Result{Response: response}
}

// AddUserEvent queues an event for the connected client.
func (r *Result) AddUserEvent(event map[string]any) *Result {
	r.Events = append(r.Events, event)
	return r
}

// UpdateGlobalData sets the state bag the platform persists for the rest
// of the conversation.
func (r *Result) UpdateGlobalData(data map[string]any) *Result {
	r.GlobalData = data
	return r
}

type wireResult struct {
	Response string           `json:"response"`
	Action   []map[string]any `json:"action,omitempty"`
}

// MarshalJSON encodes the SWAIG response:
// {"response": ..., "action": [{"SWML": ...}, {"set_global_data": ...}]}.
func (r *Result) MarshalJSON() ([]byte, error) {
	w := wireResult{Response: r.Response}
	for _, ev := range r.Events {
		w.Action = append(w.Action, map[string]any{"SWML": swml.UserEvent(ev)})
	}
	if r.GlobalData != nil {
		w.Action = append(w.Action, map[string]any{"set_global_data": r.GlobalData})
	}
	return json.Marshal(w)
}
