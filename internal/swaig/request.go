package swaig

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Request is a SWAIG function callback as posted by the platform. Raw
// keeps the full payload for handlers that need more than the typed
// fields.
type Request struct {
	Function    string         `json:"function"`
	Argument    Argument       `json:"argument"`
	GlobalData  map[string]any `json:"global_data,omitempty"`
	CallID      string         `json:"call_id,omitempty"`
	AISessionID string         `json:"ai_session_id,omitempty"`
	AppName     string         `json:"app_name,omitempty"`

	Raw map[string]any `json:"-"`
}

// Argument carries the model's arguments both parsed and as raw JSON text.
type Argument struct {
	Parsed []map[string]any `json:"parsed,omitempty"`
	Raw    string           `json:"raw,omitempty"`
}

// DecodeRequest parses a SWAIG request body.
func DecodeRequest(body []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode swaig request: %w", err)
	}
	if err := json.Unmarshal(body, &req.Raw); err != nil {
		return nil, fmt.Errorf("decode swaig request: %w", err)
	}
	if req.Function == "" {
		return nil, fmt.Errorf("decode swaig request: missing function name")
	}
	return &req, nil
}

// Args returns the first parsed argument object, falling back to the raw
// JSON text. It never returns nil.
func (r *Request) Args() Args {
	if len(r.Argument.Parsed) > 0 && r.Argument.Parsed[0] != nil {
		return Args(r.Argument.Parsed[0])
	}
	if r.Argument.Raw != "" {
		var a map[string]any
		if err := json.Unmarshal([]byte(r.Argument.Raw), &a); err == nil && a != nil {
			return Args(a)
		}
	}
	return Args{}
}

// State returns a copy of the request's global data, never nil.
func (r *Request) State() map[string]any {
	out := make(map[string]any, len(r.GlobalData))
	for k, v := range r.GlobalData {
		out[k] = v
	}
	return out
}

// Args are a tool's decoded arguments.
type Args map[string]any

// String returns the string at key, or def when absent or not a string.
func (a Args) String(key, def string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return def
}

// Int returns the integer at key, or def when absent or not numeric.
func (a Args) Int(key string, def int) int {
	return toInt(a[key], def)
}

func toInt(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// IntValue reads an integer out of a state bag entry.
func IntValue(state map[string]any, key string, def int) int {
	return toInt(state[key], def)
}
