// Package swaig implements SWAIG function callbacks: a registry of tools,
// the request the platform posts when the AI calls one, and the result
// encoding it expects back.
package swaig

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/voiceagent/example-agent/internal/metrics"
	"github.com/voiceagent/example-agent/internal/swml"
)

// ErrUnknownFunction is returned by Dispatch for unregistered names.
var ErrUnknownFunction = errors.New("swaig: function not found")

// HandlerFunc runs one tool invocation.
type HandlerFunc func(ctx context.Context, args Args, req *Request) (*Result, error)

// Tool is a callable function advertised to the AI.
type Tool struct {
	Name        string
	Description string
	Parameters  Schema
	Handler     HandlerFunc
}

// Registry maps tool names to tools, keeping registration order for the
// SWML function list.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return errors.New("swaig: tool name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("swaig: tool %q has no handler", t.Name)
	}
	if t.Parameters.Type == "" {
		t.Parameters = Object(nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.tools[t.Name]; dup {
		return fmt.Errorf("swaig: tool %q already registered", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// MustRegister is Register for static setup code.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Functions renders the SWML function list; every function posts back to
// webhookURL.
func (r *Registry) Functions(webhookURL string) []swml.Function {
	tools := r.Tools()
	out := make([]swml.Function, 0, len(tools))
	for _, t := range tools {
		out = append(out, swml.Function{
			Function:    t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
			WebHookURL:  webhookURL,
		})
	}
	return out
}

// Dispatch runs the tool named in req.
func (r *Registry) Dispatch(ctx context.Context, req *Request) (res *Result, err error) {
	t, ok := r.Get(req.Function)
	if !ok {
		metrics.ObserveToolInvocation("unknown", ErrUnknownFunction)
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, req.Function)
	}
	defer func() { metrics.ObserveToolInvocation(t.Name, err) }()

	res, err = t.Handler(ctx, req.Args(), req)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", t.Name, err)
	}
	if res == nil {
		res = NewResult("")
	}
	return res, nil
}
