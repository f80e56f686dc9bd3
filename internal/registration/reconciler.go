// Package registration keeps the agent's external SWML handler on the
// vendor platform in line with this deployment. On startup it finds the
// handler by name, creates it when missing, points its callback at our
// public URL, and records the address browser clients dial.
//
// The find-then-create sequence is not transactional: two deployments
// starting at the same moment can still both create a handler.
package registration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/voiceagent/example-agent/internal/fabric"
	"github.com/voiceagent/example-agent/pkg/models"
)

// HandlerAPI is the subset of the Fabric API the reconciler needs.
type HandlerAPI interface {
	ListHandlers(ctx context.Context) ([]fabric.Handler, error)
	CreateHandler(ctx context.Context, req fabric.CreateHandlerRequest) (*fabric.Handler, error)
	UpdateHandler(ctx context.Context, id string, req fabric.UpdateHandlerRequest) error
	ListAddresses(ctx context.Context, handlerID string) ([]fabric.Address, error)
}

// ErrNotConfigured is returned when credentials or the public URL are
// missing and reconciliation was skipped.
var ErrNotConfigured = errors.New("registration: not configured")

// Reconciler ensures one handler named after the agent exists with the
// desired callback URL.
type Reconciler struct {
	api         HandlerAPI
	name        string
	callbackURL string
}

func NewReconciler(api HandlerAPI, name, callbackURL string) *Reconciler {
	return &Reconciler{api: api, name: name, callbackURL: callbackURL}
}

// Reconcile runs list → update-or-create → list addresses once, with no
// retries. On error nothing is returned and the caller keeps its state
// unset. An empty address list is not an error; the returned record then
// has no address.
func (r *Reconciler) Reconcile(ctx context.Context) (*models.Registration, error) {
	handlers, err := r.api.ListHandlers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list handlers: %w", err)
	}

	reg := &models.Registration{Name: r.name, CallbackURL: r.callbackURL}

	if existing := findByName(handlers, r.name); existing != nil {
		err := r.api.UpdateHandler(ctx, existing.ID, fabric.UpdateHandlerRequest{
			PrimaryRequestURL:    r.callbackURL,
			PrimaryRequestMethod: http.MethodPost,
		})
		if err != nil {
			return nil, fmt.Errorf("update handler %s: %w", existing.ID, err)
		}
		reg.ID = existing.ID
		log.Info().Str("handler", r.name).Str("id", reg.ID).Msg("Updated SWML handler")
	} else {
		created, err := r.api.CreateHandler(ctx, fabric.CreateHandlerRequest{
			Name:                 r.name,
			UsedFor:              "calling",
			PrimaryRequestURL:    r.callbackURL,
			PrimaryRequestMethod: http.MethodPost,
		})
		if err != nil {
			return nil, fmt.Errorf("create handler: %w", err)
		}
		reg.ID = created.ID
		log.Info().Str("handler", r.name).Str("id", reg.ID).Msg("Created SWML handler")
	}

	addrs, err := r.api.ListAddresses(ctx, reg.ID)
	if err != nil {
		return nil, fmt.Errorf("list addresses for %s: %w", reg.ID, err)
	}
	if len(addrs) == 0 {
		log.Warn().Str("handler", r.name).Str("id", reg.ID).Msg("Handler has no addresses yet")
		return reg, nil
	}
	reg.AddressID = addrs[0].ID
	reg.Address = addrs[0].Channels.Audio

	return reg, nil
}

func findByName(handlers []fabric.Handler, name string) *fabric.Handler {
	var found *fabric.Handler
	matches := 0
	for i := range handlers {
		if handlers[i].Name() != name {
			continue
		}
		if found == nil {
			found = &handlers[i]
		}
		matches++
	}
	if matches > 1 {
		log.Warn().Str("handler", name).Int("matches", matches).Msg("Duplicate SWML handlers found, using the first")
	}
	return found
}

// CallbackURL builds the URL the platform calls for SWML: base + "/" +
// route, with basic-auth credentials embedded when both are set and the
// base carries a scheme.
func CallbackURL(base, user, pass, route string) string {
	base = strings.TrimRight(base, "/")
	route = strings.Trim(route, "/")

	if user != "" && pass != "" && strings.Contains(base, "://") {
		if u, err := url.Parse(base); err == nil && u.Host != "" {
			u.User = url.UserPassword(user, pass)
			u.Path = strings.TrimRight(u.Path, "/") + "/" + route
			return u.String()
		}
	}
	return base + "/" + route
}
