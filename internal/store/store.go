// Package store holds the registration state the service shares between
// the startup reconciler and the HTTP handlers.
package store

import (
	"context"

	"github.com/voiceagent/example-agent/pkg/models"
)

// Store is the registration state interface. Handlers depend on it rather
// than on a package-level variable.
type Store interface {
	// GetRegistration returns the current handler record or *ErrNotFound.
	GetRegistration(ctx context.Context) (*models.Registration, error)
	// SaveRegistration replaces the handler record.
	SaveRegistration(ctx context.Context, reg *models.Registration) error
}

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}
