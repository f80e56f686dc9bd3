package store

import (
	"context"
	"sync"

	"github.com/voiceagent/example-agent/pkg/models"
)

// MemoryStore implements Store in process memory. The registration is
// written once during startup and read per request.
type MemoryStore struct {
	mu  sync.RWMutex
	key string
	reg *models.Registration
}

// NewMemoryStore creates an empty store for the named agent.
func NewMemoryStore(agentName string) *MemoryStore {
	return &MemoryStore{key: agentName}
}

func (s *MemoryStore) GetRegistration(_ context.Context) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.reg == nil {
		return nil, &ErrNotFound{Entity: "registration", Key: s.key}
	}
	cp := *s.reg
	return &cp, nil
}

func (s *MemoryStore) SaveRegistration(_ context.Context, reg *models.Registration) error {
	cp := *reg
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg = &cp
	return nil
}
