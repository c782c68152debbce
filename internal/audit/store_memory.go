package audit

import (
	"context"
	"sync"

	"udyam/pkg/domain"
)

// InMemoryStore keeps the trail in memory for tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ListByRegistration(_ context.Context, id domain.RegistrationID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.RegistrationID == id {
			out = append(out, e)
		}
	}
	return out, nil
}
