// Package store provides the registration record persistence backends. The
// in-memory store backs unit tests and local runs; the PostgreSQL store is
// the production backend. Both enforce the same uniqueness rules so the
// service sees identical conflict behavior.
package store

import (
	"context"
	"sort"
	"sync"

	"udyam/internal/registration/models"
	"udyam/pkg/domain"
	"udyam/pkg/platform/sentinel"
)

// InMemoryStore keeps registrations in a map guarded by a mutex. Aadhaar and
// PAN uniqueness are checked under the same lock as the write, mirroring the
// database's unique indexes.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[domain.RegistrationID]*models.Registration
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[domain.RegistrationID]*models.Registration)}
}

// Create assigns the next id and persists reg. Returns sentinel.ErrConflict
// when the Aadhaar number is already registered.
func (s *InMemoryStore) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if existing.AadhaarNumber == reg.AadhaarNumber {
			return sentinel.ErrConflict
		}
	}

	s.nextID++
	reg.ID = domain.RegistrationID(s.nextID)
	clone := *reg
	s.byID[reg.ID] = &clone
	return nil
}

// FindByID returns a copy of the record or sentinel.ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, id domain.RegistrationID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *reg
	return &clone, nil
}

// Update replaces the stored record. Returns sentinel.ErrNotFound for an
// unknown id and sentinel.ErrConflict when the PAN number belongs to another
// record.
func (s *InMemoryStore) Update(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[reg.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if reg.PANNumber != "" {
		for id, existing := range s.byID {
			if id != reg.ID && existing.PANNumber == reg.PANNumber {
				return sentinel.ErrConflict
			}
		}
	}

	clone := *reg
	s.byID[reg.ID] = &clone
	return nil
}

// List returns records in id order.
func (s *InMemoryStore) List(_ context.Context, limit, offset int) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]domain.RegistrationID, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit < len(ids) {
		ids = ids[:limit]
	}

	regs := make([]*models.Registration, 0, len(ids))
	for _, id := range ids {
		clone := *s.byID[id]
		regs = append(regs, &clone)
	}
	return regs, nil
}

// IdentityExists reports whether another record holds this Aadhaar number.
func (s *InMemoryStore) IdentityExists(_ context.Context, aadhaarNumber string, exclude domain.RegistrationID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, reg := range s.byID {
		if id != exclude && reg.AadhaarNumber == aadhaarNumber {
			return true, nil
		}
	}
	return false, nil
}

// TaxIDExists reports whether another record holds this PAN number.
func (s *InMemoryStore) TaxIDExists(_ context.Context, panNumber string, exclude domain.RegistrationID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if panNumber == "" {
		return false, nil
	}
	for id, reg := range s.byID {
		if id != exclude && reg.PANNumber == panNumber {
			return true, nil
		}
	}
	return false, nil
}
