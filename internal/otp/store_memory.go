package otp

import (
	"context"
	"sync"
	"time"

	"udyam/pkg/platform/sentinel"
)

// InMemoryStore keeps issued codes per Aadhaar number. It favors clarity
// over performance and backs unit tests and local development.
type InMemoryStore struct {
	mu     sync.Mutex
	nextID int64
	codes  map[string][]*Code
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{codes: make(map[string][]*Code)}
}

func (s *InMemoryStore) Save(_ context.Context, code *Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	code.ID = s.nextID
	stored := *code
	s.codes[code.AadhaarNumber] = append(s.codes[code.AadhaarNumber], &stored)
	return nil
}

// Redeem walks issuances newest-first and consumes the first eligible match.
// The whole check-and-mark runs under one lock so replay attempts observe
// the used flag.
func (s *InMemoryStore) Redeem(_ context.Context, aadhaarNumber, submitted string, now time.Time) (*Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issued := s.codes[aadhaarNumber]
	for i := len(issued) - 1; i >= 0; i-- {
		if issued[i].Redeemable(submitted, now) {
			usedAt := now
			issued[i].Used = true
			issued[i].UsedAt = &usedAt
			redeemed := *issued[i]
			return &redeemed, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByAadhaar(_ context.Context, aadhaarNumber string) ([]*Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Code, 0, len(s.codes[aadhaarNumber]))
	for _, c := range s.codes[aadhaarNumber] {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}
