package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"udyam/internal/platform/metrics"
	dErrors "udyam/pkg/domain-errors"
	"udyam/pkg/platform/sentinel"
	"udyam/pkg/requestcontext"
)

// Store persists issued codes. Redeem must atomically select the most recent
// unused, unexpired code matching the submitted value and mark it used,
// returning sentinel.ErrNotFound when nothing matches.
type Store interface {
	Save(ctx context.Context, code *Code) error
	Redeem(ctx context.Context, aadhaarNumber, submitted string, now time.Time) (*Code, error)
	ListByAadhaar(ctx context.Context, aadhaarNumber string) ([]*Code, error)
}

// Service generates, persists, and consumes one-time codes. Delivery of the
// plaintext code is the caller's concern; this service never sends anything.
type Service struct {
	store   Store
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewService builds an issuer with the given expiry window.
func NewService(store Store, ttl time.Duration, m *metrics.Metrics) *Service {
	return &Service{store: store, ttl: ttl, metrics: m}
}

// Issue generates a uniformly random 6-digit code, persists it with an
// expiry of now+ttl, and returns the plaintext to the caller.
func (s *Service) Issue(ctx context.Context, aadhaarNumber string) (string, error) {
	plaintext, err := generateCode()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate code")
	}

	now := requestcontext.Now(ctx)
	code := &Code{
		AadhaarNumber: aadhaarNumber,
		Code:          plaintext,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, code); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store code")
	}

	s.metrics.IncCodesIssued()
	return plaintext, nil
}

// Redeem consumes the most recent eligible code for the identity number.
// A second attempt after one success fails: the matching row is already
// used, and used rows are never eligible again.
func (s *Service) Redeem(ctx context.Context, aadhaarNumber, submitted string) error {
	now := requestcontext.Now(ctx)
	_, err := s.store.Redeem(ctx, aadhaarNumber, submitted, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeOTPInvalid, "Invalid or expired OTP")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to redeem code")
	}

	s.metrics.IncCodesRedeemed()
	return nil
}

// generateCode draws a uniform 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
