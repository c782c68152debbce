//go:build integration

package otp_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"udyam/internal/otp"
	"udyam/pkg/platform/sentinel"
	"udyam/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *otp.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = otp.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "otp_codes"))
}

func (s *PostgresStoreSuite) save(aadhaar, code string, issued time.Time) *otp.Code {
	c := &otp.Code{
		AadhaarNumber: aadhaar,
		Code:          code,
		CreatedAt:     issued,
		ExpiresAt:     issued.Add(10 * time.Minute),
	}
	s.Require().NoError(s.store.Save(context.Background(), c))
	return c
}

func (s *PostgresStoreSuite) TestRedeemExactlyOnce() {
	ctx := context.Background()
	issued := time.Now().UTC()
	s.save("123456789012", "654321", issued)

	got, err := s.store.Redeem(ctx, "123456789012", "654321", issued.Add(time.Minute))
	s.Require().NoError(err)
	s.True(got.Used)
	s.Require().NotNil(got.UsedAt)

	_, err = s.store.Redeem(ctx, "123456789012", "654321", issued.Add(2*time.Minute))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRedeemExpiredCode() {
	ctx := context.Background()
	issued := time.Now().UTC()
	s.save("123456789012", "654321", issued)

	_, err := s.store.Redeem(ctx, "123456789012", "654321", issued.Add(11*time.Minute))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRedeemPrefersMostRecent() {
	ctx := context.Background()
	issued := time.Now().UTC()
	s.save("123456789012", "111111", issued)
	latest := s.save("123456789012", "111111", issued.Add(time.Minute))

	got, err := s.store.Redeem(ctx, "123456789012", "111111", issued.Add(2*time.Minute))
	s.Require().NoError(err)
	s.Equal(latest.ID, got.ID)
}

func (s *PostgresStoreSuite) TestExpiredRowsRemain() {
	ctx := context.Background()
	issued := time.Now().UTC()
	s.save("123456789012", "111111", issued)

	_, err := s.store.Redeem(ctx, "123456789012", "111111", issued.Add(11*time.Minute))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	codes, err := s.store.ListByAadhaar(ctx, "123456789012")
	s.Require().NoError(err)
	s.Require().Len(codes, 1)
	s.False(codes[0].Used)
}

// TestConcurrentRedeem verifies that racing redemption attempts serialize on
// the row lock and only one wins.
func (s *PostgresStoreSuite) TestConcurrentRedeem() {
	ctx := context.Background()
	issued := time.Now().UTC()
	s.save("123456789012", "654321", issued)

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.Redeem(ctx, "123456789012", "654321", issued.Add(time.Minute)); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
}
