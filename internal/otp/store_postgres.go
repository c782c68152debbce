package otp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"udyam/pkg/platform/sentinel"
)

// PostgresStore persists codes in the otp_codes table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, code *Code) error {
	query := `
		INSERT INTO otp_codes (aadhaar_number, otp_code, is_used, created_at, expires_at)
		VALUES ($1, $2, FALSE, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		code.AadhaarNumber, code.Code, code.CreatedAt, code.ExpiresAt,
	).Scan(&code.ID)
	if err != nil {
		return fmt.Errorf("insert otp code: %w", err)
	}
	return nil
}

// Redeem marks the most recent eligible code used in a single statement so
// concurrent redemption attempts serialize on the row lock.
func (s *PostgresStore) Redeem(ctx context.Context, aadhaarNumber, submitted string, now time.Time) (*Code, error) {
	query := `
		UPDATE otp_codes SET is_used = TRUE, used_at = $3
		WHERE id = (
			SELECT id FROM otp_codes
			WHERE aadhaar_number = $1
			  AND otp_code = $2
			  AND is_used = FALSE
			  AND expires_at > $3
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, aadhaar_number, otp_code, is_used, created_at, expires_at, used_at
	`
	var c Code
	err := s.db.QueryRowContext(ctx, query, aadhaarNumber, submitted, now).Scan(
		&c.ID, &c.AadhaarNumber, &c.Code, &c.Used, &c.CreatedAt, &c.ExpiresAt, &c.UsedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("redeem otp code: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) ListByAadhaar(ctx context.Context, aadhaarNumber string) ([]*Code, error) {
	query := `
		SELECT id, aadhaar_number, otp_code, is_used, created_at, expires_at, used_at
		FROM otp_codes
		WHERE aadhaar_number = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, aadhaarNumber)
	if err != nil {
		return nil, fmt.Errorf("list otp codes: %w", err)
	}
	defer rows.Close()

	var out []*Code
	for rows.Next() {
		var c Code
		if err := rows.Scan(&c.ID, &c.AadhaarNumber, &c.Code, &c.Used, &c.CreatedAt, &c.ExpiresAt, &c.UsedAt); err != nil {
			return nil, fmt.Errorf("scan otp code: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
