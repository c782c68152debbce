package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"udyam/internal/registration/models"
	"udyam/pkg/domain"
	"udyam/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code for a unique index violation.
const uniqueViolation = "23505"

// PostgresStore persists registrations in PostgreSQL. The unique indexes on
// aadhaar_number and pan_number are the authoritative collision guard;
// violations surface as sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const registrationColumns = `
	id, aadhaar_number, entrepreneur_name, aadhaar_verified, otp_verified,
	pan_number, pan_name, date_of_incorporation, organization_type, pan_verified,
	gstin, registration_number, status, submitted_at, updated_at,
	ip_address, user_agent, consent_given`

func (s *PostgresStore) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (
			aadhaar_number, entrepreneur_name, status, submitted_at,
			ip_address, user_agent, consent_given
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		reg.AadhaarNumber,
		reg.EntrepreneurName,
		string(reg.Status),
		reg.SubmittedAt,
		reg.IPAddress,
		reg.UserAgent,
		reg.ConsentGiven,
	).Scan(&reg.ID)
	if err != nil {
		return fmt.Errorf("create registration: %w", translateError(err))
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RegistrationID) (*models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations WHERE id = $1`
	reg, err := scanRegistration(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return reg, nil
}

func (s *PostgresStore) Update(ctx context.Context, reg *models.Registration) error {
	query := `
		UPDATE registrations SET
			aadhaar_verified = $2,
			otp_verified = $3,
			pan_number = NULLIF($4, ''),
			pan_name = NULLIF($5, ''),
			date_of_incorporation = $6,
			organization_type = NULLIF($7, ''),
			pan_verified = $8,
			gstin = NULLIF($9, ''),
			registration_number = NULLIF($10, ''),
			status = $11,
			updated_at = $12
		WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query,
		reg.ID,
		reg.AadhaarVerified,
		reg.OTPVerified,
		reg.PANNumber,
		reg.PANName,
		reg.DateOfIncorporation,
		string(reg.OrganizationType),
		reg.PANVerified,
		reg.GSTIN,
		reg.RegistrationNumber,
		string(reg.Status),
		reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", translateError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []*models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

func (s *PostgresStore) IdentityExists(ctx context.Context, aadhaarNumber string, exclude domain.RegistrationID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE aadhaar_number = $1 AND ($2 = 0 OR id <> $2)
		)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, aadhaarNumber, exclude).Scan(&exists); err != nil {
		return false, fmt.Errorf("check aadhaar exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) TaxIDExists(ctx context.Context, panNumber string, exclude domain.RegistrationID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE pan_number = $1 AND ($2 = 0 OR id <> $2)
		)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, panNumber, exclude).Scan(&exists); err != nil {
		return false, fmt.Errorf("check pan exists: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var (
		reg       models.Registration
		pan       sql.NullString
		panName   sql.NullString
		orgType   sql.NullString
		gstin     sql.NullString
		regNumber sql.NullString
		ip        sql.NullString
		ua        sql.NullString
		status    string
	)
	err := row.Scan(
		&reg.ID,
		&reg.AadhaarNumber,
		&reg.EntrepreneurName,
		&reg.AadhaarVerified,
		&reg.OTPVerified,
		&pan,
		&panName,
		&reg.DateOfIncorporation,
		&orgType,
		&reg.PANVerified,
		&gstin,
		&regNumber,
		&status,
		&reg.SubmittedAt,
		&reg.UpdatedAt,
		&ip,
		&ua,
		&reg.ConsentGiven,
	)
	if err != nil {
		return nil, err
	}
	parsed, err := models.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	reg.Status = parsed
	reg.PANNumber = pan.String
	reg.PANName = panName.String
	reg.OrganizationType = models.OrganizationType(orgType.String)
	reg.GSTIN = gstin.String
	reg.RegistrationNumber = regNumber.String
	reg.IPAddress = ip.String
	reg.UserAgent = ua.String
	return &reg, nil
}

// translateError maps unique index violations to the conflict sentinel so
// the service layer stays driver-agnostic.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return sentinel.ErrConflict
	}
	return err
}
