package audit

import (
	"context"
	"database/sql"
	"fmt"

	"udyam/pkg/domain"
)

// PostgresStore persists the trail in the validation_logs table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO validation_logs (event_id, registration_id, field_name, validation_type, is_valid, error_message, validated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.EventID, int64(entry.RegistrationID), entry.FieldName,
		entry.CheckType, entry.Valid, entry.Message, entry.At,
	)
	if err != nil {
		return fmt.Errorf("insert validation log: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRegistration(ctx context.Context, id domain.RegistrationID) ([]Entry, error) {
	query := `
		SELECT event_id, registration_id, field_name, validation_type, is_valid, COALESCE(error_message, ''), validated_at
		FROM validation_logs
		WHERE registration_id = $1
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, int64(id))
	if err != nil {
		return nil, fmt.Errorf("list validation logs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var regID int64
		if err := rows.Scan(&e.EventID, &regID, &e.FieldName, &e.CheckType, &e.Valid, &e.Message, &e.At); err != nil {
			return nil, fmt.Errorf("scan validation log: %w", err)
		}
		e.RegistrationID = domain.RegistrationID(regID)
		out = append(out, e)
	}
	return out, rows.Err()
}
