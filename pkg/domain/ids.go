// Package domain holds typed identifiers and closed domain primitives shared
// across layers. Parsing enforces validity at trust boundaries.
package domain

import (
	"strconv"

	dErrors "udyam/pkg/domain-errors"
)

// RegistrationID identifies one registration record. IDs are assigned by the
// record store at creation and are strictly positive.
type RegistrationID int64

// ParseRegistrationID validates a path or payload value as a registration id.
func ParseRegistrationID(s string) (RegistrationID, error) {
	if s == "" {
		return 0, dErrors.NewField(dErrors.CodeInvalidInput, "registration_id", "registration id is required")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.NewField(dErrors.CodeInvalidInput, "registration_id", "registration id must be a positive integer")
	}
	return RegistrationID(n), nil
}

// String returns the decimal representation of the id.
func (id RegistrationID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// IsNil reports whether the id is unassigned.
func (id RegistrationID) IsNil() bool { return id == 0 }
