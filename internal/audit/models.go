// Package audit records every validation outcome, pass or fail, as an
// append-only trail. Entries are never mutated or deleted.
package audit

import (
	"time"

	"github.com/google/uuid"

	"udyam/pkg/domain"
)

// Entry is one validation check outcome. RegistrationID is zero for checks
// that failed before any record existed (a rejected create attempt still
// leaves a trail).
type Entry struct {
	EventID        uuid.UUID
	RegistrationID domain.RegistrationID
	FieldName      string
	CheckType      string
	Valid          bool
	Message        string
	At             time.Time
}

// Check types recorded in the trail.
const (
	CheckAadhaar = "aadhaar"
	CheckName    = "name"
	CheckPAN     = "pan"
	CheckOTP     = "otp"
	CheckGSTIN   = "gstin"
)
