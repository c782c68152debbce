// Package models holds the registration record and its closed enumerations.
package models

import (
	"fmt"
	"time"

	"udyam/pkg/domain"
	dErrors "udyam/pkg/domain-errors"
)

// Status is the registration lifecycle state. The set is closed so illegal
// states are unrepresentable.
type Status string

const (
	StatusPending   Status = "pending"
	StatusVerified  Status = "verified"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// statusTransitions defines the legal lifecycle moves. Rejected is terminal
// and reachable from Pending or Verified; no public operation drives it yet,
// but the state machine still refuses illegal jumps.
var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusVerified, StatusRejected},
	StatusVerified:  {StatusCompleted, StatusRejected},
	StatusRejected:  {},
	StatusCompleted: {},
}

// CanTransition reports whether moving from s to next is legal.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus validates a stored status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusVerified, StatusRejected, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown registration status: %q", s)
}

// OrganizationType is the declared category of the enterprise, from the
// official registration form's dropdown.
type OrganizationType string

const (
	OrgProprietorship  OrganizationType = "proprietorship"
	OrgPartnership     OrganizationType = "partnership"
	OrgPrivateLimited  OrganizationType = "private-limited"
	OrgPublicLimited   OrganizationType = "public-limited"
	OrgLLP             OrganizationType = "llp"
	OrgHUF             OrganizationType = "huf"
	OrgCooperative     OrganizationType = "cooperative"
	OrgTrust           OrganizationType = "trust"
)

// ParseOrganizationType validates an input value. The field is optional;
// empty input parses to the zero value.
func ParseOrganizationType(s string) (OrganizationType, error) {
	if s == "" {
		return "", nil
	}
	switch OrganizationType(s) {
	case OrgProprietorship, OrgPartnership, OrgPrivateLimited, OrgPublicLimited,
		OrgLLP, OrgHUF, OrgCooperative, OrgTrust:
		return OrganizationType(s), nil
	}
	return "", dErrors.NewField(dErrors.CodeInvalidInput, "organization_type", "unknown organization type: "+s)
}

// Registration is one applicant's record, mutated in place through the three
// verification steps and never deleted by the core.
type Registration struct {
	ID domain.RegistrationID

	// Step 1: Aadhaar verification.
	AadhaarNumber    string
	EntrepreneurName string
	AadhaarVerified  bool
	OTPVerified      bool

	// Step 3: PAN validation.
	PANNumber           string
	PANName             string
	DateOfIncorporation *time.Time
	OrganizationType    OrganizationType
	PANVerified         bool

	// Optional secondary tax identifier.
	GSTIN string

	// Derived on successful completion.
	RegistrationNumber string
	Status             Status

	// Audit metadata.
	SubmittedAt  time.Time
	UpdatedAt    *time.Time
	IPAddress    string
	UserAgent    string
	ConsentGiven bool
}

// RegistrationNumberPrefix is the fixed prefix of derived registration numbers.
const RegistrationNumberPrefix = "UDYAM"

// FormatRegistrationNumber derives the final registration identifier from the
// record id and the year of completion: UDYAM-000001-2026.
func FormatRegistrationNumber(id domain.RegistrationID, year int) string {
	return fmt.Sprintf("%s-%06d-%d", RegistrationNumberPrefix, int64(id), year)
}
