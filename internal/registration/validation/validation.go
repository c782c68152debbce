// Package validation holds the stateless format checkers for registration
// form data. Every check is a pure function over its input so the rules can
// be unit tested without a store.
package validation

import (
	"regexp"
	"strings"
)

// Patterns mirror the official registration form's client-side rules.
var (
	aadhaarPattern = regexp.MustCompile(`^\d{12}$`)
	panPattern     = regexp.MustCompile(`^[A-Za-z]{5}[0-9]{4}[A-Za-z]$`)
	otpPattern     = regexp.MustCompile(`^\d{6}$`)
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	namePattern    = regexp.MustCompile(`^[a-zA-Z\s.]+$`)
)

// Result is the structured outcome of one validation check. Canonical holds
// the normalized input (trimmed name, upper-cased PAN/GSTIN) when valid.
type Result struct {
	Valid     bool
	Message   string
	FieldName string
	CheckType string
	Canonical string
}

// Validator groups the format checks. It holds no mutable state; share one
// instance freely or construct per call.
type Validator struct{}

// New returns a Validator.
func New() *Validator {
	return &Validator{}
}

func invalid(field, check, message string) Result {
	return Result{Valid: false, Message: message, FieldName: field, CheckType: check}
}

func valid(field, check, message, canonical string) Result {
	return Result{Valid: true, Message: message, FieldName: field, CheckType: check, Canonical: canonical}
}

// Aadhaar checks the 12-digit identity number.
func (v *Validator) Aadhaar(aadhaarNumber string) Result {
	const field, check = "aadhaar_number", "aadhaar"
	if aadhaarNumber == "" {
		return invalid(field, check, "Aadhaar number is required")
	}
	if !aadhaarPattern.MatchString(aadhaarNumber) {
		return invalid(field, check, "Aadhaar number must be exactly 12 digits")
	}
	return valid(field, check, "Aadhaar number is valid", aadhaarNumber)
}

// Name checks an entrepreneur or PAN holder name. The fieldName parameter
// distinguishes which field failed in the audit trail.
func (v *Validator) Name(fieldName, name string) Result {
	const check = "name"
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid(fieldName, check, "Name is required")
	}
	if len(trimmed) < 2 {
		return invalid(fieldName, check, "Name must be at least 2 characters")
	}
	if len(trimmed) > 255 {
		return invalid(fieldName, check, "Name cannot exceed 255 characters")
	}
	if !namePattern.MatchString(trimmed) {
		return invalid(fieldName, check, "Name can only contain letters, spaces, and dots")
	}
	return valid(fieldName, check, "Name is valid", trimmed)
}

// PAN checks the 10-character tax identifier. Valid results canonicalize to
// upper case.
func (v *Validator) PAN(panNumber string) Result {
	const field, check = "pan_number", "pan"
	if panNumber == "" {
		return invalid(field, check, "PAN number is required")
	}
	upper := strings.ToUpper(panNumber)
	if !panPattern.MatchString(upper) {
		return invalid(field, check, "PAN must be in format: ABCDE1234F")
	}
	return valid(field, check, "PAN number is valid", upper)
}

// OTP checks the 6-digit one-time code format. Whether the code matches an
// issued one is the issuer's concern, not a format rule.
func (v *Validator) OTP(otpCode string) Result {
	const field, check = "otp_code", "otp"
	if otpCode == "" {
		return invalid(field, check, "OTP is required")
	}
	if !otpPattern.MatchString(otpCode) {
		return invalid(field, check, "OTP must be exactly 6 digits")
	}
	return valid(field, check, "OTP format is valid", otpCode)
}

// GSTIN checks the optional secondary tax identifier. Absence is valid; a
// present value must match the 15-character pattern and canonicalizes to
// upper case.
func (v *Validator) GSTIN(gstin string) Result {
	const field, check = "gstin", "gstin"
	if gstin == "" {
		return valid(field, check, "GSTIN is optional", "")
	}
	upper := strings.ToUpper(gstin)
	if !gstinPattern.MatchString(upper) {
		return invalid(field, check, "GSTIN must be in format: 22AAAAA0000A1Z5")
	}
	return valid(field, check, "GSTIN is valid", upper)
}
