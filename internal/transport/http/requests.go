package httptransport

import (
	"time"

	dErrors "udyam/pkg/domain-errors"
)

type aadhaarVerificationRequest struct {
	AadhaarNumber    string `json:"aadhaar_number"`
	EntrepreneurName string `json:"entrepreneur_name"`
	ConsentGiven     bool   `json:"consent_given"`
}

type otpValidationRequest struct {
	RegistrationID string `json:"registration_id"`
	OTPCode        string `json:"otp_code"`
}

type panValidationRequest struct {
	RegistrationID      string `json:"registration_id"`
	PANNumber           string `json:"pan_number"`
	PANName             string `json:"pan_name"`
	DateOfIncorporation string `json:"date_of_incorporation,omitempty"`
	OrganizationType    string `json:"organization_type,omitempty"`
	GSTIN               string `json:"gstin,omitempty"`
}

// parseDate accepts the form's YYYY-MM-DD date format.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "date_of_incorporation", "date must be in YYYY-MM-DD format")
	}
	return &t, nil
}
