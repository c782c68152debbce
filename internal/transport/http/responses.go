package httptransport

import (
	"time"

	"udyam/internal/registration/models"
)

type aadhaarVerificationResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	RegistrationID string `json:"registration_id"`
	CodeIssued     bool   `json:"code_issued"`
	// OTP delivery is out of scope; the code rides back in the response.
	OTP string `json:"otp,omitempty"`
}

type otpValidationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type panValidationResponse struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	RegistrationNumber string `json:"registration_number"`
}

type registrationResponse struct {
	ID                  string  `json:"id"`
	AadhaarNumber       string  `json:"aadhaar_number"`
	EntrepreneurName    string  `json:"entrepreneur_name"`
	AadhaarVerified     bool    `json:"aadhaar_verified"`
	OTPVerified         bool    `json:"otp_verified"`
	PANNumber           string  `json:"pan_number,omitempty"`
	PANName             string  `json:"pan_name,omitempty"`
	DateOfIncorporation string  `json:"date_of_incorporation,omitempty"`
	OrganizationType    string  `json:"organization_type,omitempty"`
	PANVerified         bool    `json:"pan_verified"`
	GSTIN               string  `json:"gstin,omitempty"`
	RegistrationNumber  string  `json:"registration_number,omitempty"`
	Status              string  `json:"status"`
	SubmittedAt         string  `json:"submitted_at"`
	UpdatedAt           *string `json:"updated_at,omitempty"`
}

type listRegistrationsResponse struct {
	Registrations []registrationResponse `json:"registrations"`
	Count         int                    `json:"count"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func toRegistrationResponse(reg *models.Registration) registrationResponse {
	resp := registrationResponse{
		ID:                 reg.ID.String(),
		AadhaarNumber:      reg.AadhaarNumber,
		EntrepreneurName:   reg.EntrepreneurName,
		AadhaarVerified:    reg.AadhaarVerified,
		OTPVerified:        reg.OTPVerified,
		PANNumber:          reg.PANNumber,
		PANName:            reg.PANName,
		OrganizationType:   string(reg.OrganizationType),
		PANVerified:        reg.PANVerified,
		GSTIN:              reg.GSTIN,
		RegistrationNumber: reg.RegistrationNumber,
		Status:             string(reg.Status),
		SubmittedAt:        reg.SubmittedAt.Format(time.RFC3339),
	}
	if reg.DateOfIncorporation != nil {
		resp.DateOfIncorporation = reg.DateOfIncorporation.Format("2006-01-02")
	}
	if reg.UpdatedAt != nil {
		updated := reg.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updated
	}
	return resp
}
