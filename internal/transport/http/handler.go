// Package httptransport is the thin HTTP layer over the registration
// workflow. Handlers decode JSON, delegate to the service, and translate
// coded errors; no business logic lives here.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"udyam/internal/platform/middleware"
	"udyam/internal/registration/models"
	"udyam/internal/registration/service"
	"udyam/internal/transport/http/shared"
	"udyam/pkg/domain"
	dErrors "udyam/pkg/domain-errors"
	"udyam/pkg/requestcontext"
)

// Service defines the registration operations the transport layer needs.
type Service interface {
	Create(ctx context.Context, in service.CreateInput) (*service.CreateResult, error)
	ConfirmCode(ctx context.Context, id domain.RegistrationID, code string) (*models.Registration, error)
	ConfirmTaxID(ctx context.Context, id domain.RegistrationID, in service.ConfirmTaxIDInput) (*models.Registration, error)
	Get(ctx context.Context, id domain.RegistrationID) (*models.Registration, error)
	List(ctx context.Context, limit, offset int) ([]*models.Registration, error)
}

// Handler handles the registration endpoints.
type Handler struct {
	registrations Service
	logger        *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(registrations Service, logger *slog.Logger) *Handler {
	return &Handler{registrations: registrations, logger: logger}
}

// Register mounts the registration routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/registration", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/aadhaar-verification", h.handleAadhaarVerification)
		r.Post("/otp-validation", h.handleOTPValidation)
		r.Post("/pan-validation", h.handlePANValidation)
		r.Get("/health", h.handleHealth)
		r.Get("/{id}", h.handleGetRegistration)
		r.Get("/", h.handleListRegistrations)
	})
}

func (h *Handler) handleAadhaarVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req aadhaarVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.registrations.Create(ctx, service.CreateInput{
		AadhaarNumber:    req.AadhaarNumber,
		EntrepreneurName: req.EntrepreneurName,
		ConsentGiven:     req.ConsentGiven,
	})
	if err != nil {
		h.logFailure(ctx, "aadhaar verification failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, aadhaarVerificationResponse{
		Success:        true,
		Message:        "Aadhaar verified. OTP generated for verification",
		RegistrationID: res.ID.String(),
		CodeIssued:     res.CodeIssued,
		OTP:            res.Code,
	})
}

func (h *Handler) handleOTPValidation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req otpValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	id, err := domain.ParseRegistrationID(req.RegistrationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if _, err := h.registrations.ConfirmCode(ctx, id, req.OTPCode); err != nil {
		h.logFailure(ctx, "otp validation failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, otpValidationResponse{
		Success: true,
		Message: "OTP verified successfully",
	})
}

func (h *Handler) handlePANValidation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req panValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	id, err := domain.ParseRegistrationID(req.RegistrationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	incorporated, err := parseDate(req.DateOfIncorporation)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reg, err := h.registrations.ConfirmTaxID(ctx, id, service.ConfirmTaxIDInput{
		PANNumber:           req.PANNumber,
		PANName:             req.PANName,
		DateOfIncorporation: incorporated,
		OrganizationType:    req.OrganizationType,
		GSTIN:               req.GSTIN,
	})
	if err != nil {
		h.logFailure(ctx, "pan validation failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, panValidationResponse{
		Success:            true,
		Message:            "PAN validated successfully. Registration complete",
		RegistrationNumber: reg.RegistrationNumber,
	})
}

func (h *Handler) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseRegistrationID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reg, err := h.registrations.Get(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toRegistrationResponse(reg))
}

func (h *Handler) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	regs, err := h.registrations.List(ctx, limit, offset)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	resp := listRegistrationsResponse{
		Registrations: make([]registrationResponse, 0, len(regs)),
		Count:         len(regs),
	}
	for _, reg := range regs {
		resp.Registrations = append(resp.Registrations, toRegistrationResponse(reg))
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: "registration-api",
	})
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error_code", string(dErrors.CodeOf(err)),
		"error", err.Error(),
	)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
