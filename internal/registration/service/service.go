// Package service implements the three-step registration workflow: Aadhaar
// verification, OTP confirmation, and PAN validation. Each operation is one
// transition against the record store; the store's constraints are the
// authoritative concurrency guard.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"udyam/internal/audit"
	"udyam/internal/platform/device"
	"udyam/internal/platform/metrics"
	"udyam/internal/registration/models"
	"udyam/internal/registration/validation"
	"udyam/pkg/domain"
	dErrors "udyam/pkg/domain-errors"
	"udyam/pkg/platform/sentinel"
	"udyam/pkg/requestcontext"
)

// RegistrationStore persists registration records. Create assigns the id.
// Implementations return sentinel.ErrConflict on an Aadhaar or PAN
// uniqueness violation and sentinel.ErrNotFound for unknown ids.
type RegistrationStore interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindByID(ctx context.Context, id domain.RegistrationID) (*models.Registration, error)
	Update(ctx context.Context, reg *models.Registration) error
	List(ctx context.Context, limit, offset int) ([]*models.Registration, error)
	IdentityExists(ctx context.Context, aadhaarNumber string, exclude domain.RegistrationID) (bool, error)
	TaxIDExists(ctx context.Context, panNumber string, exclude domain.RegistrationID) (bool, error)
}

// CodeIssuer generates and consumes one-time codes keyed by identity number.
type CodeIssuer interface {
	Issue(ctx context.Context, aadhaarNumber string) (string, error)
	Redeem(ctx context.Context, aadhaarNumber, submitted string) error
}

// AuditPublisher records validation outcomes.
type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// Service orchestrates the registration state machine.
type Service struct {
	store     RegistrationStore
	codes     CodeIssuer
	validator *validation.Validator
	logger    *slog.Logger
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store RegistrationStore, codes CodeIssuer, opts ...Option) *Service {
	s := &Service{
		store:     store,
		codes:     codes,
		validator: validation.New(),
		logger:    slog.Default(),
		tracer:    otel.Tracer("udyam/registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput is the step-1 submission.
type CreateInput struct {
	AadhaarNumber    string
	EntrepreneurName string
	ConsentGiven     bool
}

// CreateResult reports the new record and the issued code. The plaintext
// code is returned to the caller because delivery is out of scope here.
type CreateResult struct {
	ID         domain.RegistrationID
	CodeIssued bool
	Code       string
}

// Create validates the Aadhaar number and entrepreneur name, persists a new
// pending registration, and issues a one-time code for step 2. A second
// Create with the same Aadhaar number fails with a duplicate error whether
// caught by the pre-check or by the store's unique constraint.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Create")
	defer span.End()

	aadhaar := s.validator.Aadhaar(in.AadhaarNumber)
	if !aadhaar.Valid {
		s.logCheck(ctx, 0, aadhaar)
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, aadhaar.FieldName, aadhaar.Message)
	}
	name := s.validator.Name("entrepreneur_name", in.EntrepreneurName)
	if !name.Valid {
		s.logCheck(ctx, 0, name)
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, name.FieldName, name.Message)
	}
	if !in.ConsentGiven {
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, "consent_given", "Consent is required to proceed")
	}

	exists, err := s.store.IdentityExists(ctx, aadhaar.Canonical, 0)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check for existing registration")
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeDuplicate, "Aadhaar number already registered")
	}

	now := requestcontext.Now(ctx)
	reg := &models.Registration{
		AadhaarNumber:    aadhaar.Canonical,
		EntrepreneurName: name.Canonical,
		Status:           models.StatusPending,
		SubmittedAt:      now,
		IPAddress:        requestcontext.ClientIP(ctx),
		UserAgent:        requestcontext.UserAgent(ctx),
		ConsentGiven:     in.ConsentGiven,
	}
	if err := s.store.Create(ctx, reg); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost the race: the unique constraint is the authoritative guard.
			return nil, dErrors.New(dErrors.CodeDuplicate, "Aadhaar number already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registration")
	}
	span.SetAttributes(attribute.Int64("registration.id", int64(reg.ID)))

	s.logCheck(ctx, reg.ID, aadhaar)
	s.logCheck(ctx, reg.ID, name)

	code, err := s.codes.Issue(ctx, reg.AadhaarNumber)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue verification code")
	}

	s.metrics.IncRegistrationsCreated()
	s.logger.InfoContext(ctx, "registration created",
		"registration_id", reg.ID.String(),
		"device", device.ParseUserAgent(reg.UserAgent),
	)
	return &CreateResult{ID: reg.ID, CodeIssued: true, Code: code}, nil
}

// ConfirmCode redeems the step-2 one-time code. On success the record gains
// otp_verified and aadhaar_verified; on any failure it is left untouched and
// the step may be retried.
func (s *Service) ConfirmCode(ctx context.Context, id domain.RegistrationID, code string) (*models.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.ConfirmCode",
		trace.WithAttributes(attribute.Int64("registration.id", int64(id))))
	defer span.End()

	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	otp := s.validator.OTP(code)
	if !otp.Valid {
		s.logCheck(ctx, reg.ID, otp)
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, otp.FieldName, otp.Message)
	}

	if err := s.codes.Redeem(ctx, reg.AadhaarNumber, otp.Canonical); err != nil {
		if dErrors.HasCode(err, dErrors.CodeOTPInvalid) {
			s.logFailure(ctx, reg.ID, otp.FieldName, otp.CheckType, "Invalid or expired OTP")
		}
		return nil, err
	}

	now := requestcontext.Now(ctx)
	reg.OTPVerified = true
	reg.AadhaarVerified = true
	reg.UpdatedAt = &now
	if err := s.store.Update(ctx, reg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registration")
	}

	s.logCheck(ctx, reg.ID, otp)
	s.logger.InfoContext(ctx, "otp confirmed", "registration_id", reg.ID.String())
	return reg, nil
}

// ConfirmTaxIDInput is the step-3 submission. GSTIN, incorporation date, and
// organization type are optional.
type ConfirmTaxIDInput struct {
	PANNumber           string
	PANName             string
	DateOfIncorporation *time.Time
	OrganizationType    string
	GSTIN               string
}

// ConfirmTaxID validates and stores the PAN details, marks the registration
// verified, and derives the final registration number. It requires a
// completed OTP step; out-of-order calls fail without mutating the record.
func (s *Service) ConfirmTaxID(ctx context.Context, id domain.RegistrationID, in ConfirmTaxIDInput) (*models.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.ConfirmTaxID",
		trace.WithAttributes(attribute.Int64("registration.id", int64(id))))
	defer span.End()

	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reg.AadhaarVerified {
		return nil, dErrors.New(dErrors.CodePrecondition, "Aadhaar verification must be completed first")
	}

	pan := s.validator.PAN(in.PANNumber)
	if !pan.Valid {
		s.logCheck(ctx, reg.ID, pan)
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, pan.FieldName, pan.Message)
	}
	holder := s.validator.Name("pan_name", in.PANName)
	if !holder.Valid {
		s.logCheck(ctx, reg.ID, holder)
		return nil, dErrors.NewField(dErrors.CodeInvalidInput, holder.FieldName, holder.Message)
	}
	var gstin validation.Result
	if in.GSTIN != "" {
		gstin = s.validator.GSTIN(in.GSTIN)
		if !gstin.Valid {
			s.logCheck(ctx, reg.ID, gstin)
			return nil, dErrors.NewField(dErrors.CodeInvalidInput, gstin.FieldName, gstin.Message)
		}
	}
	orgType, err := models.ParseOrganizationType(in.OrganizationType)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.TaxIDExists(ctx, pan.Canonical, reg.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check for existing PAN")
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeDuplicate, "PAN number already registered")
	}

	// Mutate a copy so a failed commit retains nothing.
	updated := *reg
	switch updated.Status {
	case models.StatusPending:
		if !updated.Status.CanTransition(models.StatusVerified) {
			return nil, dErrors.New(dErrors.CodePrecondition, "registration cannot be verified in its current state")
		}
		updated.Status = models.StatusVerified
	case models.StatusVerified:
		// Resubmission of step 3 corrects the PAN details in place.
	default:
		return nil, dErrors.New(dErrors.CodePrecondition, "registration is not awaiting PAN validation")
	}

	now := requestcontext.Now(ctx)
	updated.PANNumber = pan.Canonical
	updated.PANName = holder.Canonical
	updated.DateOfIncorporation = in.DateOfIncorporation
	updated.OrganizationType = orgType
	updated.GSTIN = gstin.Canonical
	updated.PANVerified = true
	updated.UpdatedAt = &now
	if updated.RegistrationNumber == "" {
		updated.RegistrationNumber = models.FormatRegistrationNumber(updated.ID, now.Year())
	}

	if err := s.store.Update(ctx, &updated); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeDuplicate, "PAN number already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registration")
	}

	s.logCheck(ctx, updated.ID, pan)
	s.logCheck(ctx, updated.ID, holder)
	if in.GSTIN != "" {
		s.logCheck(ctx, updated.ID, gstin)
	}

	s.metrics.IncRegistrationsCompleted()
	s.logger.InfoContext(ctx, "pan validated",
		"registration_id", updated.ID.String(),
		"registration_number", updated.RegistrationNumber,
	)
	return &updated, nil
}

// Get fetches one registration by id.
func (s *Service) Get(ctx context.Context, id domain.RegistrationID) (*models.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Get",
		trace.WithAttributes(attribute.Int64("registration.id", int64(id))))
	defer span.End()

	return s.find(ctx, id)
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// List returns registrations in id order with limit/offset pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.List")
	defer span.End()

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	regs, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	return regs, nil
}

func (s *Service) find(ctx context.Context, id domain.RegistrationID) (*models.Registration, error) {
	reg, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	return reg, nil
}

// logCheck records one validation outcome, pass or fail, in the audit trail.
// A zero id marks checks that failed before any record existed.
func (s *Service) logCheck(ctx context.Context, id domain.RegistrationID, result validation.Result) {
	if !result.Valid {
		s.metrics.IncValidationFailure(result.FieldName)
		s.logFailure(ctx, id, result.FieldName, result.CheckType, result.Message)
		return
	}
	s.emit(ctx, audit.Entry{
		RegistrationID: id,
		FieldName:      result.FieldName,
		CheckType:      result.CheckType,
		Valid:          true,
	})
}

func (s *Service) logFailure(ctx context.Context, id domain.RegistrationID, field, check, message string) {
	s.emit(ctx, audit.Entry{
		RegistrationID: id,
		FieldName:      field,
		CheckType:      check,
		Valid:          false,
		Message:        message,
	})
}

func (s *Service) emit(ctx context.Context, entry audit.Entry) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit entry",
			"registration_id", entry.RegistrationID.String(),
			"field", entry.FieldName,
			"error", err,
		)
	}
}
