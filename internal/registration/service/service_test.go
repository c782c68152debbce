package service_test

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks RegistrationStore,CodeIssuer,AuditPublisher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"udyam/internal/audit"
	"udyam/internal/otp"
	"udyam/internal/registration/models"
	"udyam/internal/registration/service"
	"udyam/internal/registration/service/mocks"
	"udyam/internal/registration/store"
	"udyam/pkg/domain"
	dErrors "udyam/pkg/domain-errors"
	"udyam/pkg/platform/sentinel"
	"udyam/pkg/requestcontext"
)

type fixture struct {
	svc     *service.Service
	regs    *store.InMemoryStore
	codes   *otp.InMemoryStore
	auditor *audit.Publisher
	trail   *audit.InMemoryStore
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	regs := store.NewInMemoryStore()
	codes := otp.NewInMemoryStore()
	trail := audit.NewInMemoryStore()
	auditor := audit.NewPublisher(trail, logger)
	issuer := otp.NewService(codes, 10*time.Minute, nil)
	svc := service.New(regs, issuer,
		service.WithLogger(logger),
		service.WithAuditPublisher(auditor),
	)
	return &fixture{svc: svc, regs: regs, codes: codes, auditor: auditor, trail: trail}
}

func pinnedCtx(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func validCreate() service.CreateInput {
	return service.CreateInput{
		AadhaarNumber:    "123456789012",
		EntrepreneurName: "Jane Doe",
		ConsentGiven:     true,
	}
}

func TestCreate_Success(t *testing.T) {
	f := newFixture()
	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.10", "test-agent")

	res, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationID(1), res.ID)
	assert.True(t, res.CodeIssued)
	assert.Regexp(t, `^\d{6}$`, res.Code)

	reg, err := f.regs.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "123456789012", reg.AadhaarNumber)
	assert.Equal(t, "Jane Doe", reg.EntrepreneurName)
	assert.Equal(t, models.StatusPending, reg.Status)
	assert.False(t, reg.AadhaarVerified)
	assert.Equal(t, "203.0.113.10", reg.IPAddress)
	assert.Equal(t, "test-agent", reg.UserAgent)

	entries, err := f.trail.ListByRegistration(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.CheckAadhaar, entries[0].CheckType)
	assert.Equal(t, audit.CheckName, entries[1].CheckType)
	assert.True(t, entries[0].Valid)
	assert.True(t, entries[1].Valid)
}

func TestCreate_ShortAadhaarRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := validCreate()
	in.AadhaarNumber = "12345"
	_, err := f.svc.Create(ctx, in)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Equal(t, "aadhaar_number", dErrors.FieldOf(err))

	// No record, no code; the failed check is still in the trail under id 0.
	regs, err := f.regs.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, regs)

	entries, err := f.trail.ListByRegistration(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Valid)
	assert.Equal(t, "Aadhaar number must be exactly 12 digits", entries[0].Message)
}

func TestCreate_BadNameRejected(t *testing.T) {
	f := newFixture()

	in := validCreate()
	in.EntrepreneurName = "J4ne"
	_, err := f.svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Equal(t, "entrepreneur_name", dErrors.FieldOf(err))
}

func TestCreate_ConsentRequired(t *testing.T) {
	f := newFixture()

	in := validCreate()
	in.ConsentGiven = false
	_, err := f.svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Equal(t, "consent_given", dErrors.FieldOf(err))
}

func TestCreate_DuplicateAadhaar(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, validCreate())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicate))
}

func TestCreate_StoreConflictMapsToDuplicate(t *testing.T) {
	// The pre-check can miss a racing insert; the store's constraint
	// violation must surface as the same duplicate error.
	ctrl := gomock.NewController(t)
	regs := mocks.NewMockRegistrationStore(ctrl)
	issuer := mocks.NewMockCodeIssuer(ctrl)
	svc := service.New(regs, issuer,
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	regs.EXPECT().IdentityExists(gomock.Any(), "123456789012", domain.RegistrationID(0)).Return(false, nil)
	regs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

	_, err := svc.Create(context.Background(), validCreate())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicate))
}

func TestConfirmCode_UnknownRecord(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ConfirmCode(context.Background(), domain.RegistrationID(42), "123456")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestConfirmCode_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	reg, err := f.svc.ConfirmCode(ctx, res.ID, res.Code)
	require.NoError(t, err)
	assert.True(t, reg.OTPVerified)
	assert.True(t, reg.AadhaarVerified)
	require.NotNil(t, reg.UpdatedAt)

	entries, err := f.trail.ListByRegistration(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, audit.CheckOTP, entries[2].CheckType)
	assert.True(t, entries[2].Valid)
}

func TestConfirmCode_ReplayRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	_, err = f.svc.ConfirmCode(ctx, res.ID, res.Code)
	require.NoError(t, err)

	_, err = f.svc.ConfirmCode(ctx, res.ID, res.Code)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOTPInvalid))
}

func TestConfirmCode_WrongCodeLeavesRecordUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	wrong := "000000"
	if wrong == res.Code {
		wrong = "000001"
	}
	_, err = f.svc.ConfirmCode(ctx, res.ID, wrong)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOTPInvalid))

	reg, err := f.regs.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.False(t, reg.OTPVerified)
	assert.False(t, reg.AadhaarVerified)

	// The failed check is recorded, and the right code still works after.
	entries, err := f.trail.ListByRegistration(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.False(t, entries[2].Valid)

	_, err = f.svc.ConfirmCode(ctx, res.ID, res.Code)
	require.NoError(t, err)
}

func TestConfirmCode_BadFormat(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	_, err = f.svc.ConfirmCode(ctx, res.ID, "12ab56")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Equal(t, "otp_code", dErrors.FieldOf(err))
}

func TestConfirmCode_ExpiredCode(t *testing.T) {
	f := newFixture()
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	res, err := f.svc.Create(pinnedCtx(issued), validCreate())
	require.NoError(t, err)

	late := pinnedCtx(issued.Add(11 * time.Minute))
	_, err = f.svc.ConfirmCode(late, res.ID, res.Code)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOTPInvalid))
}

func validTaxID() service.ConfirmTaxIDInput {
	return service.ConfirmTaxIDInput{
		PANNumber: "abcde1234f",
		PANName:   "Jane Doe",
	}
}

func TestConfirmTaxID_RequiresVerifiedIdentity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)

	_, err = f.svc.ConfirmTaxID(ctx, res.ID, validTaxID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodePrecondition))

	// The failed attempt must not mutate the record.
	reg, err := f.regs.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Empty(t, reg.PANNumber)
	assert.False(t, reg.PANVerified)
	assert.Equal(t, models.StatusPending, reg.Status)
}

func TestConfirmTaxID_InvalidPANLeavesRecordUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := completeStepTwo(t, f, ctx)

	in := validTaxID()
	in.PANNumber = "BAD"
	_, err := f.svc.ConfirmTaxID(ctx, id, in)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	reg, err := f.regs.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, reg.PANNumber)
	assert.Equal(t, models.StatusPending, reg.Status)
}

func TestConfirmTaxID_DuplicatePAN(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := completeStepTwo(t, f, ctx)
	_, err := f.svc.ConfirmTaxID(ctx, first, validTaxID())
	require.NoError(t, err)

	second := createAndConfirm(t, f, ctx, "999988887777", "John Smith")
	_, err = f.svc.ConfirmTaxID(ctx, second, validTaxID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicate))
}

func TestConfirmTaxID_UnknownOrganizationType(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := completeStepTwo(t, f, ctx)

	in := validTaxID()
	in.OrganizationType = "conglomerate"
	_, err := f.svc.ConfirmTaxID(ctx, id, in)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Equal(t, "organization_type", dErrors.FieldOf(err))
}

func TestConfirmTaxID_InvalidGSTIN(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := completeStepTwo(t, f, ctx)

	in := validTaxID()
	in.GSTIN = "not-a-gstin"
	_, err := f.svc.ConfirmTaxID(ctx, id, in)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Equal(t, "gstin", dErrors.FieldOf(err))
}

func TestEndToEnd_FullWorkflow(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)
	ctx := pinnedCtx(now)

	res, err := f.svc.Create(ctx, validCreate())
	require.NoError(t, err)
	require.Equal(t, domain.RegistrationID(1), res.ID)
	require.True(t, res.CodeIssued)

	_, err = f.svc.ConfirmCode(ctx, res.ID, res.Code)
	require.NoError(t, err)

	incorporated := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	reg, err := f.svc.ConfirmTaxID(ctx, res.ID, service.ConfirmTaxIDInput{
		PANNumber:           "abcde1234f",
		PANName:             "Jane Doe",
		DateOfIncorporation: &incorporated,
		OrganizationType:    "proprietorship",
		GSTIN:               "22AAAAA0000A1Z5",
	})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("UDYAM-000001-%d", now.Year()), reg.RegistrationNumber)
	assert.Equal(t, models.StatusVerified, reg.Status)
	assert.Equal(t, "ABCDE1234F", reg.PANNumber)
	assert.Equal(t, "22AAAAA0000A1Z5", reg.GSTIN)
	assert.Equal(t, models.OrgProprietorship, reg.OrganizationType)
	assert.True(t, reg.PANVerified)

	// Full trail: aadhaar, name, otp, pan, pan_name, gstin.
	entries, err := f.trail.ListByRegistration(ctx, res.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 6)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Get(context.Background(), domain.RegistrationID(404))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestList_DefaultsAndOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i, aadhaar := range []string{"111111111111", "222222222222"} {
		in := validCreate()
		in.AadhaarNumber = aadhaar
		in.EntrepreneurName = fmt.Sprintf("Person Number %c", 'A'+i)
		_, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
	}

	regs, err := f.svc.List(ctx, 0, -5)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, domain.RegistrationID(1), regs[0].ID)
	assert.Equal(t, domain.RegistrationID(2), regs[1].ID)
}

func completeStepTwo(t *testing.T, f *fixture, ctx context.Context) domain.RegistrationID {
	t.Helper()
	return createAndConfirm(t, f, ctx, "123456789012", "Jane Doe")
}

func createAndConfirm(t *testing.T, f *fixture, ctx context.Context, aadhaar, name string) domain.RegistrationID {
	t.Helper()
	res, err := f.svc.Create(ctx, service.CreateInput{
		AadhaarNumber:    aadhaar,
		EntrepreneurName: name,
		ConsentGiven:     true,
	})
	require.NoError(t, err)
	_, err = f.svc.ConfirmCode(ctx, res.ID, res.Code)
	require.NoError(t, err)
	return res.ID
}
