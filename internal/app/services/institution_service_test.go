package services

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
)

type institutionFixture struct {
	svc      *InstitutionService
	auth     *AuthService
	db       *memDB
	notifier *recordingNotifier
	mailer   *recordingMailer
	admin    authz.Principal
}

func newInstitutionFixture() *institutionFixture {
	db := newMemDB()
	notifier := &recordingNotifier{}
	mailer := &recordingMailer{}
	admin := db.seedAccount(&models.Account{Name: "Root", Email: "root@cc.io", Role: models.RoleAdmin})
	return &institutionFixture{
		svc:      NewInstitutionService(memAccounts{db}, memInstitutions{db}, notifier, mailer, testLogger),
		auth:     NewAuthService(memAccounts{db}, memTokens{db}, newTestJWT(), testLogger),
		db:       db,
		notifier: notifier,
		mailer:   mailer,
		admin:    authz.Principal{AccountID: admin.ID, Role: models.RoleAdmin},
	}
}

func approvalStatus(s models.ApprovalStatus) *models.ApprovalStatus { return &s }

func TestInstitutionService_RegisterApproveLogin(t *testing.T) {
	f := newInstitutionFixture()
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, &dto.RegisterInstitutionRequest{Name: "Acme U", Email: "a@acme.edu", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, registered.Account.ApprovalStatus)
	assert.Equal(t, models.RoleInstitution, registered.Account.Role)

	pending, err := f.svc.List(ctx, approvalStatus(models.ApprovalPending))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Acme U", pending[0].Institution.Name)

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "a@acme.edu", Password: "x", ExpectedRole: "institution"})
	assert.ErrorIs(t, err, apperrors.ErrAccountPending)

	approved, err := f.svc.UpdateApproval(ctx, f.admin, &dto.ApprovalUpdateRequest{ID: registered.Institution.ID, Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.Account.ApprovalStatus)
	assert.NotNil(t, approved.Account.ApprovedAt)
	assert.Equal(t, 2, approved.Account.Revision)

	pending, err = f.svc.List(ctx, approvalStatus(models.ApprovalPending))
	require.NoError(t, err)
	assert.Empty(t, pending)

	resp, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "a@acme.edu", Password: "x", ExpectedRole: "institution"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	assert.Equal(t, []string{"a@acme.edu"}, f.mailer.approved)
	sent := f.notifier.to(registered.Account.ID)
	require.Len(t, sent, 1)
	assert.Equal(t, models.NotifyAccountApproval, sent[0].Kind)
}

func TestInstitutionService_RejectKeepsReason(t *testing.T) {
	f := newInstitutionFixture()
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, &dto.RegisterInstitutionRequest{Name: "Acme U", Email: "a@acme.edu", Password: "x"})
	require.NoError(t, err)

	rejected, err := f.svc.UpdateApproval(ctx, f.admin, &dto.ApprovalUpdateRequest{
		ID: registered.Institution.ID, Action: "reject", Reason: strPtr("  missing accreditation "),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, rejected.Account.ApprovalStatus)
	require.NotNil(t, rejected.Account.RejectionReason)
	assert.Equal(t, "missing accreditation", *rejected.Account.RejectionReason)
	assert.Equal(t, []string{"missing accreditation"}, f.mailer.reasons)

	reconsidered, err := f.svc.UpdateApproval(ctx, f.admin, &dto.ApprovalUpdateRequest{ID: registered.Institution.ID, Action: "reconsider"})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, reconsidered.Account.ApprovalStatus)
	assert.Nil(t, reconsidered.Account.RejectionReason)
	assert.Equal(t, []string{"a@acme.edu"}, f.mailer.pending)
}

func TestInstitutionService_ApprovalIsIdempotent(t *testing.T) {
	f := newInstitutionFixture()
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, &dto.RegisterInstitutionRequest{Name: "Acme U", Email: "a@acme.edu", Password: "x"})
	require.NoError(t, err)
	req := &dto.ApprovalUpdateRequest{ID: registered.Institution.ID, Action: "approve"}

	first, err := f.svc.UpdateApproval(ctx, f.admin, req)
	require.NoError(t, err)
	second, err := f.svc.UpdateApproval(ctx, f.admin, req)
	require.NoError(t, err)

	assert.Equal(t, first.Account.Revision, second.Account.Revision)
	assert.Len(t, f.mailer.approved, 1)
	assert.Len(t, f.notifier.to(registered.Account.ID), 1)
}

func TestInstitutionService_RevisionMismatch(t *testing.T) {
	f := newInstitutionFixture()
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, &dto.RegisterInstitutionRequest{Name: "Acme U", Email: "a@acme.edu", Password: "x"})
	require.NoError(t, err)

	_, err = f.svc.UpdateApproval(ctx, f.admin, &dto.ApprovalUpdateRequest{
		ID: registered.Institution.ID, Action: "approve", Revision: intPtr(7),
	})
	assert.ErrorIs(t, err, apperrors.ErrRevisionMismatch)

	updated, err := f.svc.UpdateApproval(ctx, f.admin, &dto.ApprovalUpdateRequest{
		ID: registered.Institution.ID, Action: "approve", Revision: intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, updated.Account.ApprovalStatus)
}

func TestInstitutionService_UpdateApprovalErrors(t *testing.T) {
	f := newInstitutionFixture()
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, &dto.RegisterInstitutionRequest{Name: "Acme U", Email: "a@acme.edu", Password: "x"})
	require.NoError(t, err)

	_, err = f.svc.UpdateApproval(ctx, f.admin, &dto.ApprovalUpdateRequest{ID: 9999, Action: "approve"})
	assert.ErrorIs(t, err, apperrors.ErrInstitutionNotFound)

	_, err = f.svc.UpdateApproval(ctx, f.admin, &dto.ApprovalUpdateRequest{ID: registered.Institution.ID, Action: "promote"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	student := authz.Principal{AccountID: 42, Role: models.RoleStudent}
	_, err = f.svc.UpdateApproval(ctx, student, &dto.ApprovalUpdateRequest{ID: registered.Institution.ID, Action: "approve"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.List(ctx, approvalStatus("archived"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestInstitutionService_StaffApproval(t *testing.T) {
	f := newInstitutionFixture()
	ctx := context.Background()

	acme, err := f.svc.Register(ctx, &dto.RegisterInstitutionRequest{Name: "Acme U", Email: "a@acme.edu", Password: "x"})
	require.NoError(t, err)
	other, err := f.svc.Register(ctx, &dto.RegisterInstitutionRequest{Name: "Other U", Email: "o@other.edu", Password: "x"})
	require.NoError(t, err)

	prof, err := f.auth.RegisterStaff(ctx, &dto.RegisterStaffRequest{
		Name: "Prof P", Email: "p@acme.edu", Password: "pw", Role: "professor", InstitutionID: acme.Institution.ID,
	})
	require.NoError(t, err)

	acmeCaller := authz.Principal{AccountID: acme.Account.ID, Role: models.RoleInstitution, InstitutionID: acme.Account.InstitutionID}
	otherCaller := authz.Principal{AccountID: other.Account.ID, Role: models.RoleInstitution, InstitutionID: other.Account.InstitutionID}

	staff, err := f.svc.ListStaff(ctx, acmeCaller, approvalStatus(models.ApprovalPending))
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, prof.ID, staff[0].ID)

	staff, err = f.svc.ListStaff(ctx, otherCaller, nil)
	require.NoError(t, err)
	assert.Empty(t, staff)

	_, err = f.svc.UpdateStaffApproval(ctx, otherCaller, &dto.ApprovalUpdateRequest{ID: prof.ID, Action: "approve"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	approved, err := f.svc.UpdateStaffApproval(ctx, acmeCaller, &dto.ApprovalUpdateRequest{ID: prof.ID, Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.ApprovalStatus)

	_, err = f.svc.UpdateStaffApproval(ctx, f.admin, &dto.ApprovalUpdateRequest{ID: acme.Account.ID, Action: "approve"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.ListStaff(ctx, authz.Principal{AccountID: prof.ID, Role: models.RoleProfessor, InstitutionID: prof.InstitutionID}, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestInstitutionService_SetRoleAndName(t *testing.T) {
	f := newInstitutionFixture()
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, &dto.RegisterInstitutionRequest{Name: "Acme U", Email: "a@acme.edu", Password: "x"})
	require.NoError(t, err)

	name, err := f.svc.InstitutionName(ctx, registered.Institution.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme U", name)

	_, err = f.svc.InstitutionName(ctx, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	prof, err := f.auth.RegisterStaff(ctx, &dto.RegisterStaffRequest{
		Name: "Prof P", Email: "p@acme.edu", Password: "pw", Role: "professor", InstitutionID: registered.Institution.ID,
	})
	require.NoError(t, err)

	acc, err := f.svc.SetRole(ctx, "P@acme.edu", models.RoleAdmissionOfficer)
	require.NoError(t, err)
	assert.Equal(t, prof.ID, acc.ID)
	assert.Equal(t, models.RoleAdmissionOfficer, acc.Role)

	_, err = f.svc.SetRole(ctx, "p@acme.edu", models.RoleInstitution)
	assert.ErrorIs(t, err, apperrors.ErrInstitutionHasOwner)

	_, err = f.svc.SetRole(ctx, "a@acme.edu", models.RoleProfessor)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.svc.SetRole(ctx, "root@cc.io", models.RoleInstitution)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.SetRole(ctx, "a@acme.edu", models.Role("janitor"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.SetRole(ctx, "nobody@acme.edu", models.RoleStudent)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestInstitutionService_PromotedStaffDoesNotSplitApproval(t *testing.T) {
	f := newInstitutionFixture()
	ctx := context.Background()

	acme, err := f.svc.Register(ctx, &dto.RegisterInstitutionRequest{Name: "Acme U", Email: "a@acme.edu", Password: "x"})
	require.NoError(t, err)
	_, err = f.svc.UpdateApproval(ctx, f.admin, &dto.ApprovalUpdateRequest{ID: acme.Institution.ID, Action: "approve"})
	require.NoError(t, err)
	_, err = f.auth.RegisterStaff(ctx, &dto.RegisterStaffRequest{
		Name: "Prof P", Email: "p@acme.edu", Password: "pw", Role: "professor", InstitutionID: acme.Institution.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.SetRole(ctx, "p@acme.edu", models.RoleInstitution)
	assert.ErrorIs(t, err, apperrors.ErrInstitutionHasOwner)

	pending, err := f.svc.List(ctx, approvalStatus(models.ApprovalPending))
	require.NoError(t, err)
	assert.Empty(t, pending)
	approved, err := f.svc.List(ctx, approvalStatus(models.ApprovalApproved))
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "a@acme.edu", approved[0].Account.Email)
}

func TestInstitutionService_EachInstitutionInExactlyOneState(t *testing.T) {
	f := newInstitutionFixture()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(20261016))

	var (
		institutionIDs []int64
		staffEmails    []string
	)
	for i := 0; i < 3; i++ {
		inst, err := f.svc.Register(ctx, &dto.RegisterInstitutionRequest{
			Name: fmt.Sprintf("Uni %d", i), Email: fmt.Sprintf("owner%d@uni.edu", i), Password: "x",
		})
		require.NoError(t, err)
		institutionIDs = append(institutionIDs, inst.Institution.ID)
		for j := 0; j < 2; j++ {
			email := fmt.Sprintf("staff%d-%d@uni.edu", i, j)
			_, err := f.auth.RegisterStaff(ctx, &dto.RegisterStaffRequest{
				Name: "Staff", Email: email, Password: "pw", Role: "professor", InstitutionID: inst.Institution.ID,
			})
			require.NoError(t, err)
			staffEmails = append(staffEmails, email)
		}
		staffEmails = append(staffEmails, fmt.Sprintf("owner%d@uni.edu", i))
	}

	actions := []string{"approve", "reject", "reconsider"}
	roles := []models.Role{models.RoleInstitution, models.RoleProfessor, models.RoleAdmissionOfficer, models.RoleStudent}

	for step := 0; step < 300; step++ {
		var err error
		if rng.Intn(2) == 0 {
			_, err = f.svc.UpdateApproval(ctx, f.admin, &dto.ApprovalUpdateRequest{
				ID:     institutionIDs[rng.Intn(len(institutionIDs))],
				Action: actions[rng.Intn(len(actions))],
			})
		} else {
			_, err = f.svc.SetRole(ctx, staffEmails[rng.Intn(len(staffEmails))], roles[rng.Intn(len(roles))])
		}
		if err != nil {
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition,
				apperrors.ErrInstitutionHasOwner, apperrors.ErrConflict), "step %d: %v", step, err)
		}

		seen := map[int64]int{}
		for _, status := range []models.ApprovalStatus{models.ApprovalPending, models.ApprovalApproved, models.ApprovalRejected} {
			listed, err := f.svc.List(ctx, approvalStatus(status))
			require.NoError(t, err)
			for _, ia := range listed {
				seen[ia.Institution.ID]++
			}
		}
		for _, id := range institutionIDs {
			require.Equal(t, 1, seen[id], "step %d: institution %d", step, id)
		}
	}
}
