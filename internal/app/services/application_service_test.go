package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
)

type applicationFixture struct {
	svc      *ApplicationService
	db       *memDB
	notifier *recordingNotifier
	metrics  *ApplicationMetrics

	program     *models.Program
	owner       authz.Principal
	officer     authz.Principal
	student     authz.Principal
	other       authz.Principal
	outsider    authz.Principal
	studentName string
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()
	db := newMemDB()
	notifier := &recordingNotifier{}
	metrics := NewApplicationMetrics(prometheus.NewRegistry())

	instID := db.seedInstitution("Acme U")
	otherInst := db.seedInstitution("Other U")
	owner := db.seedAccount(&models.Account{Name: "Acme U", Email: "a@acme.edu", Role: models.RoleInstitution, InstitutionID: &instID})
	officer := db.seedAccount(&models.Account{Name: "Olive", Email: "o@acme.edu", Role: models.RoleAdmissionOfficer, InstitutionID: &instID})
	outsider := db.seedAccount(&models.Account{Name: "Other U", Email: "x@other.edu", Role: models.RoleInstitution, InstitutionID: &otherInst})
	student := db.seedAccount(&models.Account{Name: "Sam", Email: "sam@x.io", Role: models.RoleStudent})
	other := db.seedAccount(&models.Account{Name: "Kim", Email: "kim@x.io", Role: models.RoleStudent})

	return &applicationFixture{
		svc:         NewApplicationService(memApplications{db}, memAccounts{db}, notifier, metrics, testLogger),
		db:          db,
		notifier:    notifier,
		metrics:     metrics,
		program:     db.seedProgram(instID, "MSc CS"),
		owner:       authz.Principal{AccountID: owner.ID, Role: models.RoleInstitution, InstitutionID: &instID},
		officer:     authz.Principal{AccountID: officer.ID, Role: models.RoleAdmissionOfficer, InstitutionID: &instID},
		student:     authz.Principal{AccountID: student.ID, Role: models.RoleStudent},
		other:       authz.Principal{AccountID: other.ID, Role: models.RoleStudent},
		outsider:    authz.Principal{AccountID: outsider.ID, Role: models.RoleInstitution, InstitutionID: &otherInst},
		studentName: student.Name,
	}
}

func (f *applicationFixture) submit(t *testing.T) *models.Application {
	t.Helper()
	app, err := f.svc.Submit(context.Background(), f.student, &dto.SubmitApplicationRequest{ProgramID: f.program.ID})
	require.NoError(t, err)
	return app
}

func TestApplicationService_SubmitIsPending(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	app := f.submit(t)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, f.studentName, app.StudentName)
	assert.Equal(t, f.program.InstitutionID, app.InstitutionID)
	assert.Equal(t, "MSc CS", app.ProgramTitle)
	assert.Equal(t, 1, app.Revision)

	_, err := f.svc.Submit(ctx, f.student, &dto.SubmitApplicationRequest{ProgramID: f.program.ID})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)

	_, err = f.svc.Submit(ctx, f.student, &dto.SubmitApplicationRequest{ProgramID: 9999})
	assert.ErrorIs(t, err, apperrors.ErrProgramNotFound)

	_, err = f.svc.Submit(ctx, f.officer, &dto.SubmitApplicationRequest{ProgramID: f.program.ID})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Submitted))

	sent := f.notifier.to(f.owner.AccountID)
	require.Len(t, sent, 1)
	assert.Equal(t, models.NotifyApplicationNew, sent[0].Kind)
	assert.Contains(t, sent[0].Message, "Sam")
}

func TestApplicationService_UpdateStatus(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	updated, err := f.svc.UpdateStatus(ctx, f.officer, &dto.UpdateStatusRequest{
		ApplicationID: app.ID, Status: "approved", Feedback: strPtr(" Welcome aboard "),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, "Welcome aboard", *updated.Feedback)
	assert.Equal(t, 2, updated.Revision)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Transitions.WithLabelValues("approved")))

	// Same status and feedback again changes nothing
	again, err := f.svc.UpdateStatus(ctx, f.officer, &dto.UpdateStatusRequest{ApplicationID: app.ID, Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, 2, again.Revision)

	sent := f.notifier.to(f.student.AccountID)
	require.Len(t, sent, 1)
	assert.Equal(t, models.NotifyApplicationStatus, sent[0].Kind)

	// Same status with new feedback records the feedback only
	reworded, err := f.svc.UpdateStatus(ctx, f.owner, &dto.UpdateStatusRequest{
		ApplicationID: app.ID, Status: "approved", Feedback: strPtr("See you in September"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, reworded.Revision)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Transitions.WithLabelValues("approved")))

	_, err = f.svc.UpdateStatus(ctx, f.owner, &dto.UpdateStatusRequest{ApplicationID: app.ID, Status: "waitlisted", Revision: intPtr(1)})
	assert.ErrorIs(t, err, apperrors.ErrRevisionMismatch)

	_, err = f.svc.UpdateStatus(ctx, f.owner, &dto.UpdateStatusRequest{ApplicationID: app.ID, Status: "archived"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestApplicationService_UpdateStatusPermissions(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	_, err := f.svc.UpdateStatus(ctx, f.student, &dto.UpdateStatusRequest{ApplicationID: app.ID, Status: "approved"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.UpdateStatus(ctx, f.outsider, &dto.UpdateStatusRequest{ApplicationID: app.ID, Status: "approved"})
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)

	_, err = f.svc.UpdateStatus(ctx, f.owner, &dto.UpdateStatusRequest{ApplicationID: 9999, Status: "approved"})
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)

	admin := authz.Principal{AccountID: 7777, Role: models.RoleAdmin}
	updated, err := f.svc.UpdateStatus(ctx, admin, &dto.UpdateStatusRequest{ApplicationID: app.ID, Status: "under_review"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, updated.Status)
}

func TestApplicationService_Comments(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	comment, err := f.svc.AddComment(ctx, f.officer, &dto.AddCommentRequest{ApplicationID: app.ID, Body: " Strong SOP "})
	require.NoError(t, err)
	assert.Equal(t, "Strong SOP", comment.Body)
	assert.Equal(t, "Olive", comment.AuthorName)

	_, err = f.svc.AddComment(ctx, f.owner, &dto.AddCommentRequest{ApplicationID: app.ID, Body: "Agreed"})
	require.NoError(t, err)

	comments, err := f.svc.ListComments(ctx, f.student, app.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Strong SOP", comments[0].Body)
	assert.Equal(t, "Agreed", comments[1].Body)

	_, err = f.svc.AddComment(ctx, f.student, &dto.AddCommentRequest{ApplicationID: app.ID, Body: "Me too"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.AddComment(ctx, f.owner, &dto.AddCommentRequest{ApplicationID: app.ID, Body: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.ListComments(ctx, f.other, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)

	assert.Len(t, f.notifier.to(f.student.AccountID), 2)
}

func TestApplicationService_ListScoping(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	mine := f.submit(t)

	theirs, err := f.svc.Submit(ctx, f.other, &dto.SubmitApplicationRequest{ProgramID: f.program.ID})
	require.NoError(t, err)

	apps, err := f.svc.List(ctx, f.student, models.ApplicationFilter{})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, mine.ID, apps[0].ID)

	// A student cannot widen the scope by naming another student
	apps, err = f.svc.List(ctx, f.student, models.ApplicationFilter{StudentID: &theirs.StudentID})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, mine.ID, apps[0].ID)

	apps, err = f.svc.List(ctx, f.owner, models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	apps, err = f.svc.List(ctx, f.outsider, models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Empty(t, apps)

	_, err = f.svc.Get(ctx, f.other, mine.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)

	got, err := f.svc.Get(ctx, f.student, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)
}

func TestApplicationService_Pending(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app := f.submit(t)
	_, err := f.svc.Submit(ctx, f.other, &dto.SubmitApplicationRequest{ProgramID: f.program.ID})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.owner, &dto.UpdateStatusRequest{ApplicationID: app.ID, Status: "rejected"})
	require.NoError(t, err)

	pending, err := f.svc.Pending(ctx, f.officer)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.NotEqual(t, app.ID, pending[0].ID)

	_, err = f.svc.Pending(ctx, f.student)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestApplicationService_NilMetricsAndNotifier(t *testing.T) {
	db := newMemDB()
	instID := db.seedInstitution("Acme U")
	program := db.seedProgram(instID, "MSc CS")
	student := db.seedAccount(&models.Account{Name: "Sam", Email: "sam@x.io", Role: models.RoleStudent})
	svc := NewApplicationService(memApplications{db}, memAccounts{db}, nil, nil, testLogger)

	app, err := svc.Submit(context.Background(), authz.Principal{AccountID: student.ID, Role: models.RoleStudent},
		&dto.SubmitApplicationRequest{ProgramID: program.ID})
	require.NoError(t, err)

	admin := authz.Principal{AccountID: 1, Role: models.RoleAdmin}
	_, err = svc.UpdateStatus(context.Background(), admin, &dto.UpdateStatusRequest{ApplicationID: app.ID, Status: "approved"})
	require.NoError(t, err)
}
