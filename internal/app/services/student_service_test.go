package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
)

func newStudentFixture(t *testing.T) (*StudentService, *memDB, authz.Principal) {
	t.Helper()
	db := newMemDB()
	authSvc := NewAuthService(memAccounts{db}, memTokens{db}, newTestJWT(), testLogger)
	acc, err := authSvc.RegisterStudent(context.Background(), &dto.RegisterStudentRequest{
		Name: "Sam", Email: "sam@x.io", Password: "pw", Country: "Bangladesh",
	})
	require.NoError(t, err)
	return NewStudentService(memStudents{db}, testLogger), db, authz.Principal{AccountID: acc.ID, Role: models.RoleStudent}
}

func TestStudentService_SavedProgramsAreIdempotent(t *testing.T) {
	svc, db, student := newStudentFixture(t)
	ctx := context.Background()
	instID := db.seedInstitution("Acme U")
	program := db.seedProgram(instID, "MSc CS")

	require.NoError(t, svc.SaveProgram(ctx, student, program.ID))
	require.NoError(t, svc.SaveProgram(ctx, student, program.ID))

	saved, err := svc.ListSavedPrograms(ctx, student, student.AccountID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "MSc CS", saved[0].Program.Title)

	assert.ErrorIs(t, svc.SaveProgram(ctx, student, 9999), apperrors.ErrProgramNotFound)
	assert.ErrorIs(t, svc.SaveProgram(ctx, student, 0), apperrors.ErrValidationFailed)

	officer := authz.Principal{AccountID: 900, Role: models.RoleAdmissionOfficer, InstitutionID: &instID}
	assert.ErrorIs(t, svc.SaveProgram(ctx, officer, program.ID), apperrors.ErrPermissionDenied)
	_, err = svc.ListSavedPrograms(ctx, officer, student.AccountID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, svc.RemoveSavedProgram(ctx, student, program.ID))
	require.NoError(t, svc.RemoveSavedProgram(ctx, student, program.ID))
	saved, err = svc.ListSavedPrograms(ctx, student, student.AccountID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestStudentService_UpdateProfile(t *testing.T) {
	svc, _, student := newStudentFixture(t)
	ctx := context.Background()

	updated, err := svc.UpdateProfile(ctx, student, student.AccountID, &dto.UpdateStudentProfileRequest{
		City: " Dhaka ", Bio: "Aspiring engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam", updated.Name)
	assert.Equal(t, "Dhaka", updated.City)
	assert.Equal(t, "Bangladesh", updated.Country)
	assert.Equal(t, "Aspiring engineer", updated.Bio)

	renamed, err := svc.UpdateProfile(ctx, student, student.AccountID, &dto.UpdateStudentProfileRequest{Name: "Samira"})
	require.NoError(t, err)
	assert.Equal(t, "Samira", renamed.Name)
	assert.Equal(t, "Dhaka", renamed.City)

	intruder := authz.Principal{AccountID: student.AccountID + 100, Role: models.RoleStudent}
	_, err = svc.UpdateProfile(ctx, intruder, student.AccountID, &dto.UpdateStudentProfileRequest{City: "Elsewhere"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestStudentService_ProfileVisibility(t *testing.T) {
	svc, db, student := newStudentFixture(t)
	ctx := context.Background()
	instID := db.seedInstitution("Acme U")

	profile, err := svc.GetByAccount(ctx, student, student.AccountID)
	require.NoError(t, err)

	professor := authz.Principal{AccountID: 900, Role: models.RoleProfessor, InstitutionID: &instID}
	byID, err := svc.GetByProfileID(ctx, professor, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, student.AccountID, byID.AccountID)

	peer := authz.Principal{AccountID: student.AccountID + 100, Role: models.RoleStudent}
	_, err = svc.GetByAccount(ctx, peer, student.AccountID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = svc.GetByProfileID(ctx, peer, profile.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.GetByProfileID(ctx, professor, 9999)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	page, total, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, page, 1)
}

func TestStudentService_Education(t *testing.T) {
	svc, _, student := newStudentFixture(t)
	ctx := context.Background()

	start := time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC)

	first, err := svc.AddEducation(ctx, student, &dto.AddEducationRequest{
		Institution: "BUET", Degree: "BSc", StartDate: &start, EndDate: &end,
	})
	require.NoError(t, err)
	assert.Equal(t, student.AccountID, first.StudentID)

	_, err = svc.AddEducation(ctx, student, &dto.AddEducationRequest{Institution: "Notre Dame College", Degree: "HSC"})
	require.NoError(t, err)

	_, err = svc.AddEducation(ctx, student, &dto.AddEducationRequest{
		Institution: "Backwards", Degree: "BA", StartDate: &end, EndDate: &start,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.AddEducation(ctx, student, &dto.AddEducationRequest{Institution: " ", Degree: "BA"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	records, err := svc.ListEducation(ctx, student, student.AccountID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "BUET", records[0].Institution)
	assert.Equal(t, "Notre Dame College", records[1].Institution)

	admin := authz.Principal{AccountID: 1, Role: models.RoleAdmin}
	_, err = svc.AddEducation(ctx, admin, &dto.AddEducationRequest{Institution: "X", Degree: "Y"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
