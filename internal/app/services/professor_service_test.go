package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
)

func TestProfessorService_Lifecycle(t *testing.T) {
	db := newMemDB()
	svc := NewProfessorService(memProfessors{db}, memAccounts{db}, testLogger)
	ctx := context.Background()

	instID := db.seedInstitution("Acme U")
	otherInst := db.seedInstitution("Other U")
	profAcc := db.seedAccount(&models.Account{Name: "Prof P", Email: "p@acme.edu", Role: models.RoleProfessor, InstitutionID: &instID})
	ownerAcc := db.seedAccount(&models.Account{Name: "Acme U", Email: "a@acme.edu", Role: models.RoleInstitution, InstitutionID: &instID})
	studentAcc := db.seedAccount(&models.Account{Name: "Sam", Email: "sam@x.io", Role: models.RoleStudent})

	prof := authz.Principal{AccountID: profAcc.ID, Role: models.RoleProfessor, InstitutionID: &instID}
	owner := authz.Principal{AccountID: ownerAcc.ID, Role: models.RoleInstitution, InstitutionID: &instID}
	outsider := authz.Principal{AccountID: 999, Role: models.RoleInstitution, InstitutionID: &otherInst}

	created, err := svc.Create(ctx, prof, &dto.ProfessorProfileRequest{AccountID: studentAcc.ID, Department: "CSE"})
	require.NoError(t, err)
	assert.Equal(t, profAcc.ID, created.AccountID)
	assert.Equal(t, "Prof P", created.Name)

	_, err = svc.Create(ctx, prof, &dto.ProfessorProfileRequest{Department: "EEE"})
	assert.ErrorIs(t, err, apperrors.ErrProfileExists)

	_, err = svc.Create(ctx, owner, &dto.ProfessorProfileRequest{Department: "EEE"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Create(ctx, owner, &dto.ProfessorProfileRequest{AccountID: studentAcc.ID})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Create(ctx, authz.Principal{AccountID: studentAcc.ID, Role: models.RoleStudent}, &dto.ProfessorProfileRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	updated, err := svc.Update(ctx, owner, created.ID, &dto.ProfessorProfileRequest{Department: "Computer Science", OfficeHours: "Mon 10-12"})
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", updated.Department)
	assert.Equal(t, profAcc.ID, updated.AccountID)

	_, err = svc.Update(ctx, outsider, created.ID, &dto.ProfessorProfileRequest{Department: "X"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	listed, err := svc.List(ctx, &instID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Computer Science", listed[0].Department)

	listed, err = svc.List(ctx, &otherInst)
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.ErrorIs(t, svc.Delete(ctx, outsider, created.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, prof, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrProfessorNotFound)
}
