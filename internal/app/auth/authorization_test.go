package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
)

func ptr(v int64) *int64 { return &v }

func TestApplicationScope(t *testing.T) {
	student := Principal{AccountID: 4, Role: models.RoleStudent}
	f, err := student.ApplicationScope(models.ApplicationFilter{StudentID: ptr(99)})
	require.NoError(t, err)
	assert.Equal(t, int64(4), *f.StudentID)

	prof := Principal{AccountID: 5, Role: models.RoleProfessor, InstitutionID: ptr(2)}
	f, err = prof.ApplicationScope(models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), *f.InstitutionID)

	orphan := Principal{AccountID: 6, Role: models.RoleAdmissionOfficer}
	_, err = orphan.ApplicationScope(models.ApplicationFilter{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	admin := Principal{AccountID: 1, Role: models.RoleAdmin}
	f, err = admin.ApplicationScope(models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Nil(t, f.StudentID)
	assert.Nil(t, f.InstitutionID)
}

func TestCanViewAndReviewApplication(t *testing.T) {
	app := &models.Application{ID: 1, StudentID: 4, InstitutionID: 2}

	assert.True(t, Principal{AccountID: 4, Role: models.RoleStudent}.CanViewApplication(app))
	assert.False(t, Principal{AccountID: 8, Role: models.RoleStudent}.CanViewApplication(app))
	assert.False(t, Principal{AccountID: 4, Role: models.RoleStudent}.CanReviewApplication(app))

	officer := Principal{AccountID: 5, Role: models.RoleAdmissionOfficer, InstitutionID: ptr(2)}
	assert.True(t, officer.CanViewApplication(app))
	assert.True(t, officer.CanReviewApplication(app))

	other := Principal{AccountID: 6, Role: models.RoleInstitution, InstitutionID: ptr(3)}
	assert.False(t, other.CanViewApplication(app))
	assert.False(t, other.CanReviewApplication(app))

	assert.True(t, Principal{Role: models.RoleAdmin}.CanReviewApplication(app))
	assert.False(t, Principal{Role: models.RoleAdmin}.CanViewApplication(nil))
}

func TestCanManageProgram(t *testing.T) {
	inst := Principal{AccountID: 2, Role: models.RoleInstitution, InstitutionID: ptr(2)}
	assert.True(t, inst.CanManageProgram(2))
	assert.False(t, inst.CanManageProgram(3))

	prof := Principal{AccountID: 5, Role: models.RoleProfessor, InstitutionID: ptr(2)}
	assert.False(t, prof.CanManageProgram(2))
	assert.True(t, Principal{Role: models.RoleAdmin}.CanManageProgram(9))
}

func TestCanDecideApproval(t *testing.T) {
	inst := Principal{AccountID: 2, Role: models.RoleInstitution, InstitutionID: ptr(2)}
	ownProf := &models.Account{ID: 10, Role: models.RoleProfessor, InstitutionID: ptr(2)}
	otherProf := &models.Account{ID: 11, Role: models.RoleProfessor, InstitutionID: ptr(3)}
	otherInst := &models.Account{ID: 12, Role: models.RoleInstitution, InstitutionID: ptr(3)}

	assert.True(t, inst.CanDecideApproval(ownProf))
	assert.False(t, inst.CanDecideApproval(otherProf))
	assert.False(t, inst.CanDecideApproval(otherInst))

	admin := Principal{AccountID: 1, Role: models.RoleAdmin}
	assert.True(t, admin.CanDecideApproval(otherInst))
	assert.False(t, admin.CanDecideApproval(&models.Account{ID: 1, Role: models.RoleAdmin}))
}

func TestCanManageProfessorProfile(t *testing.T) {
	owner := Principal{AccountID: 10, Role: models.RoleProfessor, InstitutionID: ptr(2)}
	assert.True(t, owner.CanManageProfessorProfile(10, ptr(2)))
	assert.False(t, owner.CanManageProfessorProfile(11, ptr(2)))

	inst := Principal{AccountID: 2, Role: models.RoleInstitution, InstitutionID: ptr(2)}
	assert.True(t, inst.CanManageProfessorProfile(11, ptr(2)))
	assert.False(t, inst.CanManageProfessorProfile(11, nil))
}
