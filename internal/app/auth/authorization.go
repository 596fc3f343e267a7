package auth

import (
	"fmt"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
)

// Principal is the authenticated caller as seen by the services
type Principal struct {
	AccountID     int64
	Role          models.Role
	InstitutionID *int64
}

// IsAdmin reports whether the caller is an administrator
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// IsStaff reports whether the caller acts for an institution
func (p Principal) IsStaff() bool {
	return p.Role.IsStaff()
}

// ActsFor reports whether the caller is staff of the given institution
func (p Principal) ActsFor(institutionID int64) bool {
	return p.IsStaff() && p.InstitutionID != nil && *p.InstitutionID == institutionID
}

// ApplicationScope narrows a filter to what the caller may see.
// Students see their own applications, staff see their institution's, admins see all.
func (p Principal) ApplicationScope(filter models.ApplicationFilter) (models.ApplicationFilter, error) {
	switch {
	case p.IsAdmin():
		return filter, nil
	case p.Role == models.RoleStudent:
		id := p.AccountID
		filter.StudentID = &id
		return filter, nil
	case p.IsStaff():
		if p.InstitutionID == nil {
			return filter, fmt.Errorf("%w: account is not linked to an institution", apperrors.ErrPermissionDenied)
		}
		id := *p.InstitutionID
		filter.InstitutionID = &id
		return filter, nil
	}
	return filter, apperrors.ErrPermissionDenied
}

// CanViewApplication reports whether the caller may read an application
func (p Principal) CanViewApplication(app *models.Application) bool {
	if app == nil {
		return false
	}
	switch {
	case p.IsAdmin():
		return true
	case p.Role == models.RoleStudent:
		return app.StudentID == p.AccountID
	default:
		return p.ActsFor(app.InstitutionID)
	}
}

// CanReviewApplication reports whether the caller may change status or comment
func (p Principal) CanReviewApplication(app *models.Application) bool {
	if app == nil {
		return false
	}
	return p.IsAdmin() || p.ActsFor(app.InstitutionID)
}

// CanManageProgram reports whether the caller may edit programs of an institution.
// Only the institution account itself (or an admin) manages programs.
func (p Principal) CanManageProgram(institutionID int64) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == models.RoleInstitution && p.InstitutionID != nil && *p.InstitutionID == institutionID
}

// CanDecideApproval reports whether the caller may approve or reject target
func (p Principal) CanDecideApproval(target *models.Account) bool {
	if target == nil || target.ID == p.AccountID {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	if p.Role != models.RoleInstitution || p.InstitutionID == nil {
		return false
	}
	switch target.Role {
	case models.RoleProfessor, models.RoleAdmissionOfficer:
		return target.BelongsTo(*p.InstitutionID)
	}
	return false
}

// CanManageProfessorProfile reports whether the caller may edit a profile owned by
// ownerAccountID at institutionID
func (p Principal) CanManageProfessorProfile(ownerAccountID int64, institutionID *int64) bool {
	if p.IsAdmin() || p.AccountID == ownerAccountID {
		return true
	}
	return p.Role == models.RoleInstitution && institutionID != nil && p.ActsFor(*institutionID)
}

// CanViewStudentRecords reports whether the caller may read a student's private records
func (p Principal) CanViewStudentRecords(studentID int64) bool {
	return p.IsAdmin() || p.IsStaff() || p.AccountID == studentID
}
