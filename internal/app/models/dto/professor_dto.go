package dto

import "github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"

// ProfessorProfileRequest carries the editable fields of a professor profile.
// AccountID is required when an institution or admin creates a profile on
// behalf of a professor and ignored when professors edit their own.
type ProfessorProfileRequest struct {
	AccountID    int64  `json:"accountId,omitempty" binding:"omitempty,gt=0"`
	Department   string `json:"department,omitempty" binding:"omitempty,max=255"`
	Bio          string `json:"bio,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	OfficeHours  string `json:"officeHours,omitempty" binding:"omitempty,max=255"`
	Phone        string `json:"phone,omitempty" binding:"omitempty,max=50"`
	ContactEmail string `json:"contactEmail,omitempty" binding:"omitempty,email"`
}

// ToModel builds a profile from the request
func (r *ProfessorProfileRequest) ToModel() *models.ProfessorProfile {
	return &models.ProfessorProfile{
		AccountID:    r.AccountID,
		Department:   r.Department,
		Bio:          r.Bio,
		ImageURL:     r.ImageURL,
		OfficeHours:  r.OfficeHours,
		Phone:        r.Phone,
		ContactEmail: r.ContactEmail,
	}
}

// InstitutionNameResponse resolves an institution id to its name
type InstitutionNameResponse struct {
	InstitutionID int64  `json:"institutionId"`
	Name          string `json:"name"`
}
