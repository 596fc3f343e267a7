package models

import "time"

// ProfessorProfile is the public profile of a professor account
type ProfessorProfile struct {
	ID              int64     `json:"id"`
	AccountID       int64     `json:"accountId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	InstitutionID   *int64    `json:"institutionId,omitempty"`
	InstitutionName string    `json:"institutionName,omitempty"`
	Department      string    `json:"department,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	OfficeHours     string    `json:"officeHours,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	ContactEmail    string    `json:"contactEmail,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
