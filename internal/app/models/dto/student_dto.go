package dto

import (
	"time"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
)

// RegisterStudentRequest represents student sign-up data
type RegisterStudentRequest struct {
	Name        string     `json:"name" binding:"required,max=255"`
	Email       string     `json:"email" binding:"required,email"`
	Password    string     `json:"password" binding:"required"`
	Phone       string     `json:"phone,omitempty" binding:"omitempty,max=50"`
	Country     string     `json:"country,omitempty" binding:"omitempty,max=100"`
	City        string     `json:"city,omitempty" binding:"omitempty,max=100"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
}

// ToModels splits the request into account and profile
func (r *RegisterStudentRequest) ToModels() (*models.Account, *models.StudentProfile) {
	acc := &models.Account{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     models.RoleStudent,
	}
	profile := &models.StudentProfile{
		Phone:       r.Phone,
		Country:     r.Country,
		City:        r.City,
		DateOfBirth: r.DateOfBirth,
	}
	return acc, profile
}

// UpdateStudentProfileRequest edits the caller's own profile
type UpdateStudentProfileRequest struct {
	Name        string     `json:"name,omitempty" binding:"omitempty,max=255"`
	Phone       string     `json:"phone,omitempty" binding:"omitempty,max=50"`
	Country     string     `json:"country,omitempty" binding:"omitempty,max=100"`
	City        string     `json:"city,omitempty" binding:"omitempty,max=100"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Bio         string     `json:"bio,omitempty" binding:"omitempty,max=5000"`
}

// AddEducationRequest appends one education record for the caller
type AddEducationRequest struct {
	Institution  string     `json:"institution" binding:"required,max=255"`
	Degree       string     `json:"degree" binding:"required,max=255"`
	FieldOfStudy string     `json:"fieldOfStudy,omitempty" binding:"omitempty,max=255"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	GPA          *float64   `json:"gpa,omitempty" binding:"omitempty,min=0,max=10"`
}

// ToModel builds an education record for the given student
func (r *AddEducationRequest) ToModel(studentID int64) *models.Education {
	return &models.Education{
		StudentID:    studentID,
		Institution:  r.Institution,
		Degree:       r.Degree,
		FieldOfStudy: r.FieldOfStudy,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		GPA:          r.GPA,
	}
}

// SaveProgramRequest bookmarks a program for the caller
type SaveProgramRequest struct {
	ProgramID int64 `json:"programId" binding:"required,gt=0"`
}
