package dto

import (
	"time"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
)

// ProgramRequest carries the editable fields of a program. InstitutionID is
// honoured only for administrators; staff always act for their own institution.
type ProgramRequest struct {
	InstitutionID         int64      `json:"institutionId,omitempty" binding:"omitempty,gt=0"`
	Title                 string     `json:"title" binding:"required,max=255" example:"MSc CS"`
	Description           string     `json:"description,omitempty"`
	Degree                string     `json:"degree,omitempty" binding:"omitempty,max=100"`
	Discipline            string     `json:"discipline,omitempty" binding:"omitempty,max=100"`
	Duration              string     `json:"duration,omitempty" binding:"omitempty,max=100"`
	TuitionFee            *float64   `json:"tuitionFee,omitempty" binding:"omitempty,min=0"`
	ApplicationFee        *float64   `json:"applicationFee,omitempty" binding:"omitempty,min=0"`
	Deadline              *time.Time `json:"deadline,omitempty"`
	StartDate             *time.Time `json:"startDate,omitempty"`
	Department            string     `json:"department,omitempty"`
	ScholarshipsAvailable bool       `json:"scholarshipsAvailable"`
	Ranking               *int       `json:"ranking,omitempty" binding:"omitempty,gt=0"`
	ImageURL              string     `json:"imageUrl,omitempty"`
	Location              string     `json:"location,omitempty"`
	Requirements          []string   `json:"requirements,omitempty" binding:"omitempty,dive,required"`
}

// ToModel builds a program from the request
func (r *ProgramRequest) ToModel() *models.Program {
	return &models.Program{
		InstitutionID:         r.InstitutionID,
		Title:                 r.Title,
		Description:           r.Description,
		Degree:                r.Degree,
		Discipline:            r.Discipline,
		Duration:              r.Duration,
		TuitionFee:            r.TuitionFee,
		ApplicationFee:        r.ApplicationFee,
		Deadline:              r.Deadline,
		StartDate:             r.StartDate,
		Department:            r.Department,
		ScholarshipsAvailable: r.ScholarshipsAvailable,
		Ranking:               r.Ranking,
		ImageURL:              r.ImageURL,
		Location:              r.Location,
		Requirements:          r.Requirements,
	}
}

// AddRequirementsRequest appends requirement lines to a program
type AddRequirementsRequest struct {
	Requirements []string `json:"requirements" binding:"required,min=1,dive,required" example:"GPA 3.0,TOEFL 90"`
}

// RequirementsResponse lists the requirements of one program
type RequirementsResponse struct {
	ProgramID    int64    `json:"programId"`
	Requirements []string `json:"requirements"`
}

// ProgramTitleResponse resolves a program id to its title
type ProgramTitleResponse struct {
	ProgramID int64  `json:"programId"`
	Title     string `json:"title"`
}
