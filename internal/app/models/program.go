package models

import "time"

// Program is a degree program offered by an institution
type Program struct {
	ID                    int64      `json:"id"`
	InstitutionID         int64      `json:"institutionId"`
	InstitutionName       string     `json:"institutionName,omitempty"`
	Slug                  string     `json:"slug"`
	Title                 string     `json:"title"`
	Description           string     `json:"description,omitempty"`
	Degree                string     `json:"degree,omitempty"`
	Discipline            string     `json:"discipline,omitempty"`
	Duration              string     `json:"duration,omitempty"`
	TuitionFee            *float64   `json:"tuitionFee,omitempty"`
	ApplicationFee        *float64   `json:"applicationFee,omitempty"`
	Deadline              *time.Time `json:"deadline,omitempty"`
	StartDate             *time.Time `json:"startDate,omitempty"`
	Department            string     `json:"department,omitempty"`
	ScholarshipsAvailable bool       `json:"scholarshipsAvailable"`
	Ranking               *int       `json:"ranking,omitempty"`
	ImageURL              string     `json:"imageUrl,omitempty"`
	Location              string     `json:"location,omitempty"`
	Requirements          []string   `json:"requirements,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// ProgramFilter narrows a program listing. Zero values mean "any".
type ProgramFilter struct {
	InstitutionID *int64
	Discipline    string
	Degree        string
	Search        string
	Offset        uint64
	Limit         int
}
