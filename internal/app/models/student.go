package models

import "time"

// StudentProfile holds the student-specific data of a student account
type StudentProfile struct {
	ID          int64      `json:"id"`
	AccountID   int64      `json:"accountId"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Country     string     `json:"country,omitempty"`
	City        string     `json:"city,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Education is one entry of a student's education history
type Education struct {
	ID           int64      `json:"id"`
	StudentID    int64      `json:"studentId"`
	Institution  string     `json:"institution"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldOfStudy,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	GPA          *float64   `json:"gpa,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// SavedProgram is a program bookmarked by a student
type SavedProgram struct {
	StudentID int64     `json:"studentId"`
	ProgramID int64     `json:"programId"`
	SavedAt   time.Time `json:"savedAt"`
	Program   *Program  `json:"program,omitempty"`
}
