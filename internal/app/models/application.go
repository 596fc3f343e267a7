package models

import "time"

// ApplicationStatus is the review state of an application
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
	StatusWaitlisted  ApplicationStatus = "waitlisted"
)

// ApplicationStatuses lists every status in display order
var ApplicationStatuses = []ApplicationStatus{
	StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusWaitlisted,
}

// Valid reports whether s is a known status
func (s ApplicationStatus) Valid() bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Decisions may be revised, so no status is terminal.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:     {StatusUnderReview, StatusApproved, StatusRejected, StatusWaitlisted},
	StatusUnderReview: {StatusPending, StatusApproved, StatusRejected, StatusWaitlisted},
	StatusApproved:    {StatusPending, StatusUnderReview, StatusRejected, StatusWaitlisted},
	StatusRejected:    {StatusPending, StatusUnderReview, StatusApproved, StatusWaitlisted},
	StatusWaitlisted:  {StatusPending, StatusUnderReview, StatusApproved, StatusRejected},
}

// CanTransition reports whether an application may move from one status to
// another. Re-applying the current status is allowed and changes nothing.
func CanTransition(from, to ApplicationStatus) bool {
	if from == to {
		return from.Valid()
	}
	for _, next := range applicationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Application is a student's application to a program
type Application struct {
	ID                 int64             `json:"id"`
	ProgramID          int64             `json:"programId"`
	ProgramTitle       string            `json:"programTitle,omitempty"`
	InstitutionID      int64             `json:"institutionId,omitempty"`
	StudentID          int64             `json:"studentId"`
	StudentName        string            `json:"studentName"`
	StatementOfPurpose string            `json:"statementOfPurpose,omitempty"`
	Status             ApplicationStatus `json:"status"`
	Feedback           *string           `json:"feedback,omitempty"`
	Revision           int               `json:"revision"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// ApplicationFilter narrows an application listing. Nil fields mean "any".
type ApplicationFilter struct {
	StudentID     *int64
	InstitutionID *int64
	ProgramID     *int64
	Status        *ApplicationStatus
}

// StatusChange describes a requested status update
type StatusChange struct {
	ApplicationID    int64
	Status           ApplicationStatus
	Feedback         *string
	ExpectedRevision *int
}

// Comment is a reviewer note attached to an application
type Comment struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"applicationId"`
	AuthorID      int64     `json:"authorId"`
	AuthorName    string    `json:"authorName,omitempty"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"createdAt"`
}
