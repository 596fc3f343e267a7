package dto

// SubmitApplicationRequest submits an application for the calling student.
// Any status sent by the client is ignored.
type SubmitApplicationRequest struct {
	ProgramID          int64  `json:"programId" binding:"required,gt=0" example:"9"`
	StatementOfPurpose string `json:"statementOfPurpose,omitempty"`
}

// UpdateStatusRequest changes the review status of an application
type UpdateStatusRequest struct {
	ApplicationID int64   `json:"applicationId" binding:"required,gt=0"`
	Status        string  `json:"status" binding:"required,oneof=pending under_review approved rejected waitlisted" example:"approved"`
	Feedback      *string `json:"feedback,omitempty"`
	Revision      *int    `json:"revision,omitempty" binding:"omitempty,gt=0"`
}

// AddCommentRequest appends a reviewer comment to an application
type AddCommentRequest struct {
	ApplicationID int64  `json:"applicationId" binding:"required,gt=0"`
	Body          string `json:"body" binding:"required,max=5000" example:"Looks good"`
}
