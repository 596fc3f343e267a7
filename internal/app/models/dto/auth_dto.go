package dto

import (
	"time"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
)

// LoginRequest represents login credentials. ExpectedRole, when set, must match
// the stored role of the account.
type LoginRequest struct {
	Email        string `json:"email" binding:"required,email" example:"a@acme.edu"`
	Password     string `json:"password" binding:"required" example:"secret"`
	ExpectedRole string `json:"expectedRole,omitempty" binding:"omitempty,oneof=student institution professor admission_officer admin" example:"institution"`
}

// RefreshTokenRequest carries a refresh token to rotate
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RegisterStaffRequest registers a professor or admission officer for an institution
type RegisterStaffRequest struct {
	Name          string `json:"name" binding:"required,max=255"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	Role          string `json:"role" binding:"required,oneof=professor admission_officer"`
	InstitutionID int64  `json:"institutionId" binding:"required,gt=0"`
}

// AccountResponse is the public view of an account
type AccountResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	ApprovalStatus  string     `json:"approvalStatus"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	InstitutionID   *int64     `json:"institutionId,omitempty"`
	Revision        int        `json:"revision"`
	RegisteredAt    time.Time  `json:"registeredAt"`
}

// NewAccountResponse maps an account to its public view
func NewAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		Role:            string(a.Role),
		ApprovalStatus:  string(a.ApprovalStatus),
		RejectionReason: a.RejectionReason,
		ApprovedAt:      a.ApprovedAt,
		RejectedAt:      a.RejectedAt,
		InstitutionID:   a.InstitutionID,
		Revision:        a.Revision,
		RegisteredAt:    a.CreatedAt,
	}
}

// TokenResponse is returned on login and refresh
type TokenResponse struct {
	AccessToken      string          `json:"accessToken"`
	RefreshToken     string          `json:"refreshToken"`
	TokenType        string          `json:"tokenType" example:"Bearer"`
	ExpiresIn        int             `json:"expiresIn" example:"3600"`
	RefreshExpiresIn int             `json:"refreshExpiresIn" example:"2592000"`
	Account          AccountResponse `json:"account"`
}

// ApprovalUpdateRequest moves an account between approval states
type ApprovalUpdateRequest struct {
	ID       int64   `json:"id" binding:"required,gt=0"`
	Action   string  `json:"action" binding:"required,oneof=approve reject reconsider"`
	Reason   *string `json:"reason,omitempty" binding:"omitempty,max=2000"`
	Revision *int    `json:"revision,omitempty" binding:"omitempty,gt=0"`
}

// SetRoleRequest changes the role of the account with the given email
type SetRoleRequest struct {
	Email string `json:"email" binding:"required,email"`
}
