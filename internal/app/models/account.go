package models

import "time"

// Role is the kind of account
type Role string

const (
	RoleStudent          Role = "student"
	RoleInstitution      Role = "institution"
	RoleProfessor        Role = "professor"
	RoleAdmissionOfficer Role = "admission_officer"
	RoleAdmin            Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstitution, RoleProfessor, RoleAdmissionOfficer, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role acts on behalf of an institution
func (r Role) IsStaff() bool {
	return r == RoleInstitution || r == RoleProfessor || r == RoleAdmissionOfficer
}

// RequiresApproval reports whether new accounts of this role start pending.
func (r Role) RequiresApproval() bool {
	return r.IsStaff()
}

// ApprovalStatus is the single approval state of an account
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether s is a known approval status
func (s ApprovalStatus) Valid() bool {
	return s == ApprovalPending || s == ApprovalApproved || s == ApprovalRejected
}

// ApprovalAction is an administrative decision on a pending account
type ApprovalAction string

const (
	ActionApprove    ApprovalAction = "approve"
	ActionReject     ApprovalAction = "reject"
	ActionReconsider ApprovalAction = "reconsider"
)

// Target returns the status an action moves an account to
func (a ApprovalAction) Target() (ApprovalStatus, bool) {
	switch a {
	case ActionApprove:
		return ApprovalApproved, true
	case ActionReject:
		return ApprovalRejected, true
	case ActionReconsider:
		return ApprovalPending, true
	}
	return "", false
}

var approvalTransitions = map[ApprovalStatus][]ApprovalStatus{
	ApprovalPending:  {ApprovalApproved, ApprovalRejected},
	ApprovalApproved: {ApprovalRejected, ApprovalPending},
	ApprovalRejected: {ApprovalApproved, ApprovalPending},
}

// CanTransitionApproval reports whether an account may move from one approval
// status to another. Staying in the same status is always allowed.
func CanTransitionApproval(from, to ApprovalStatus) bool {
	if from == to {
		return from.Valid()
	}
	for _, next := range approvalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Account is a login identity of any role
type Account struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Password        string         `json:"-"`
	Role            Role           `json:"role"`
	ApprovalStatus  ApprovalStatus `json:"approvalStatus"`
	RejectionReason *string        `json:"rejectionReason,omitempty"`
	ApprovedAt      *time.Time     `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time     `json:"rejectedAt,omitempty"`
	InstitutionID   *int64         `json:"institutionId,omitempty"`
	Revision        int            `json:"revision"`
	LastLoginAt     *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// IsApproved reports whether the account may log in
func (a *Account) IsApproved() bool {
	return a.ApprovalStatus == ApprovalApproved
}

// BelongsTo reports whether the account acts for the given institution
func (a *Account) BelongsTo(institutionID int64) bool {
	return a.InstitutionID != nil && *a.InstitutionID == institutionID
}

// ApprovalChange describes a requested approval transition
type ApprovalChange struct {
	AccountID        int64
	Status           ApprovalStatus
	Reason           *string
	ExpectedRevision *int
}
