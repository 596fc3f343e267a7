package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/repositories"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/email"
)

var staffRoles = []models.Role{models.RoleProfessor, models.RoleAdmissionOfficer}

// InstitutionService handles institution registration and account approval
type InstitutionService struct {
	accounts     accountStore
	institutions institutionStore
	notifier     Notifier
	mailer       email.EmailService
	logger       zerolog.Logger
}

// NewInstitutionService creates a new InstitutionService
func NewInstitutionService(
	accounts accountStore,
	institutions institutionStore,
	notifier Notifier,
	mailer email.EmailService,
	logger zerolog.Logger,
) *InstitutionService {
	return &InstitutionService{
		accounts:     accounts,
		institutions: institutions,
		notifier:     notifier,
		mailer:       mailer,
		logger:       logger,
	}
}

// Register creates an institution and its pending managing account in one transaction
func (s *InstitutionService) Register(ctx context.Context, req *dto.RegisterInstitutionRequest) (*models.InstitutionAccount, error) {
	inst, acc := req.ToModels()
	inst.Name = strings.TrimSpace(inst.Name)
	if err := prepareAccount(acc); err != nil {
		return nil, err
	}

	if err := s.accounts.CreateInstitutionAccount(ctx, inst, acc); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("institutionID", inst.ID).Int64("accountID", acc.ID).Msg("Institution registered, awaiting approval")
	return &models.InstitutionAccount{Institution: *inst, Account: *acc}, nil
}

// List returns institutions, optionally only those in one approval state
func (s *InstitutionService) List(ctx context.Context, status *models.ApprovalStatus) ([]*models.InstitutionAccount, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown approval status %q", apperrors.ErrValidationFailed, *status)
	}
	return s.institutions.ListWithAccounts(ctx, status)
}

// InstitutionName resolves an institution ID to its name
func (s *InstitutionService) InstitutionName(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: institution ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.institutions.GetName(ctx, id)
}

// UpdateApproval approves, rejects or reconsiders the institution with ID req.ID
func (s *InstitutionService) UpdateApproval(ctx context.Context, caller authz.Principal, req *dto.ApprovalUpdateRequest) (*models.InstitutionAccount, error) {
	institutionID := req.ID
	inst, err := s.institutions.GetByID(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	owners, err := s.accounts.List(ctx, repositories.AccountFilter{
		Roles:         []models.Role{models.RoleInstitution},
		InstitutionID: &institutionID,
	})
	if err != nil {
		return nil, err
	}
	if len(owners) != 1 {
		return nil, fmt.Errorf("%w: institution %d has %d managing accounts", apperrors.ErrInstitutionNotFound, institutionID, len(owners))
	}

	updated, err := s.decide(ctx, caller, owners[0], req)
	if err != nil {
		return nil, err
	}
	return &models.InstitutionAccount{Institution: *inst, Account: *updated}, nil
}

// ListStaff returns professor and admission officer accounts visible to the caller
func (s *InstitutionService) ListStaff(ctx context.Context, caller authz.Principal, status *models.ApprovalStatus) ([]*models.Account, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown approval status %q", apperrors.ErrValidationFailed, *status)
	}

	filter := repositories.AccountFilter{Roles: staffRoles, Status: status}
	switch {
	case caller.IsAdmin():
	case caller.Role == models.RoleInstitution && caller.InstitutionID != nil:
		filter.InstitutionID = caller.InstitutionID
	default:
		return nil, apperrors.ErrPermissionDenied
	}
	return s.accounts.List(ctx, filter)
}

// UpdateStaffApproval approves, rejects or reconsiders the staff account with ID req.ID
func (s *InstitutionService) UpdateStaffApproval(ctx context.Context, caller authz.Principal, req *dto.ApprovalUpdateRequest) (*models.Account, error) {
	target, err := s.accounts.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if target.Role != models.RoleProfessor && target.Role != models.RoleAdmissionOfficer {
		return nil, fmt.Errorf("%w: account %d is not a staff account", apperrors.ErrValidationFailed, target.ID)
	}
	return s.decide(ctx, caller, target, req)
}

// SetRole changes the role of the account registered under email. An
// institution keeps exactly one institution-role account: its owner cannot
// be demoted and no second account can be promoted.
func (s *InstitutionService) SetRole(ctx context.Context, emailAddr string, role models.Role) (*models.Account, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidationFailed, role)
	}
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	current, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if current.Role == role {
		return current, nil
	}
	if current.Role == models.RoleInstitution {
		return nil, apperrors.NewConflictError("the managing account of an institution cannot change role")
	}
	if role == models.RoleInstitution {
		if current.InstitutionID == nil {
			return nil, fmt.Errorf("%w: account %d does not belong to an institution", apperrors.ErrValidationFailed, current.ID)
		}
		owners, err := s.accounts.List(ctx, repositories.AccountFilter{
			Roles:         []models.Role{models.RoleInstitution},
			InstitutionID: current.InstitutionID,
		})
		if err != nil {
			return nil, err
		}
		if len(owners) > 0 {
			return nil, apperrors.ErrInstitutionHasOwner
		}
	}

	acc, err := s.accounts.UpdateRole(ctx, emailAddr, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("accountID", acc.ID).Str("from", string(current.Role)).Str("role", string(role)).Msg("Account role changed")
	return acc, nil
}

// decide applies an approval action to target after checking the caller,
// the transition table and the optional expected revision
func (s *InstitutionService) decide(ctx context.Context, caller authz.Principal, target *models.Account, req *dto.ApprovalUpdateRequest) (*models.Account, error) {
	status, ok := models.ApprovalAction(req.Action).Target()
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", apperrors.ErrValidationFailed, req.Action)
	}
	if !caller.CanDecideApproval(target) {
		return nil, apperrors.ErrPermissionDenied
	}
	if !models.CanTransitionApproval(target.ApprovalStatus, status) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, target.ApprovalStatus, status)
	}
	if req.Revision != nil && *req.Revision != target.Revision {
		return nil, apperrors.ErrRevisionMismatch
	}
	if target.ApprovalStatus == status {
		return target, nil
	}

	var reason *string
	if status == models.ApprovalRejected && req.Reason != nil {
		trimmed := strings.TrimSpace(*req.Reason)
		if trimmed != "" {
			reason = &trimmed
		}
	}

	updated, err := s.accounts.UpdateApproval(ctx, models.ApprovalChange{
		AccountID:        target.ID,
		Status:           status,
		Reason:           reason,
		ExpectedRevision: req.Revision,
	}, target.Revision)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("accountID", updated.ID).
		Int64("decidedBy", caller.AccountID).
		Str("from", string(target.ApprovalStatus)).
		Str("to", string(status)).
		Msg("Approval status changed")

	s.announce(ctx, updated)
	return updated, nil
}

// announce tells the account about its new approval state by notification and email
func (s *InstitutionService) announce(ctx context.Context, acc *models.Account) {
	var (
		message string
		sendErr error
	)
	switch acc.ApprovalStatus {
	case models.ApprovalApproved:
		message = "Your account has been approved"
		if s.mailer != nil {
			sendErr = s.mailer.SendApprovalEmail(acc.Email, acc.Name)
		}
	case models.ApprovalRejected:
		message = "Your account has been rejected"
		reason := ""
		if acc.RejectionReason != nil {
			reason = *acc.RejectionReason
		}
		if s.mailer != nil {
			sendErr = s.mailer.SendRejectionEmail(acc.Email, acc.Name, reason)
		}
	default:
		message = "Your account is under review again"
		if s.mailer != nil {
			sendErr = s.mailer.SendPendingReviewEmail(acc.Email, acc.Name)
		}
	}
	if sendErr != nil {
		s.logger.Error().Err(sendErr).Int64("accountID", acc.ID).Msg("Failed to send approval email")
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, acc.ID, models.NotifyAccountApproval, message, map[string]interface{}{
			"status":   acc.ApprovalStatus,
			"revision": acc.Revision,
		})
	}
}
