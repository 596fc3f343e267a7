package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
)

// ProfessorService handles professor profiles
type ProfessorService struct {
	professors professorStore
	accounts   accountStore
	logger     zerolog.Logger
}

// NewProfessorService creates a new ProfessorService
func NewProfessorService(professors professorStore, accounts accountStore, logger zerolog.Logger) *ProfessorService {
	return &ProfessorService{
		professors: professors,
		accounts:   accounts,
		logger:     logger,
	}
}

// List returns professor profiles, optionally of one institution
func (s *ProfessorService) List(ctx context.Context, institutionID *int64) ([]*models.ProfessorProfile, error) {
	return s.professors.List(ctx, institutionID)
}

// Get returns one professor profile
func (s *ProfessorService) Get(ctx context.Context, id int64) (*models.ProfessorProfile, error) {
	return s.professors.GetByID(ctx, id)
}

// Create stores a profile. Professors create their own; institutions and admins
// create one for a professor account named in the request.
func (s *ProfessorService) Create(ctx context.Context, caller authz.Principal, req *dto.ProfessorProfileRequest) (*models.ProfessorProfile, error) {
	profile := req.ToModel()

	switch {
	case caller.Role == models.RoleProfessor:
		profile.AccountID = caller.AccountID
	case caller.IsAdmin() || caller.Role == models.RoleInstitution:
		if profile.AccountID <= 0 {
			return nil, fmt.Errorf("%w: accountId is required", apperrors.ErrValidationFailed)
		}
	default:
		return nil, apperrors.ErrPermissionDenied
	}

	owner, err := s.accounts.GetByID(ctx, profile.AccountID)
	if err != nil {
		return nil, err
	}
	if owner.Role != models.RoleProfessor {
		return nil, fmt.Errorf("%w: account %d is not a professor", apperrors.ErrValidationFailed, owner.ID)
	}
	if !caller.CanManageProfessorProfile(owner.ID, owner.InstitutionID) {
		return nil, apperrors.ErrPermissionDenied
	}

	if err := s.professors.Create(ctx, profile); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("professorID", profile.ID).Int64("accountID", profile.AccountID).Msg("Professor profile created")
	return profile, nil
}

// Update overwrites the editable fields of a profile
func (s *ProfessorService) Update(ctx context.Context, caller authz.Principal, id int64, req *dto.ProfessorProfileRequest) (*models.ProfessorProfile, error) {
	existing, err := s.professors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageProfessorProfile(existing.AccountID, existing.InstitutionID) {
		return nil, apperrors.ErrPermissionDenied
	}

	profile := req.ToModel()
	profile.ID = id
	profile.AccountID = existing.AccountID
	if err := s.professors.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Delete removes a profile; the professor account itself is kept
func (s *ProfessorService) Delete(ctx context.Context, caller authz.Principal, id int64) error {
	existing, err := s.professors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.CanManageProfessorProfile(existing.AccountID, existing.InstitutionID) {
		return apperrors.ErrPermissionDenied
	}
	return s.professors.Delete(ctx, id)
}
