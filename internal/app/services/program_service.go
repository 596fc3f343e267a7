package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
)

// ProgramService handles programs and their requirements
type ProgramService struct {
	programs programStore
	logger   zerolog.Logger
}

// NewProgramService creates a new ProgramService
func NewProgramService(programs programStore, logger zerolog.Logger) *ProgramService {
	return &ProgramService{
		programs: programs,
		logger:   logger,
	}
}

// cleanRequirements trims every line and rejects blank ones
func cleanRequirements(requirements []string) ([]string, error) {
	cleaned := make([]string, 0, len(requirements))
	for i, r := range requirements {
		r = strings.TrimSpace(r)
		if r == "" {
			return nil, fmt.Errorf("%w: requirement %d is empty", apperrors.ErrValidationFailed, i+1)
		}
		cleaned = append(cleaned, r)
	}
	return cleaned, nil
}

// validateProgram normalises the editable fields and derives the slug
func validateProgram(p *models.Program) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidationFailed)
	}
	p.Slug = slug.Make(p.Title)
	if p.Slug == "" {
		return fmt.Errorf("%w: title must contain letters or digits", apperrors.ErrValidationFailed)
	}
	if p.Deadline != nil && p.StartDate != nil && p.StartDate.Before(*p.Deadline) {
		return fmt.Errorf("%w: start date must not be before the application deadline", apperrors.ErrValidationFailed)
	}

	reqs, err := cleanRequirements(p.Requirements)
	if err != nil {
		return err
	}
	p.Requirements = reqs
	return nil
}

// owningInstitution picks the institution a new program belongs to.
// Staff always act for their own institution; admins must name one.
func owningInstitution(caller authz.Principal, requested int64) (int64, error) {
	if caller.IsAdmin() {
		if requested <= 0 {
			return 0, fmt.Errorf("%w: institutionId is required", apperrors.ErrValidationFailed)
		}
		return requested, nil
	}
	if caller.InstitutionID == nil {
		return 0, fmt.Errorf("%w: account is not linked to an institution", apperrors.ErrPermissionDenied)
	}
	return *caller.InstitutionID, nil
}

// Create stores a new program with its initial requirements
func (s *ProgramService) Create(ctx context.Context, caller authz.Principal, req *dto.ProgramRequest) (*models.Program, error) {
	institutionID, err := owningInstitution(caller, req.InstitutionID)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageProgram(institutionID) {
		return nil, apperrors.ErrPermissionDenied
	}

	program := req.ToModel()
	program.InstitutionID = institutionID
	if err := validateProgram(program); err != nil {
		return nil, err
	}

	if err := s.programs.Create(ctx, program); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("programID", program.ID).Int64("institutionID", institutionID).Str("slug", program.Slug).Msg("Program created")
	return program, nil
}

// Get returns a program with its requirements
func (s *ProgramService) Get(ctx context.Context, id int64) (*models.Program, error) {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reqs, err := s.programs.ListRequirements(ctx, id)
	if err != nil {
		return nil, err
	}
	program.Requirements = reqs
	return program, nil
}

// Update overwrites the editable fields of a program owned by the caller's institution
func (s *ProgramService) Update(ctx context.Context, caller authz.Principal, id int64, req *dto.ProgramRequest) (*models.Program, error) {
	existing, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageProgram(existing.InstitutionID) {
		return nil, apperrors.ErrPermissionDenied
	}

	program := req.ToModel()
	program.ID = id
	program.InstitutionID = existing.InstitutionID
	// Requirements are append-only through AddRequirements
	program.Requirements = nil
	if err := validateProgram(program); err != nil {
		return nil, err
	}

	if err := s.programs.Update(ctx, program); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a program that has no applications
func (s *ProgramService) Delete(ctx context.Context, caller authz.Principal, id int64) error {
	existing, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.CanManageProgram(existing.InstitutionID) {
		return apperrors.ErrPermissionDenied
	}
	if err := s.programs.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("programID", id).Int64("deletedBy", caller.AccountID).Msg("Program deleted")
	return nil
}

// List returns one page of programs matching the filter and the total count
func (s *ProgramService) List(ctx context.Context, filter models.ProgramFilter) ([]*models.Program, int64, error) {
	filter.Discipline = strings.TrimSpace(filter.Discipline)
	filter.Degree = strings.TrimSpace(filter.Degree)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.programs.List(ctx, filter)
}

// AddRequirements appends requirements atomically and returns the full list
func (s *ProgramService) AddRequirements(ctx context.Context, caller authz.Principal, programID int64, requirements []string) ([]string, error) {
	if len(requirements) == 0 {
		return nil, fmt.Errorf("%w: at least one requirement is needed", apperrors.ErrValidationFailed)
	}
	cleaned, err := cleanRequirements(requirements)
	if err != nil {
		return nil, err
	}

	program, err := s.programs.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageProgram(program.InstitutionID) {
		return nil, apperrors.ErrPermissionDenied
	}

	if err := s.programs.AddRequirements(ctx, programID, cleaned); err != nil {
		return nil, err
	}
	return s.programs.ListRequirements(ctx, programID)
}

// Requirements returns the requirements of a program in insertion order
func (s *ProgramService) Requirements(ctx context.Context, programID int64) ([]string, error) {
	reqs, err := s.programs.ListRequirements(ctx, programID)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		// Distinguish "no requirements" from "no such program"
		if _, err := s.programs.GetTitle(ctx, programID); err != nil {
			return nil, err
		}
	}
	return reqs, nil
}

// Title resolves a program ID to its title
func (s *ProgramService) Title(ctx context.Context, programID int64) (string, error) {
	return s.programs.GetTitle(ctx, programID)
}
