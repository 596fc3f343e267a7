package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/helpers"
)

// StudentService handles student profiles, education records and saved programs
type StudentService struct {
	students studentStore
	logger   zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(students studentStore, logger zerolog.Logger) *StudentService {
	return &StudentService{
		students: students,
		logger:   logger,
	}
}

func requireStudent(caller authz.Principal) error {
	if caller.Role != models.RoleStudent {
		return fmt.Errorf("%w: only students can do this", apperrors.ErrPermissionDenied)
	}
	return nil
}

// GetByAccount returns the profile of a student account
func (s *StudentService) GetByAccount(ctx context.Context, caller authz.Principal, accountID int64) (*models.StudentProfile, error) {
	if !caller.CanViewStudentRecords(accountID) {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.students.GetByAccountID(ctx, accountID)
}

// GetByProfileID returns a profile by its own ID
func (s *StudentService) GetByProfileID(ctx context.Context, caller authz.Principal, id int64) (*models.StudentProfile, error) {
	profile, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanViewStudentRecords(profile.AccountID) {
		return nil, apperrors.ErrPermissionDenied
	}
	return profile, nil
}

// List returns one page of student profiles
func (s *StudentService) List(ctx context.Context, page, size int) ([]*models.StudentProfile, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.students.List(ctx, offset, limit)
}

// UpdateProfile overwrites the non-empty fields of req on the student's profile
func (s *StudentService) UpdateProfile(ctx context.Context, caller authz.Principal, accountID int64, req *dto.UpdateStudentProfileRequest) (*models.StudentProfile, error) {
	if caller.AccountID != accountID && !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	profile, err := s.students.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// The account name is only written when it changes
	profile.Name = ""
	if name := strings.TrimSpace(req.Name); name != "" {
		profile.Name = name
	}
	if req.Phone != "" {
		profile.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Country != "" {
		profile.Country = strings.TrimSpace(req.Country)
	}
	if req.City != "" {
		profile.City = strings.TrimSpace(req.City)
	}
	if req.DateOfBirth != nil {
		profile.DateOfBirth = req.DateOfBirth
	}
	if req.Bio != "" {
		profile.Bio = req.Bio
	}

	if err := s.students.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.students.GetByAccountID(ctx, accountID)
}

// AddEducation appends an education record for the calling student
func (s *StudentService) AddEducation(ctx context.Context, caller authz.Principal, req *dto.AddEducationRequest) (*models.Education, error) {
	if err := requireStudent(caller); err != nil {
		return nil, err
	}

	record := req.ToModel(caller.AccountID)
	record.Institution = strings.TrimSpace(record.Institution)
	record.Degree = strings.TrimSpace(record.Degree)
	if record.Institution == "" || record.Degree == "" {
		return nil, fmt.Errorf("%w: institution and degree are required", apperrors.ErrValidationFailed)
	}
	if record.StartDate != nil && record.EndDate != nil && record.EndDate.Before(*record.StartDate) {
		return nil, fmt.Errorf("%w: end date must not be before start date", apperrors.ErrValidationFailed)
	}

	if err := s.students.AddEducation(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListEducation returns the education records of a student in insertion order
func (s *StudentService) ListEducation(ctx context.Context, caller authz.Principal, studentID int64) ([]*models.Education, error) {
	if !caller.CanViewStudentRecords(studentID) {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.students.ListEducation(ctx, studentID)
}

// SaveProgram bookmarks a program for the calling student; saving twice is a no-op
func (s *StudentService) SaveProgram(ctx context.Context, caller authz.Principal, programID int64) error {
	if err := requireStudent(caller); err != nil {
		return err
	}
	if programID <= 0 {
		return fmt.Errorf("%w: program ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.students.SaveProgram(ctx, caller.AccountID, programID)
}

// RemoveSavedProgram deletes a bookmark of the calling student
func (s *StudentService) RemoveSavedProgram(ctx context.Context, caller authz.Principal, programID int64) error {
	if err := requireStudent(caller); err != nil {
		return err
	}
	return s.students.RemoveSavedProgram(ctx, caller.AccountID, programID)
}

// ListSavedPrograms returns a student's bookmarks; only the student and admins may read them
func (s *StudentService) ListSavedPrograms(ctx context.Context, caller authz.Principal, studentID int64) ([]*models.SavedProgram, error) {
	if caller.AccountID != studentID && !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.students.ListSavedPrograms(ctx, studentID)
}
