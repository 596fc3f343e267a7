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
)

// ApplicationService handles the application lifecycle and reviewer comments
type ApplicationService struct {
	applications applicationStore
	accounts     accountStore
	notifier     Notifier
	metrics      *ApplicationMetrics
	logger       zerolog.Logger
}

// NewApplicationService creates a new ApplicationService; notifier and metrics may be nil
func NewApplicationService(
	applications applicationStore,
	accounts accountStore,
	notifier Notifier,
	metrics *ApplicationMetrics,
	logger zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		accounts:     accounts,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
	}
}

func (s *ApplicationService) notify(ctx context.Context, accountID int64, kind models.NotificationKind, message string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, accountID, kind, message, payload)
	}
}

// visible loads an application and hides it from callers who may not see it
func (s *ApplicationService) visible(ctx context.Context, caller authz.Principal, id int64) (*models.Application, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: application ID must be positive", apperrors.ErrValidationFailed)
	}
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanViewApplication(app) {
		return nil, apperrors.ErrApplicationNotFound
	}
	return app, nil
}

// Submit creates a pending application for the calling student.
// The student name is taken from the account, never from the request.
func (s *ApplicationService) Submit(ctx context.Context, caller authz.Principal, req *dto.SubmitApplicationRequest) (*models.Application, error) {
	if caller.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: only students can submit applications", apperrors.ErrPermissionDenied)
	}
	if req.ProgramID <= 0 {
		return nil, fmt.Errorf("%w: program ID must be positive", apperrors.ErrValidationFailed)
	}

	student, err := s.accounts.GetByID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}

	app := &models.Application{
		ProgramID:          req.ProgramID,
		StudentID:          student.ID,
		StudentName:        student.Name,
		StatementOfPurpose: strings.TrimSpace(req.StatementOfPurpose),
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Submitted.Inc()
	}
	s.logger.Info().Int64("applicationID", app.ID).Int64("programID", app.ProgramID).Int64("studentID", app.StudentID).Msg("Application submitted")

	institutionID := app.InstitutionID
	owners, err := s.accounts.List(ctx, repositories.AccountFilter{
		Roles:         []models.Role{models.RoleInstitution},
		InstitutionID: &institutionID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("institutionID", institutionID).Msg("Could not resolve institution accounts to notify")
	}
	for _, owner := range owners {
		s.notify(ctx, owner.ID, models.NotifyApplicationNew,
			fmt.Sprintf("%s applied to %s", app.StudentName, app.ProgramTitle),
			map[string]int64{"applicationId": app.ID, "programId": app.ProgramID})
	}

	return app, nil
}

// UpdateStatus moves an application to a new review status.
// Re-applying the stored status without new feedback changes nothing.
func (s *ApplicationService) UpdateStatus(ctx context.Context, caller authz.Principal, req *dto.UpdateStatusRequest) (*models.Application, error) {
	status := models.ApplicationStatus(req.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidationFailed, req.Status)
	}

	app, err := s.visible(ctx, caller, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !caller.CanReviewApplication(app) {
		return nil, apperrors.ErrPermissionDenied
	}
	if !models.CanTransition(app.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, app.Status, status)
	}
	if req.Revision != nil && *req.Revision != app.Revision {
		return nil, apperrors.ErrRevisionMismatch
	}

	feedback := req.Feedback
	if feedback != nil {
		trimmed := strings.TrimSpace(*feedback)
		feedback = &trimmed
	}
	sameFeedback := feedback == nil || (app.Feedback != nil && *app.Feedback == *feedback)
	if app.Status == status && sameFeedback {
		return app, nil
	}

	updated, err := s.applications.UpdateStatus(ctx, models.StatusChange{
		ApplicationID:    app.ID,
		Status:           status,
		Feedback:         feedback,
		ExpectedRevision: req.Revision,
	}, app.Revision)
	if err != nil {
		return nil, err
	}

	if app.Status != status {
		if s.metrics != nil {
			s.metrics.Transitions.WithLabelValues(string(status)).Inc()
		}
		s.logger.Info().
			Int64("applicationID", app.ID).
			Int64("reviewerID", caller.AccountID).
			Str("from", string(app.Status)).
			Str("to", string(status)).
			Msg("Application status changed")
	}

	s.notify(ctx, updated.StudentID, models.NotifyApplicationStatus,
		fmt.Sprintf("Your application to %s is now %s", updated.ProgramTitle, strings.ReplaceAll(string(updated.Status), "_", " ")),
		map[string]interface{}{"applicationId": updated.ID, "status": updated.Status, "revision": updated.Revision})

	return updated, nil
}

// AddComment appends a reviewer comment to an application
func (s *ApplicationService) AddComment(ctx context.Context, caller authz.Principal, req *dto.AddCommentRequest) (*models.Comment, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", apperrors.ErrValidationFailed)
	}

	app, err := s.visible(ctx, caller, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !caller.CanReviewApplication(app) {
		return nil, apperrors.ErrPermissionDenied
	}

	comment := &models.Comment{
		ApplicationID: app.ID,
		AuthorID:      caller.AccountID,
		Body:          body,
	}
	if err := s.applications.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	if app.StudentID != caller.AccountID {
		s.notify(ctx, app.StudentID, models.NotifyApplicationComment,
			fmt.Sprintf("New comment on your application to %s", app.ProgramTitle),
			map[string]int64{"applicationId": app.ID, "commentId": comment.ID})
	}
	return comment, nil
}

// ListComments returns the comments of an application visible to the caller, oldest first
func (s *ApplicationService) ListComments(ctx context.Context, caller authz.Principal, applicationID int64) ([]*models.Comment, error) {
	if _, err := s.visible(ctx, caller, applicationID); err != nil {
		return nil, err
	}
	return s.applications.ListComments(ctx, applicationID)
}

// List returns the applications the caller may see, narrowed by filter
func (s *ApplicationService) List(ctx context.Context, caller authz.Principal, filter models.ApplicationFilter) ([]*models.Application, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidationFailed, *filter.Status)
	}
	scoped, err := caller.ApplicationScope(filter)
	if err != nil {
		return nil, err
	}
	return s.applications.List(ctx, scoped)
}

// Get returns one application visible to the caller
func (s *ApplicationService) Get(ctx context.Context, caller authz.Principal, id int64) (*models.Application, error) {
	return s.visible(ctx, caller, id)
}

// Pending returns pending applications of the caller's institution
func (s *ApplicationService) Pending(ctx context.Context, caller authz.Principal) ([]*models.Application, error) {
	if !caller.IsStaff() && !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}
	pending := models.StatusPending
	return s.List(ctx, caller, models.ApplicationFilter{Status: &pending})
}
