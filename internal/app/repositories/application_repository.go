package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/dberrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
)

const applicationColumns = `ap.id, ap.program_id, p.title, p.institution_id, ap.student_id, ap.student_name,
	COALESCE(ap.statement_of_purpose, ''), ap.status, ap.feedback, ap.revision, ap.created_at, ap.updated_at`

const applicationFrom = `applications ap JOIN programs p ON p.id = ap.program_id`

// ApplicationRepository handles application and comment database operations
type ApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	a := &models.Application{}
	err := row.Scan(&a.ID, &a.ProgramID, &a.ProgramTitle, &a.InstitutionID, &a.StudentID, &a.StudentName,
		&a.StatementOfPurpose, &a.Status, &a.Feedback, &a.Revision, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create stores a new application. The status is always pending.
func (r *ApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	a.Status = models.StatusPending
	err := r.db.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO applications (program_id, student_id, student_name, statement_of_purpose, status)
			VALUES ($1, $2, $3, NULLIF($4, ''), 'pending')
			RETURNING id, program_id, revision, created_at, updated_at
		)
		SELECT ins.id, p.title, p.institution_id, ins.revision, ins.created_at, ins.updated_at
		FROM ins JOIN programs p ON p.id = ins.program_id`,
		a.ProgramID, a.StudentID, a.StudentName, a.StatementOfPurpose,
	).Scan(&a.ID, &a.ProgramTitle, &a.InstitutionID, &a.Revision, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "applications_program_student_key"):
			return apperrors.ErrAlreadyApplied
		case dberrors.IsForeignKeyViolation(err, "applications_program_id_fkey"):
			return apperrors.ErrProgramNotFound
		case dberrors.IsForeignKeyViolation(err, "applications_student_id_fkey"):
			return apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("programID", a.ProgramID).Int64("studentID", a.StudentID).Msg("Error inserting application")
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

// GetByID retrieves an application with its program title and institution
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	a, err := scanApplication(r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM `+applicationFrom+` WHERE ap.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error retrieving application")
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}
	return a, nil
}

// List returns applications matching the filter, newest first
func (r *ApplicationRepository) List(ctx context.Context, f models.ApplicationFilter) ([]*models.Application, error) {
	q := r.sb.Select(applicationColumns).From(applicationFrom).OrderBy("ap.created_at DESC", "ap.id DESC")
	if f.StudentID != nil {
		q = q.Where(squirrel.Eq{"ap.student_id": *f.StudentID})
	}
	if f.InstitutionID != nil {
		q = q.Where(squirrel.Eq{"p.institution_id": *f.InstitutionID})
	}
	if f.ProgramID != nil {
		q = q.Where(squirrel.Eq{"ap.program_id": *f.ProgramID})
	}
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"ap.status": string(*f.Status)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list applications SQL")
		return nil, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing applications")
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	apps := []*models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning application row")
			return nil, fmt.Errorf("error scanning application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// UpdateStatus applies a status change if the row is still at revision.
// A nil feedback keeps the stored feedback.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, change models.StatusChange, revision int) (*models.Application, error) {
	a, err := scanApplication(r.db.QueryRow(ctx, `
		WITH upd AS (
			UPDATE applications SET
				status = $2::text,
				feedback = COALESCE($3::text, feedback),
				revision = revision + 1,
				updated_at = NOW()
			WHERE id = $1 AND revision = $4
			RETURNING *
		)
		SELECT `+applicationColumns+` FROM upd ap JOIN programs p ON p.id = ap.program_id`,
		change.ApplicationID, string(change.Status), change.Feedback, revision))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRevisionMismatch
		}
		logger.Error().Err(err).Int64("applicationID", change.ApplicationID).Msg("Error updating application status")
		return nil, fmt.Errorf("error updating application status: %w", err)
	}
	return a, nil
}

// AddComment appends a comment and returns it with its server timestamp
func (r *ApplicationRepository) AddComment(ctx context.Context, c *models.Comment) error {
	err := r.db.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO application_comments (application_id, author_id, body)
			VALUES ($1, $2, $3)
			RETURNING id, author_id, created_at
		)
		SELECT ins.id, a.name, ins.created_at FROM ins JOIN accounts a ON a.id = ins.author_id`,
		c.ApplicationID, c.AuthorID, c.Body,
	).Scan(&c.ID, &c.AuthorName, &c.CreatedAt)
	if err != nil {
		switch {
		case dberrors.IsForeignKeyViolation(err, "application_comments_application_id_fkey"):
			return apperrors.ErrApplicationNotFound
		case dberrors.IsForeignKeyViolation(err, "application_comments_author_id_fkey"):
			return apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Int64("applicationID", c.ApplicationID).Msg("Error inserting comment")
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// ListComments returns the comments of an application oldest first
func (r *ApplicationRepository) ListComments(ctx context.Context, applicationID int64) ([]*models.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.application_id, c.author_id, a.name, c.body, c.created_at
		FROM application_comments c JOIN accounts a ON a.id = c.author_id
		WHERE c.application_id = $1
		ORDER BY c.created_at, c.id`, applicationID)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error listing comments")
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.ApplicationID, &c.AuthorID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
