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

const professorColumns = `pp.id, pp.account_id, a.name, a.email, a.institution_id, COALESCE(i.name, ''),
	COALESCE(pp.department, ''), COALESCE(pp.bio, ''), COALESCE(pp.image_url, ''), COALESCE(pp.office_hours, ''),
	COALESCE(pp.phone, ''), COALESCE(pp.contact_email, ''), pp.created_at, pp.updated_at`

const professorFrom = `professor_profiles pp
	JOIN accounts a ON a.id = pp.account_id
	LEFT JOIN institutions i ON i.id = a.institution_id`

// ProfessorRepository handles professor profile database operations
type ProfessorRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewProfessorRepository creates a new ProfessorRepository
func NewProfessorRepository(db *pgxpool.Pool) *ProfessorRepository {
	return &ProfessorRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanProfessor(row pgx.Row) (*models.ProfessorProfile, error) {
	p := &models.ProfessorProfile{}
	err := row.Scan(&p.ID, &p.AccountID, &p.Name, &p.Email, &p.InstitutionID, &p.InstitutionName,
		&p.Department, &p.Bio, &p.ImageURL, &p.OfficeHours, &p.Phone, &p.ContactEmail, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create stores a profile for an existing professor account
func (r *ProfessorRepository) Create(ctx context.Context, p *models.ProfessorProfile) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO professor_profiles (account_id, department, bio, image_url, office_hours, phone, contact_email)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
		RETURNING id`,
		p.AccountID, p.Department, p.Bio, p.ImageURL, p.OfficeHours, p.Phone, p.ContactEmail,
	).Scan(&p.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "professor_profiles_account_id_key") {
			return apperrors.ErrProfileExists
		}
		if dberrors.IsForeignKeyViolation(err, "") {
			return apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Int64("accountID", p.AccountID).Msg("Error inserting professor profile")
		return fmt.Errorf("error creating professor profile: %w", err)
	}

	stored, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfessorRepository) GetByID(ctx context.Context, id int64) (*models.ProfessorProfile, error) {
	p, err := scanProfessor(r.db.QueryRow(ctx, `SELECT `+professorColumns+` FROM `+professorFrom+` WHERE pp.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfessorNotFound
		}
		logger.Error().Err(err).Int64("professorID", id).Msg("Error retrieving professor profile")
		return nil, fmt.Errorf("error retrieving professor profile: %w", err)
	}
	return p, nil
}

// List returns profiles, optionally only those of one institution
func (r *ProfessorRepository) List(ctx context.Context, institutionID *int64) ([]*models.ProfessorProfile, error) {
	q := r.sb.Select(professorColumns).From(professorFrom).OrderBy("a.name", "pp.id")
	if institutionID != nil {
		q = q.Where(squirrel.Eq{"a.institution_id": *institutionID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list professors SQL")
		return nil, fmt.Errorf("failed to build list professors query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing professors")
		return nil, fmt.Errorf("error listing professors: %w", err)
	}
	defer rows.Close()

	profiles := []*models.ProfessorProfile{}
	for rows.Next() {
		p, err := scanProfessor(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning professor profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Update overwrites the editable profile fields
func (r *ProfessorRepository) Update(ctx context.Context, p *models.ProfessorProfile) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE professor_profiles SET department = NULLIF($2, ''), bio = NULLIF($3, ''), image_url = NULLIF($4, ''),
			office_hours = NULLIF($5, ''), phone = NULLIF($6, ''), contact_email = NULLIF($7, ''), updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Department, p.Bio, p.ImageURL, p.OfficeHours, p.Phone, p.ContactEmail)
	if err != nil {
		logger.Error().Err(err).Int64("professorID", p.ID).Msg("Error updating professor profile")
		return fmt.Errorf("error updating professor profile: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProfessorNotFound
	}

	stored, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// Delete removes a profile; the account itself is kept
func (r *ProfessorRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM professor_profiles WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("professorID", id).Msg("Error deleting professor profile")
		return fmt.Errorf("error deleting professor profile: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProfessorNotFound
	}
	return nil
}
