package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/db"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/dberrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
)

const programColumns = `p.id, p.institution_id, COALESCE(i.name, ''), p.slug, p.title, COALESCE(p.description, ''),
	COALESCE(p.degree, ''), COALESCE(p.discipline, ''), COALESCE(p.duration, ''), p.tuition_fee, p.application_fee,
	p.deadline, p.start_date, COALESCE(p.department, ''), p.scholarships_available, p.ranking,
	COALESCE(p.image_url, ''), COALESCE(p.location, ''), p.created_at, p.updated_at`

// ProgramRepository handles program and requirement database operations
type ProgramRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(database *db.PostgresDB) *ProgramRepository {
	return &ProgramRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanProgram(row pgx.Row) (*models.Program, error) {
	p := &models.Program{}
	err := row.Scan(&p.ID, &p.InstitutionID, &p.InstitutionName, &p.Slug, &p.Title, &p.Description,
		&p.Degree, &p.Discipline, &p.Duration, &p.TuitionFee, &p.ApplicationFee,
		&p.Deadline, &p.StartDate, &p.Department, &p.ScholarshipsAvailable, &p.Ranking,
		&p.ImageURL, &p.Location, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func mapProgramWriteError(err error) error {
	if dberrors.IsForeignKeyViolation(err, "programs_institution_id_fkey") {
		return apperrors.ErrInstitutionNotFound
	}
	return nil
}

// insertRequirements queues one insert per requirement and checks every result
func insertRequirements(ctx context.Context, q db.Querier, programID int64, requirements []string) error {
	if len(requirements) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, req := range requirements {
		batch.Queue(`INSERT INTO program_requirements (program_id, requirement) VALUES ($1, $2)`, programID, req)
	}

	results := q.SendBatch(ctx, batch)
	for range requirements {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			if dberrors.IsForeignKeyViolation(err, "program_requirements_program_id_fkey") {
				return apperrors.ErrProgramNotFound
			}
			logger.Error().Err(err).Int64("programID", programID).Msg("Error inserting program requirement")
			return fmt.Errorf("error inserting requirement: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("error closing requirement batch: %w", err)
	}
	return nil
}

// Create inserts a program and its initial requirements in one transaction
func (r *ProgramRepository) Create(ctx context.Context, p *models.Program) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO programs (institution_id, slug, title, description, degree, discipline, duration,
				tuition_fee, application_fee, deadline, start_date, department, scholarships_available,
				ranking, image_url, location)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
				$8, $9, $10, $11, NULLIF($12, ''), $13, $14, NULLIF($15, ''), NULLIF($16, ''))
			RETURNING id, created_at, updated_at`,
			p.InstitutionID, p.Slug, p.Title, p.Description, p.Degree, p.Discipline, p.Duration,
			p.TuitionFee, p.ApplicationFee, p.Deadline, p.StartDate, p.Department, p.ScholarshipsAvailable,
			p.Ranking, p.ImageURL, p.Location,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			if mapped := mapProgramWriteError(err); mapped != nil {
				return mapped
			}
			logger.Error().Err(err).Int64("institutionID", p.InstitutionID).Msg("Error inserting program")
			return fmt.Errorf("error creating program: %w", err)
		}

		return insertRequirements(ctx, tx, p.ID, p.Requirements)
	})
}

// GetByID retrieves a program by ID without its requirements
func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*models.Program, error) {
	p, err := scanProgram(r.db.Pool.QueryRow(ctx, `
		SELECT `+programColumns+`
		FROM programs p LEFT JOIN institutions i ON i.id = p.institution_id
		WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProgramNotFound
		}
		logger.Error().Err(err).Int64("programID", id).Msg("Error retrieving program")
		return nil, fmt.Errorf("error retrieving program: %w", err)
	}
	return p, nil
}

// GetTitle returns only the title of a program
func (r *ProgramRepository) GetTitle(ctx context.Context, id int64) (string, error) {
	var title string
	if err := r.db.Pool.QueryRow(ctx, `SELECT title FROM programs WHERE id = $1`, id).Scan(&title); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrProgramNotFound
		}
		logger.Error().Err(err).Int64("programID", id).Msg("Error retrieving program title")
		return "", fmt.Errorf("error retrieving program title: %w", err)
	}
	return title, nil
}

func (r *ProgramRepository) applyFilter(q squirrel.SelectBuilder, f models.ProgramFilter) squirrel.SelectBuilder {
	if f.InstitutionID != nil {
		q = q.Where(squirrel.Eq{"p.institution_id": *f.InstitutionID})
	}
	if f.Discipline != "" {
		q = q.Where("LOWER(p.discipline) = LOWER(?)", f.Discipline)
	}
	if f.Degree != "" {
		q = q.Where("LOWER(p.degree) = LOWER(?)", f.Degree)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"p.title": pattern},
			squirrel.ILike{"p.description": pattern},
			squirrel.ILike{"i.name": pattern},
		})
	}
	return q
}

// List returns programs matching the filter together with the unpaged total
func (r *ProgramRepository) List(ctx context.Context, f models.ProgramFilter) ([]*models.Program, int64, error) {
	countSQL, countArgs, err := r.applyFilter(
		r.sb.Select("COUNT(*)").From("programs p").LeftJoin("institutions i ON i.id = p.institution_id"), f,
	).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count programs SQL")
		return nil, 0, fmt.Errorf("failed to build count programs query: %w", err)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting programs")
		return nil, 0, fmt.Errorf("error counting programs: %w", err)
	}

	q := r.applyFilter(
		r.sb.Select(programColumns).From("programs p").LeftJoin("institutions i ON i.id = p.institution_id"), f,
	).OrderBy("p.created_at DESC", "p.id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(f.Offset)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list programs SQL")
		return nil, 0, fmt.Errorf("failed to build list programs query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing programs")
		return nil, 0, fmt.Errorf("error listing programs: %w", err)
	}
	defer rows.Close()

	programs := []*models.Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning program row")
			return nil, 0, fmt.Errorf("error scanning program: %w", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating programs: %w", err)
	}
	return programs, total, nil
}

// Update overwrites the editable fields of a program
func (r *ProgramRepository) Update(ctx context.Context, p *models.Program) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE programs SET
			slug = $2, title = $3, description = NULLIF($4, ''), degree = NULLIF($5, ''),
			discipline = NULLIF($6, ''), duration = NULLIF($7, ''), tuition_fee = $8,
			application_fee = $9, deadline = $10, start_date = $11, department = NULLIF($12, ''),
			scholarships_available = $13, ranking = $14, image_url = NULLIF($15, ''),
			location = NULLIF($16, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING institution_id, created_at, updated_at`,
		p.ID, p.Slug, p.Title, p.Description, p.Degree, p.Discipline, p.Duration,
		p.TuitionFee, p.ApplicationFee, p.Deadline, p.StartDate, p.Department,
		p.ScholarshipsAvailable, p.Ranking, p.ImageURL, p.Location,
	).Scan(&p.InstitutionID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrProgramNotFound
		}
		if mapped := mapProgramWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("programID", p.ID).Msg("Error updating program")
		return fmt.Errorf("error updating program: %w", err)
	}
	return nil
}

// Delete removes a program that no application references
func (r *ProgramRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, "applications_program_id_fkey") {
			return apperrors.ErrProgramHasApplications
		}
		logger.Error().Err(err).Int64("programID", id).Msg("Error deleting program")
		return fmt.Errorf("error deleting program: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProgramNotFound
	}
	return nil
}

// AddRequirements appends requirements to a program atomically
func (r *ProgramRepository) AddRequirements(ctx context.Context, programID int64, requirements []string) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, `SELECT id FROM programs WHERE id = $1 FOR SHARE`, programID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrProgramNotFound
			}
			logger.Error().Err(err).Int64("programID", programID).Msg("Error locking program")
			return fmt.Errorf("error checking program: %w", err)
		}
		return insertRequirements(ctx, tx, programID, requirements)
	})
}

// ListRequirements returns the requirements of a program in insertion order
func (r *ProgramRepository) ListRequirements(ctx context.Context, programID int64) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT requirement FROM program_requirements WHERE program_id = $1 ORDER BY id`, programID)
	if err != nil {
		logger.Error().Err(err).Int64("programID", programID).Msg("Error listing requirements")
		return nil, fmt.Errorf("error listing requirements: %w", err)
	}
	defer rows.Close()

	requirements := []string{}
	for rows.Next() {
		var req string
		if err := rows.Scan(&req); err != nil {
			return nil, fmt.Errorf("error scanning requirement: %w", err)
		}
		requirements = append(requirements, req)
	}
	return requirements, rows.Err()
}
