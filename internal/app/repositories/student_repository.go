package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/db"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/dberrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
)

const studentProfileSelect = `
	SELECT s.id, s.account_id, a.name, a.email, COALESCE(s.phone, ''), COALESCE(s.country, ''),
		COALESCE(s.city, ''), s.date_of_birth, COALESCE(s.bio, ''), s.created_at, s.updated_at
	FROM student_profiles s JOIN accounts a ON a.id = s.account_id`

// StudentRepository handles student profiles, education and saved programs
type StudentRepository struct {
	db *db.PostgresDB
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.PostgresDB) *StudentRepository {
	return &StudentRepository{db: database}
}

func scanStudentProfile(row pgx.Row) (*models.StudentProfile, error) {
	s := &models.StudentProfile{}
	err := row.Scan(&s.ID, &s.AccountID, &s.Name, &s.Email, &s.Phone, &s.Country, &s.City,
		&s.DateOfBirth, &s.Bio, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *StudentRepository) getProfile(ctx context.Context, where string, arg int64) (*models.StudentProfile, error) {
	s, err := scanStudentProfile(r.db.Pool.QueryRow(ctx, studentProfileSelect+` WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("id", arg).Msg("Error retrieving student profile")
		return nil, fmt.Errorf("error retrieving student profile: %w", err)
	}
	return s, nil
}

// GetByAccountID retrieves the profile of a student account
func (r *StudentRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.StudentProfile, error) {
	return r.getProfile(ctx, "s.account_id = $1", accountID)
}

// GetByID retrieves a profile by its own ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	return r.getProfile(ctx, "s.id = $1", id)
}

// List returns one page of student profiles and the total count
func (r *StudentRepository) List(ctx context.Context, offset uint64, limit int) ([]*models.StudentProfile, int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM student_profiles`).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting students")
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, studentProfileSelect+` ORDER BY s.id LIMIT $1 OFFSET $2`, limit, int64(offset))
	if err != nil {
		logger.Error().Err(err).Msg("Error listing students")
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := []*models.StudentProfile{}
	for rows.Next() {
		s, err := scanStudentProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// UpdateProfile overwrites the editable profile fields and the account name
func (r *StudentRepository) UpdateProfile(ctx context.Context, s *models.StudentProfile) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			UPDATE student_profiles SET phone = NULLIF($2, ''), country = NULLIF($3, ''), city = NULLIF($4, ''),
				date_of_birth = $5, bio = NULLIF($6, ''), updated_at = NOW()
			WHERE account_id = $1`,
			s.AccountID, s.Phone, s.Country, s.City, s.DateOfBirth, s.Bio)
		if err != nil {
			logger.Error().Err(err).Int64("accountID", s.AccountID).Msg("Error updating student profile")
			return fmt.Errorf("error updating student profile: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrStudentNotFound
		}

		if s.Name != "" {
			if _, err := tx.Exec(ctx, `UPDATE accounts SET name = $2, updated_at = NOW() WHERE id = $1`, s.AccountID, s.Name); err != nil {
				logger.Error().Err(err).Int64("accountID", s.AccountID).Msg("Error updating account name")
				return fmt.Errorf("error updating account name: %w", err)
			}
		}
		return nil
	})
}

// AddEducation appends an education record
func (r *StudentRepository) AddEducation(ctx context.Context, e *models.Education) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO student_education (student_id, institution, degree, field_of_study, start_date, end_date, gpa)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		RETURNING id, created_at`,
		e.StudentID, e.Institution, e.Degree, e.FieldOfStudy, e.StartDate, e.EndDate, e.GPA,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, "") {
			return apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", e.StudentID).Msg("Error inserting education")
		return fmt.Errorf("error creating education: %w", err)
	}
	return nil
}

// ListEducation returns education records in insertion order
func (r *StudentRepository) ListEducation(ctx context.Context, studentID int64) ([]*models.Education, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, student_id, institution, degree, COALESCE(field_of_study, ''), start_date, end_date, gpa, created_at
		FROM student_education WHERE student_id = $1 ORDER BY id`, studentID)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error listing education")
		return nil, fmt.Errorf("error listing education: %w", err)
	}
	defer rows.Close()

	records := []*models.Education{}
	for rows.Next() {
		e := &models.Education{}
		if err := rows.Scan(&e.ID, &e.StudentID, &e.Institution, &e.Degree, &e.FieldOfStudy,
			&e.StartDate, &e.EndDate, &e.GPA, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning education: %w", err)
		}
		records = append(records, e)
	}
	return records, rows.Err()
}

// SaveProgram bookmarks a program; saving twice is a no-op
func (r *StudentRepository) SaveProgram(ctx context.Context, studentID, programID int64) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO saved_programs (student_id, program_id) VALUES ($1, $2)
		ON CONFLICT (student_id, program_id) DO NOTHING`, studentID, programID)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, "saved_programs_program_id_fkey") {
			return apperrors.ErrProgramNotFound
		}
		if dberrors.IsForeignKeyViolation(err, "") {
			return apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", studentID).Int64("programID", programID).Msg("Error saving program")
		return fmt.Errorf("error saving program: %w", err)
	}
	return nil
}

// RemoveSavedProgram deletes a bookmark; removing a missing one is a no-op
func (r *StudentRepository) RemoveSavedProgram(ctx context.Context, studentID, programID int64) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM saved_programs WHERE student_id = $1 AND program_id = $2`, studentID, programID); err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Int64("programID", programID).Msg("Error removing saved program")
		return fmt.Errorf("error removing saved program: %w", err)
	}
	return nil
}

// ListSavedPrograms returns bookmarks with their program summaries, newest first
func (r *StudentRepository) ListSavedPrograms(ctx context.Context, studentID int64) ([]*models.SavedProgram, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT sp.student_id, sp.program_id, sp.saved_at, `+programColumns+`
		FROM saved_programs sp
		JOIN programs p ON p.id = sp.program_id
		LEFT JOIN institutions i ON i.id = p.institution_id
		WHERE sp.student_id = $1
		ORDER BY sp.saved_at DESC, sp.program_id`, studentID)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error listing saved programs")
		return nil, fmt.Errorf("error listing saved programs: %w", err)
	}
	defer rows.Close()

	saved := []*models.SavedProgram{}
	for rows.Next() {
		sp := &models.SavedProgram{Program: &models.Program{}}
		p := sp.Program
		if err := rows.Scan(&sp.StudentID, &sp.ProgramID, &sp.SavedAt,
			&p.ID, &p.InstitutionID, &p.InstitutionName, &p.Slug, &p.Title, &p.Description,
			&p.Degree, &p.Discipline, &p.Duration, &p.TuitionFee, &p.ApplicationFee,
			&p.Deadline, &p.StartDate, &p.Department, &p.ScholarshipsAvailable, &p.Ranking,
			&p.ImageURL, &p.Location, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning saved program: %w", err)
		}
		saved = append(saved, sp)
	}
	return saved, rows.Err()
}
