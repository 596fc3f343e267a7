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
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
)

const institutionColumns = `i.id, i.name, COALESCE(i.website, ''), COALESCE(i.location, ''), COALESCE(i.country, ''),
	COALESCE(i.description, ''), COALESCE(i.document_url, ''), i.created_at`

// InstitutionRepository handles institution database operations
type InstitutionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewInstitutionRepository creates a new InstitutionRepository
func NewInstitutionRepository(db *pgxpool.Pool) *InstitutionRepository {
	return &InstitutionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID retrieves an institution by ID
func (r *InstitutionRepository) GetByID(ctx context.Context, id int64) (*models.Institution, error) {
	inst := &models.Institution{}
	err := r.db.QueryRow(ctx, `SELECT `+institutionColumns+` FROM institutions i WHERE i.id = $1`, id).
		Scan(&inst.ID, &inst.Name, &inst.Website, &inst.Location, &inst.Country, &inst.Description, &inst.DocumentURL, &inst.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInstitutionNotFound
		}
		logger.Error().Err(err).Int64("institutionID", id).Msg("Error retrieving institution")
		return nil, fmt.Errorf("error retrieving institution: %w", err)
	}
	return inst, nil
}

// GetName returns the name of an institution
func (r *InstitutionRepository) GetName(ctx context.Context, id int64) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `SELECT name FROM institutions WHERE id = $1`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrInstitutionNotFound
		}
		logger.Error().Err(err).Int64("institutionID", id).Msg("Error retrieving institution name")
		return "", fmt.Errorf("error retrieving institution name: %w", err)
	}
	return name, nil
}

// ListWithAccounts returns institutions joined with their managing account,
// optionally filtered by the account's approval status
func (r *InstitutionRepository) ListWithAccounts(ctx context.Context, status *models.ApprovalStatus) ([]*models.InstitutionAccount, error) {
	q := r.sb.Select(institutionColumns + ", " + accountColumns).
		From("institutions i").
		Join("accounts a ON a.institution_id = i.id AND a.role = 'institution'").
		OrderBy("a.created_at DESC", "i.id DESC")
	if status != nil {
		q = q.Where(squirrel.Eq{"a.approval_status": string(*status)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list institutions SQL")
		return nil, fmt.Errorf("failed to build list institutions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing institutions")
		return nil, fmt.Errorf("error listing institutions: %w", err)
	}
	defer rows.Close()

	result := []*models.InstitutionAccount{}
	for rows.Next() {
		ia := &models.InstitutionAccount{}
		i, a := &ia.Institution, &ia.Account
		if err := rows.Scan(&i.ID, &i.Name, &i.Website, &i.Location, &i.Country, &i.Description, &i.DocumentURL, &i.CreatedAt,
			&a.ID, &a.Name, &a.Email, &a.Password, &a.Role, &a.ApprovalStatus, &a.RejectionReason,
			&a.ApprovedAt, &a.RejectedAt, &a.InstitutionID, &a.Revision, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			logger.Error().Err(err).Msg("Error scanning institution row")
			return nil, fmt.Errorf("error scanning institution: %w", err)
		}
		result = append(result, ia)
	}
	return result, rows.Err()
}
