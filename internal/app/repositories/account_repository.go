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

const accountColumns = `a.id, a.name, a.email, a.password, a.role, a.approval_status, a.rejection_reason,
	a.approved_at, a.rejected_at, a.institution_id, a.revision, a.last_login_at, a.created_at, a.updated_at`

// AccountFilter narrows account listings. Nil fields mean "any".
type AccountFilter struct {
	Roles         []models.Role
	Status        *models.ApprovalStatus
	InstitutionID *int64
}

// AccountRepository handles account database operations
type AccountRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(database *db.PostgresDB) *AccountRepository {
	return &AccountRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Password, &a.Role, &a.ApprovalStatus, &a.RejectionReason,
		&a.ApprovedAt, &a.RejectedAt, &a.InstitutionID, &a.Revision, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// insertAccount stores acc through q and fills in the generated fields
func insertAccount(ctx context.Context, q db.Querier, acc *models.Account) error {
	acc.Email = strings.ToLower(strings.TrimSpace(acc.Email))
	err := q.QueryRow(ctx, `
		INSERT INTO accounts (name, email, password, role, approval_status, institution_id, approved_at)
		VALUES ($1, $2, $3, $4, $5::text, $6, CASE WHEN $5::text = 'approved' THEN NOW() END)
		RETURNING id, revision, approved_at, created_at, updated_at`,
		acc.Name, acc.Email, acc.Password, acc.Role, acc.ApprovalStatus, acc.InstitutionID,
	).Scan(&acc.ID, &acc.Revision, &acc.ApprovedAt, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "accounts_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsForeignKeyViolation(err, "") {
			return apperrors.ErrInstitutionNotFound
		}
		logger.Error().Err(err).Str("email", acc.Email).Msg("Error inserting account")
		return fmt.Errorf("error creating account: %w", err)
	}
	return nil
}

// Create inserts a standalone account (staff or admin)
func (r *AccountRepository) Create(ctx context.Context, acc *models.Account) error {
	return insertAccount(ctx, r.db.Pool, acc)
}

// CreateStudent inserts a student account and its empty profile in one transaction
func (r *AccountRepository) CreateStudent(ctx context.Context, acc *models.Account, profile *models.StudentProfile) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertAccount(ctx, tx, acc); err != nil {
			return err
		}

		profile.AccountID = acc.ID
		profile.Name = acc.Name
		profile.Email = acc.Email
		err := tx.QueryRow(ctx, `
			INSERT INTO student_profiles (account_id, phone, country, city, date_of_birth, bio)
			VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''))
			RETURNING id, created_at, updated_at`,
			profile.AccountID, profile.Phone, profile.Country, profile.City, profile.DateOfBirth, profile.Bio,
		).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
		if err != nil {
			logger.Error().Err(err).Int64("accountID", acc.ID).Msg("Error inserting student profile")
			return fmt.Errorf("error creating student profile: %w", err)
		}
		return nil
	})
}

// CreateInstitutionAccount inserts an institution and its managing account in one transaction
func (r *AccountRepository) CreateInstitutionAccount(ctx context.Context, inst *models.Institution, acc *models.Account) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO institutions (name, website, location, country, description, document_url)
			VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
			RETURNING id, created_at`,
			inst.Name, inst.Website, inst.Location, inst.Country, inst.Description, inst.DocumentURL,
		).Scan(&inst.ID, &inst.CreatedAt)
		if err != nil {
			logger.Error().Err(err).Str("name", inst.Name).Msg("Error inserting institution")
			return fmt.Errorf("error creating institution: %w", err)
		}

		instID := inst.ID
		acc.InstitutionID = &instID
		return insertAccount(ctx, tx, acc)
	})
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	acc, err := scanAccount(r.db.Pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts a WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Int64("accountID", id).Msg("Error retrieving account by ID")
		return nil, fmt.Errorf("error retrieving account: %w", err)
	}
	return acc, nil
}

// GetByEmail retrieves an account by its (case-insensitive) email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acc, err := scanAccount(r.db.Pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts a WHERE a.email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Str("email", email).Msg("Error retrieving account by email")
		return nil, fmt.Errorf("error retrieving account: %w", err)
	}
	return acc, nil
}

// List returns accounts matching the filter, newest first
func (r *AccountRepository) List(ctx context.Context, filter AccountFilter) ([]*models.Account, error) {
	q := r.sb.Select(accountColumns).From("accounts a").OrderBy("a.created_at DESC", "a.id DESC")
	if len(filter.Roles) > 0 {
		roles := make([]string, len(filter.Roles))
		for i, role := range filter.Roles {
			roles[i] = string(role)
		}
		q = q.Where(squirrel.Eq{"a.role": roles})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"a.approval_status": string(*filter.Status)})
	}
	if filter.InstitutionID != nil {
		q = q.Where(squirrel.Eq{"a.institution_id": *filter.InstitutionID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list accounts SQL")
		return nil, fmt.Errorf("failed to build list accounts query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing accounts")
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning account row")
			return nil, fmt.Errorf("error scanning account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// UpdateApproval moves an account to change.Status if it is still at the
// given revision. A lost race surfaces as ErrRevisionMismatch.
func (r *AccountRepository) UpdateApproval(ctx context.Context, change models.ApprovalChange, revision int) (*models.Account, error) {
	acc, err := scanAccount(r.db.Pool.QueryRow(ctx, `
		UPDATE accounts a SET
			approval_status  = $2::text,
			approved_at      = CASE WHEN $2::text = 'approved' THEN NOW() ELSE a.approved_at END,
			rejected_at      = CASE WHEN $2::text = 'rejected' THEN NOW() ELSE a.rejected_at END,
			rejection_reason = CASE WHEN $2::text = 'rejected' THEN $3::text ELSE NULL END,
			revision         = a.revision + 1,
			updated_at       = NOW()
		WHERE a.id = $1 AND a.revision = $4
		RETURNING `+accountColumns,
		change.AccountID, string(change.Status), change.Reason, revision))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRevisionMismatch
		}
		logger.Error().Err(err).Int64("accountID", change.AccountID).Msg("Error updating approval status")
		return nil, fmt.Errorf("error updating approval status: %w", err)
	}
	return acc, nil
}

// UpdateRole changes the role of the account with the given email
func (r *AccountRepository) UpdateRole(ctx context.Context, email string, role models.Role) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acc, err := scanAccount(r.db.Pool.QueryRow(ctx, `
		UPDATE accounts a SET role = $2, revision = a.revision + 1, updated_at = NOW()
		WHERE a.email = $1
		RETURNING `+accountColumns, email, string(role)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, "accounts_institution_owner_key") {
			return nil, apperrors.ErrInstitutionHasOwner
		}
		logger.Error().Err(err).Str("email", email).Msg("Error updating account role")
		return nil, fmt.Errorf("error updating role: %w", err)
	}
	return acc, nil
}

// UpdateLastLogin stamps the last login time
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Pool.Exec(ctx, `UPDATE accounts SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("accountID", id).Msg("Error updating last login")
		return fmt.Errorf("error updating last login: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// EmailExists reports whether an account uses the email
func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`,
		strings.ToLower(strings.TrimSpace(email))).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Msg("Error checking email existence")
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}
