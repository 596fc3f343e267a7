package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
)

// ClientStorageRepository persists per-account JSON values
type ClientStorageRepository struct {
	db *pgxpool.Pool
}

// NewClientStorageRepository creates a new ClientStorageRepository
func NewClientStorageRepository(db *pgxpool.Pool) *ClientStorageRepository {
	return &ClientStorageRepository{db: db}
}

// Get returns the value stored for an account under key
func (r *ClientStorageRepository) Get(ctx context.Context, accountID int64, key string) (*models.StorageEntry, error) {
	e := &models.StorageEntry{AccountID: accountID, Key: key}
	err := r.db.QueryRow(ctx, `
		SELECT value, updated_at FROM client_storage WHERE account_id = $1 AND storage_key = $2`,
		accountID, key).Scan(&e.Value, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStorageKeyNotFound
		}
		logger.Error().Err(err).Int64("accountID", accountID).Str("key", key).Msg("Error reading client storage")
		return nil, fmt.Errorf("error reading client storage: %w", err)
	}
	return e, nil
}

// Put upserts the value for an account and key
func (r *ClientStorageRepository) Put(ctx context.Context, e *models.StorageEntry) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO client_storage (account_id, storage_key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_id, storage_key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING updated_at`,
		e.AccountID, e.Key, e.Value).Scan(&e.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("accountID", e.AccountID).Str("key", e.Key).Msg("Error writing client storage")
		return fmt.Errorf("error writing client storage: %w", err)
	}
	return nil
}
