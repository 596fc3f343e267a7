package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
)

// NotificationRepository handles notification persistence
type NotificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO notifications (account_id, kind, message, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		n.AccountID, string(n.Kind), n.Message, n.Payload,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("accountID", n.AccountID).Str("kind", string(n.Kind)).Msg("Error inserting notification")
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// ListByAccount returns the newest notifications of an account
func (r *NotificationRepository) ListByAccount(ctx context.Context, accountID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	q := r.sb.Select("id", "account_id", "kind", "message", "payload", "read_at", "created_at").
		From("notifications").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("created_at DESC", "id DESC")
	if unreadOnly {
		q = q.Where(squirrel.Eq{"read_at": nil})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list notifications SQL")
		return nil, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("accountID", accountID).Msg("Error listing notifications")
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Kind, &n.Message, &n.Payload, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead stamps read_at on a notification owned by accountID.
// Marking an already read notification keeps the first timestamp.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, accountID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		logger.Error().Err(err).Int64("notificationID", id).Msg("Error marking notification read")
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}
