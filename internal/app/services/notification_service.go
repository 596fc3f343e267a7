package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/websocket"
)

// DefaultNotificationLimit caps a notification listing
const DefaultNotificationLimit = 50

// Notifier delivers a message to one account. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, accountID int64, kind models.NotificationKind, message string, payload interface{})
}

// Pusher sends a live frame to connected clients of an account
type Pusher interface {
	Push(accountID int64, kind string, data interface{})
}

// NotificationService persists notifications and pushes them over websockets
type NotificationService struct {
	repo   notificationStore
	pusher Pusher
	logger zerolog.Logger
}

// NewNotificationService creates a new notification service; pusher may be nil
func NewNotificationService(repo notificationStore, pusher Pusher, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		pusher: pusher,
		logger: logger,
	}
}

// Notify stores a notification for accountID and pushes it to live connections.
// Errors are logged and never returned to the caller's request.
func (s *NotificationService) Notify(ctx context.Context, accountID int64, kind models.NotificationKind, message string, payload interface{}) {
	n := &models.Notification{
		AccountID: accountID,
		Kind:      kind,
		Message:   message,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Dropping unserialisable notification payload")
		} else {
			n.Payload = raw
		}
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).Int64("accountID", accountID).Str("kind", string(kind)).Msg("Failed to store notification")
		return
	}

	if s.pusher != nil {
		s.pusher.Push(accountID, websocket.FrameNotification, n)
	}
}

// List returns the newest notifications of an account
func (s *NotificationService) List(ctx context.Context, accountID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if accountID <= 0 {
		return nil, fmt.Errorf("%w: account ID must be positive", apperrors.ErrValidationFailed)
	}
	if limit <= 0 || limit > DefaultNotificationLimit {
		limit = DefaultNotificationLimit
	}
	return s.repo.ListByAccount(ctx, accountID, unreadOnly, limit)
}

// MarkRead marks a notification owned by accountID as read
func (s *NotificationService) MarkRead(ctx context.Context, accountID, notificationID int64) error {
	if notificationID <= 0 {
		return fmt.Errorf("%w: notification ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.repo.MarkRead(ctx, notificationID, accountID)
}
