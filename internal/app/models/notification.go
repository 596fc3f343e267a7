package models

import (
	"encoding/json"
	"time"
)

// NotificationKind classifies notifications
type NotificationKind string

const (
	NotifyApplicationStatus  NotificationKind = "application_status"
	NotifyApplicationComment NotificationKind = "application_comment"
	NotifyApplicationNew     NotificationKind = "application_submitted"
	NotifyDocumentVerified   NotificationKind = "document_verified"
	NotifyAccountApproval    NotificationKind = "account_approval"
)

// Notification is a message addressed to one account
type Notification struct {
	ID        int64            `json:"id"`
	AccountID int64            `json:"accountId"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// StorageEntry is a JSON value stored for an account under a key
type StorageEntry struct {
	AccountID int64           `json:"accountId"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// PortalStats are the public landing-page counters
type PortalStats struct {
	Programs     int64 `json:"programs"`
	Institutions int64 `json:"institutions"`
	Students     int64 `json:"students"`
	Countries    int64 `json:"countries"`
}
