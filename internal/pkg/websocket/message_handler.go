package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Command types clients may send
const (
	CommandMarkRead = "mark_read"
	CommandPing     = "ping"
)

// Frame types pushed by the server
const (
	FrameNotification = "notification"
	FramePong         = "pong"
	FrameError        = "error"
)

// Command is a frame sent by a client
type Command struct {
	Type           string `json:"type"`
	NotificationID int64  `json:"notificationId,omitempty"`
}

// NotificationMarker marks a notification of an account as read
type NotificationMarker interface {
	MarkRead(ctx context.Context, accountID, notificationID int64) error
}

// CommandDispatcher executes client commands
type CommandDispatcher struct {
	hub    *Hub
	marker NotificationMarker
	logger zerolog.Logger
}

// NewCommandDispatcher creates a dispatcher; marker may be nil
func NewCommandDispatcher(hub *Hub, marker NotificationMarker, logger zerolog.Logger) *CommandDispatcher {
	return &CommandDispatcher{hub: hub, marker: marker, logger: logger}
}

// Dispatch decodes and runs a single command frame for accountID
func (d *CommandDispatcher) Dispatch(accountID int64, raw []byte) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		d.logger.Debug().Err(err).Int64("accountID", accountID).Msg("Ignoring malformed client frame")
		d.hub.Push(accountID, FrameError, map[string]string{"message": "malformed frame"})
		return
	}

	switch cmd.Type {
	case CommandPing:
		d.hub.Push(accountID, FramePong, nil)
	case CommandMarkRead:
		if d.marker == nil || cmd.NotificationID <= 0 {
			d.hub.Push(accountID, FrameError, map[string]string{"message": "invalid mark_read"})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.marker.MarkRead(ctx, accountID, cmd.NotificationID); err != nil {
			d.logger.Warn().Err(err).Int64("accountID", accountID).Int64("notificationID", cmd.NotificationID).Msg("mark_read failed")
			d.hub.Push(accountID, FrameError, map[string]interface{}{"message": "mark_read failed", "notificationId": cmd.NotificationID})
		}
	default:
		d.hub.Push(accountID, FrameError, map[string]string{"message": "unknown command " + cmd.Type})
	}
}
