package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler upgrades authenticated requests to notification sockets
type Handler struct {
	hub      *Hub
	commands *CommandDispatcher
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, commands *CommandDispatcher, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		commands: commands,
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Live notification stream
// @Description Upgrades to a WebSocket that receives notification frames for the caller. The access token may be passed as the `token` query parameter.
// @Tags notifications
// @Security BearerAuth
// @Param token query string false "Access token"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse
// @Router /notifications/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	raw, exists := c.Get("userID")
	accountID, ok := raw.(int64)
	if !exists || !ok || accountID <= 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": gin.H{"code": "AUTH_008", "message": "Authentication required"}})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("accountID", accountID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:       h.hub,
		conn:      conn,
		send:      make(chan []byte, 64),
		accountID: accountID,
		commands:  h.commands,
		logger:    h.logger,
	}
	if !h.hub.attach(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
