package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/middleware"
)

// NotificationService is the part of services.NotificationService the HTTP layer uses
type NotificationService interface {
	List(ctx context.Context, accountID int64, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, accountID, notificationID int64) error
}

// NotificationController handles the notification inbox
type NotificationController struct {
	notificationService NotificationService
	logger              zerolog.Logger
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService NotificationService, logger zerolog.Logger) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List returns the caller's newest notifications
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Maximum number of notifications" default(50)
// @Success 200 {object} dto.APIResponse{data=[]models.Notification} "Notifications"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	items, err := c.notificationService.List(ctx.Request.Context(), principal.AccountID, middleware.QueryBool(ctx, "unread"), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nonNil(items)))
}

// MarkRead marks one notification as read
// @Summary Mark a notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Marked read"
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.notificationService.MarkRead(ctx.Request.Context(), principal.AccountID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Notification marked as read"}))
}
