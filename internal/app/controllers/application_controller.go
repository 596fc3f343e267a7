package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/middleware"
)

// ApplicationService is the part of services.ApplicationService the HTTP layer uses
type ApplicationService interface {
	Submit(ctx context.Context, caller authz.Principal, req *dto.SubmitApplicationRequest) (*models.Application, error)
	UpdateStatus(ctx context.Context, caller authz.Principal, req *dto.UpdateStatusRequest) (*models.Application, error)
	AddComment(ctx context.Context, caller authz.Principal, req *dto.AddCommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, caller authz.Principal, applicationID int64) ([]*models.Comment, error)
	List(ctx context.Context, caller authz.Principal, filter models.ApplicationFilter) ([]*models.Application, error)
	Get(ctx context.Context, caller authz.Principal, id int64) (*models.Application, error)
	Pending(ctx context.Context, caller authz.Principal) ([]*models.Application, error)
}

// ApplicationController handles applications and reviewer comments
type ApplicationController struct {
	applicationService ApplicationService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// List returns the applications visible to the caller
// @Summary List applications
// @Description Students see their own applications, institution staff see applications to their programs, admins see all.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(pending, under_review, approved, rejected, waitlisted)
// @Param programId query int false "Program ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Applications"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /student/getapplicatioins [get]
// @Router /institution/application [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	programID, ok := optionalIDQuery(ctx, "programId")
	if !ok {
		return
	}

	filter := models.ApplicationFilter{ProgramID: programID}
	if raw := ctx.Query("status"); raw != "" {
		status := models.ApplicationStatus(raw)
		filter.Status = &status
	}

	apps, err := c.applicationService.List(ctx.Request.Context(), principal, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nonNil(apps)))
}

// Get returns one application
// @Summary Get an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Application"
// @Failure 404 {object} dto.ErrorResponse "Application not found or not visible"
// @Router /institution/application/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	app, err := c.applicationService.Get(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(app))
}

// Submit creates a pending application for the calling student
// @Summary Submit an application
// @Description The stored status is always pending, whatever the client sends.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitApplicationRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=models.Application} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Students only"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Router /student/submitapplication [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.SubmitApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	app, err := c.applicationService.Submit(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(app))
}

// UpdateStatus changes the review status of an application
// @Summary Update application status
// @Description Re-applying the current status without new feedback returns the stored application unchanged. A stale revision returns 409.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateStatusRequest true "Status change"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Updated application"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Revision mismatch or invalid transition"
// @Router /student/updateapplication/status [put]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	app, err := c.applicationService.UpdateStatus(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(app))
}

// AddComment appends a reviewer comment
// @Summary Comment on an application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment} "Comment added"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /student/addcomment [post]
func (c *ApplicationController) AddComment(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	comment, err := c.applicationService.AddComment(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(comment))
}

// ListComments returns the comments of an application, oldest first
// @Summary List application comments
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Comment} "Comments"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /student/getcomment/{id} [get]
func (c *ApplicationController) ListComments(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	comments, err := c.applicationService.ListComments(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nonNil(comments)))
}

// Pending returns pending applications of the caller's institution
// @Summary Pending applications
// @Tags professors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Pending applications"
// @Failure 403 {object} dto.ErrorResponse "Staff only"
// @Router /professor/pendingapplications [get]
func (c *ApplicationController) Pending(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	apps, err := c.applicationService.Pending(ctx.Request.Context(), principal)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nonNil(apps)))
}
