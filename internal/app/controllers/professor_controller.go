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

// ProfessorService is the part of services.ProfessorService the HTTP layer uses
type ProfessorService interface {
	List(ctx context.Context, institutionID *int64) ([]*models.ProfessorProfile, error)
	Get(ctx context.Context, id int64) (*models.ProfessorProfile, error)
	Create(ctx context.Context, caller authz.Principal, req *dto.ProfessorProfileRequest) (*models.ProfessorProfile, error)
	Update(ctx context.Context, caller authz.Principal, id int64, req *dto.ProfessorProfileRequest) (*models.ProfessorProfile, error)
	Delete(ctx context.Context, caller authz.Principal, id int64) error
}

// ProfessorController handles professor profile endpoints
type ProfessorController struct {
	professorService ProfessorService
	logger           zerolog.Logger
}

// NewProfessorController creates a new ProfessorController
func NewProfessorController(professorService ProfessorService, logger zerolog.Logger) *ProfessorController {
	return &ProfessorController{
		professorService: professorService,
		logger:           logger,
	}
}

// List returns professor profiles
// @Summary List professor profiles
// @Tags professors
// @Produce json
// @Security BearerAuth
// @Param institutionId query int false "Institution ID"
// @Success 200 {object} dto.APIResponse{data=[]models.ProfessorProfile} "Profiles"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /professor/professorinfo [get]
func (c *ProfessorController) List(ctx *gin.Context) {
	institutionID, ok := optionalIDQuery(ctx, "institutionId")
	if !ok {
		return
	}

	profiles, err := c.professorService.List(ctx.Request.Context(), institutionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nonNil(profiles)))
}

// Get returns one professor profile
// @Summary Get a professor profile
// @Tags professors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Success 200 {object} dto.APIResponse{data=models.ProfessorProfile} "Profile"
// @Failure 404 {object} dto.ErrorResponse "Professor profile not found"
// @Router /professor/professorinfo/{id} [get]
func (c *ProfessorController) Get(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.professorService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile))
}

// Create stores a professor profile
// @Summary Create a professor profile
// @Description Professors create their own profile. Institutions and admins pass accountId.
// @Tags professors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProfessorProfileRequest true "Profile"
// @Success 201 {object} dto.APIResponse{data=models.ProfessorProfile} "Profile created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Profile already exists"
// @Router /professor/professorinfo [post]
func (c *ProfessorController) Create(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.ProfessorProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	profile, err := c.professorService.Create(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(profile))
}

// Update edits a professor profile
// @Summary Update a professor profile
// @Tags professors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Param request body dto.ProfessorProfileRequest true "Profile"
// @Success 200 {object} dto.APIResponse{data=models.ProfessorProfile} "Profile updated"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Professor profile not found"
// @Router /professor/professorinfo/{id} [put]
func (c *ProfessorController) Update(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ProfessorProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	profile, err := c.professorService.Update(ctx.Request.Context(), principal, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile))
}

// Delete removes a professor profile
// @Summary Delete a professor profile
// @Tags professors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Profile deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Professor profile not found"
// @Router /professor/professorinfo/{id} [delete]
func (c *ProfessorController) Delete(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.professorService.Delete(ctx.Request.Context(), principal, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Professor profile deleted"}))
}
