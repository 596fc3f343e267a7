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
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/helpers"
)

// ProgramService is the part of services.ProgramService the HTTP layer uses
type ProgramService interface {
	Create(ctx context.Context, caller authz.Principal, req *dto.ProgramRequest) (*models.Program, error)
	Get(ctx context.Context, id int64) (*models.Program, error)
	Update(ctx context.Context, caller authz.Principal, id int64, req *dto.ProgramRequest) (*models.Program, error)
	Delete(ctx context.Context, caller authz.Principal, id int64) error
	List(ctx context.Context, filter models.ProgramFilter) ([]*models.Program, int64, error)
	AddRequirements(ctx context.Context, caller authz.Principal, programID int64, requirements []string) ([]string, error)
	Requirements(ctx context.Context, programID int64) ([]string, error)
	Title(ctx context.Context, programID int64) (string, error)
}

// ProgramController handles program and requirement endpoints
type ProgramController struct {
	programService ProgramService
	logger         zerolog.Logger
}

// NewProgramController creates a new ProgramController
func NewProgramController(programService ProgramService, logger zerolog.Logger) *ProgramController {
	return &ProgramController{
		programService: programService,
		logger:         logger,
	}
}

// List returns every matching program, or one page of them when page or size is given
// @Summary List programs
// @Description Lists programs, optionally filtered by institution, discipline, degree and a title search. Without page or size the full list is returned as an array; with either, one page wrapped in items and pagination.
// @Tags programs
// @Produce json
// @Param institutionId query int false "Institution ID"
// @Param discipline query string false "Discipline"
// @Param degree query string false "Degree"
// @Param search query string false "Title search"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.Program} "Programs"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /institution/programs [get]
func (c *ProgramController) List(ctx *gin.Context) {
	institutionID, ok := optionalIDQuery(ctx, "institutionId")
	if !ok {
		return
	}
	filter := models.ProgramFilter{
		InstitutionID: institutionID,
		Discipline:    ctx.Query("discipline"),
		Degree:        ctx.Query("degree"),
		Search:        ctx.Query("search"),
	}

	paged := helpers.HasPaginationParams(ctx)
	page, size := helpers.ParsePaginationParams(ctx)
	if paged {
		filter.Offset, filter.Limit = helpers.CalculateOffsetLimit(page, size)
	}

	programs, total, err := c.programService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if !paged {
		ctx.JSON(http.StatusOK, dto.NewAPIResponse(nonNil(programs)))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PaginatedResponse{
		Items:      nonNil(programs),
		Pagination: helpers.NewPaginationInfo(total, page, filter.Limit),
	}))
}

// Get returns one program with its requirements
// @Summary Get a program
// @Tags programs
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=models.Program} "Program"
// @Failure 400 {object} dto.ErrorResponse "Invalid id"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /institution/programs/{id} [get]
func (c *ProgramController) Get(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	program, err := c.programService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(program))
}

// Create adds a program for the caller's institution
// @Summary Create a program
// @Description Creates a program owned by the caller's institution. Admins pass institutionId. Inline requirements are stored in the same transaction.
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProgramRequest true "Program"
// @Success 201 {object} dto.APIResponse{data=models.Program} "Program created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /institution/programs [post]
func (c *ProgramController) Create(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.ProgramRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	program, err := c.programService.Create(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(program))
}

// Update edits a program of the caller's institution
// @Summary Update a program
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Param request body dto.ProgramRequest true "Program"
// @Success 200 {object} dto.APIResponse{data=models.Program} "Program updated"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /institution/programs/{id} [put]
func (c *ProgramController) Update(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ProgramRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	program, err := c.programService.Update(ctx.Request.Context(), principal, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(program))
}

// Delete removes a program without applications
// @Summary Delete a program
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Program deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 409 {object} dto.ErrorResponse "Program has applications"
// @Router /institution/programs/{id} [delete]
func (c *ProgramController) Delete(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.programService.Delete(ctx.Request.Context(), principal, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Program deleted"}))
}

// Requirements lists the requirements of a program
// @Summary Program requirements
// @Tags programs
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=dto.RequirementsResponse} "Requirements"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /institution/programs/requirments/{id} [get]
func (c *ProgramController) Requirements(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	reqs, err := c.programService.Requirements(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.RequirementsResponse{ProgramID: id, Requirements: nonNil(reqs)}))
}

// AddRequirements appends requirements to a program in one transaction
// @Summary Add program requirements
// @Description Stores every line or none of them.
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pId path int true "Program ID"
// @Param request body dto.AddRequirementsRequest true "Requirement lines"
// @Success 201 {object} dto.APIResponse{data=dto.RequirementsResponse} "Full requirement list"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /institution/programs/requirements/{pId} [post]
func (c *ProgramController) AddRequirements(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	programID, ok := middleware.ParseIDParam(ctx, "pId")
	if !ok {
		return
	}

	var req dto.AddRequirementsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	reqs, err := c.programService.AddRequirements(ctx.Request.Context(), principal, programID, req.Requirements)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.RequirementsResponse{ProgramID: programID, Requirements: reqs}))
}

// Title resolves a program id to its title
// @Summary Program title
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=dto.ProgramTitleResponse} "Program title"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /student/getApplicatioinsProgramNameByPid/{id} [get]
func (c *ProgramController) Title(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	title, err := c.programService.Title(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ProgramTitleResponse{ProgramID: id, Title: title}))
}
