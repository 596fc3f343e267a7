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

// InstitutionService is the part of services.InstitutionService the HTTP layer uses
type InstitutionService interface {
	Register(ctx context.Context, req *dto.RegisterInstitutionRequest) (*models.InstitutionAccount, error)
	List(ctx context.Context, status *models.ApprovalStatus) ([]*models.InstitutionAccount, error)
	InstitutionName(ctx context.Context, id int64) (string, error)
	UpdateApproval(ctx context.Context, caller authz.Principal, req *dto.ApprovalUpdateRequest) (*models.InstitutionAccount, error)
	ListStaff(ctx context.Context, caller authz.Principal, status *models.ApprovalStatus) ([]*models.Account, error)
	UpdateStaffApproval(ctx context.Context, caller authz.Principal, req *dto.ApprovalUpdateRequest) (*models.Account, error)
	SetRole(ctx context.Context, email string, role models.Role) (*models.Account, error)
}

// InstitutionController handles institution registration and account approval
type InstitutionController struct {
	institutionService InstitutionService
	logger             zerolog.Logger
}

// NewInstitutionController creates a new InstitutionController
func NewInstitutionController(institutionService InstitutionService, logger zerolog.Logger) *InstitutionController {
	return &InstitutionController{
		institutionService: institutionService,
		logger:             logger,
	}
}

func toInstitutionResponses(items []*models.InstitutionAccount) []dto.InstitutionResponse {
	out := make([]dto.InstitutionResponse, 0, len(items))
	for _, ia := range items {
		out = append(out, dto.NewInstitutionResponse(ia))
	}
	return out
}

func toAccountResponses(items []*models.Account) []dto.AccountResponse {
	out := make([]dto.AccountResponse, 0, len(items))
	for _, acc := range items {
		out = append(out, dto.NewAccountResponse(acc))
	}
	return out
}

// Register handles institution sign-up
// @Summary Register an institution
// @Description Creates an institution and its managing account in one transaction. The account starts pending until an admin approves it.
// @Tags institutions
// @Accept json
// @Produce json
// @Param request body dto.RegisterInstitutionRequest true "Institution registration"
// @Success 201 {object} dto.APIResponse{data=dto.InstitutionResponse} "Institution registered, pending approval"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /institution/institutionregister [post]
func (c *InstitutionController) Register(ctx *gin.Context) {
	var req dto.RegisterInstitutionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid institution registration payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	ia, err := c.institutionService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.NewInstitutionResponse(ia)))
}

// List returns institutions with their approval state
// @Summary List institutions
// @Tags institutions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Approval status filter" Enums(pending, approved, rejected)
// @Success 200 {object} dto.APIResponse{data=[]dto.InstitutionResponse} "Institutions"
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /institution/institutionregister [get]
func (c *InstitutionController) List(ctx *gin.Context) {
	items, err := c.institutionService.List(ctx.Request.Context(), approvalStatusQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toInstitutionResponses(items)))
}

// SetRole changes the role of an account
// @Summary Set account role
// @Description Changes the role of the account registered under the given email.
// @Tags institutions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param role path string true "New role" Enums(student, institution, professor, admission_officer, admin)
// @Param request body dto.SetRoleRequest true "Account email"
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse} "Role changed"
// @Failure 400 {object} dto.ErrorResponse "Unknown role"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Institution already has a managing account"
// @Router /institution/institutionregister/update/{role} [put]
func (c *InstitutionController) SetRole(ctx *gin.Context) {
	var req dto.SetRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	acc, err := c.institutionService.SetRole(ctx.Request.Context(), req.Email, models.Role(ctx.Param("role")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewAccountResponse(acc)))
}

// UpdatePending approves, rejects or reconsiders an institution
// @Summary Decide on an institution
// @Description Applies approve, reject (with reason) or reconsider to the institution with the given id. Re-applying the current state is a no-op. A stale revision returns 409.
// @Tags institutions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApprovalUpdateRequest true "Institution id and action"
// @Success 200 {object} dto.APIResponse{data=dto.InstitutionResponse} "Updated institution"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Failure 409 {object} dto.ErrorResponse "Revision mismatch"
// @Router /institution/institutionregister/updatePending [put]
func (c *InstitutionController) UpdatePending(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.ApprovalUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	ia, err := c.institutionService.UpdateApproval(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("institutionID", req.ID).
		Str("action", req.Action).
		Int64("decidedBy", principal.AccountID).
		Msg("Institution approval updated")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewInstitutionResponse(ia)))
}

// ListStaff returns staff accounts visible to the caller
// @Summary List staff accounts
// @Description Institutions see the professors and admission officers of their own institution; admins see all.
// @Tags institutions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Approval status filter" Enums(pending, approved, rejected)
// @Success 200 {object} dto.APIResponse{data=[]dto.AccountResponse} "Staff accounts"
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /institution/staff [get]
func (c *InstitutionController) ListStaff(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	items, err := c.institutionService.ListStaff(ctx.Request.Context(), principal, approvalStatusQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toAccountResponses(items)))
}

// UpdateStaffPending approves, rejects or reconsiders a staff account
// @Summary Decide on a staff account
// @Tags institutions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApprovalUpdateRequest true "Account id and action"
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse} "Updated account"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Revision mismatch"
// @Router /institution/staff/updatePending [put]
func (c *InstitutionController) UpdateStaffPending(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.ApprovalUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	acc, err := c.institutionService.UpdateStaffApproval(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewAccountResponse(acc)))
}

// InstitutionName resolves an institution id to its name
// @Summary Institution name
// @Tags professors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Institution ID"
// @Success 200 {object} dto.APIResponse{data=dto.InstitutionNameResponse} "Institution name"
// @Failure 400 {object} dto.ErrorResponse "Invalid id"
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /professor/institutionname/{id} [get]
func (c *InstitutionController) InstitutionName(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	name, err := c.institutionService.InstitutionName(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.InstitutionNameResponse{InstitutionID: id, Name: name}))
}
