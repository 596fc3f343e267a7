// Package controllers handles HTTP request handling
package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/middleware"
)

// AuthService is the part of services.AuthService the HTTP layer uses
type AuthService interface {
	RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*models.Account, error)
	RegisterStaff(ctx context.Context, req *dto.RegisterStaffRequest) (*models.Account, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accountID int64) error
	Me(ctx context.Context, accountID int64) (*models.Account, error)
}

// AuthController handles authentication related operations
type AuthController struct {
	authService AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Login handles account login
// @Summary Log in
// @Description Authenticates an account and returns a token pair. When expectedRole is set it must match the stored role. Institution and staff accounts must be approved.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Role mismatch, or account pending or rejected"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	tokens, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Info().Err(err).Str("email", req.Email).Msg("Login rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(tokens))
}

// RefreshToken rotates a refresh token
// @Summary Refresh tokens
// @Description Exchanges a refresh token for a new token pair. The old refresh token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Tokens refreshed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid, expired or revoked refresh token"
// @Failure 403 {object} dto.ErrorResponse "Account no longer approved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	tokens, err := c.authService.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(tokens))
}

// RegisterStaff registers a professor or admission officer
// @Summary Register staff
// @Description Creates a professor or admission officer account bound to an existing institution. The account starts pending until the institution or an admin approves it.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterStaffRequest true "Staff registration"
// @Success 201 {object} dto.APIResponse{data=dto.AccountResponse} "Account created, pending approval"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register/staff [post]
func (c *AuthController) RegisterStaff(ctx *gin.Context) {
	var req dto.RegisterStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid staff registration payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	acc, err := c.authService.RegisterStaff(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.NewAccountResponse(acc)))
}

// Me returns the authenticated account
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse} "Current account"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	acc, err := c.authService.Me(ctx.Request.Context(), principal.AccountID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewAccountResponse(acc)))
}

// Logout revokes every refresh token of the caller
// @Summary Log out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), principal.AccountID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Logged out"}))
}
