package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/validation"
)

// AuthService handles registration, login and token rotation
type AuthService struct {
	accounts   accountStore
	tokens     tokenStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(accounts accountStore, tokens tokenStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		accounts:   accounts,
		tokens:     tokens,
		jwtService: jwtService,
		logger:     logger,
	}
}

// validateCredentials normalises the email and checks the sign-up fields every role shares
func validateCredentials(name, email, password string) (string, error) {
	if !validation.IsValidName(name) {
		return "", fmt.Errorf("%w: name must be between 1 and 255 characters", apperrors.ErrValidationFailed)
	}
	email = validation.NormalizeEmail(email)
	if !validation.IsValidEmail(email) {
		return "", fmt.Errorf("%w: invalid email format", apperrors.ErrValidationFailed)
	}
	if problem := validation.PasswordProblem(password); problem != "" {
		return "", fmt.Errorf("%w: %s", apperrors.ErrValidationFailed, problem)
	}
	return email, nil
}

// prepareAccount validates and hashes a new account in place
func prepareAccount(acc *models.Account) error {
	email, err := validateCredentials(acc.Name, acc.Email, acc.Password)
	if err != nil {
		return err
	}
	hashed, err := auth.HashPassword(acc.Password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	acc.Name = strings.TrimSpace(acc.Name)
	acc.Email = email
	acc.Password = hashed
	if acc.Role.RequiresApproval() {
		acc.ApprovalStatus = models.ApprovalPending
	} else {
		acc.ApprovalStatus = models.ApprovalApproved
	}
	return nil
}

// approvalError maps a non-approved account to its login error
func approvalError(acc *models.Account) error {
	switch acc.ApprovalStatus {
	case models.ApprovalApproved:
		return nil
	case models.ApprovalRejected:
		return apperrors.ErrAccountRejected
	default:
		return apperrors.ErrAccountPending
	}
}

// RegisterStudent creates an approved student account with an empty profile
func (s *AuthService) RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*models.Account, error) {
	acc, profile := req.ToModels()
	if err := prepareAccount(acc); err != nil {
		return nil, err
	}

	if err := s.accounts.CreateStudent(ctx, acc, profile); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("accountID", acc.ID).Msg("Student registered")
	return acc, nil
}

// RegisterStaff creates a pending professor or admission officer account
func (s *AuthService) RegisterStaff(ctx context.Context, req *dto.RegisterStaffRequest) (*models.Account, error) {
	role := models.Role(req.Role)
	if role != models.RoleProfessor && role != models.RoleAdmissionOfficer {
		return nil, fmt.Errorf("%w: role must be professor or admission_officer", apperrors.ErrValidationFailed)
	}
	if req.InstitutionID <= 0 {
		return nil, fmt.Errorf("%w: institution ID must be positive", apperrors.ErrValidationFailed)
	}

	institutionID := req.InstitutionID
	acc := &models.Account{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Role:          role,
		InstitutionID: &institutionID,
	}
	if err := prepareAccount(acc); err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("accountID", acc.ID).Str("role", string(role)).Int64("institutionID", institutionID).Msg("Staff account registered")
	return acc, nil
}

// Login authenticates an account and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := validation.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding account: %w", err)
	}

	if !auth.CheckPassword(acc.Password, req.Password) {
		s.logger.Debug().Int64("accountID", acc.ID).Msg("Password mismatch")
		return nil, apperrors.ErrInvalidCredentials
	}

	if req.ExpectedRole != "" && models.Role(req.ExpectedRole) != acc.Role {
		return nil, apperrors.ErrRoleMismatch
	}

	if err := approvalError(acc); err != nil {
		return nil, err
	}

	if err := s.accounts.UpdateLastLogin(ctx, acc.ID); err != nil {
		s.logger.Warn().Err(err).Int64("accountID", acc.ID).Msg("Failed to record last login")
	}

	return s.generateTokenResponse(ctx, acc)
}

// RefreshToken rotates a refresh token and issues a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	accountID, _, err := s.tokens.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("error revoking refresh token: %w", err)
	}

	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// Approval may have been withdrawn since the token was issued
	if err := approvalError(acc); err != nil {
		return nil, err
	}

	return s.generateTokenResponse(ctx, acc)
}

// Logout revokes every refresh token of the account
func (s *AuthService) Logout(ctx context.Context, accountID int64) error {
	return s.tokens.RevokeAllAccountTokens(ctx, accountID)
}

// Me returns the account behind an access token
func (s *AuthService) Me(ctx context.Context, accountID int64) (*models.Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// EnsureAdmin creates an approved admin account unless the email is taken.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.accounts.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrAccountNotFound) {
		return false, err
	}

	acc := &models.Account{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	}
	if err := prepareAccount(acc); err != nil {
		return false, err
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// generateTokenResponse issues a token pair and stores the refresh token
func (s *AuthService) generateTokenResponse(ctx context.Context, acc *models.Account) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(acc)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	if err := s.tokens.CreateToken(ctx, pair.RefreshToken, acc.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
		Account:          dto.NewAccountResponse(acc),
	}, nil
}
