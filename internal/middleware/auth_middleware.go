package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID        = "userID"
	ContextEmail         = "email"
	ContextRole          = "roleType"
	ContextInstitutionID = "institutionID"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message, details string) {
	errorDetail := dto.NewErrorDetail(code, message).WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// tokenFromRequest reads the access token from the Authorization header, or from
// the token query parameter for websocket clients that cannot set headers
func tokenFromRequest(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if queryToken := c.Query("token"); queryToken != "" {
			return queryToken, nil
		}
		return "", apperrors.ErrTokenNotFound
	}
	// Swagger UI sends the raw JWT without the Bearer prefix, which is accepted too
	return auth.ExtractBearerToken(authHeader)
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenNotFound) {
				abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "Authorization header missing")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Authentication failed", "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Authentication failed", "Invalid token")
			return
		}

		c.Set(ContextUserID, claims.AccountID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		if claims.InstitutionID != nil {
			c.Set(ContextInstitutionID, *claims.InstitutionID)
		}

		c.Next()
	}
}

// RoleRequired middleware lets only the listed roles through
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "User role not found")
			return
		}

		roleStr, _ := role.(string)
		for _, allowed := range roles {
			if roleStr == string(allowed) {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// GetPrincipal returns the authenticated caller stored by JWTAuth
func GetPrincipal(c *gin.Context) (authz.Principal, bool) {
	rawID, ok := c.Get(ContextUserID)
	if !ok {
		return authz.Principal{}, false
	}
	accountID, ok := rawID.(int64)
	if !ok || accountID <= 0 {
		return authz.Principal{}, false
	}

	p := authz.Principal{AccountID: accountID, Role: models.Role(c.GetString(ContextRole))}
	if rawInst, ok := c.Get(ContextInstitutionID); ok {
		if institutionID, ok := rawInst.(int64); ok {
			p.InstitutionID = &institutionID
		}
	}
	return p, true
}
