package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey       string
	AccessTokenExp  time.Duration
	RefreshTokenExp time.Duration
	TokenIssuer     string
}

// JWTService issues and validates access tokens
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// Claims defines JWT token content
type Claims struct {
	AccountID     int64  `json:"accountId"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	InstitutionID *int64 `json:"institutionId,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is a signed access token plus an opaque refresh token
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int
	RefreshExpiresIn int
	RefreshExpiresAt time.Time
}

// GenerateTokenPair creates an access token for the account and a fresh refresh token
func (s *JWTService) GenerateTokenPair(account *models.Account) (*TokenPair, error) {
	now := s.now()

	claims := &Claims{
		AccountID:     account.ID,
		Email:         account.Email,
		Role:          string(account.Role),
		InstitutionID: account.InstitutionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   strconv.FormatInt(account.ID, 10),
			ID:        uuid.New().String(),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     uuid.New().String(),
		ExpiresIn:        int(s.config.AccessTokenExp.Seconds()),
		RefreshExpiresIn: int(s.config.RefreshTokenExp.Seconds()),
		RefreshExpiresAt: now.Add(s.config.RefreshTokenExp),
	}, nil
}

// ValidateToken parses and verifies a signed token
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	},
		jwt.WithIssuer(s.config.TokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, apperrors.ErrInvalidFormat
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.ErrTokenInvalid
}

// ValidateAndExtractClaims validates a token and checks the claims it must carry
func (s *JWTService) ValidateAndExtractClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.AccountID <= 0 || claims.Email == "" || !models.Role(claims.Role).Valid() {
		return nil, apperrors.ErrTokenInvalid
	}

	return claims, nil
}

// ExtractBearerToken extracts the token from an Authorization header value.
// Raw tokens without the Bearer prefix are accepted as well.
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.Trim(strings.TrimSpace(authHeader), "\"'")
	if authHeader == "" {
		return "", apperrors.ErrInvalidFormat
	}

	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		authHeader = strings.TrimSpace(authHeader[7:])
	}

	if strings.Count(authHeader, ".") != 2 {
		return "", apperrors.ErrInvalidFormat
	}
	return authHeader, nil
}
