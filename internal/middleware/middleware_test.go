package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "careercompass-test",
	})
}

func issue(t *testing.T, jwt *auth.JWTService, acc *models.Account) string {
	t.Helper()
	pair, err := jwt.GenerateTokenPair(acc)
	require.NoError(t, err)
	return pair.AccessToken
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newProtectedRouter(m *AuthMiddleware, roles ...models.Role) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{m.JWTAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		inst := int64(0)
		if p.InstitutionID != nil {
			inst = *p.InstitutionID
		}
		c.JSON(http.StatusOK, gin.H{"accountId": p.AccountID, "role": p.Role, "institutionId": inst})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	jwt := newJWT()
	m := NewAuthMiddleware(jwt)
	router := newProtectedRouter(m)

	instID := int64(4)
	token := issue(t, jwt, &models.Account{ID: 9, Email: "o@acme.edu", Role: models.RoleAdmissionOfficer, InstitutionID: &instID})

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"missing header", "", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"garbage header", "Bearer nonsense", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"bad signature", "Bearer " + token[:len(token)-4] + "AAAA", "", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"bearer header", "Bearer " + token, "", http.StatusOK, ""},
		{"raw token header", token, "", http.StatusOK, ""},
		{"token query", "", "?token=" + token, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.EqualValues(t, 9, body["accountId"])
			assert.Equal(t, "admission_officer", body["role"])
			assert.EqualValues(t, 4, body["institutionId"])
		})
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	expired := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: -time.Minute,
		TokenIssuer:    "careercompass-test",
	})
	token := issue(t, expired, &models.Account{ID: 1, Email: "a@b.io", Role: models.RoleStudent})

	router := newProtectedRouter(NewAuthMiddleware(newJWT()))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeExpiredToken, decodeError(t, w).Error.Code)
}

func TestRoleRequired(t *testing.T) {
	jwt := newJWT()
	router := newProtectedRouter(NewAuthMiddleware(jwt), models.RoleInstitution, models.RoleAdmin)

	tests := []struct {
		role       models.Role
		wantStatus int
	}{
		{models.RoleAdmin, http.StatusOK},
		{models.RoleInstitution, http.StatusOK},
		{models.RoleStudent, http.StatusForbidden},
		{models.RoleProfessor, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			token := issue(t, jwt, &models.Account{ID: 3, Email: "x@y.io", Role: tt.role})
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidationFailed), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{apperrors.ErrRoleMismatch, http.StatusForbidden, dto.ErrorCodeRoleMismatch},
		{apperrors.ErrAccountPending, http.StatusForbidden, dto.ErrorCodeAccountPending},
		{apperrors.ErrAccountRejected, http.StatusForbidden, dto.ErrorCodeAccountRejected},
		{fmt.Errorf("%w: only students", apperrors.ErrPermissionDenied), http.StatusForbidden, dto.ErrorCodeForbidden},
		{apperrors.ErrProgramNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.NewResourceNotFoundError("gone"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrAlreadyApplied, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.ErrRevisionMismatch, http.StatusConflict, dto.ErrorCodeConflict},
		{apperrors.ErrInvalidTransition, http.StatusConflict, dto.ErrorCodeInvalidTransition},
		{errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleAPIError_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, errors.New("pq: password authentication failed for user postgres"))

	assert.NotContains(t, w.Body.String(), "postgres")
}

func TestHandleAPIError_KeepsValidationDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidationFailed))

	resp := decodeError(t, w)
	assert.Equal(t, "validation failed: title cannot be empty", resp.Error.Details)
}

func TestParseIDParam(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := ParseIDParam(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, want := range map[string]int{"/items/12": http.StatusOK, "/items/0": http.StatusBadRequest, "/items/abc": http.StatusBadRequest} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/auth/login", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)
	limited := send()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "30", limited.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrorCodeTooManyRequests, decodeError(t, limited).Error.Code)

	now = now.Add(31 * time.Second)
	assert.Equal(t, http.StatusOK, send().Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zerolog.Nop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/programs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/programs/1", "/programs/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/programs/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}
