package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
)

// apiError maps a sentinel error to its HTTP status and error code
type apiError struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// apiErrors is checked in order; specific sentinels come before generic ones
var apiErrors = []apiError{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request"},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},

	{apperrors.ErrRoleMismatch, http.StatusForbidden, dto.ErrorCodeRoleMismatch, "Account role does not match"},
	{apperrors.ErrAccountPending, http.StatusForbidden, dto.ErrorCodeAccountPending, "Account is awaiting approval"},
	{apperrors.ErrAccountRejected, http.StatusForbidden, dto.ErrorCodeAccountRejected, "Account has been rejected"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	{apperrors.ErrAccountNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Account not found"},
	{apperrors.ErrInstitutionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Institution not found"},
	{apperrors.ErrProgramNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Program not found"},
	{apperrors.ErrApplicationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Application not found"},
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
	{apperrors.ErrProfessorNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Professor profile not found"},
	{apperrors.ErrDocumentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Document not found"},
	{apperrors.ErrNotificationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Notification not found"},
	{apperrors.ErrStorageKeyNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Storage key not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrInstitutionHasOwner, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Institution already has a managing account"},
	{apperrors.ErrAlreadyApplied, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Already applied to this program"},
	{apperrors.ErrProfileExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Professor profile already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrProgramHasApplications, http.StatusConflict, dto.ErrorCodeConflict, "Program has applications"},
	{apperrors.ErrRevisionMismatch, http.StatusConflict, dto.ErrorCodeConflict, "Record was modified by another request"},
	{apperrors.ErrInvalidTransition, http.StatusConflict, dto.ErrorCodeInvalidTransition, "Invalid status transition"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
}

// HandleAPIError handles common API errors and returns appropriate responses.
// Unknown errors are logged and answered with a generic 500.
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range apiErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		errorDetail := dto.NewErrorDetail(m.code, m.message)
		if err.Error() != m.target.Error() {
			errorDetail = errorDetail.WithDetails(err.Error())
		}
		c.JSON(m.status, dto.NewErrorResponse(errorDetail))
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Str("requestID", c.GetString(ContextRequestID)).
		Msg("Unhandled API error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
	))
}

// HandleBindError answers a request whose body, form or query failed to bind
func HandleBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}

// ParseIDParam reads a positive integer path parameter, answering 400 when it is not one
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := parsePositiveInt(c.Param(name))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a positive integer")
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
