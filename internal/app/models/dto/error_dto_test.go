package dto

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidationError(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")

	t.Run("single field", func(t *testing.T) {
		err := v.Struct(LoginRequest{Email: "not-an-email", Password: "pw"})
		require.Error(t, err)

		detail := HandleValidationError(err)
		assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
		assert.Equal(t, "Email", detail.Field)
		fields, ok := detail.Details.([]FieldError)
		require.True(t, ok)
		assert.Equal(t, "Email must be a valid email address", fields[0].Message)
	})

	t.Run("several fields", func(t *testing.T) {
		err := v.Struct(UpdateStatusRequest{Status: "enrolled"})
		require.Error(t, err)

		detail := HandleValidationError(err)
		assert.Empty(t, detail.Field)
		fields, ok := detail.Details.([]FieldError)
		require.True(t, ok)
		assert.Len(t, fields, 2)
		assert.Contains(t, fields[1].Message, "must be one of")
	})

	t.Run("malformed body", func(t *testing.T) {
		detail := HandleValidationError(errors.New("unexpected EOF"))
		assert.Equal(t, "Invalid request format", detail.Message)
		assert.Equal(t, "unexpected EOF", detail.Details)
	})
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(NewErrorDetail(ErrorCodeForbidden, "Access denied").WithSeverity(ErrorSeverityWarning))

	assert.False(t, resp.Success)
	assert.Equal(t, ErrorCodeForbidden, resp.Error.Code)
	assert.Equal(t, ErrorSeverityWarning, resp.Error.Severity)
	assert.False(t, resp.Timestamp.IsZero())
}
