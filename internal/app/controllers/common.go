package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/middleware"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/helpers"
)

// requirePrincipal returns the caller set by JWTAuth, answering 401 when there is none
func requirePrincipal(ctx *gin.Context) (authz.Principal, bool) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return authz.Principal{}, false
	}
	return principal, true
}

// approvalStatusQuery reads the optional ?status filter of approval listings
func approvalStatusQuery(ctx *gin.Context) *models.ApprovalStatus {
	raw := ctx.Query("status")
	if raw == "" {
		return nil
	}
	status := models.ApprovalStatus(raw)
	return &status
}

// optionalIDQuery reads an optional positive integer query parameter, answering 400 when malformed
func optionalIDQuery(ctx *gin.Context, name string) (*int64, bool) {
	id, err := helpers.ParseOptionalInt64Query(ctx, name)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a positive integer")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return id, true
}

// nonNil keeps empty collections serialised as [] instead of null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
