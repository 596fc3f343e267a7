package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/middleware"
)

// StatsService is the part of services.StatsService the HTTP layer uses
type StatsService interface {
	Counts(ctx context.Context) (*models.PortalStats, error)
}

// ClientStorageService is the part of services.ClientStorageService the HTTP layer uses
type ClientStorageService interface {
	Get(ctx context.Context, accountID int64, key string) (*models.StorageEntry, error)
	Put(ctx context.Context, accountID int64, key string, value json.RawMessage) (*models.StorageEntry, error)
}

// CommonInfoController serves the public counters and per-account client storage
type CommonInfoController struct {
	statsService   StatsService
	storageService ClientStorageService
	logger         zerolog.Logger
}

// NewCommonInfoController creates a new CommonInfoController
func NewCommonInfoController(statsService StatsService, storageService ClientStorageService, logger zerolog.Logger) *CommonInfoController {
	return &CommonInfoController{
		statsService:   statsService,
		storageService: storageService,
		logger:         logger,
	}
}

// count answers with one field of the cached counters
func (c *CommonInfoController) count(ctx *gin.Context, pick func(*models.PortalStats) int64) {
	stats, err := c.statsService.Counts(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.CountResponse{Count: pick(stats)}))
}

// ProgramCount returns the number of programs
// @Summary Program count
// @Tags commoninfo
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Count"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /commoninfo/programcount [get]
func (c *CommonInfoController) ProgramCount(ctx *gin.Context) {
	c.count(ctx, func(s *models.PortalStats) int64 { return s.Programs })
}

// InstitutionCount returns the number of approved institutions
// @Summary Institution count
// @Tags commoninfo
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Count"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /commoninfo/institutioncount [get]
func (c *CommonInfoController) InstitutionCount(ctx *gin.Context) {
	c.count(ctx, func(s *models.PortalStats) int64 { return s.Institutions })
}

// StudentCount returns the number of students
// @Summary Student count
// @Tags commoninfo
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Count"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /commoninfo/studentcount [get]
func (c *CommonInfoController) StudentCount(ctx *gin.Context) {
	c.count(ctx, func(s *models.PortalStats) int64 { return s.Students })
}

// CountryCount returns the number of distinct institution countries
// @Summary Country count
// @Tags commoninfo
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Count"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /commoninfo/countrycount [get]
func (c *CommonInfoController) CountryCount(ctx *gin.Context) {
	c.count(ctx, func(s *models.PortalStats) int64 { return s.Countries })
}

// GetStorage returns the value the caller stored under a key
// @Summary Read client storage
// @Tags client_storage
// @Produce json
// @Security BearerAuth
// @Param id path string true "Storage key"
// @Success 200 {object} dto.APIResponse{data=models.StorageEntry} "Stored value"
// @Failure 400 {object} dto.ErrorResponse "Invalid key"
// @Failure 404 {object} dto.ErrorResponse "Storage key not found"
// @Router /client_storage/getinfo/{id} [get]
func (c *CommonInfoController) GetStorage(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	entry, err := c.storageService.Get(ctx.Request.Context(), principal.AccountID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(entry))
}

// PutStorage stores a JSON value under a key for the caller
// @Summary Write client storage
// @Tags client_storage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Storage key"
// @Param request body dto.StorageValueRequest true "Value"
// @Success 200 {object} dto.APIResponse{data=models.StorageEntry} "Stored value"
// @Failure 400 {object} dto.ErrorResponse "Invalid key or value"
// @Router /client_storage/postinfo/{id} [post]
func (c *CommonInfoController) PutStorage(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.StorageValueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	entry, err := c.storageService.Put(ctx.Request.Context(), principal.AccountID, ctx.Param("id"), req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(entry))
}
