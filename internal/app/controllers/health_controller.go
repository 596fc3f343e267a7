package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a backing service is reachable
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// HealthResponse reports the reachability of each backing service
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"up"`
	Redis    string `json:"redis" example:"disabled"`
}

// HealthController answers liveness and readiness checks
type HealthController struct {
	database HealthChecker
	cache    HealthChecker
}

// NewHealthController creates a new HealthController. cache is nil when Redis is disabled.
func NewHealthController(database, cache HealthChecker) *HealthController {
	return &HealthController{database: database, cache: cache}
}

func upDown(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}

// Health reports database and Redis reachability. It answers 503 when the
// database is down.
func (c *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	dbUp := c.database.Healthy(checkCtx)
	resp := HealthResponse{Status: "ok", Database: upDown(dbUp), Redis: "disabled"}
	status := http.StatusOK

	if c.cache != nil {
		cacheUp := c.cache.Healthy(checkCtx)
		resp.Redis = upDown(cacheUp)
		// The cache degrades to the database, so a Redis outage is reported but not fatal
		if !cacheUp {
			resp.Status = "degraded"
		}
	}
	if !dbUp {
		resp.Status = "down"
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, resp)
}

// Ping is a liveness check
func (c *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
}
