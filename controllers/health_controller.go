package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB and cache.StatisticsCache.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	db    Pinger
	cache Pinger
}

// NewHealthController takes the database and an optional cache.
func NewHealthController(db Pinger, cache Pinger) *HealthController {
	return &HealthController{db: db, cache: cache}
}

// GET /health
func (hc *HealthController) HealthCheck(c *gin.Context) {
	response := gin.H{
		"status":  "ok",
		"message": "Service is healthy",
		"db":      "ok",
	}
	status := http.StatusOK

	if err := hc.db.PingContext(c.Request.Context()); err != nil {
		response["status"] = "error"
		response["db"] = "error: cannot connect to DB"
		status = http.StatusInternalServerError
	}

	if hc.cache != nil {
		response["cache"] = "ok"
		if err := hc.cache.PingContext(c.Request.Context()); err != nil {
			// statistics fall back to the database
			response["cache"] = "error: cannot reach redis"
		}
	}

	c.JSON(status, response)
}
