package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polica/planogram-service/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}

	// Check database connection
	if database.Pool() != nil {
		err := database.Status(c.Request.Context())
		if err != nil {
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	c.JSON(http.StatusOK, response)
}

// ReadyCheck reports whether the service can accept allocation requests.
// The service is ready once the engine is initialized and, when run history
// is configured, the database answers a ping.
func ReadyCheck(c *gin.Context) {
	if engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "engine not initialized"})
		return
	}

	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "database unreachable"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
