package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Optimizer string `json:"optimizer"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}

	if shoppingOptimizer == nil {
		response.Status = "degraded"
		response.Optimizer = "not initialized"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response.Optimizer = "ready"

	c.JSON(http.StatusOK, response)
}
