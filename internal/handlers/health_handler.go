package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laxmielectronics/site-api/internal/models"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Healthcheck reports liveness only; mail configuration is not consulted.
func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Message: "Server is running",
	})
}
