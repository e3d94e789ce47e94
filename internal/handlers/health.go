package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fashion-ai-backend/internal/models"
)

// HealthHandler reports process liveness. AI service liveness is a separate
// endpoint on FashionHandler.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
