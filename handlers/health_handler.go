package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck reports that the service is up.
func (h *URLHandler) HealthCheck(c *gin.Context) {
	h.log(c).Debug("Health check request",
		zap.String("ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()))
	c.String(http.StatusOK, "OK")
}

// NotFound answers unknown routes with JSON under /api/ and an HTML page elsewhere.
func (h *URLHandler) NotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, msgPageNotFound)
}
