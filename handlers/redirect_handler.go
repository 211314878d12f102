package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yacut/services"
)

// RedirectURL handles the redirection from a short ID to its original URL.
func (h *URLHandler) RedirectURL(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.RequestTimeout)
	defer cancel()

	short := c.Param("short_id")

	urlMap, err := h.service.GetURLData(ctx, short)
	if err != nil {
		h.handleRedirectError(c, err, short)
		return
	}

	// Validate the original URL to prevent open redirects
	if err := h.validate.Var(urlMap.Original, "url"); err != nil {
		h.log(c).Warn("Invalid original URL",
			zap.String("short", short),
			zap.String("original_url", urlMap.Original))
		renderError(c, http.StatusNotFound, msgPageNotFound)
		return
	}

	h.log(c).Info("Redirecting",
		zap.String("short", short),
		zap.String("original_url", urlMap.Original),
		zap.String("ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()))
	c.Redirect(http.StatusFound, urlMap.Original)
}

func (h *URLHandler) handleRedirectError(c *gin.Context, err error, short string) {
	switch {
	case errors.Is(err, services.ErrShortURLNotFound):
		h.log(c).Info("Short ID not found", zap.String("short", short))
		renderError(c, http.StatusNotFound, msgPageNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		h.log(c).Warn("Request timed out", zap.String("short", short))
		renderError(c, http.StatusRequestTimeout, msgTimeout)
	default:
		h.log(c).Error("Error retrieving URL", zap.String("short", short), zap.Error(err))
		renderError(c, http.StatusInternalServerError, msgInternalError)
	}
}
