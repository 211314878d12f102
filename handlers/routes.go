package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yacut/config"
)

// RegisterRoutes sets up all the routes for the URL shortener service
// and applies the request ID, logging, recovery and CORS middleware.
func RegisterRoutes(r *gin.Engine, handler URLHandlerInterface, config *config.Config, logger *zap.Logger) {
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger))
	r.Use(RecoveryMiddleware(logger))
	r.Use(CORSMiddleware(config.AllowedOrigins))

	r.SetHTMLTemplate(Templates())
	r.MaxMultipartMemory = config.MaxUploadBytes()

	api := r.Group("/api")
	{
		api.POST("/id/", handler.CreateShortURL)
		api.GET("/id/:short_id/", handler.GetURLData)
		api.POST("/files/", handler.UploadFiles)
	}

	r.GET("/health", handler.HealthCheck)

	// Browser pages
	r.GET("/", handler.IndexPage)
	r.POST("/", handler.IndexPage)
	r.GET("/files", handler.FilesPage)
	r.POST("/files", handler.FilesPage)

	// Redirection route, matched after the static routes above
	r.GET("/:short_id", handler.RedirectURL)

	r.NoRoute(handler.NotFound)
}
