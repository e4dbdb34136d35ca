package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-export/internal/http/handlers"
	"github.com/phambaophuc/image-export/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	handler *handlers.Handler
	logger  *zap.Logger
}

func NewRouter(handler *handlers.Handler, logger *zap.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireJSON())
	{
		v1.GET("/health", r.handler.HealthCheck)
		v1.GET("/stats", r.handler.GetStats)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", r.handler.CreateSession)
			sessions.GET("/:id", r.handler.GetSession)
			sessions.PATCH("/:id", r.handler.UpdateSession)
			sessions.DELETE("/:id", r.handler.CloseSession)
			sessions.POST("/:id/undo", r.handler.UndoSession)
			sessions.POST("/:id/validate", r.handler.ValidateSession)
			sessions.POST("/:id/export", r.handler.ExportSession)
		}

		v1.GET("/exports/:id", r.handler.GetExportJob)
		v1.POST("/settings/validate", r.handler.ValidateSettings)
		v1.POST("/units/length", r.handler.ConvertLength)
		v1.POST("/units/resolution", r.handler.ConvertResolution)
		v1.POST("/images/preview", r.handler.Preview)
		v1.DELETE("/images/preview/cache", r.handler.ClearPreviewCache)
		v1.POST("/reveal", r.handler.Reveal)
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Image export is running",
		})
	})

	return router
}
