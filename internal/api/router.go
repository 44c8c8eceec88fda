package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErmoGarcia/expense-toolkit/internal/api/handler"
	"github.com/ErmoGarcia/expense-toolkit/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	importHandler *handler.ImportHandler,
	notificationHandler *handler.NotificationHandler,
	queueHandler *handler.QueueHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Statement file imports
		imports := v1.Group("/imports")
		{
			imports.POST("", importHandler.Create)
			imports.GET("", importHandler.List)
			imports.GET("/:id", importHandler.GetByID)
		}

		// Notification intake
		notifications := v1.Group("/notifications")
		{
			notifications.POST("", notificationHandler.Create)
			notifications.GET("/unprocessed", notificationHandler.ListUnprocessed)
		}

		// Review queue operations
		queue := v1.Group("/queue")
		{
			queue.GET("/next", queueHandler.Next)
			queue.GET("/count", queueHandler.Count)
			queue.POST("/process", queueHandler.Process)
			queue.DELETE("/:id", queueHandler.Discard)
			queue.GET("/duplicates", queueHandler.Duplicates)
			queue.POST("/merge", queueHandler.Merge)
			queue.POST("/group", queueHandler.Group)
			queue.POST("/apply-rules", queueHandler.ApplyRules)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
