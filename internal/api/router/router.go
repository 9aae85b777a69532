package router

import (
	"net/http"

	"github.com/ThadPinch/ffp-render/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "render-api-service",
		})
	})

	// Initialize render handler
	renderHandler := handler.NewRenderHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(IdentityMiddleware())
	{
		// POST /api/v1/designs/:design_id/render - Queue a render for a design
		v1.POST("/designs/:design_id/render", renderHandler.CreateRenderJob)

		jobs := v1.Group("/render-jobs")
		{
			// GET /api/v1/render-jobs - List render jobs with filtering and pagination
			jobs.GET("", renderHandler.ListRenderJobs)

			// GET /api/v1/render-jobs/:job_token - Poll job status
			jobs.GET("/:job_token", renderHandler.GetJobStatus)

			// GET /api/v1/render-jobs/:job_token/artifact - Download the finished PDF
			jobs.GET("/:job_token/artifact", renderHandler.DownloadArtifact)
		}
	}

	return r
}
