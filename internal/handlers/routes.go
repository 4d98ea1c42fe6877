package handlers

import (
	"github.com/alimgiray/contribsync/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the health check and the token-guarded API
func RegisterRoutes(router *gin.Engine, apiToken string, health *HealthHandler, repos *RepositoryHandler, jobs *JobHandler) {
	router.GET("/health", health.HealthCheck)
	router.NoRoute(NotFound)

	api := router.Group("/api")
	api.Use(middleware.AuthRequired(apiToken))
	{
		api.GET("/repositories", repos.ListRepositories)
		api.POST("/repositories", repos.RegisterRepository)
		api.POST("/repositories/:id/sync", repos.SyncRepository)
		api.GET("/repositories/:id/contributors", repos.ListContributors)
		api.GET("/repositories/:id/contributors/export", repos.ExportContributors)
		api.GET("/jobs/:id", jobs.GetJob)
	}
}
