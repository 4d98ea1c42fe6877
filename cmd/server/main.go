package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/contribsync/internal/handlers"
	"github.com/alimgiray/contribsync/internal/middleware"
	"github.com/alimgiray/contribsync/internal/repositories"
	"github.com/alimgiray/contribsync/internal/services"
	"github.com/alimgiray/contribsync/internal/workers"
	"github.com/alimgiray/contribsync/pkg/config"
	"github.com/alimgiray/contribsync/pkg/database"
	"github.com/alimgiray/contribsync/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init(cfg.LogLevel)
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Repositories
	githubRepoRepo := repositories.NewGitHubRepositoryRepository(database.DB)
	githubPersonRepo := repositories.NewGithubPersonRepository(database.DB)
	contributorRepo := repositories.NewRepositoryContributorRepository(database.DB)
	jobRepo := repositories.NewJobRepository(database.DB)

	// Services
	githubService := services.NewGitHubService(cfg.GitHub.Token)
	githubRepoService := services.NewGitHubRepositoryService(githubRepoRepo)
	githubPersonService := services.NewGithubPersonService(githubPersonRepo)
	contributorService := services.NewRepositoryContributorService(contributorRepo)
	jobService := services.NewJobService(jobRepo)
	exportService := services.NewExportService(contributorService)

	if cfg.GitHub.Token == "" {
		logger.Warnf("GITHUB_TOKEN is not set, GitHub requests are unauthenticated")
	}

	// Workers
	workerManager := workers.NewWorkerManager(jobRepo, workers.ContributorWorkerDeps{
		GitHub:              githubService,
		GithubRepoService:   githubRepoService,
		GithubPersonService: githubPersonService,
		ContributorService:  contributorService,
		PollInterval:        time.Duration(cfg.Workers.PollIntervalSeconds) * time.Second,
	})
	if err := workerManager.StartAll(cfg.Workers.ContributorWorkers); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Scheduler.Enabled {
		scheduler := services.NewSchedulerService(jobService, githubRepoService, time.Duration(cfg.Scheduler.IntervalMinutes)*time.Minute)
		scheduler.StartScheduler(ctx)
	}

	// Router
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())
	handlers.RegisterRoutes(router, cfg.API.Token,
		handlers.NewHealthHandler(database.DB),
		handlers.NewRepositoryHandler(githubRepoService, contributorService, jobService, exportService),
		handlers.NewJobHandler(jobService),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	workerManager.StopAll()
	logger.Info("Server stopped")
}
