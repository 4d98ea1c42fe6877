package handlers

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/alimgiray/contribsync/internal/models"
	"github.com/alimgiray/contribsync/internal/services"
	"github.com/alimgiray/contribsync/pkg/logger"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RepositoryHandler struct {
	githubRepoService  *services.GitHubRepositoryService
	contributorService *services.RepositoryContributorService
	jobService         *services.JobService
	exportService      *services.ExportService
}

func NewRepositoryHandler(
	githubRepoService *services.GitHubRepositoryService,
	contributorService *services.RepositoryContributorService,
	jobService *services.JobService,
	exportService *services.ExportService,
) *RepositoryHandler {
	return &RepositoryHandler{
		githubRepoService:  githubRepoService,
		contributorService: contributorService,
		jobService:         jobService,
		exportService:      exportService,
	}
}

type registerRepositoryRequest struct {
	FullName string `json:"full_name" form:"full_name" binding:"required"`
}

// ListRepositories returns every registered repository
func (h *RepositoryHandler) ListRepositories(c *gin.Context) {
	repos, err := h.githubRepoService.ListRepositories()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    repos,
	})
}

// RegisterRepository stores a repository and queues its first contributor sync
func (h *RepositoryHandler) RegisterRepository(c *gin.Context) {
	var request registerRepositoryRequest
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request data: " + err.Error(),
		})
		return
	}

	repo, created, err := h.githubRepoService.RegisterRepository(request.FullName)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	job, err := h.jobService.CreateContributorSyncJob(repo.ID)
	if err != nil && !errors.Is(err, services.ErrJobAlreadyActive) {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	c.JSON(status, gin.H{
		"success": true,
		"message": "Repository registered",
		"data": gin.H{
			"repository": repo,
			"job":        job,
		},
	})
}

// SyncRepository queues a contributor sync for an existing repository
func (h *RepositoryHandler) SyncRepository(c *gin.Context) {
	repo, ok := h.loadRepository(c)
	if !ok {
		return
	}

	job, err := h.jobService.CreateContributorSyncJob(repo.ID)
	if errors.Is(err, services.ErrJobAlreadyActive) {
		respondError(c, http.StatusConflict, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Contributor sync queued",
		"data":    job,
	})
}

// ListContributors returns the stored contributors of a repository
func (h *RepositoryHandler) ListContributors(c *gin.Context) {
	repo, ok := h.loadRepository(c)
	if !ok {
		return
	}

	contributors, err := h.contributorService.GetRepositoryContributors(repo.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"repository":   repo,
			"contributors": contributors,
		},
	})
}

// ExportContributors downloads the contributors of a repository as xlsx
func (h *RepositoryHandler) ExportContributors(c *gin.Context) {
	repo, ok := h.loadRepository(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.ExportRepositoryContributors(&buf, repo); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := strings.ReplaceAll(repo.FullName, "/", "_") + "_contributors.xlsx"
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *RepositoryHandler) loadRepository(c *gin.Context) (*models.GitHubRepository, bool) {
	repo, err := h.githubRepoService.GetGitHubRepository(c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Repository not found",
		})
		return nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return nil, false
	}
	return repo, true
}

func respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": err.Error(),
	})
}
