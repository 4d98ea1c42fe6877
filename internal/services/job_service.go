package services

import (
	"errors"
	"fmt"

	"github.com/alimgiray/contribsync/internal/models"
	"github.com/alimgiray/contribsync/internal/repositories"
)

// ErrJobAlreadyActive is returned when a repository already has a pending
// or running job of the requested type
var ErrJobAlreadyActive = errors.New("a sync job is already in progress or pending for this repository")

// JobService handles job creation and management
type JobService struct {
	jobRepo *repositories.JobRepository
}

// NewJobService creates a new job service
func NewJobService(jobRepo *repositories.JobRepository) *JobService {
	return &JobService{
		jobRepo: jobRepo,
	}
}

// CreateContributorSyncJob queues a contributor sync for a repository
func (s *JobService) CreateContributorSyncJob(repositoryID string) (*models.Job, error) {
	job := models.NewJob(repositoryID, models.JobTypeContributors)
	created, err := s.jobRepo.CreateIfNoneActive(job)
	if err != nil {
		return nil, fmt.Errorf("failed to queue contributor sync: %w", err)
	}

	if !created {
		return nil, ErrJobAlreadyActive
	}

	return job, nil
}

func (s *JobService) GetJob(id string) (*models.Job, error) {
	return s.jobRepo.GetByID(id)
}

func (s *JobService) GetRepositoryJobs(repositoryID string) ([]*models.Job, error) {
	return s.jobRepo.GetByRepositoryID(repositoryID)
}
