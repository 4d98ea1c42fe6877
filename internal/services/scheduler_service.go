package services

import (
	"context"
	"errors"
	"time"

	"github.com/alimgiray/contribsync/pkg/logger"
)

type SchedulerService struct {
	jobService        *JobService
	githubRepoService *GitHubRepositoryService
	interval          time.Duration
}

func NewSchedulerService(
	jobService *JobService,
	githubRepoService *GitHubRepositoryService,
	interval time.Duration,
) *SchedulerService {
	return &SchedulerService{
		jobService:        jobService,
		githubRepoService: githubRepoService,
		interval:          interval,
	}
}

// StartScheduler enqueues a contributor sync for every registered repository
// once per interval until ctx is cancelled
func (s *SchedulerService) StartScheduler(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		logger.WithField("interval", s.interval.String()).Info("Scheduler started")

		for {
			select {
			case <-ctx.Done():
				logger.Info("Scheduler stopped")
				return
			case <-ticker.C:
				if _, err := s.ScheduleAll(); err != nil {
					logger.WithError(err).Error("Failed to schedule contributor sync")
				}
			}
		}
	}()
}

// ScheduleAll queues a sync job for each repository without an active one
// and returns how many jobs were created
func (s *SchedulerService) ScheduleAll() (int, error) {
	repos, err := s.githubRepoService.ListRepositories()
	if err != nil {
		return 0, err
	}

	scheduled := 0
	for _, repo := range repos {
		job, err := s.jobService.CreateContributorSyncJob(repo.ID)
		if errors.Is(err, ErrJobAlreadyActive) {
			continue
		}
		if err != nil {
			logger.WithError(err).WithField("repository", repo.FullName).Error("Failed to create sync job")
			continue
		}

		logger.WithField("repository", repo.FullName).WithField("job_id", job.ID).Info("Scheduled contributor sync")
		scheduled++
	}

	return scheduled, nil
}
