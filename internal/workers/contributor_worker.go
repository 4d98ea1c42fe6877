package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/contribsync/internal/models"
	"github.com/alimgiray/contribsync/internal/repositories"
	"github.com/alimgiray/contribsync/internal/services"
	"github.com/alimgiray/contribsync/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

const errorBackoff = 5 * time.Second

// ContributorSource is the GitHub API surface the contributor sync reads
type ContributorSource interface {
	GetRepository(ctx context.Context, owner, name string) (*github.Repository, error)
	ListContributors(ctx context.Context, owner, name string) ([]*github.Contributor, error)
}

// ContributorWorkerDeps groups what every contributor worker shares
type ContributorWorkerDeps struct {
	GitHub              ContributorSource
	JobRepo             *repositories.JobRepository
	GithubRepoService   *services.GitHubRepositoryService
	GithubPersonService *services.GithubPersonService
	ContributorService  *services.RepositoryContributorService
	PollInterval        time.Duration
}

type ContributorWorker struct {
	*BaseWorker
	deps ContributorWorkerDeps
}

func NewContributorWorker(workerID string, deps ContributorWorkerDeps) *ContributorWorker {
	if deps.PollInterval <= 0 {
		deps.PollInterval = 10 * time.Second
	}
	return &ContributorWorker{
		BaseWorker: NewBaseWorker(workerID, models.JobTypeContributors),
		deps:       deps,
	}
}

func (w *ContributorWorker) log() *logrus.Entry {
	return logger.WithField("worker_id", w.WorkerID)
}

// Start polls the job queue for contributor jobs
func (w *ContributorWorker) Start(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)
	w.log().Info("Contributor worker started")

	for {
		select {
		case <-ctx.Done():
			w.log().Info("Contributor worker stopping due to context cancellation")
			return ctx.Err()
		case <-w.StopChan:
			w.log().Info("Contributor worker stopping")
			return nil
		default:
		}

		job, err := w.deps.JobRepo.GetNextPendingJob(models.JobTypeContributors, w.WorkerID)
		if err != nil {
			w.log().WithError(err).Error("Error getting job")
			w.wait(ctx, errorBackoff)
			continue
		}

		if job == nil {
			w.wait(ctx, w.deps.PollInterval)
			continue
		}

		w.processContributorJob(ctx, job)
	}
}

func (w *ContributorWorker) wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-w.StopChan:
	case <-timer.C:
	}
}

// processContributorJob runs a claimed job and records its outcome
func (w *ContributorWorker) processContributorJob(ctx context.Context, job *models.Job) {
	entry := w.log().WithField("job_id", job.ID)
	entry.Info("Processing contributor job")

	if err := w.ProcessJob(ctx, job); err != nil {
		entry.WithError(err).Error("Contributor job failed")
		job.MarkFailed(err.Error())
	} else {
		job.MarkCompleted()
		entry.Info("Contributor job completed")
	}

	if err := w.deps.JobRepo.Update(job); err != nil {
		entry.WithError(err).Error("Error updating job status")
	}
}

// ProcessJob syncs the contributors of the job's repository: it upserts one
// GitHub person per contributor, reconciles each contributor record and
// saves the whole batch at once.
func (w *ContributorWorker) ProcessJob(ctx context.Context, job *models.Job) error {
	repo, err := w.deps.GithubRepoService.GetGitHubRepository(job.RepositoryID)
	if err != nil {
		return fmt.Errorf("failed to get repository %s: %w", job.RepositoryID, err)
	}

	owner, name, err := parseRepoFullName(repo.FullName)
	if err != nil {
		return err
	}

	entry := w.log().WithFields(logrus.Fields{"job_id": job.ID, "repository": repo.FullName})

	ghRepo, err := w.deps.GitHub.GetRepository(ctx, owner, name)
	if err != nil {
		return err
	}

	contributors, err := w.deps.GitHub.ListContributors(ctx, owner, name)
	if err != nil {
		return err
	}
	entry.WithField("count", len(contributors)).Info("Fetched contributors")

	records := make([]*models.RepositoryContributor, 0, len(contributors))
	seen := make(map[string]bool, len(contributors))
	for _, c := range contributors {
		if c.GetNodeID() == "" || seen[c.GetNodeID()] {
			continue
		}
		seen[c.GetNodeID()] = true

		person, err := w.deps.GithubPersonService.UpsertFromContributor(c)
		if err != nil {
			return fmt.Errorf("failed to store contributor %s: %w", c.GetLogin(), err)
		}

		record, err := w.deps.ContributorService.UpdateData(c, repo, person)
		if err != nil {
			return fmt.Errorf("failed to reconcile contributor %s: %w", c.GetLogin(), err)
		}
		records = append(records, record)
	}

	if err := w.deps.ContributorService.BulkSave(records); err != nil {
		return fmt.Errorf("failed to save contributors: %w", err)
	}

	if err := w.deps.GithubRepoService.ApplyGithubMetadata(repo, ghRepo); err != nil {
		return fmt.Errorf("failed to update repository metadata: %w", err)
	}

	entry.WithField("saved", len(records)).Info("Saved contributors")
	return nil
}

func parseRepoFullName(fullName string) (owner, repo string, err error) {
	if err := models.ValidateFullName(fullName); err != nil {
		return "", "", fmt.Errorf("invalid repository name format: %q", fullName)
	}
	owner, repo, _ = strings.Cut(fullName, "/")
	return owner, repo, nil
}
