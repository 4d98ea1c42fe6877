package services

import (
	"database/sql"
	"sync"
	"testing"

	"github.com/alimgiray/contribsync/internal/models"
	"github.com/alimgiray/contribsync/internal/repositories"
	"github.com/alimgiray/contribsync/pkg/database"
	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRegisterRepository(t *testing.T) {
	db := newTestDB(t)
	service := NewGitHubRepositoryService(repositories.NewGitHubRepositoryRepository(db))

	repo, created, err := service.RegisterRepository(" OWASP/Nest ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "OWASP/Nest", repo.FullName)

	again, created, err := service.RegisterRepository("owasp/nest")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, repo.ID, again.ID)

	_, _, err = service.RegisterRepository("not-a-repo")
	assert.IsType(t, &models.ValidationError{}, err)
}

func TestApplyGithubMetadata(t *testing.T) {
	db := newTestDB(t)
	service := NewGitHubRepositoryService(repositories.NewGitHubRepositoryRepository(db))

	repo, _, err := service.RegisterRepository("OWASP/Nest")
	require.NoError(t, err)

	err = service.ApplyGithubMetadata(repo, &github.Repository{
		ID:              github.Int64(7),
		Name:            github.String("Nest"),
		FullName:        github.String("OWASP/Nest"),
		StargazersCount: github.Int(300),
	})
	require.NoError(t, err)

	stored, err := service.GetGitHubRepository(repo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stored.GithubID)
	assert.Equal(t, 300, stored.Stars)
	assert.NotNil(t, stored.LastSyncedAt)
}

func TestCreateContributorSyncJob(t *testing.T) {
	db := newTestDB(t)
	repoService := NewGitHubRepositoryService(repositories.NewGitHubRepositoryRepository(db))
	jobService := NewJobService(repositories.NewJobRepository(db))

	repo, _, err := repoService.RegisterRepository("OWASP/Nest")
	require.NoError(t, err)

	job, err := jobService.CreateContributorSyncJob(repo.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobTypeContributors, job.JobType)
	assert.Equal(t, models.JobStatusPending, job.Status)

	_, err = jobService.CreateContributorSyncJob(repo.ID)
	assert.ErrorIs(t, err, ErrJobAlreadyActive)

	jobs, err := jobService.GetRepositoryJobs(repo.ID)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestCreateContributorSyncJobConcurrent(t *testing.T) {
	db := newTestDB(t)
	repoService := NewGitHubRepositoryService(repositories.NewGitHubRepositoryRepository(db))
	jobService := NewJobService(repositories.NewJobRepository(db))

	repo, _, err := repoService.RegisterRepository("OWASP/Nest")
	require.NoError(t, err)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = jobService.CreateContributorSyncJob(repo.ID)
		}(i)
	}
	wg.Wait()

	queued := 0
	for _, err := range errs {
		if err == nil {
			queued++
			continue
		}
		assert.ErrorIs(t, err, ErrJobAlreadyActive)
	}
	assert.Equal(t, 1, queued)

	jobs, err := jobService.GetRepositoryJobs(repo.ID)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestSchedulerScheduleAll(t *testing.T) {
	db := newTestDB(t)
	repoService := NewGitHubRepositoryService(repositories.NewGitHubRepositoryRepository(db))
	jobService := NewJobService(repositories.NewJobRepository(db))
	scheduler := NewSchedulerService(jobService, repoService, 0)

	nest, _, err := repoService.RegisterRepository("OWASP/Nest")
	require.NoError(t, err)
	_, _, err = repoService.RegisterRepository("OWASP/wrongsecrets")
	require.NoError(t, err)

	_, err = jobService.CreateContributorSyncJob(nest.ID)
	require.NoError(t, err)

	scheduled, err := scheduler.ScheduleAll()
	require.NoError(t, err)
	assert.Equal(t, 1, scheduled, "repositories with an active job are skipped")

	scheduled, err = scheduler.ScheduleAll()
	require.NoError(t, err)
	assert.Equal(t, 0, scheduled)
}
