package repositories

import (
	"database/sql"
	"testing"

	"github.com/alimgiray/contribsync/internal/models"
	"github.com/alimgiray/contribsync/pkg/database"
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

func seedRepositoryAndPerson(t *testing.T, db *sql.DB, login string, githubUserID int64) (*models.GitHubRepository, *models.GithubPerson) {
	t.Helper()

	repoRepo := NewGitHubRepositoryRepository(db)
	repo, err := repoRepo.GetByFullName("OWASP/Nest")
	if err == sql.ErrNoRows {
		repo = models.NewGitHubRepository("OWASP/Nest")
		require.NoError(t, repoRepo.Create(repo))
	} else {
		require.NoError(t, err)
	}

	person := &models.GithubPerson{GithubUserID: githubUserID, Username: login}
	require.NoError(t, NewGithubPersonRepository(db).Upsert(person))

	return repo, person
}

func TestBulkSaveInsertsAndUpdates(t *testing.T) {
	db := newTestDB(t)
	repo, alice := seedRepositoryAndPerson(t, db, "alice", 1)
	_, bob := seedRepositoryAndPerson(t, db, "bob", 2)
	contributorRepo := NewRepositoryContributorRepository(db)

	existing := models.NewRepositoryContributor("node-alice", repo.ID, alice.ID)
	existing.ContributionsCount = 1
	require.NoError(t, contributorRepo.BulkSave([]*models.RepositoryContributor{existing}))
	require.NotEmpty(t, existing.ID)
	existingID := existing.ID

	existing.ContributionsCount = 10
	created := models.NewRepositoryContributor("node-bob", repo.ID, bob.ID)
	created.ContributionsCount = 4

	err := contributorRepo.BulkSave([]*models.RepositoryContributor{created, existing})
	require.NoError(t, err)

	assert.Equal(t, existingID, existing.ID)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	stored, err := contributorRepo.GetByRepositoryID(repo.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "node-alice", stored[0].NodeID)
	assert.Equal(t, 10, stored[0].ContributionsCount)
	assert.Equal(t, "node-bob", stored[1].NodeID)
	assert.Equal(t, 4, stored[1].ContributionsCount)
}

func TestBulkSaveRollsBackWholeBatch(t *testing.T) {
	db := newTestDB(t)
	repo, alice := seedRepositoryAndPerson(t, db, "alice", 1)
	contributorRepo := NewRepositoryContributorRepository(db)

	first := models.NewRepositoryContributor("node-1", repo.ID, alice.ID)
	// Same (repository, user) pair violates the unique constraint
	duplicate := models.NewRepositoryContributor("node-2", repo.ID, alice.ID)

	err := contributorRepo.BulkSave([]*models.RepositoryContributor{first, duplicate})
	assert.Error(t, err)
	assert.Empty(t, first.ID, "ids are only assigned after commit")
	assert.True(t, first.CreatedAt.IsZero())
	assert.True(t, first.UpdatedAt.IsZero())
	assert.True(t, duplicate.UpdatedAt.IsZero())

	count, err := contributorRepo.CountByRepositoryID(repo.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestBulkSaveRollbackKeepsUpdateTimestamps(t *testing.T) {
	db := newTestDB(t)
	repo, alice := seedRepositoryAndPerson(t, db, "alice", 1)
	contributorRepo := NewRepositoryContributorRepository(db)

	saved := models.NewRepositoryContributor("node-1", repo.ID, alice.ID)
	require.NoError(t, contributorRepo.BulkSave([]*models.RepositoryContributor{saved}))
	createdAt, updatedAt := saved.CreatedAt, saved.UpdatedAt

	saved.ContributionsCount = 5
	clash := models.NewRepositoryContributor("node-2", repo.ID, alice.ID)

	err := contributorRepo.BulkSave([]*models.RepositoryContributor{saved, clash})
	assert.Error(t, err)
	assert.Equal(t, createdAt, saved.CreatedAt)
	assert.Equal(t, updatedAt, saved.UpdatedAt)
	assert.True(t, clash.CreatedAt.IsZero())
}

func TestBulkSaveEmptyBatch(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, NewRepositoryContributorRepository(db).BulkSave(nil))
}

func TestGetByNodeID(t *testing.T) {
	db := newTestDB(t)
	repo, alice := seedRepositoryAndPerson(t, db, "alice", 1)
	contributorRepo := NewRepositoryContributorRepository(db)

	contributor := models.NewRepositoryContributor("12345", repo.ID, alice.ID)
	contributor.ContributionsCount = 7
	require.NoError(t, contributorRepo.BulkSave([]*models.RepositoryContributor{contributor}))

	found, err := contributorRepo.GetByNodeID(repo.ID, "12345")
	require.NoError(t, err)
	assert.Equal(t, contributor.ID, found.ID)
	assert.Equal(t, alice.ID, found.UserID)
	assert.Equal(t, 7, found.ContributionsCount)

	_, err = contributorRepo.GetByNodeID(repo.ID, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = contributorRepo.GetByNodeID("other-repo", "12345")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetByUserID(t *testing.T) {
	db := newTestDB(t)
	repo, alice := seedRepositoryAndPerson(t, db, "alice", 1)
	contributorRepo := NewRepositoryContributorRepository(db)

	contributor := models.NewRepositoryContributor("MDQ6VXNlcjE=", repo.ID, alice.ID)
	require.NoError(t, contributorRepo.BulkSave([]*models.RepositoryContributor{contributor}))

	found, err := contributorRepo.GetByUserID(repo.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, contributor.ID, found.ID)
	assert.Equal(t, "MDQ6VXNlcjE=", found.NodeID)

	_, err = contributorRepo.GetByUserID("other-repo", alice.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetDetailsByRepositoryID(t *testing.T) {
	db := newTestDB(t)
	repo, alice := seedRepositoryAndPerson(t, db, "alice", 1)
	_, bob := seedRepositoryAndPerson(t, db, "bob", 2)
	contributorRepo := NewRepositoryContributorRepository(db)

	a := models.NewRepositoryContributor("a", repo.ID, alice.ID)
	a.ContributionsCount = 2
	b := models.NewRepositoryContributor("b", repo.ID, bob.ID)
	b.ContributionsCount = 9
	require.NoError(t, contributorRepo.BulkSave([]*models.RepositoryContributor{a, b}))

	details, err := contributorRepo.GetDetailsByRepositoryID(repo.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "bob", details[0].Username)
	assert.Equal(t, 9, details[0].ContributionsCount)
	assert.Equal(t, "alice", details[1].Username)
}

func TestGithubPersonUpsert(t *testing.T) {
	db := newTestDB(t)
	personRepo := NewGithubPersonRepository(db)

	name := "Alice"
	person := &models.GithubPerson{GithubUserID: 42, Username: "alice", DisplayName: &name}
	require.NoError(t, personRepo.Upsert(person))
	firstID := person.ID

	renamed := &models.GithubPerson{GithubUserID: 42, Username: "alice-renamed"}
	require.NoError(t, personRepo.Upsert(renamed))
	assert.Equal(t, firstID, renamed.ID)

	stored, err := personRepo.GetByID(firstID)
	require.NoError(t, err)
	assert.Equal(t, "alice-renamed", stored.Username)
	require.NotNil(t, stored.DisplayName)
	assert.Equal(t, "Alice", *stored.DisplayName)
}

func TestGitHubRepositoryRepository(t *testing.T) {
	db := newTestDB(t)
	repoRepo := NewGitHubRepositoryRepository(db)

	repo := models.NewGitHubRepository("OWASP/Nest")
	require.NoError(t, repoRepo.Create(repo))

	found, err := repoRepo.GetByFullName("owasp/nest")
	require.NoError(t, err)
	assert.Equal(t, repo.ID, found.ID)
	assert.Nil(t, found.LastSyncedAt)

	language := "Python"
	found.Language = &language
	found.Stars = 100
	require.NoError(t, repoRepo.Update(found))

	reloaded, err := repoRepo.GetByID(repo.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, reloaded.Stars)
	assert.Equal(t, "Python", *reloaded.Language)

	assert.Error(t, repoRepo.Create(models.NewGitHubRepository("owasp/NEST")))

	all, err := repoRepo.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestJobQueue(t *testing.T) {
	db := newTestDB(t)
	repo, _ := seedRepositoryAndPerson(t, db, "alice", 1)
	jobRepo := NewJobRepository(db)

	job, err := jobRepo.GetNextPendingJob(models.JobTypeContributors, "contributors-1")
	require.NoError(t, err)
	assert.Nil(t, job)

	queued := models.NewJob(repo.ID, models.JobTypeContributors)
	require.NoError(t, jobRepo.Create(queued))

	active, err := jobRepo.HasActiveJob(repo.ID, models.JobTypeContributors)
	require.NoError(t, err)
	assert.True(t, active)

	claimed, err := jobRepo.GetNextPendingJob(models.JobTypeContributors, "contributors-1")
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, queued.ID, claimed.ID)
	assert.Equal(t, models.JobStatusInProgress, claimed.Status)

	next, err := jobRepo.GetNextPendingJob(models.JobTypeContributors, "contributors-2")
	require.NoError(t, err)
	assert.Nil(t, next, "claimed jobs are not handed out twice")

	claimed.MarkCompleted()
	require.NoError(t, jobRepo.Update(claimed))

	stored, err := jobRepo.GetByID(queued.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)
	assert.Equal(t, "contributors-1", *stored.WorkerID)

	active, err = jobRepo.HasActiveJob(repo.ID, models.JobTypeContributors)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestJobCreateIfNoneActive(t *testing.T) {
	db := newTestDB(t)
	repo, _ := seedRepositoryAndPerson(t, db, "alice", 1)
	jobRepo := NewJobRepository(db)

	first := models.NewJob(repo.ID, models.JobTypeContributors)
	created, err := jobRepo.CreateIfNoneActive(first)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = jobRepo.CreateIfNoneActive(models.NewJob(repo.ID, models.JobTypeContributors))
	require.NoError(t, err)
	assert.False(t, created)

	first.MarkFailed("rate limited")
	require.NoError(t, jobRepo.Update(first))

	created, err = jobRepo.CreateIfNoneActive(models.NewJob(repo.ID, models.JobTypeContributors))
	require.NoError(t, err)
	assert.True(t, created)

	jobs, err := jobRepo.GetByRepositoryID(repo.ID)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestJobResetInProgress(t *testing.T) {
	db := newTestDB(t)
	repo, _ := seedRepositoryAndPerson(t, db, "alice", 1)
	jobRepo := NewJobRepository(db)

	require.NoError(t, jobRepo.Create(models.NewJob(repo.ID, models.JobTypeContributors)))
	_, err := jobRepo.GetNextPendingJob(models.JobTypeContributors, "contributors-1")
	require.NoError(t, err)

	n, err := jobRepo.ResetInProgress()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	jobs, err := jobRepo.GetByRepositoryID(repo.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusPending, jobs[0].Status)
	assert.Nil(t, jobs[0].WorkerID)
}
