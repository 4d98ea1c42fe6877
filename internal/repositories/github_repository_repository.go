package repositories

import (
	"database/sql"
	"time"

	"github.com/alimgiray/contribsync/internal/models"
)

type GitHubRepositoryRepository struct {
	db *sql.DB
}

func NewGitHubRepositoryRepository(db *sql.DB) *GitHubRepositoryRepository {
	return &GitHubRepositoryRepository{db: db}
}

const githubRepositoryColumns = `id, github_id, name, full_name, description, url, language,
	stars, forks, default_branch, last_synced_at, created_at, updated_at`

// Create creates a new GitHub repository
func (r *GitHubRepositoryRepository) Create(repo *models.GitHubRepository) error {
	query := `
		INSERT INTO github_repositories (` + githubRepositoryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		repo.ID, repo.GithubID, repo.Name, repo.FullName, repo.Description,
		repo.URL, repo.Language, repo.Stars, repo.Forks, repo.DefaultBranch,
		repo.LastSyncedAt, repo.CreatedAt, repo.UpdatedAt,
	)

	return err
}

// GetByID retrieves a GitHub repository by ID
func (r *GitHubRepositoryRepository) GetByID(id string) (*models.GitHubRepository, error) {
	query := `SELECT ` + githubRepositoryColumns + ` FROM github_repositories WHERE id = ?`
	return scanGitHubRepository(r.db.QueryRow(query, id))
}

// GetByFullName retrieves a GitHub repository by its owner/name
func (r *GitHubRepositoryRepository) GetByFullName(fullName string) (*models.GitHubRepository, error) {
	query := `SELECT ` + githubRepositoryColumns + ` FROM github_repositories WHERE full_name = ? COLLATE NOCASE`
	return scanGitHubRepository(r.db.QueryRow(query, fullName))
}

// Update updates a GitHub repository
func (r *GitHubRepositoryRepository) Update(repo *models.GitHubRepository) error {
	repo.UpdatedAt = time.Now()

	query := `
		UPDATE github_repositories SET
			github_id = ?, name = ?, full_name = ?, description = ?, url = ?,
			language = ?, stars = ?, forks = ?, default_branch = ?, last_synced_at = ?,
			updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		repo.GithubID, repo.Name, repo.FullName, repo.Description, repo.URL,
		repo.Language, repo.Stars, repo.Forks, repo.DefaultBranch, repo.LastSyncedAt,
		repo.UpdatedAt, repo.ID,
	)

	return err
}

// ListAll retrieves all registered repositories
func (r *GitHubRepositoryRepository) ListAll() ([]*models.GitHubRepository, error) {
	query := `SELECT ` + githubRepositoryColumns + ` FROM github_repositories ORDER BY full_name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	repos := []*models.GitHubRepository{}
	for rows.Next() {
		repo, err := scanGitHubRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}

	return repos, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGitHubRepository(row rowScanner) (*models.GitHubRepository, error) {
	repo := &models.GitHubRepository{}
	err := row.Scan(
		&repo.ID, &repo.GithubID, &repo.Name, &repo.FullName, &repo.Description,
		&repo.URL, &repo.Language, &repo.Stars, &repo.Forks, &repo.DefaultBranch,
		&repo.LastSyncedAt, &repo.CreatedAt, &repo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return repo, nil
}
