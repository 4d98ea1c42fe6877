package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/contribsync/internal/models"
	"github.com/alimgiray/contribsync/internal/repositories"
	"github.com/google/go-github/v57/github"
)

type GitHubRepositoryService struct {
	githubRepoRepo *repositories.GitHubRepositoryRepository
}

func NewGitHubRepositoryService(githubRepoRepo *repositories.GitHubRepositoryRepository) *GitHubRepositoryService {
	return &GitHubRepositoryService{
		githubRepoRepo: githubRepoRepo,
	}
}

// RegisterRepository returns the repository stored under fullName, creating
// it if needed. The boolean reports whether a new row was created.
func (s *GitHubRepositoryService) RegisterRepository(fullName string) (*models.GitHubRepository, bool, error) {
	fullName = strings.TrimSpace(fullName)
	if err := models.ValidateFullName(fullName); err != nil {
		return nil, false, err
	}

	existing, err := s.githubRepoRepo.GetByFullName(fullName)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up repository: %w", err)
	}

	repo := models.NewGitHubRepository(fullName)
	if err := s.githubRepoRepo.Create(repo); err != nil {
		return nil, false, fmt.Errorf("failed to create repository: %w", err)
	}

	return repo, true, nil
}

func (s *GitHubRepositoryService) GetGitHubRepository(id string) (*models.GitHubRepository, error) {
	return s.githubRepoRepo.GetByID(id)
}

func (s *GitHubRepositoryService) ListRepositories() ([]*models.GitHubRepository, error) {
	return s.githubRepoRepo.ListAll()
}

// ApplyGithubMetadata refreshes the stored repository from a GitHub payload
// and records the sync time
func (s *GitHubRepositoryService) ApplyGithubMetadata(repo *models.GitHubRepository, gh *github.Repository) error {
	repo.FromGithub(gh)
	now := time.Now()
	repo.LastSyncedAt = &now
	return s.githubRepoRepo.Update(repo)
}
