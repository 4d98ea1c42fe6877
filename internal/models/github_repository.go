package models

import (
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/google/uuid"
)

// GitHubRepository represents a GitHub repository registered for contributor sync
type GitHubRepository struct {
	ID            string     `json:"id"`
	GithubID      int64      `json:"github_id"`
	Name          string     `json:"name"`
	FullName      string     `json:"full_name"`
	Description   *string    `json:"description"`
	URL           string     `json:"url"`
	Language      *string    `json:"language"`
	Stars         int        `json:"stars"`
	Forks         int        `json:"forks"`
	DefaultBranch *string    `json:"default_branch"`
	LastSyncedAt  *time.Time `json:"last_synced_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewGitHubRepository creates a new GitHubRepository with a generated UUID.
// GitHub metadata is filled in on the first sync.
func NewGitHubRepository(fullName string) *GitHubRepository {
	now := time.Now()
	_, name, _ := strings.Cut(fullName, "/")
	return &GitHubRepository{
		ID:        uuid.New().String(),
		Name:      name,
		FullName:  fullName,
		URL:       "https://github.com/" + fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Owner returns the owner part of the full name
func (r *GitHubRepository) Owner() string {
	owner, _, _ := strings.Cut(r.FullName, "/")
	return owner
}

// FromGithub copies repository metadata from a GitHub API payload
func (r *GitHubRepository) FromGithub(gh *github.Repository) {
	r.GithubID = gh.GetID()
	r.Name = gh.GetName()
	r.FullName = gh.GetFullName()
	r.URL = gh.GetHTMLURL()
	r.Stars = gh.GetStargazersCount()
	r.Forks = gh.GetForksCount()

	if gh.Description != nil {
		description := gh.GetDescription()
		r.Description = &description
	}
	if gh.Language != nil {
		language := gh.GetLanguage()
		r.Language = &language
	}
	if gh.DefaultBranch != nil {
		branch := gh.GetDefaultBranch()
		r.DefaultBranch = &branch
	}
}

// ValidateFullName checks that a repository name has the "owner/name" form
func ValidateFullName(fullName string) error {
	owner, name, found := strings.Cut(fullName, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return &ValidationError{Field: "full_name", Message: "Repository must be in owner/name format"}
	}
	return nil
}
