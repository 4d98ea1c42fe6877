package models

import (
	"time"
)

// GithubContributor is the part of a GitHub contributor payload that the
// sync reads. *github.Contributor satisfies it.
type GithubContributor interface {
	GetNodeID() string
	GetContributions() int
}

// RepositoryContributor links a GitHub person to a repository with the
// number of contributions GitHub reports for that pair.
// An empty ID means the record has not been persisted yet.
type RepositoryContributor struct {
	ID                 string    `json:"id"`
	NodeID             string    `json:"node_id"`
	RepositoryID       string    `json:"repository_id"`
	UserID             string    `json:"user_id"`
	ContributionsCount int       `json:"contributions_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewRepositoryContributor creates an unsaved contributor record
func NewRepositoryContributor(nodeID, repositoryID, userID string) *RepositoryContributor {
	return &RepositoryContributor{
		NodeID:       nodeID,
		RepositoryID: repositoryID,
		UserID:       userID,
	}
}

// FromGithub copies the contribution count from a GitHub payload.
// Negative counts are stored as given.
func (rc *RepositoryContributor) FromGithub(gh GithubContributor) {
	rc.ContributionsCount = gh.GetContributions()
}

func (rc *RepositoryContributor) GetID() string {
	return rc.ID
}

func (rc *RepositoryContributor) SetID(id string) {
	rc.ID = id
}

// Touch stamps UpdatedAt and fills CreatedAt on first save
func (rc *RepositoryContributor) Touch(now time.Time) {
	if rc.CreatedAt.IsZero() {
		rc.CreatedAt = now
	}
	rc.UpdatedAt = now
}

// ColumnValues returns the values for the non-id columns of
// repository_contributors, in RepositoryContributorColumns order, stamped
// as of now. The record itself is not modified.
func (rc *RepositoryContributor) ColumnValues(now time.Time) []interface{} {
	createdAt := rc.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return []interface{}{
		rc.NodeID,
		rc.RepositoryID,
		rc.UserID,
		rc.ContributionsCount,
		createdAt,
		now,
	}
}

var RepositoryContributorColumns = []string{
	"node_id", "repository_id", "user_id", "contributions_count", "created_at", "updated_at",
}

// ContributorDetails is a contributor row joined with its GitHub person
type ContributorDetails struct {
	ID                 string    `json:"id"`
	RepositoryID       string    `json:"repository_id"`
	UserID             string    `json:"user_id"`
	Username           string    `json:"username"`
	DisplayName        *string   `json:"display_name"`
	ProfileURL         *string   `json:"profile_url"`
	ContributionsCount int       `json:"contributions_count"`
	UpdatedAt          time.Time `json:"updated_at"`
}
