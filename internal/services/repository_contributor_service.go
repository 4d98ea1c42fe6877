package services

import (
	"database/sql"
	"errors"

	"github.com/alimgiray/contribsync/internal/models"
)

// ContributorStore is the persistence the contributor sync needs
type ContributorStore interface {
	GetByNodeID(repositoryID, nodeID string) (*models.RepositoryContributor, error)
	GetByUserID(repositoryID, userID string) (*models.RepositoryContributor, error)
	BulkSave(contributors []*models.RepositoryContributor) error
	GetDetailsByRepositoryID(repositoryID string) ([]*models.ContributorDetails, error)
}

type RepositoryContributorService struct {
	store      ContributorStore
	fromGithub func(*models.RepositoryContributor, models.GithubContributor)
}

func NewRepositoryContributorService(store ContributorStore) *RepositoryContributorService {
	return &RepositoryContributorService{
		store:      store,
		fromGithub: (*models.RepositoryContributor).FromGithub,
	}
}

// BulkSave passes the batch to the store in a single call, same order
func (s *RepositoryContributorService) BulkSave(contributors []*models.RepositoryContributor) error {
	return s.store.BulkSave(contributors)
}

// UpdateData reconciles one GitHub contributor payload with the stored row.
// A record found by node id keeps its own repository and user references.
// When the node id is unknown but the user already has a row in the
// repository (GitHub reissued the node id), that row is reused with the new
// node id. Otherwise a new unsaved record is built for repository and user.
// The returned record is not saved, callers batch it through BulkSave.
func (s *RepositoryContributorService) UpdateData(
	gh models.GithubContributor,
	repository *models.GitHubRepository,
	user *models.GithubPerson,
) (*models.RepositoryContributor, error) {
	contributor, err := s.store.GetByNodeID(repository.ID, gh.GetNodeID())
	if errors.Is(err, sql.ErrNoRows) {
		contributor, err = s.store.GetByUserID(repository.ID, user.ID)
		switch {
		case err == nil:
			contributor.NodeID = gh.GetNodeID()
		case errors.Is(err, sql.ErrNoRows):
			contributor, err = models.NewRepositoryContributor(gh.GetNodeID(), repository.ID, user.ID), nil
		}
	}
	if err != nil {
		return nil, err
	}

	s.fromGithub(contributor, gh)

	return contributor, nil
}

func (s *RepositoryContributorService) GetRepositoryContributors(repositoryID string) ([]*models.ContributorDetails, error) {
	return s.store.GetDetailsByRepositoryID(repositoryID)
}
