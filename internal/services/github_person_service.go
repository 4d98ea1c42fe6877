package services

import (
	"github.com/alimgiray/contribsync/internal/models"
	"github.com/alimgiray/contribsync/internal/repositories"
	"github.com/google/go-github/v57/github"
)

type GithubPersonService struct {
	githubPersonRepo *repositories.GithubPersonRepository
}

func NewGithubPersonService(githubPersonRepo *repositories.GithubPersonRepository) *GithubPersonService {
	return &GithubPersonService{
		githubPersonRepo: githubPersonRepo,
	}
}

func (s *GithubPersonService) GetGithubPersonByID(id string) (*models.GithubPerson, error) {
	return s.githubPersonRepo.GetByID(id)
}

// UpsertFromContributor stores the person behind a contributor payload and
// returns it with its local ID
func (s *GithubPersonService) UpsertFromContributor(c *github.Contributor) (*models.GithubPerson, error) {
	person := models.NewGithubPersonFromContributor(c)
	if err := s.githubPersonRepo.Upsert(person); err != nil {
		return nil, err
	}
	return person, nil
}
