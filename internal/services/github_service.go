package services

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubService reads repository and contributor data from the GitHub REST API
type GitHubService struct {
	client *github.Client
}

// NewGitHubService creates a service authenticated with the given token.
// An empty token makes unauthenticated requests.
func NewGitHubService(token string) *GitHubService {
	if token == "" {
		return NewGitHubServiceWithClient(github.NewClient(nil))
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return NewGitHubServiceWithClient(github.NewClient(tc))
}

func NewGitHubServiceWithClient(client *github.Client) *GitHubService {
	return &GitHubService{client: client}
}

// GetRepository fetches repository metadata
func (s *GitHubService) GetRepository(ctx context.Context, owner, name string) (*github.Repository, error) {
	repo, _, err := s.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, name, err)
	}
	return repo, nil
}

// ListContributors fetches every page of non-anonymous contributors
func (s *GitHubService) ListContributors(ctx context.Context, owner, name string) ([]*github.Contributor, error) {
	var allContributors []*github.Contributor
	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	for {
		contributors, resp, err := s.client.Repositories.ListContributors(ctx, owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list contributors for %s/%s: %w", owner, name, err)
		}
		allContributors = append(allContributors, contributors...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allContributors, nil
}
