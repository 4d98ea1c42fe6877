package models

import (
	"time"

	"github.com/google/go-github/v57/github"
)

// GithubPerson represents a GitHub user, bot, or organization
type GithubPerson struct {
	ID           string    `json:"id" db:"id"`
	GithubUserID int64     `json:"github_user_id" db:"github_user_id"`
	Username     string    `json:"username" db:"username"`
	DisplayName  *string   `json:"display_name" db:"display_name"`
	AvatarURL    *string   `json:"avatar_url" db:"avatar_url"`
	ProfileURL   *string   `json:"profile_url" db:"profile_url"`
	Type         *string   `json:"type" db:"type"` // "User", "Bot", "Organization"
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewGithubPersonFromContributor builds a person from a contributor payload.
// The ID is assigned when the person is upserted.
func NewGithubPersonFromContributor(c *github.Contributor) *GithubPerson {
	person := &GithubPerson{
		GithubUserID: c.GetID(),
		Username:     c.GetLogin(),
	}

	if c.Name != nil {
		name := c.GetName()
		person.DisplayName = &name
	}
	if c.AvatarURL != nil {
		avatarURL := c.GetAvatarURL()
		person.AvatarURL = &avatarURL
	}
	if c.HTMLURL != nil {
		profileURL := c.GetHTMLURL()
		person.ProfileURL = &profileURL
	}
	if c.Type != nil {
		userType := c.GetType()
		person.Type = &userType
	}

	return person
}
