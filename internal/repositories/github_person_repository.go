package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/alimgiray/contribsync/internal/models"
	"github.com/google/uuid"
)

type GithubPersonRepository struct {
	db *sql.DB
}

func NewGithubPersonRepository(db *sql.DB) *GithubPersonRepository {
	return &GithubPersonRepository{db: db}
}

const githubPersonColumns = `id, github_user_id, username, display_name, avatar_url, profile_url, type, created_at, updated_at`

func (r *GithubPersonRepository) Create(person *models.GithubPerson) error {
	now := time.Now()
	person.ID = uuid.New().String()
	person.CreatedAt = now
	person.UpdatedAt = now

	query := `
		INSERT INTO github_people (` + githubPersonColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		person.ID, person.GithubUserID, person.Username, person.DisplayName, person.AvatarURL,
		person.ProfileURL, person.Type, person.CreatedAt, person.UpdatedAt,
	)

	return err
}

func (r *GithubPersonRepository) GetByID(id string) (*models.GithubPerson, error) {
	query := `SELECT ` + githubPersonColumns + ` FROM github_people WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

func (r *GithubPersonRepository) GetByGithubUserID(githubUserID int64) (*models.GithubPerson, error) {
	query := `SELECT ` + githubPersonColumns + ` FROM github_people WHERE github_user_id = ?`
	return r.scanOne(r.db.QueryRow(query, githubUserID))
}

func (r *GithubPersonRepository) Update(person *models.GithubPerson) error {
	person.UpdatedAt = time.Now()

	query := `
		UPDATE github_people SET
			username = ?, display_name = ?, avatar_url = ?, profile_url = ?, type = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		person.Username, person.DisplayName, person.AvatarURL, person.ProfileURL,
		person.Type, person.UpdatedAt, person.ID,
	)

	return err
}

// Upsert matches on the GitHub user id. Profile fields missing from the
// incoming payload keep their stored values.
func (r *GithubPersonRepository) Upsert(person *models.GithubPerson) error {
	existing, err := r.GetByGithubUserID(person.GithubUserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if existing == nil {
		return r.Create(person)
	}

	person.ID = existing.ID
	person.CreatedAt = existing.CreatedAt
	if person.DisplayName == nil {
		person.DisplayName = existing.DisplayName
	}
	if person.AvatarURL == nil {
		person.AvatarURL = existing.AvatarURL
	}
	if person.ProfileURL == nil {
		person.ProfileURL = existing.ProfileURL
	}
	if person.Type == nil {
		person.Type = existing.Type
	}
	return r.Update(person)
}

func (r *GithubPersonRepository) scanOne(row *sql.Row) (*models.GithubPerson, error) {
	var person models.GithubPerson
	err := row.Scan(
		&person.ID, &person.GithubUserID, &person.Username, &person.DisplayName, &person.AvatarURL,
		&person.ProfileURL, &person.Type, &person.CreatedAt, &person.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &person, nil
}
