package repositories

import (
	"database/sql"

	"github.com/alimgiray/contribsync/internal/models"
)

type RepositoryContributorRepository struct {
	db    *sql.DB
	saver BulkPersister[*models.RepositoryContributor]
}

func NewRepositoryContributorRepository(db *sql.DB) *RepositoryContributorRepository {
	return &RepositoryContributorRepository{
		db:    db,
		saver: NewBulkSaver[*models.RepositoryContributor](db, "repository_contributors", models.RepositoryContributorColumns),
	}
}

// BulkSave hands the batch to the shared bulk saver unchanged
func (r *RepositoryContributorRepository) BulkSave(contributors []*models.RepositoryContributor) error {
	return r.saver.BulkSave(contributors)
}

// GetByNodeID returns the contributor row for a GitHub node id within a
// repository, or sql.ErrNoRows.
func (r *RepositoryContributorRepository) GetByNodeID(repositoryID, nodeID string) (*models.RepositoryContributor, error) {
	return r.getOne(`WHERE repository_id = ? AND node_id = ?`, repositoryID, nodeID)
}

// GetByUserID returns the contributor row of a GitHub person within a
// repository, or sql.ErrNoRows.
func (r *RepositoryContributorRepository) GetByUserID(repositoryID, userID string) (*models.RepositoryContributor, error) {
	return r.getOne(`WHERE repository_id = ? AND user_id = ?`, repositoryID, userID)
}

func (r *RepositoryContributorRepository) getOne(where string, args ...interface{}) (*models.RepositoryContributor, error) {
	query := `
		SELECT id, node_id, repository_id, user_id, contributions_count, created_at, updated_at
		FROM repository_contributors
	` + where

	contributor := &models.RepositoryContributor{}
	err := r.db.QueryRow(query, args...).Scan(
		&contributor.ID, &contributor.NodeID, &contributor.RepositoryID, &contributor.UserID,
		&contributor.ContributionsCount, &contributor.CreatedAt, &contributor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return contributor, nil
}

func (r *RepositoryContributorRepository) GetByRepositoryID(repositoryID string) ([]*models.RepositoryContributor, error) {
	query := `
		SELECT id, node_id, repository_id, user_id, contributions_count, created_at, updated_at
		FROM repository_contributors
		WHERE repository_id = ?
		ORDER BY contributions_count DESC, created_at ASC
	`

	rows, err := r.db.Query(query, repositoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributors []*models.RepositoryContributor
	for rows.Next() {
		contributor := &models.RepositoryContributor{}
		if err := rows.Scan(
			&contributor.ID, &contributor.NodeID, &contributor.RepositoryID, &contributor.UserID,
			&contributor.ContributionsCount, &contributor.CreatedAt, &contributor.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contributors = append(contributors, contributor)
	}

	return contributors, rows.Err()
}

// GetDetailsByRepositoryID lists contributors joined with their GitHub people,
// most active first.
func (r *RepositoryContributorRepository) GetDetailsByRepositoryID(repositoryID string) ([]*models.ContributorDetails, error) {
	query := `
		SELECT rc.id, rc.repository_id, rc.user_id, gp.username, gp.display_name, gp.profile_url,
		       rc.contributions_count, rc.updated_at
		FROM repository_contributors rc
		INNER JOIN github_people gp ON gp.id = rc.user_id
		WHERE rc.repository_id = ?
		ORDER BY rc.contributions_count DESC, gp.username ASC
	`

	rows, err := r.db.Query(query, repositoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []*models.ContributorDetails{}
	for rows.Next() {
		d := &models.ContributorDetails{}
		if err := rows.Scan(
			&d.ID, &d.RepositoryID, &d.UserID, &d.Username, &d.DisplayName, &d.ProfileURL,
			&d.ContributionsCount, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}

	return details, rows.Err()
}

func (r *RepositoryContributorRepository) CountByRepositoryID(repositoryID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM repository_contributors WHERE repository_id = ?`, repositoryID).Scan(&count)
	return count, err
}
