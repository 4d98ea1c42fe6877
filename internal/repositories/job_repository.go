package repositories

import (
	"database/sql"
	"sync"
	"time"

	"github.com/alimgiray/contribsync/internal/models"
)

// JobRepository handles database operations for jobs
type JobRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, repository_id, job_type, status, error_message, worker_id, started_at, completed_at, created_at, updated_at`

// Create creates a new job
func (r *JobRepository) Create(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `INSERT INTO jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		job.ID,
		job.RepositoryID,
		job.JobType,
		job.Status,
		job.ErrorMessage,
		job.WorkerID,
		job.StartedAt,
		job.CompletedAt,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`
	return scanJob(r.db.QueryRow(query, id))
}

// GetByRepositoryID retrieves all jobs for a repository, newest first
func (r *JobRepository) GetByRepositoryID(repositoryID string) ([]*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE repository_id = ? ORDER BY created_at DESC`

	rows, err := r.db.Query(query, repositoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// HasActiveJob reports whether a pending or in-progress job of the given
// type exists for the repository
func (r *JobRepository) HasActiveJob(repositoryID string, jobType models.JobType) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT COUNT(*) FROM jobs
		WHERE repository_id = ? AND job_type = ? AND status IN (?, ?)
	`

	var count int
	err := r.db.QueryRow(query, repositoryID, jobType, models.JobStatusPending, models.JobStatusInProgress).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// CreateIfNoneActive inserts job unless the repository already has a pending
// or in-progress job of the same type. The check and the insert share one
// lock and one transaction. It reports whether the job was created.
func (r *JobRepository) CreateIfNoneActive(job *models.Job) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM jobs
		WHERE repository_id = ? AND job_type = ? AND status IN (?, ?)
	`, job.RepositoryID, job.JobType, models.JobStatusPending, models.JobStatusInProgress).Scan(&count)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	_, err = tx.Exec(`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.RepositoryID,
		job.JobType,
		job.Status,
		job.ErrorMessage,
		job.WorkerID,
		job.StartedAt,
		job.CompletedAt,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// GetNextPendingJob claims the oldest pending job of a type (FIFO) for the
// given worker. It returns nil, nil when the queue is empty.
func (r *JobRepository) GetNextPendingJob(jobType models.JobType, workerID string) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = ? AND job_type = ?
		ORDER BY created_at ASC
		LIMIT 1
	`

	job, err := scanJob(tx.QueryRow(query, models.JobStatusPending, jobType))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	job.MarkStarted(workerID)
	job.UpdatedAt = time.Now()

	updateQuery := `
		UPDATE jobs
		SET status = ?, worker_id = ?, started_at = ?, updated_at = ?
		WHERE id = ?
	`

	if _, err = tx.Exec(updateQuery, job.Status, job.WorkerID, job.StartedAt, job.UpdatedAt, job.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return job, nil
}

// Update updates a job
func (r *JobRepository) Update(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job.UpdatedAt = time.Now()

	query := `
		UPDATE jobs
		SET status = ?, error_message = ?, worker_id = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		job.Status,
		job.ErrorMessage,
		job.WorkerID,
		job.StartedAt,
		job.CompletedAt,
		job.UpdatedAt,
		job.ID,
	)
	return err
}

// ResetInProgress puts jobs left in-progress by a previous run back in the queue
func (r *JobRepository) ResetInProgress() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.Exec(`
		UPDATE jobs SET status = ?, worker_id = NULL, started_at = NULL, updated_at = ?
		WHERE status = ?
	`, models.JobStatusPending, time.Now(), models.JobStatusInProgress)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func scanJob(row rowScanner) (*models.Job, error) {
	job := &models.Job{}
	err := row.Scan(
		&job.ID,
		&job.RepositoryID,
		&job.JobType,
		&job.Status,
		&job.ErrorMessage,
		&job.WorkerID,
		&job.StartedAt,
		&job.CompletedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return job, nil
}
