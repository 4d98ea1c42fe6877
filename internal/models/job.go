package models

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	JobTypeContributors JobType = "contributors"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents a background sync job for one repository
type Job struct {
	ID           string     `json:"id"`
	RepositoryID string     `json:"repository_id"`
	JobType      JobType    `json:"job_type"`
	Status       JobStatus  `json:"status"`
	ErrorMessage *string    `json:"error_message"`
	WorkerID     *string    `json:"worker_id"`
	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewJob creates a new pending Job with a generated UUID
func NewJob(repositoryID string, jobType JobType) *Job {
	now := time.Now()
	return &Job{
		ID:           uuid.New().String(),
		RepositoryID: repositoryID,
		JobType:      jobType,
		Status:       JobStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsActive reports whether the job is still waiting or running
func (j *Job) IsActive() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusInProgress
}

// MarkStarted marks the job as started by the given worker
func (j *Job) MarkStarted(workerID string) {
	now := time.Now()
	j.Status = JobStatusInProgress
	j.StartedAt = &now
	j.WorkerID = &workerID
}

// MarkCompleted marks the job as completed
func (j *Job) MarkCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
}

// MarkFailed marks the job as failed with the given error message
func (j *Job) MarkFailed(message string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.ErrorMessage = &message
}
