package workers

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/alimgiray/contribsync/internal/models"
)

// Worker interface defines the contract for all workers
type Worker interface {
	// Start runs the worker loop until ctx is cancelled or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the worker
	Stop() error

	GetJobType() models.JobType
	GetWorkerID() string
	IsRunning() bool
}

// BaseWorker provides common functionality for all workers
type BaseWorker struct {
	WorkerID string
	JobType  models.JobType
	StopChan chan struct{}

	running  atomic.Bool
	stopOnce sync.Once
}

// NewBaseWorker creates a new base worker
func NewBaseWorker(workerID string, jobType models.JobType) *BaseWorker {
	return &BaseWorker{
		WorkerID: workerID,
		JobType:  jobType,
		StopChan: make(chan struct{}),
	}
}

func (w *BaseWorker) GetJobType() models.JobType {
	return w.JobType
}

func (w *BaseWorker) GetWorkerID() string {
	return w.WorkerID
}

// Stop gracefully stops the worker. It is safe to call more than once.
func (w *BaseWorker) Stop() error {
	w.stopOnce.Do(func() {
		close(w.StopChan)
	})
	return nil
}

func (w *BaseWorker) IsRunning() bool {
	return w.running.Load()
}

func (w *BaseWorker) setRunning(running bool) {
	w.running.Store(running)
}
