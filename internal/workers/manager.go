package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimgiray/contribsync/internal/repositories"
	"github.com/alimgiray/contribsync/pkg/logger"
)

// WorkerManager manages the contributor workers
type WorkerManager struct {
	workers []Worker
	jobRepo *repositories.JobRepository
	deps    ContributorWorkerDeps
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(jobRepo *repositories.JobRepository, deps ContributorWorkerDeps) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	deps.JobRepo = jobRepo
	return &WorkerManager{
		workers: make([]Worker, 0),
		jobRepo: jobRepo,
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// StartAll requeues jobs interrupted by a previous shutdown and starts
// count contributor workers
func (wm *WorkerManager) StartAll(count int) error {
	if count <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", count)
	}

	requeued, err := wm.jobRepo.ResetInProgress()
	if err != nil {
		return fmt.Errorf("failed to requeue interrupted jobs: %w", err)
	}
	if requeued > 0 {
		logger.Infof("Requeued %d interrupted jobs", requeued)
	}

	for i := 0; i < count; i++ {
		worker := NewContributorWorker(fmt.Sprintf("contributors-%d", i+1), wm.deps)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	logger.Infof("Started %d contributor workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Info("Stopping all workers...")

	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithError(err).WithField("worker_id", worker.GetWorkerID()).Error("Error stopping worker")
		}
	}

	wm.wg.Wait()

	logger.Info("All workers stopped")
	return nil
}

func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.WithError(err).WithField("worker_id", worker.GetWorkerID()).Error("Worker stopped with error")
		}
	}()
}

// GetWorkerStatus returns the running state of each worker
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool)
	for _, worker := range wm.workers {
		status[worker.GetWorkerID()] = worker.IsRunning()
	}
	return status
}
