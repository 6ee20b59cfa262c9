package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/btg-funds-backend/internal/domain/transaction"
)

// WorkerPoolArchivingService wraps an ArchivingService with a bounded
// worker pool so a burst of archive events cannot exhaust Mongo connections.
type WorkerPoolArchivingService struct {
	baseService ArchivingService
	pool        *ants.Pool
	logger      *slog.Logger

	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolArchivingService(
	baseService ArchivingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchivingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolArchivingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ArchiveEntry submits the entry to the worker pool and waits for the result
func (s *WorkerPoolArchivingService) ArchiveEntry(ctx context.Context, entry *transaction.Entry) error {
	s.logger.Debug("Submitting entry to archive worker pool",
		"transaction_id", entry.TransactionID,
		"user_id", entry.UserID.String(),
	)

	resultChan := make(chan error, 1)

	transactionID := entry.TransactionID
	s.mu.Lock()
	s.results[transactionID] = resultChan
	s.mu.Unlock()

	entryCopy := *entry

	err := s.pool.Submit(func() {
		err := s.baseService.ArchiveEntry(ctx, &entryCopy)

		resultChan <- err

		s.mu.Lock()
		delete(s.results, transactionID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		s.mu.Lock()
		delete(s.results, transactionID)
		close(resultChan)
		s.mu.Unlock()

		s.logger.Error("Failed to submit entry to archive worker pool",
			"transaction_id", entry.TransactionID,
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool
func (s *WorkerPoolArchivingService) Shutdown() {
	s.logger.Info("Shutting down archive worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool
func (s *WorkerPoolArchivingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool
func (s *WorkerPoolArchivingService) Capacity() int {
	return s.pool.Cap()
}
