package notifier

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/notification"
)

// WorkerPoolService wraps a notification Service with an ants pool so the
// consumer can process messages concurrently with bounded parallelism.
type WorkerPoolService struct {
	baseService Service
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolService(
	baseService Service,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Ingest delegates to the base service; intake is already cheap
func (s *WorkerPoolService) Ingest(ctx context.Context, payloads []*notification.Payload) ([]*notification.RawNotification, error) {
	return s.baseService.Ingest(ctx, payloads)
}

// Process submits the notification to the worker pool and waits for the
// result, so the caller's commit-after-success contract still holds.
func (s *WorkerPoolService) Process(ctx context.Context, id uuid.UUID) error {
	resultChan := make(chan error, 1)

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.Process(ctx, id)
		close(resultChan)
	})
	if err != nil {
		s.logger.Error("Failed to submit notification to worker pool",
			"notification_id", id.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// ListUnprocessed delegates to the base service
func (s *WorkerPoolService) ListUnprocessed(ctx context.Context) ([]*notification.RawNotification, error) {
	return s.baseService.ListUnprocessed(ctx)
}

// Shutdown gracefully shuts down the worker pool
func (s *WorkerPoolService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool
func (s *WorkerPoolService) Running() int {
	return s.pool.Running()
}
