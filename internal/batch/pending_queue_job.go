package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-desk/internal/infrastructure/monitoring"
)

type pendingCounter interface {
	CountPending(ctx context.Context) (int, error)
}

// PendingQueueJob refreshes the loan_pending_queue_size gauge.
type PendingQueueJob struct {
	loans  pendingCounter
	logger *slog.Logger
}

func NewPendingQueueJob(loans pendingCounter, logger *slog.Logger) *PendingQueueJob {
	if loans == nil || logger == nil {
		panic("PendingQueueJob dependencies cannot be nil")
	}
	return &PendingQueueJob{
		loans:  loans,
		logger: logger.With("job", "PendingQueueSize"),
	}
}

func (j *PendingQueueJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.DebugContext(ctx, "Starting pending queue size job.")

	count, err := j.loans.CountPending(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count pending loans, gauge left unchanged.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to count pending loans: %w", err)
	}

	monitoring.SetPendingQueueSize(count)
	j.logger.InfoContext(ctx, "Pending queue size job finished.",
		slog.Int("pending_loans", count),
		slog.Duration("duration", time.Since(startTime)),
	)
	return nil
}
