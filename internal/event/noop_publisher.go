package event

import (
	"context"
	"log/slog"
)

// NoopEventPublisher is used when RabbitMQ is disabled.
type NoopEventPublisher struct {
	logger *slog.Logger
}

func NewNoopEventPublisher(logger *slog.Logger) EventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopEventPublisher{logger: logger.With("component", "NoopEventPublisher")}
}

func (p *NoopEventPublisher) PublishLoanEvent(ctx context.Context, event LoanEvent) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping loan event",
		slog.String("action", event.Action),
		slog.Int64("accountNumber", event.AccountNumber),
	)
	return nil
}
