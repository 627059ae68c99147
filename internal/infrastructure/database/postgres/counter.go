package postgres

import (
	"context"
	"log/slog"

	"loan-desk/internal/domain/loan"
	"loan-desk/internal/pkg/apperrors"
)

const (
	accountNumberCounterName = "accountNumberCounter"

	// A single statement, so concurrent callers serialise on the row lock.
	nextAccountNumberQuery = `
        INSERT INTO counters (name, last_account_number)
        VALUES ($1, 1)
        ON CONFLICT (name) DO UPDATE SET last_account_number = counters.last_account_number + 1
        RETURNING last_account_number`
)

type AccountNumberCounter struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.AccountNumberAllocator = (*AccountNumberCounter)(nil)

func NewAccountNumberCounter(db DBPool, logger *slog.Logger) *AccountNumberCounter {
	return &AccountNumberCounter{db: db, logger: logger.With("component", "AccountNumberCounter")}
}

func (c *AccountNumberCounter) AllocateNextAccountNumber(ctx context.Context) (int64, error) {
	var next int64
	if err := c.db.QueryRow(ctx, nextAccountNumberQuery, accountNumberCounterName).Scan(&next); err != nil {
		c.logger.ErrorContext(ctx, "Failed to allocate account number", slog.Any("error", err))
		return 0, apperrors.WrapAllocationError(translateDBError(err, c.logger), "failed to get account number")
	}
	c.logger.DebugContext(ctx, "Allocated account number", slog.Int64("accountNumber", next))
	return next, nil
}
