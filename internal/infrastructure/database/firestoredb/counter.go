package firestoredb

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"loan-desk/internal/domain/loan"
	"loan-desk/internal/pkg/apperrors"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AccountNumberCounter hands out account numbers from
// counters/accountNumberCounter inside a transaction, so concurrent
// submitters never observe the same value.
type AccountNumberCounter struct {
	client *firestore.Client
	logger *slog.Logger
}

var _ loan.AccountNumberAllocator = (*AccountNumberCounter)(nil)

func NewAccountNumberCounter(client *firestore.Client, logger *slog.Logger) *AccountNumberCounter {
	return &AccountNumberCounter{
		client: client,
		logger: logger.With(slog.String("component", "FirestoreAccountNumberCounter")),
	}
}

func (c *AccountNumberCounter) AllocateNextAccountNumber(ctx context.Context) (int64, error) {
	ref := c.client.Collection(CollectionCounters).Doc(AccountNumberCounterDoc)

	var next int64
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return err
			}
			next = 1
			return tx.Set(ref, map[string]any{lastAccountNumberField: next})
		}

		raw, err := snap.DataAt(lastAccountNumberField)
		if err != nil {
			return err
		}
		last, err := counterValue(raw)
		if err != nil {
			return err
		}
		next = last + 1
		return tx.Update(ref, []firestore.Update{{Path: lastAccountNumberField, Value: next}})
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to allocate account number", slog.Any("error", err))
		return 0, apperrors.WrapAllocationError(err, "failed to get account number")
	}

	c.logger.DebugContext(ctx, "Allocated account number", slog.Int64("accountNumber", next))
	return next, nil
}

// counterValue accepts the encodings the counter has been written with over time.
func counterValue(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("counter value %v is not a whole number", v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("counter value %q is not an integer: %w", v, err)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported counter value type %T", raw)
	}
}
