package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"loan-desk/internal/domain/customer"
	"loan-desk/internal/pkg/apperrors"
)

const findCustomerByIDQuery = `SELECT customer_id, name FROM customer WHERE customer_id = $1`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	var cust customer.Customer
	err := r.db.QueryRow(ctx, findCustomerByIDQuery, customerID).Scan(&cust.CustomerID, &cust.Name)
	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrNotFound) {
			r.logger.DebugContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to query customer %d: %w", customerID, translated)
	}
	return &cust, nil
}
