package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"loan-desk/internal/pkg/apperrors"
)

type CustomerService interface {
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	// ResolveForDisplay never fails: unresolvable owners become Unknown.
	ResolveForDisplay(ctx context.Context, customerID int64) (Customer, bool)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}
	return &customerService{
		repo:   repo,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	if customerID <= 0 {
		logCtx.WarnContext(ctx, "Rejected lookup for non-positive customer ID")
		return nil, fmt.Errorf("%w: customer ID must be positive", apperrors.ErrInvalidArgument)
	}

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Customer not found by repository")
			return nil, fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, customerID)
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	logCtx.DebugContext(ctx, "Successfully retrieved customer")
	return cust, nil
}

func (s *customerService) ResolveForDisplay(ctx context.Context, customerID int64) (Customer, bool) {
	cust, err := s.GetCustomer(ctx, customerID)
	if err != nil || cust == nil {
		return Unknown(customerID), false
	}
	return Customer{CustomerID: cust.CustomerID, Name: cust.DisplayName()}, true
}
