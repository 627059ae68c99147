package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-desk/internal/domain/customer"
	"loan-desk/internal/event"
	"loan-desk/internal/infrastructure/monitoring"
	"loan-desk/internal/pkg/apperrors"

	"golang.org/x/sync/errgroup"
)

const DefaultLookupConcurrency = 10

type LoanService interface {
	SubmitApplication(ctx context.Context, customerID int64, app Application) (*LoanAccount, error)

	ListPendingLoans(ctx context.Context) ([]PendingLoan, error)

	// CountPending is ListPendingLoans without the customer join.
	CountPending(ctx context.Context) (int, error)

	Approve(ctx context.Context, accountNumber int64) (*StatusUpdate, error)

	Hold(ctx context.Context, accountNumber int64) (*StatusUpdate, error)

	Reject(ctx context.Context, accountNumber int64) (*StatusUpdate, error)

	SetStatus(ctx context.Context, accountNumber int64, action StatusAction) (*StatusUpdate, error)
}

// StatusUpdate describes an applied review action. Queue is only populated
// when Reloaded is true.
type StatusUpdate struct {
	AccountNumber int64
	Action        StatusAction
	Field         StatusField
	Reloaded      bool
	Queue         []PendingLoan
}

type ServiceConfig struct {
	DocumentCategory  string
	LookupConcurrency int
	Clock             func() time.Time
}

type loanServiceImpl struct {
	repo            Repository
	allocator       AccountNumberAllocator
	storage         DocumentStorage
	customerService customer.CustomerService
	publisher       event.EventPublisher
	cfg             ServiceConfig
	logger          *slog.Logger
}

func NewLoanService(
	repo Repository,
	allocator AccountNumberAllocator,
	storage DocumentStorage,
	cs customer.CustomerService,
	publisher event.EventPublisher,
	cfg ServiceConfig,
	logger *slog.Logger,
) LoanService {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = event.NewNoopEventPublisher(logger)
	}
	if cfg.DocumentCategory == "" {
		cfg.DocumentCategory = DefaultDocumentCategory
	}
	if cfg.LookupConcurrency <= 0 {
		cfg.LookupConcurrency = DefaultLookupConcurrency
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &loanServiceImpl{
		repo:            repo,
		allocator:       allocator,
		storage:         storage,
		customerService: cs,
		publisher:       publisher,
		cfg:             cfg,
		logger:          logger.With(slog.String("component", "loanService")),
	}
}

func (s *loanServiceImpl) SubmitApplication(ctx context.Context, customerID int64, app Application) (*LoanAccount, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.String("loanType", string(app.LoanType)))

	if customerID <= 0 {
		monitoring.RecordSubmissionFailure("validation")
		logCtx.WarnContext(ctx, "Rejected application without an authenticated customer")
		return nil, apperrors.NewValidationError("customerId", "an authenticated customer is required")
	}
	if err := app.Validate(); err != nil {
		monitoring.RecordSubmissionFailure("validation")
		logCtx.WarnContext(ctx, "Loan application failed validation", slog.Any("error", err))
		return nil, err
	}

	rate, _ := RateFor(app.LoanType)
	emi, err := CalculateEMI(float64(app.LoanAmount), rate, app.Tenure)
	if err != nil {
		monitoring.RecordSubmissionFailure("validation")
		logCtx.WarnContext(ctx, "Could not compute installment", slog.Any("error", err))
		return nil, err
	}

	category := app.Document.Category
	if category == "" {
		category = s.cfg.DocumentCategory
	}
	documentURL, err := s.storage.Upload(ctx, category, app.Document.Filename, app.Document.ContentType, app.Document.Content)
	if err != nil {
		monitoring.RecordSubmissionFailure("upload")
		logCtx.ErrorContext(ctx, "Failed to upload loan document", slog.String("filename", app.Document.Filename), slog.Any("error", err))
		return nil, apperrors.WrapUploadError(err, "failed to upload loan document")
	}

	accountNumber, err := s.allocator.AllocateNextAccountNumber(ctx)
	if err != nil {
		monitoring.RecordSubmissionFailure("allocation")
		logCtx.ErrorContext(ctx, "Failed to allocate account number", slog.String("documentURL", documentURL), slog.Any("error", err))
		if errors.Is(err, apperrors.ErrAllocation) {
			return nil, err
		}
		return nil, apperrors.WrapAllocationError(err, "failed to get account number")
	}
	logCtx = logCtx.With(slog.Int64("accountNumber", accountNumber))

	account := &LoanAccount{
		AccountNumber: accountNumber,
		CustomerID:    customerID,
		LoanType:      app.LoanType,
		LoanAmount:    app.LoanAmount,
		Tenure:        app.Tenure,
		InterestRate:  rate,
		MonthlyEMI:    emi,
		LoanDocument:  documentURL,
		CreatedAt:     s.cfg.Clock().UTC(),
	}

	created, err := s.repo.CreateLoanAccount(ctx, account)
	if err != nil {
		monitoring.RecordSubmissionFailure("write")
		logCtx.ErrorContext(ctx, "Failed to store loan account", slog.Any("error", err))
		if errors.Is(err, apperrors.ErrWrite) {
			return nil, err
		}
		return nil, apperrors.WrapWriteError(err, "failed to store loan account")
	}

	monitoring.RecordLoanSubmitted(string(created.LoanType))
	s.publish(ctx, event.LoanEvent{
		AccountNumber: created.AccountNumber,
		CustomerID:    created.CustomerID,
		LoanType:      string(created.LoanType),
		LoanAmount:    created.LoanAmount,
		Action:        "submit",
		Timestamp:     created.CreatedAt,
	})

	logCtx.InfoContext(ctx, "Loan application submitted", slog.String("documentID", created.DocumentID), slog.Float64("monthlyEMI", created.MonthlyEMI))
	return created, nil
}

func (s *loanServiceImpl) pendingAccounts(ctx context.Context) ([]LoanAccount, error) {
	accounts, err := s.repo.ListPending(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to query pending loan accounts", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list pending loans: %w", err)
	}

	pending := make([]LoanAccount, 0, len(accounts))
	for _, acc := range accounts {
		if !acc.IsPending() || acc.IsRejected() {
			continue
		}
		pending = append(pending, acc)
	}
	return pending, nil
}

func (s *loanServiceImpl) ListPendingLoans(ctx context.Context) ([]PendingLoan, error) {
	accounts, err := s.pendingAccounts(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]PendingLoan, len(accounts))
	var g errgroup.Group
	g.SetLimit(s.cfg.LookupConcurrency)
	for i, acc := range accounts {
		g.Go(func() error {
			cust, found := s.customerService.ResolveForDisplay(ctx, acc.CustomerID)
			if !found {
				monitoring.RecordCustomerFallback()
				s.logger.WarnContext(ctx, "Customer not resolved for pending loan, using placeholder",
					slog.Int64("accountNumber", acc.AccountNumber),
					slog.Int64("customerID", acc.CustomerID),
				)
			}
			rows[i] = PendingLoan{Loan: acc, Customer: cust}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.DebugContext(ctx, "Loaded pending loan queue", slog.Int("count", len(rows)))
	return rows, nil
}

func (s *loanServiceImpl) CountPending(ctx context.Context) (int, error) {
	accounts, err := s.pendingAccounts(ctx)
	if err != nil {
		return 0, err
	}
	return len(accounts), nil
}

func (s *loanServiceImpl) Approve(ctx context.Context, accountNumber int64) (*StatusUpdate, error) {
	return s.SetStatus(ctx, accountNumber, ActionApprove)
}

func (s *loanServiceImpl) Hold(ctx context.Context, accountNumber int64) (*StatusUpdate, error) {
	return s.SetStatus(ctx, accountNumber, ActionHold)
}

func (s *loanServiceImpl) Reject(ctx context.Context, accountNumber int64) (*StatusUpdate, error) {
	return s.SetStatus(ctx, accountNumber, ActionReject)
}

func (s *loanServiceImpl) SetStatus(ctx context.Context, accountNumber int64, action StatusAction) (*StatusUpdate, error) {
	logCtx := s.logger.With(slog.Int64("accountNumber", accountNumber), slog.String("action", string(action)))

	field, err := action.Field()
	if err != nil {
		logCtx.WarnContext(ctx, "Unknown review action")
		return nil, err
	}
	if accountNumber <= 0 {
		return nil, apperrors.NewValidationError("accountNumber", "account number must be positive")
	}

	documentID, err := s.repo.FindDocumentIDByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "No loan account matches account number")
		} else {
			logCtx.ErrorContext(ctx, "Failed to look up loan account", slog.Any("error", err))
		}
		return nil, apperrors.WrapLookupError(err, fmt.Sprintf("loan account %d could not be resolved", accountNumber))
	}

	if err := s.repo.SetFlag(ctx, documentID, field, true); err != nil {
		logCtx.ErrorContext(ctx, "Failed to update loan status", slog.String("documentID", documentID), slog.Any("error", err))
		if errors.Is(err, apperrors.ErrWrite) {
			return nil, err
		}
		return nil, apperrors.WrapWriteError(err, "failed to update loan status")
	}

	monitoring.RecordStatusChange(string(action))
	s.publish(ctx, event.LoanEvent{
		AccountNumber: accountNumber,
		Action:        string(action),
		Timestamp:     s.cfg.Clock().UTC(),
	})
	logCtx.InfoContext(ctx, "Loan status updated", slog.String("documentID", documentID), slog.String("field", string(field)))

	update := &StatusUpdate{AccountNumber: accountNumber, Action: action, Field: field}
	if !action.ReloadsQueue() {
		return update, nil
	}

	queue, err := s.ListPendingLoans(ctx)
	if err != nil {
		// The flag is already written; the caller can refresh on its own.
		logCtx.WarnContext(ctx, "Status applied but queue reload failed", slog.Any("error", err))
		return update, nil
	}
	update.Reloaded = true
	update.Queue = queue
	return update, nil
}

func (s *loanServiceImpl) publish(ctx context.Context, evt event.LoanEvent) {
	if err := s.publisher.PublishLoanEvent(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish loan event",
			slog.String("action", evt.Action),
			slog.Int64("accountNumber", evt.AccountNumber),
			slog.Any("error", err),
		)
	}
}
