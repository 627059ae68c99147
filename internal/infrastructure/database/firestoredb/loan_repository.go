package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-desk/internal/domain/loan"
	"loan-desk/internal/pkg/apperrors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type loanAccountDoc struct {
	AccountNumber int64     `firestore:"accountNumber"`
	CustomerID    int64     `firestore:"customerId"`
	LoanType      string    `firestore:"loanType"`
	LoanAmount    int64     `firestore:"loanAmount"`
	Tenure        int64     `firestore:"tenure"`
	InterestRate  float64   `firestore:"interestRate"`
	MonthlyEMI    float64   `firestore:"monthlyEmi"`
	LoanDocument  string    `firestore:"loanDocument"`
	IsApprove     bool      `firestore:"isApprove"`
	IsHold        bool      `firestore:"isHold"`
	IsDelete      bool      `firestore:"isDelete"`
	IsBlock       bool      `firestore:"isBlock"`
	CreatedAt     time.Time `firestore:"createdAt"`
}

func toLoanAccountDoc(a *loan.LoanAccount) loanAccountDoc {
	return loanAccountDoc{
		AccountNumber: a.AccountNumber,
		CustomerID:    a.CustomerID,
		LoanType:      string(a.LoanType),
		LoanAmount:    a.LoanAmount,
		Tenure:        int64(a.Tenure),
		InterestRate:  a.InterestRate,
		MonthlyEMI:    a.MonthlyEMI,
		LoanDocument:  a.LoanDocument,
		IsApprove:     a.IsApprove,
		IsHold:        a.IsHold,
		IsDelete:      a.IsDelete,
		IsBlock:       a.IsBlock,
		CreatedAt:     a.CreatedAt,
	}
}

func (d loanAccountDoc) toDomain(documentID string) loan.LoanAccount {
	return loan.LoanAccount{
		DocumentID:    documentID,
		AccountNumber: d.AccountNumber,
		CustomerID:    d.CustomerID,
		LoanType:      loan.LoanType(d.LoanType),
		LoanAmount:    d.LoanAmount,
		Tenure:        int(d.Tenure),
		InterestRate:  d.InterestRate,
		MonthlyEMI:    d.MonthlyEMI,
		LoanDocument:  d.LoanDocument,
		IsApprove:     d.IsApprove,
		IsHold:        d.IsHold,
		IsDelete:      d.IsDelete,
		IsBlock:       d.IsBlock,
		CreatedAt:     d.CreatedAt,
	}
}

// statusUpdate builds the single-path field mask used for every status change.
func statusUpdate(field loan.StatusField, value bool) ([]firestore.Update, error) {
	switch field {
	case loan.FieldIsApprove, loan.FieldIsHold, loan.FieldIsDelete, loan.FieldIsBlock:
		return []firestore.Update{{Path: string(field), Value: value}}, nil
	default:
		return nil, fmt.Errorf("%w: %q is not a status field", apperrors.ErrInvalidArgument, string(field))
	}
}

type LoanRepository struct {
	client *firestore.Client
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(client *firestore.Client, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{
		client: client,
		logger: logger.With(slog.String("repository", "FirestoreLoanRepository")),
	}
}

func (r *LoanRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionLoanAccount)
}

func (r *LoanRepository) CreateLoanAccount(ctx context.Context, account *loan.LoanAccount) (*loan.LoanAccount, error) {
	ref, _, err := r.collection().Add(ctx, toLoanAccountDoc(account))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to add loan account document", slog.Int64("accountNumber", account.AccountNumber), slog.Any("error", err))
		return nil, apperrors.WrapWriteError(err, "failed to create loan account document")
	}

	created := *account
	created.DocumentID = ref.ID
	r.logger.InfoContext(ctx, "Loan account document created", slog.String("documentID", ref.ID), slog.Int64("accountNumber", account.AccountNumber))
	return &created, nil
}

func (r *LoanRepository) ListPending(ctx context.Context) ([]loan.LoanAccount, error) {
	iter := r.collection().Where(string(loan.FieldIsApprove), "==", false).Documents(ctx)
	defer iter.Stop()

	var accounts []loan.LoanAccount
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to iterate pending loan accounts", slog.Any("error", err))
			return nil, fmt.Errorf("failed to query pending loan accounts: %w", err)
		}

		var doc loanAccountDoc
		if err := snap.DataTo(&doc); err != nil {
			r.logger.WarnContext(ctx, "Skipping malformed loan account document", slog.String("documentID", snap.Ref.ID), slog.Any("error", err))
			continue
		}
		accounts = append(accounts, doc.toDomain(snap.Ref.ID))
	}
	return accounts, nil
}

func (r *LoanRepository) FindDocumentIDByAccountNumber(ctx context.Context, accountNumber int64) (string, error) {
	iter := r.collection().Where("accountNumber", "==", accountNumber).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return "", fmt.Errorf("%w: no loan account with number %d", apperrors.ErrNotFound, accountNumber)
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loan account by number", slog.Int64("accountNumber", accountNumber), slog.Any("error", err))
		return "", fmt.Errorf("failed to query loan account %d: %w", accountNumber, err)
	}
	return snap.Ref.ID, nil
}

func (r *LoanRepository) SetFlag(ctx context.Context, documentID string, field loan.StatusField, value bool) error {
	updates, err := statusUpdate(field, value)
	if err != nil {
		return err
	}

	_, err = r.collection().Doc(documentID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: loan account document %s", apperrors.ErrNotFound, documentID)
		}
		r.logger.ErrorContext(ctx, "Failed to update loan account field", slog.String("documentID", documentID), slog.String("field", string(field)), slog.Any("error", err))
		return apperrors.WrapWriteError(err, "failed to update loan account")
	}
	return nil
}
