package loan

import (
	"context"
	"io"
)

// Repository is the loanAccount collection. Lookups that match nothing
// return an error wrapping apperrors.ErrNotFound.
type Repository interface {
	CreateLoanAccount(ctx context.Context, account *LoanAccount) (*LoanAccount, error)

	// ListPending returns every account with isApprove == false in store order.
	ListPending(ctx context.Context) ([]LoanAccount, error)

	FindDocumentIDByAccountNumber(ctx context.Context, accountNumber int64) (string, error)

	// SetFlag writes exactly one status field and leaves the rest of the record untouched.
	SetFlag(ctx context.Context, documentID string, field StatusField, value bool) error
}

type AccountNumberAllocator interface {
	AllocateNextAccountNumber(ctx context.Context) (int64, error)
}

type DocumentStorage interface {
	// Upload stores r under uploads/<category>/<filename> and returns its URL.
	Upload(ctx context.Context, category, filename, contentType string, r io.Reader) (string, error)
}
