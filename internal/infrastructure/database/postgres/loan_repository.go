package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"loan-desk/internal/domain/loan"
	"loan-desk/internal/pkg/apperrors"
)

const (
	insertLoanAccountQuery = `
        INSERT INTO loan_account (account_number, customer_id, loan_type, loan_amount, tenure,
            interest_rate, monthly_emi, loan_document, is_approve, is_hold, is_delete, is_block, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id`

	listPendingQuery = `
        SELECT id, account_number, customer_id, loan_type, loan_amount, tenure, interest_rate,
            monthly_emi, loan_document, is_approve, is_hold, is_delete, is_block, created_at
        FROM loan_account
        WHERE is_approve = FALSE
        ORDER BY created_at, id`

	findByAccountNumberQuery = `SELECT id FROM loan_account WHERE account_number = $1 LIMIT 1`
)

// statusColumns whitelists the columns SetFlag may touch.
var statusColumns = map[loan.StatusField]string{
	loan.FieldIsApprove: "is_approve",
	loan.FieldIsHold:    "is_hold",
	loan.FieldIsDelete:  "is_delete",
	loan.FieldIsBlock:   "is_block",
}

func setFlagQuery(column string) string {
	return fmt.Sprintf(`UPDATE loan_account SET %s = $1 WHERE id = $2`, column)
}

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) CreateLoanAccount(ctx context.Context, account *loan.LoanAccount) (*loan.LoanAccount, error) {
	logCtx := r.logger.With(slog.Int64("accountNumber", account.AccountNumber))

	var id int64
	err := r.db.QueryRow(ctx, insertLoanAccountQuery,
		account.AccountNumber,
		account.CustomerID,
		string(account.LoanType),
		account.LoanAmount,
		account.Tenure,
		account.InterestRate,
		account.MonthlyEMI,
		account.LoanDocument,
		account.IsApprove,
		account.IsHold,
		account.IsDelete,
		account.IsBlock,
		account.CreatedAt,
	).Scan(&id)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to insert loan account", slog.Any("error", err))
		return nil, apperrors.WrapWriteError(translateDBError(err, logCtx), "failed to insert loan account")
	}

	created := *account
	created.DocumentID = strconv.FormatInt(id, 10)
	logCtx.InfoContext(ctx, "Loan account inserted", slog.String("documentID", created.DocumentID))
	return &created, nil
}

func (r *LoanRepository) ListPending(ctx context.Context) ([]loan.LoanAccount, error) {
	rows, err := r.db.Query(ctx, listPendingQuery)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query pending loan accounts", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query pending loan accounts: %w", translateDBError(err, r.logger))
	}
	defer rows.Close()

	accounts := make([]loan.LoanAccount, 0)
	for rows.Next() {
		var (
			id        int64
			loanType  string
			tenure    int64
			createdAt time.Time
			acc       loan.LoanAccount
		)
		if err := rows.Scan(
			&id,
			&acc.AccountNumber,
			&acc.CustomerID,
			&loanType,
			&acc.LoanAmount,
			&tenure,
			&acc.InterestRate,
			&acc.MonthlyEMI,
			&acc.LoanDocument,
			&acc.IsApprove,
			&acc.IsHold,
			&acc.IsDelete,
			&acc.IsBlock,
			&createdAt,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan account row", slog.Any("error", err))
			return nil, fmt.Errorf("failed to scan loan account row: %w", err)
		}
		acc.DocumentID = strconv.FormatInt(id, 10)
		acc.LoanType = loan.LoanType(loanType)
		acc.Tenure = int(tenure)
		acc.CreatedAt = createdAt
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan account rows", slog.Any("error", err))
		return nil, fmt.Errorf("failed to iterate loan account rows: %w", err)
	}
	return accounts, nil
}

func (r *LoanRepository) FindDocumentIDByAccountNumber(ctx context.Context, accountNumber int64) (string, error) {
	var id int64
	err := r.db.QueryRow(ctx, findByAccountNumberQuery, accountNumber).Scan(&id)
	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: no loan account with number %d", apperrors.ErrNotFound, accountNumber)
		}
		r.logger.ErrorContext(ctx, "Failed to look up loan account", slog.Int64("accountNumber", accountNumber), slog.Any("error", err))
		return "", fmt.Errorf("failed to look up loan account %d: %w", accountNumber, translated)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *LoanRepository) SetFlag(ctx context.Context, documentID string, field loan.StatusField, value bool) error {
	column, ok := statusColumns[field]
	if !ok {
		return fmt.Errorf("%w: %q is not a status field", apperrors.ErrInvalidArgument, string(field))
	}
	id, err := strconv.ParseInt(documentID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed loan account id %q", apperrors.ErrNotFound, documentID)
	}

	tag, err := r.db.Exec(ctx, setFlagQuery(column), value, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan account field", slog.String("documentID", documentID), slog.String("field", string(field)), slog.Any("error", err))
		return apperrors.WrapWriteError(translateDBError(err, r.logger), "failed to update loan account")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan account %s", apperrors.ErrNotFound, documentID)
	}
	return nil
}
