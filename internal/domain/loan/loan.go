package loan

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"loan-desk/internal/domain/customer"
	"loan-desk/internal/pkg/apperrors"
)

type LoanType string

const (
	TypeHouse        LoanType = "House Loan"
	TypeGold         LoanType = "Gold Loan"
	TypeAutomobile   LoanType = "Automobile Loan"
	TypePersonal     LoanType = "Personal Loan"
	TypeAgricultural LoanType = "Agricultural Loan"
)

// InterestRates maps each loan type to its annual rate in percent.
var InterestRates = map[LoanType]float64{
	TypeHouse:        9.5,
	TypeGold:         8.25,
	TypeAutomobile:   9.9,
	TypePersonal:     12,
	TypeAgricultural: 8.5,
}

var AllowedTenures = []int{1, 2, 3, 5, 10}

const (
	MinLoanAmount int64 = 100_000
	MaxLoanAmount int64 = 50_000_000

	DefaultDocumentCategory = "loanDocument"
)

func RateFor(t LoanType) (float64, bool) {
	rate, ok := InterestRates[t]
	return rate, ok
}

// LoanTypes returns the rate table keys in a stable order.
func LoanTypes() []LoanType {
	types := make([]LoanType, 0, len(InterestRates))
	for t := range InterestRates {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func IsAllowedTenure(years int) bool {
	return slices.Contains(AllowedTenures, years)
}

type StatusField string

const (
	FieldIsApprove StatusField = "isApprove"
	FieldIsHold    StatusField = "isHold"
	FieldIsDelete  StatusField = "isDelete"
	FieldIsBlock   StatusField = "isBlock"
)

type StatusAction string

const (
	ActionApprove StatusAction = "approve"
	ActionHold    StatusAction = "hold"
	ActionReject  StatusAction = "reject"
)

// Field is the single flag a review action flips to true.
func (a StatusAction) Field() (StatusField, error) {
	switch a {
	case ActionApprove:
		return FieldIsApprove, nil
	case ActionHold:
		return FieldIsHold, nil
	case ActionReject:
		return FieldIsDelete, nil
	default:
		return "", fmt.Errorf("%w: unknown status action %q", apperrors.ErrInvalidArgument, string(a))
	}
}

// ReloadsQueue reports whether the review queue is re-read after the action.
func (a StatusAction) ReloadsQueue() bool {
	return a == ActionApprove || a == ActionReject
}

func ParseStatusAction(s string) (StatusAction, error) {
	a := StatusAction(strings.ToLower(strings.TrimSpace(s)))
	if _, err := a.Field(); err != nil {
		return "", err
	}
	return a, nil
}

type LoanAccount struct {
	DocumentID    string
	AccountNumber int64
	CustomerID    int64
	LoanType      LoanType
	LoanAmount    int64
	Tenure        int
	InterestRate  float64
	MonthlyEMI    float64
	LoanDocument  string
	IsApprove     bool
	IsHold        bool
	IsDelete      bool
	IsBlock       bool
	CreatedAt     time.Time
}

// IsPending matches the review query: anything not yet approved.
func (l *LoanAccount) IsPending() bool {
	return !l.IsApprove
}

func (l *LoanAccount) IsRejected() bool {
	return l.IsDelete
}

type DocumentUpload struct {
	Category    string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type Application struct {
	LoanType   LoanType
	LoanAmount int64
	Tenure     int
	Document   *DocumentUpload
}

func ValidateLoanAmount(amount int64) error {
	if amount < MinLoanAmount || amount > MaxLoanAmount {
		return apperrors.NewValidationError("loanAmount", "loan amount must be between ₹1 lakh and ₹5 crore")
	}
	return nil
}

// ValidateTerms checks the amount, type and tenure in form order.
func ValidateTerms(loanType LoanType, amount int64, tenure int) error {
	if err := ValidateLoanAmount(amount); err != nil {
		return err
	}
	if _, ok := RateFor(loanType); !ok {
		return apperrors.NewValidationError("loanType", fmt.Sprintf("unsupported loan type %q", string(loanType)))
	}
	if !IsAllowedTenure(tenure) {
		return apperrors.NewValidationError("tenure", fmt.Sprintf("tenure must be one of %v years", AllowedTenures))
	}
	return nil
}

func (a *Application) Validate() error {
	if err := ValidateTerms(a.LoanType, a.LoanAmount, a.Tenure); err != nil {
		return err
	}
	if a.Document == nil || a.Document.Content == nil {
		return apperrors.NewValidationError("document", "loan document is required")
	}
	if strings.TrimSpace(a.Document.Filename) == "" {
		return apperrors.NewValidationError("document", "loan document must have a file name")
	}
	if a.Document.Size <= 0 {
		return apperrors.NewValidationError("document", "loan document is empty")
	}
	return nil
}

// PendingLoan is a review-queue row: the loan joined to its owner.
type PendingLoan struct {
	Loan     LoanAccount
	Customer customer.Customer
}
