package dto

import (
	"time"

	"loan-desk/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username   string `json:"username" validate:"required"`
	CustomerID int64  `json:"customerId" validate:"gte=0"`
	Role       string `json:"role" validate:"required,oneof=officer customer"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// QuoteEMIRequest is bound from the query string.
type QuoteEMIRequest struct {
	LoanType   string `form:"loanType" validate:"required"`
	LoanAmount int64  `form:"loanAmount" validate:"required"`
	Tenure     int    `form:"tenure" validate:"required"`
}

// SubmitApplicationForm holds the text parts of the multipart submission.
type SubmitApplicationForm struct {
	LoanType   string `form:"loanType" validate:"required"`
	LoanAmount int64  `form:"loanAmount" validate:"required"`
	Tenure     int    `form:"tenure" validate:"required"`
}

type LoanTypeResponse struct {
	Name         string `json:"name"`
	InterestRate string `json:"interestRate"`
}

type LoanTypesResponse struct {
	LoanTypes     []LoanTypeResponse `json:"loanTypes"`
	Tenures       []int              `json:"tenures"`
	MinLoanAmount int64              `json:"minLoanAmount"`
	MaxLoanAmount int64              `json:"maxLoanAmount"`
}

type EMIQuoteResponse struct {
	LoanType      string `json:"loanType"`
	LoanAmount    int64  `json:"loanAmount"`
	Tenure        int    `json:"tenure"`
	InterestRate  string `json:"interestRate"`
	MonthlyEMI    string `json:"monthlyEmi"`
	TotalPayable  string `json:"totalPayable"`
	TotalInterest string `json:"totalInterest"`
}

type LoanAccountResponse struct {
	DocumentID    string    `json:"documentId,omitempty"`
	AccountNumber int64     `json:"accountNumber"`
	CustomerID    int64     `json:"customerId"`
	LoanType      string    `json:"loanType"`
	LoanAmount    int64     `json:"loanAmount"`
	Tenure        int       `json:"tenure"`
	InterestRate  string    `json:"interestRate"`
	MonthlyEMI    string    `json:"monthlyEmi"`
	LoanDocument  string    `json:"loanDocument"`
	IsApprove     bool      `json:"isApprove"`
	IsHold        bool      `json:"isHold"`
	IsDelete      bool      `json:"isDelete"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CustomerSummary struct {
	CustomerID int64  `json:"customerId"`
	Name       string `json:"name"`
}

type PendingLoanResponse struct {
	LoanAccountResponse
	Customer CustomerSummary `json:"customer"`
}

type PendingQueueResponse struct {
	Count int                   `json:"count"`
	Loans []PendingLoanResponse `json:"loans"`
}

type StatusUpdateResponse struct {
	AccountNumber int64                 `json:"accountNumber"`
	Action        string                `json:"action"`
	Field         string                `json:"field"`
	Reloaded      bool                  `json:"reloaded"`
	Queue         *PendingQueueResponse `json:"queue,omitempty"`
}

func formatDecimalMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatRate(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func NewLoanTypesResponse() LoanTypesResponse {
	types := loan.LoanTypes()
	resp := LoanTypesResponse{
		LoanTypes:     make([]LoanTypeResponse, 0, len(types)),
		Tenures:       append([]int(nil), loan.AllowedTenures...),
		MinLoanAmount: loan.MinLoanAmount,
		MaxLoanAmount: loan.MaxLoanAmount,
	}
	for _, t := range types {
		rate, _ := loan.RateFor(t)
		resp.LoanTypes = append(resp.LoanTypes, LoanTypeResponse{Name: string(t), InterestRate: formatRate(rate)})
	}
	return resp
}

// NewEMIQuoteResponse derives the totals from the rounded installment, the
// amount the borrower actually pays each month.
func NewEMIQuoteResponse(loanType loan.LoanType, amount int64, tenure int, rate, emi float64) EMIQuoteResponse {
	total := decimal.NewFromFloat(emi).Mul(decimal.NewFromInt(int64(tenure * 12)))
	return EMIQuoteResponse{
		LoanType:      string(loanType),
		LoanAmount:    amount,
		Tenure:        tenure,
		InterestRate:  formatRate(rate),
		MonthlyEMI:    formatDecimalMoney(emi),
		TotalPayable:  total.StringFixed(2),
		TotalInterest: total.Sub(decimal.NewFromInt(amount)).StringFixed(2),
	}
}

func NewLoanAccountResponse(account *loan.LoanAccount) LoanAccountResponse {
	if account == nil {
		return LoanAccountResponse{}
	}
	return LoanAccountResponse{
		DocumentID:    account.DocumentID,
		AccountNumber: account.AccountNumber,
		CustomerID:    account.CustomerID,
		LoanType:      string(account.LoanType),
		LoanAmount:    account.LoanAmount,
		Tenure:        account.Tenure,
		InterestRate:  formatRate(account.InterestRate),
		MonthlyEMI:    formatDecimalMoney(account.MonthlyEMI),
		LoanDocument:  account.LoanDocument,
		IsApprove:     account.IsApprove,
		IsHold:        account.IsHold,
		IsDelete:      account.IsDelete,
		CreatedAt:     account.CreatedAt,
	}
}

func NewPendingQueueResponse(queue []loan.PendingLoan) PendingQueueResponse {
	resp := PendingQueueResponse{
		Count: len(queue),
		Loans: make([]PendingLoanResponse, 0, len(queue)),
	}
	for i := range queue {
		item := &queue[i]
		resp.Loans = append(resp.Loans, PendingLoanResponse{
			LoanAccountResponse: NewLoanAccountResponse(&item.Loan),
			Customer: CustomerSummary{
				CustomerID: item.Customer.CustomerID,
				Name:       item.Customer.DisplayName(),
			},
		})
	}
	return resp
}

func NewStatusUpdateResponse(update *loan.StatusUpdate) StatusUpdateResponse {
	resp := StatusUpdateResponse{
		AccountNumber: update.AccountNumber,
		Action:        string(update.Action),
		Field:         string(update.Field),
		Reloaded:      update.Reloaded,
	}
	if update.Reloaded {
		queue := NewPendingQueueResponse(update.Queue)
		resp.Queue = &queue
	}
	return resp
}
