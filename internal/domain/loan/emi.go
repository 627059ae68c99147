package loan

import (
	"fmt"
	"math"

	"loan-desk/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// CalculateEMI returns the fixed monthly installment for an amortized loan,
// rounded to 2 decimals. A zero rate degenerates to principal/installments.
func CalculateEMI(principal float64, annualRatePercent float64, tenureYears int) (float64, error) {
	if tenureYears <= 0 {
		return 0, fmt.Errorf("%w: tenure must be positive, got %d", apperrors.ErrInvalidArgument, tenureYears)
	}
	if principal <= 0 || math.IsNaN(principal) || math.IsInf(principal, 0) {
		return 0, fmt.Errorf("%w: principal must be a positive amount", apperrors.ErrInvalidArgument)
	}
	if annualRatePercent < 0 || math.IsNaN(annualRatePercent) || math.IsInf(annualRatePercent, 0) {
		return 0, fmt.Errorf("%w: interest rate must be a non-negative number", apperrors.ErrInvalidArgument)
	}

	n := float64(tenureYears * 12)
	if annualRatePercent == 0 {
		return roundTo(principal/n, 2), nil
	}

	i := (annualRatePercent / 100) / 12
	growth := math.Pow(1+i, n)
	emi := principal * i * growth / (growth - 1)
	if math.IsNaN(emi) || math.IsInf(emi, 0) {
		return 0, fmt.Errorf("%w: installment is not representable for the given terms", apperrors.ErrInvalidArgument)
	}
	return roundTo(emi, 2), nil
}

// QuoteEMI looks the rate up from the loan type and computes the installment.
func QuoteEMI(loanType LoanType, amount int64, tenureYears int) (rate float64, emi float64, err error) {
	rate, ok := RateFor(loanType)
	if !ok {
		return 0, 0, apperrors.NewValidationError("loanType", fmt.Sprintf("unsupported loan type %q", string(loanType)))
	}
	emi, err = CalculateEMI(float64(amount), rate, tenureYears)
	if err != nil {
		return 0, 0, err
	}
	return rate, emi, nil
}

func roundTo(n float64, decimals int32) float64 {
	f, _ := decimal.NewFromFloat(n).Round(decimals).Float64()
	return f
}
