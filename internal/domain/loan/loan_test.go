package loan

import (
	"strings"
	"testing"

	"loan-desk/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLoanAmount(t *testing.T) {
	tests := []struct {
		amount int64
		valid  bool
	}{
		{99_999, false},
		{100_000, true},
		{2_500_000, true},
		{50_000_000, true},
		{50_000_001, false},
		{0, false},
		{-100_000, false},
	}
	for _, tt := range tests {
		err := ValidateLoanAmount(tt.amount)
		if tt.valid {
			assert.NoError(t, err, "amount %d", tt.amount)
			continue
		}
		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr, "amount %d", tt.amount)
		assert.Equal(t, "loanAmount", vErr.Field)
		assert.Contains(t, vErr.Message, "₹1 lakh and ₹5 crore")
	}
}

func TestApplicationValidate_FieldOrder(t *testing.T) {
	app := Application{LoanType: "Unknown", LoanAmount: 1, Tenure: 7}

	err := app.Validate()
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "loanAmount", vErr.Field)

	app.LoanAmount = MinLoanAmount
	require.ErrorAs(t, app.Validate(), &vErr)
	assert.Equal(t, "loanType", vErr.Field)

	app.LoanType = TypeGold
	require.ErrorAs(t, app.Validate(), &vErr)
	assert.Equal(t, "tenure", vErr.Field)

	app.Tenure = 3
	require.ErrorAs(t, app.Validate(), &vErr)
	assert.Equal(t, "document", vErr.Field)

	app.Document = &DocumentUpload{Filename: "  ", Size: 3, Content: strings.NewReader("abc")}
	require.ErrorAs(t, app.Validate(), &vErr)
	assert.Equal(t, "document", vErr.Field)

	app.Document.Filename = "gold.jpg"
	assert.NoError(t, app.Validate())
}

func TestLoanTypes(t *testing.T) {
	types := LoanTypes()
	assert.Len(t, types, len(InterestRates))
	assert.Equal(t, []LoanType{TypeAgricultural, TypeAutomobile, TypeGold, TypeHouse, TypePersonal}, types)
}

func TestIsAllowedTenure(t *testing.T) {
	for _, y := range []int{1, 2, 3, 5, 10} {
		assert.True(t, IsAllowedTenure(y))
	}
	for _, y := range []int{0, 4, 6, 15} {
		assert.False(t, IsAllowedTenure(y))
	}
}

func TestStatusAction(t *testing.T) {
	tests := []struct {
		raw    string
		field  StatusField
		reload bool
	}{
		{"approve", FieldIsApprove, true},
		{" HOLD ", FieldIsHold, false},
		{"Reject", FieldIsDelete, true},
	}
	for _, tt := range tests {
		action, err := ParseStatusAction(tt.raw)
		require.NoError(t, err)
		field, err := action.Field()
		require.NoError(t, err)
		assert.Equal(t, tt.field, field)
		assert.Equal(t, tt.reload, action.ReloadsQueue())
	}

	_, err := ParseStatusAction("block")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestLoanAccountFlags(t *testing.T) {
	acc := LoanAccount{}
	assert.True(t, acc.IsPending())
	assert.False(t, acc.IsRejected())

	acc.IsHold = true
	assert.True(t, acc.IsPending())

	acc.IsDelete = true
	assert.True(t, acc.IsRejected())

	acc.IsApprove = true
	assert.False(t, acc.IsPending())
}

func TestValidateTerms(t *testing.T) {
	assert.NoError(t, ValidateTerms(TypePersonal, 1_000_000, 5))

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, ValidateTerms(TypePersonal, 1_000_000, 4), &vErr)
	assert.Equal(t, "tenure", vErr.Field)
	assert.ErrorIs(t, ValidateTerms("Boat Loan", 1_000_000, 5), apperrors.ErrValidation)
}
