package firestoredb

import (
	"testing"
	"time"

	"loan-desk/internal/domain/loan"
	"loan-desk/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanAccountDocRoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
	account := &loan.LoanAccount{
		DocumentID:    "ignored",
		AccountNumber: 1001,
		CustomerID:    42,
		LoanType:      loan.TypeGold,
		LoanAmount:    500_000,
		Tenure:        3,
		InterestRate:  8.25,
		MonthlyEMI:    15725.91,
		LoanDocument:  "https://storage.googleapis.com/b/uploads/loanDocument/gold.jpg",
		IsHold:        true,
		CreatedAt:     created,
	}

	doc := toLoanAccountDoc(account)
	assert.Equal(t, int64(3), doc.Tenure)
	assert.Equal(t, "Gold Loan", doc.LoanType)

	back := doc.toDomain("abc123")
	assert.Equal(t, "abc123", back.DocumentID)
	back.DocumentID = account.DocumentID
	assert.Equal(t, *account, back)
}

func TestStatusUpdate(t *testing.T) {
	updates, err := statusUpdate(loan.FieldIsHold, true)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "isHold", updates[0].Path)
	assert.Equal(t, true, updates[0].Value)

	_, err = statusUpdate(loan.StatusField("loanAmount"), true)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestCounterValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    int64
		wantErr bool
	}{
		{"integer", int64(1000), 1000, false},
		{"whole double", float64(1000), 1000, false},
		{"fractional double", 10.5, 0, true},
		{"numeric string", "1000", 1000, false},
		{"garbage string", "abc", 0, true},
		{"null", nil, 0, false},
		{"bool", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := counterValue(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
