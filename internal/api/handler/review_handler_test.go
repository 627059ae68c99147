package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"loan-desk/internal/api/handler/dto"
	"loan-desk/internal/domain/customer"
	"loan-desk/internal/domain/loan"
	"loan-desk/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func withAccountNumber(req *http.Request, value string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{Keys: []string{"accountNumber"}, Values: []string{value}},
	}))
}

func sampleQueue() []loan.PendingLoan {
	return []loan.PendingLoan{
		{
			Loan:     loan.LoanAccount{DocumentID: "d2", AccountNumber: 1002, CustomerID: 8, LoanType: loan.TypePersonal, LoanAmount: 1_000_000, Tenure: 5, InterestRate: 12, MonthlyEMI: 22244.45, IsHold: true},
			Customer: customer.Customer{CustomerID: 8, Name: "Dev"},
		},
	}
}

func TestReviewHandler_ListPending(t *testing.T) {
	t.Run("Returns the queue", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewReviewHandler(svc, testLogger)
		svc.On("ListPendingLoans", mock.Anything).Return(sampleQueue(), nil).Once()

		rec := httptest.NewRecorder()
		h.ListPending(rec, httptest.NewRequest(http.MethodGet, "/reviews/loans", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.PendingQueueResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "Dev", resp.Loans[0].Customer.Name)
		assert.Equal(t, "22244.45", resp.Loans[0].MonthlyEMI)
		assert.True(t, resp.Loans[0].IsHold)
	})

	t.Run("Empty queue is an empty list", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewReviewHandler(svc, testLogger)
		svc.On("ListPendingLoans", mock.Anything).Return([]loan.PendingLoan{}, nil).Once()

		rec := httptest.NewRecorder()
		h.ListPending(rec, httptest.NewRequest(http.MethodGet, "/reviews/loans", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":0,"loans":[]}`, rec.Body.String())
	})

	t.Run("Store failure", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewReviewHandler(svc, testLogger)
		svc.On("ListPendingLoans", mock.Anything).Return(nil, apperrors.WrapLookupError(assert.AnError, "query failed")).Once()

		rec := httptest.NewRecorder()
		h.ListPending(rec, httptest.NewRequest(http.MethodGet, "/reviews/loans", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestReviewHandler_StatusActions(t *testing.T) {
	t.Run("Approve returns the reloaded queue", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewReviewHandler(svc, testLogger)
		svc.On("Approve", mock.Anything, int64(1001)).Return(&loan.StatusUpdate{
			AccountNumber: 1001,
			Action:        loan.ActionApprove,
			Field:         loan.FieldIsApprove,
			Reloaded:      true,
			Queue:         sampleQueue(),
		}, nil).Once()

		rec := httptest.NewRecorder()
		h.Approve(rec, withAccountNumber(httptest.NewRequest(http.MethodPost, "/reviews/loans/1001/approve", nil), "1001"))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.StatusUpdateResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "isApprove", resp.Field)
		assert.True(t, resp.Reloaded)
		require.NotNil(t, resp.Queue)
		assert.Equal(t, int64(1002), resp.Queue.Loans[0].AccountNumber)
		svc.AssertExpectations(t)
	})

	t.Run("Hold carries no queue", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewReviewHandler(svc, testLogger)
		svc.On("Hold", mock.Anything, int64(1002)).Return(&loan.StatusUpdate{
			AccountNumber: 1002,
			Action:        loan.ActionHold,
			Field:         loan.FieldIsHold,
		}, nil).Once()

		rec := httptest.NewRecorder()
		h.Hold(rec, withAccountNumber(httptest.NewRequest(http.MethodPost, "/reviews/loans/1002/hold", nil), "1002"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"accountNumber":1002,"action":"hold","field":"isHold","reloaded":false}`, rec.Body.String())
	})

	t.Run("Reject of an unknown account is 404", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewReviewHandler(svc, testLogger)
		svc.On("Reject", mock.Anything, int64(4040)).Return(nil, apperrors.WrapLookupError(apperrors.ErrNotFound, "no loan account 4040")).Once()

		rec := httptest.NewRecorder()
		h.Reject(rec, withAccountNumber(httptest.NewRequest(http.MethodPost, "/reviews/loans/4040/reject", nil), "4040"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Write failure uses the generic message", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewReviewHandler(svc, testLogger)
		svc.On("Approve", mock.Anything, int64(1001)).Return(nil, apperrors.WrapWriteError(assert.AnError, "update failed")).Once()

		rec := httptest.NewRecorder()
		h.Approve(rec, withAccountNumber(httptest.NewRequest(http.MethodPost, "/reviews/loans/1001/approve", nil), "1001"))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, statusFailedMessage, decodeError(t, rec).Error.Message)
	})

	t.Run("Bad account number never reaches the service", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewReviewHandler(svc, testLogger)

		for _, raw := range []string{"abc", "0", "-5"} {
			rec := httptest.NewRecorder()
			h.Hold(rec, withAccountNumber(httptest.NewRequest(http.MethodPost, "/reviews/loans/x/hold", nil), raw))
			assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
			assert.Equal(t, "accountNumber", decodeError(t, rec).Error.Field)
		}
		svc.AssertNotCalled(t, "Hold", mock.Anything, mock.Anything)
	})
}
