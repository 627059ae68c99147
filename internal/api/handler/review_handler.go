package handler

import (
	"context"
	"log/slog"
	"net/http"

	"loan-desk/internal/api/handler/dto"
	"loan-desk/internal/domain/loan"
)

type ReviewHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewReviewHandler(s loan.LoanService, l *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: s,
		logger:  l.With("component", "ReviewHandler"),
	}
}

// ListPending returns the review queue.
//
// @Summary List loans awaiting review
// @Description Returns every loan account that is not approved and not rejected, joined to the customer's name. Held loans are included with isHold set.
// @Tags Reviews
// @Produce json
// @Success 200 {object} dto.PendingQueueResponse "Review queue"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a loan officer"
// @Failure 502 {object} dto.ErrorResponse "Store failure"
// @Router /reviews/loans [get]
// @Security BearerAuth
func (h *ReviewHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	queue, err := h.service.ListPendingLoans(r.Context())
	if err != nil {
		respondOperationError(w, err, "Failed to load the review queue.")
		return
	}
	respondJSON(w, http.StatusOK, dto.NewPendingQueueResponse(queue))
}

// Approve marks a loan approved and returns the refreshed queue.
//
// @Summary Approve a loan
// @Tags Reviews
// @Produce json
// @Param accountNumber path int true "Loan account number"
// @Success 200 {object} dto.StatusUpdateResponse "Status updated, queue reloaded"
// @Failure 400 {object} dto.ErrorResponse "Invalid account number"
// @Failure 404 {object} dto.ErrorResponse "No loan with this account number"
// @Failure 502 {object} dto.ErrorResponse "Store failure"
// @Router /reviews/loans/{accountNumber}/approve [post]
// @Security BearerAuth
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.applyStatus(w, r, loan.ActionApprove, h.service.Approve)
}

// Hold puts a loan on hold. The queue is not reloaded.
//
// @Summary Hold a loan
// @Tags Reviews
// @Produce json
// @Param accountNumber path int true "Loan account number"
// @Success 200 {object} dto.StatusUpdateResponse "Status updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid account number"
// @Failure 404 {object} dto.ErrorResponse "No loan with this account number"
// @Failure 502 {object} dto.ErrorResponse "Store failure"
// @Router /reviews/loans/{accountNumber}/hold [post]
// @Security BearerAuth
func (h *ReviewHandler) Hold(w http.ResponseWriter, r *http.Request) {
	h.applyStatus(w, r, loan.ActionHold, h.service.Hold)
}

// Reject marks a loan rejected and returns the refreshed queue.
//
// @Summary Reject a loan
// @Tags Reviews
// @Produce json
// @Param accountNumber path int true "Loan account number"
// @Success 200 {object} dto.StatusUpdateResponse "Status updated, queue reloaded"
// @Failure 400 {object} dto.ErrorResponse "Invalid account number"
// @Failure 404 {object} dto.ErrorResponse "No loan with this account number"
// @Failure 502 {object} dto.ErrorResponse "Store failure"
// @Router /reviews/loans/{accountNumber}/reject [post]
// @Security BearerAuth
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.applyStatus(w, r, loan.ActionReject, h.service.Reject)
}

type statusFunc func(ctx context.Context, accountNumber int64) (*loan.StatusUpdate, error)

func (h *ReviewHandler) applyStatus(w http.ResponseWriter, r *http.Request, action loan.StatusAction, apply statusFunc) {
	accountNumber, err := getAccountNumberFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	update, err := apply(r.Context(), accountNumber)
	if err != nil {
		respondOperationError(w, err, statusFailedMessage)
		return
	}

	if action.ReloadsQueue() && !update.Reloaded {
		h.logger.Warn("Status applied but review queue was not reloaded", "accountNumber", accountNumber, "action", action)
	}
	respondJSON(w, http.StatusOK, dto.NewStatusUpdateResponse(update))
}
