package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"loan-desk/internal/api/handler/dto"
	mw "loan-desk/internal/api/middleware"
	"loan-desk/internal/domain/loan"
	"loan-desk/internal/pkg/apperrors"
)

const (
	documentFormField  = "document"
	defaultContentType = "application/octet-stream"
	multipartMemory    = 8 << 20
)

type LoanHandler struct {
	service        loan.LoanService
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewLoanHandler(s loan.LoanService, maxUploadBytes int64, l *slog.Logger) *LoanHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &LoanHandler{
		service:        s,
		maxUploadBytes: maxUploadBytes,
		logger:         l.With("component", "LoanHandler"),
	}
}

// ListLoanTypes returns the rate table and the form bounds.
//
// @Summary List loan types
// @Description Returns every loan type with its annual interest rate, the allowed tenures in years and the amount bounds.
// @Tags Loans
// @Produce json
// @Success 200 {object} dto.LoanTypesResponse "Loan types"
// @Router /loans/types [get]
func (h *LoanHandler) ListLoanTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.NewLoanTypesResponse())
}

// QuoteEMI computes the installment for the terms currently on the form.
//
// @Summary Quote the monthly EMI
// @Description Looks up the rate for the loan type and computes the monthly installment, rounded to 2 decimals.
// @Tags Loans
// @Produce json
// @Param loanType query string true "Loan type, e.g. House Loan"
// @Param loanAmount query int true "Amount in rupees"
// @Param tenure query int true "Tenure in years"
// @Success 200 {object} dto.EMIQuoteResponse "Installment quote"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan terms"
// @Router /loans/emi [get]
func (h *LoanHandler) QuoteEMI(w http.ResponseWriter, r *http.Request) {
	req, err := dto.BindQuoteEMIRequest(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	loanType := loan.LoanType(req.LoanType)
	if err := loan.ValidateTerms(loanType, req.LoanAmount, req.Tenure); err != nil {
		respondError(w, err)
		return
	}
	rate, emi, err := loan.QuoteEMI(loanType, req.LoanAmount, req.Tenure)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewEMIQuoteResponse(loanType, req.LoanAmount, req.Tenure, rate, emi))
}

// SubmitApplication stores a new loan application with its supporting document.
//
// @Summary Submit a loan application
// @Description Uploads the document, allocates an account number and stores the loan account for the authenticated customer.
// @Tags Loans
// @Accept multipart/form-data
// @Produce json
// @Param loanType formData string true "Loan type"
// @Param loanAmount formData int true "Amount in rupees, 100000 to 50000000"
// @Param tenure formData int true "Tenure in years"
// @Param document formData file true "Supporting document"
// @Success 201 {object} dto.LoanAccountResponse "Loan application stored"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 502 {object} dto.ErrorResponse "Upload, allocation or store failure"
// @Router /loans/applications [post]
// @Security BearerAuth
func (h *LoanHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	identity, ok := mw.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, apperrors.NewValidationError(documentFormField, fmt.Sprintf("request exceeds %d bytes", h.maxUploadBytes)))
			return
		}
		respondError(w, fmt.Errorf("%w: expected a multipart form: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form, err := dto.BindSubmitApplicationForm(r.MultipartForm.Value)
	if err != nil {
		respondError(w, err)
		return
	}

	app := loan.Application{
		LoanType:   loan.LoanType(form.LoanType),
		LoanAmount: form.LoanAmount,
		Tenure:     form.Tenure,
	}

	file, header, err := r.FormFile(documentFormField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Left nil so the service reports the missing document in field order.
	case err != nil:
		respondError(w, fmt.Errorf("%w: cannot read document: %v", apperrors.ErrInvalidArgument, err))
		return
	default:
		defer file.Close()
		app.Document = documentFromPart(file, header)
	}

	created, err := h.service.SubmitApplication(r.Context(), identity.CustomerID, app)
	if err != nil {
		respondOperationError(w, err, submitFailedMessage)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewLoanAccountResponse(created))
}

func documentFromPart(file multipart.File, header *multipart.FileHeader) *loan.DocumentUpload {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return &loan.DocumentUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Content:     file,
	}
}
