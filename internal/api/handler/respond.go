package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"loan-desk/internal/api/handler/dto"
	"loan-desk/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

const (
	submitFailedMessage = "Failed to submit loan application."
	statusFailedMessage = "Failed to update loan status."
)

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	respondOperationError(w, err, "An upstream service failed.")
}

// respondOperationError maps domain errors to HTTP. Collaborator failures
// (upload, allocation, write, lookup) answer 502 with remoteFailure so that
// store details never reach the client.
func respondOperationError(w http.ResponseWriter, err error, remoteFailure string) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError

	switch {
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidArgument):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, apperrors.ErrUpload),
		errors.Is(err, apperrors.ErrAllocation),
		errors.Is(err, apperrors.ErrWrite),
		errors.Is(err, apperrors.ErrLookup):
		status, message = http.StatusBadGateway, remoteFailure
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	respondJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	})
}

func getAccountNumberFromURL(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "accountNumber")
	if raw == "" {
		return 0, apperrors.NewValidationError("accountNumber", "accountNumber not found in URL path")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, apperrors.NewValidationError("accountNumber", "accountNumber must be a positive whole number")
	}
	return n, nil
}
