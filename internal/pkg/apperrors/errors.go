package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")

	// Remote collaborator failures. None of them are retried.
	ErrUpload = errors.New("document upload failed")

	ErrAllocation = errors.New("failed to get account number")

	ErrWrite = errors.New("document store write failed")

	ErrLookup = errors.New("document lookup failed")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapUploadError(cause error, message string) error {
	return &AppError{
		Code:    "UPLOAD_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrUpload, cause),
	}
}

func WrapAllocationError(cause error, message string) error {
	return &AppError{
		Code:    "ALLOCATION_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrAllocation, cause),
	}
}

func WrapWriteError(cause error, message string) error {
	return &AppError{
		Code:    "WRITE_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrWrite, cause),
	}
}

func WrapLookupError(cause error, message string) error {
	return &AppError{
		Code:    "LOOKUP_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrLookup, cause),
	}
}
