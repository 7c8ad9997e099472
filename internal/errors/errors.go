// Package errors provides the AppError taxonomy for the fundledger API.
// Service-layer failures are reported as *AppError so handlers can render a
// stable code and message without leaking internal details.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, optional offending request field
// and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Field:      sentinel.Field,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Field:      sentinel.Field,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithField creates a new AppError tied to a request field, so form-style
// clients can attach the message to the right input.
func WithField(sentinel *AppError, field string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Field:      field,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Ledger errors. A failed ledger read aborts the whole refresh; no partial
// metrics are returned.
var (
	ErrLedgerUnavailable = &AppError{Code: "LEDGER_UNAVAILABLE", Message: "Failed to read the transaction ledger", StatusCode: http.StatusServiceUnavailable}
	ErrMalformedLedger   = &AppError{Code: "MALFORMED_LEDGER_ROW", Message: "The transaction ledger contains an invalid row", StatusCode: http.StatusInternalServerError}
	ErrInvalidTrade      = &AppError{Code: "INVALID_TRADE", Message: "Trade amount and price must be positive numbers", StatusCode: http.StatusBadRequest}
)

// Client errors.
var (
	ErrClientNotFound      = &AppError{Code: "CLIENT_NOT_FOUND", Message: "Client not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail      = &AppError{Code: "DUPLICATE_EMAIL", Message: "A client with this email already exists", StatusCode: http.StatusConflict}
	ErrInsufficientDeposit = &AppError{Code: "INSUFFICIENT_DEPOSIT", Message: "Withdrawal cannot exceed total deposited capital", Field: "amount", StatusCode: http.StatusUnprocessableEntity}
)

// Portfolio errors.
var (
	ErrRefreshSuperseded = &AppError{Code: "REFRESH_SUPERSEDED", Message: "A newer portfolio refresh replaced this one", StatusCode: http.StatusConflict}
)
