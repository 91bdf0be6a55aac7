// Package errors provides custom error types for the Presupago API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
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
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Budget errors.
var (
	ErrBudgetNotFound      = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrDuplicateBudgetName = &AppError{Code: "DUPLICATE_BUDGET_NAME", Message: "A budget with this name already exists", StatusCode: http.StatusBadRequest}
	ErrBudgetClosed        = &AppError{Code: "BUDGET_CLOSED", Message: "Budget is closed and can no longer be modified", StatusCode: http.StatusConflict}
	ErrBudgetAlreadyClosed = &AppError{Code: "BUDGET_ALREADY_CLOSED", Message: "Budget is already closed", StatusCode: http.StatusConflict}
	ErrBudgetNotClosed     = &AppError{Code: "BUDGET_NOT_CLOSED", Message: "Budget must be closed", StatusCode: http.StatusConflict}
	ErrDueDateNotFuture    = &AppError{Code: "DUE_DATE_NOT_FUTURE", Message: "Due date must be after today", StatusCode: http.StatusBadRequest}
)

// Line item errors.
var (
	ErrLineItemNotFound  = &AppError{Code: "LINE_ITEM_NOT_FOUND", Message: "Line item not found", StatusCode: http.StatusNotFound}
	ErrDuplicateItemName = &AppError{Code: "DUPLICATE_ITEM_NAME", Message: "An item with this name already exists in the budget", StatusCode: http.StatusBadRequest}
	ErrAmountOutOfRange  = &AppError{Code: "AMOUNT_OUT_OF_RANGE", Message: "Amount must be between 10000 and 10000000", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrItemBudgetMismatch  = &AppError{Code: "ITEM_BUDGET_MISMATCH", Message: "Line item does not belong to the given budget", StatusCode: http.StatusBadRequest}
	ErrNegativeAmount      = &AppError{Code: "NEGATIVE_AMOUNT", Message: "Amount must be zero or greater", StatusCode: http.StatusBadRequest}
)

// Payable errors.
var (
	ErrPayableNotFound        = &AppError{Code: "PAYABLE_NOT_FOUND", Message: "Payable not found", StatusCode: http.StatusNotFound}
	ErrDuplicateInvoiceNumber = &AppError{Code: "DUPLICATE_INVOICE_NUMBER", Message: "A payable with this invoice number already exists", StatusCode: http.StatusBadRequest}
	ErrPayableNotPending      = &AppError{Code: "PAYABLE_NOT_PENDING", Message: "Payable is no longer pending", StatusCode: http.StatusConflict}
)
