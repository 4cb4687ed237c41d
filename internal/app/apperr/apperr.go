package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeInvalidAmountFormat Code = "INVALID_AMOUNT_FORMAT"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeNotFound            Code = "NOT_FOUND"
	CodeWalletNotFound      Code = "WALLET_NOT_FOUND"
	CodeTransactionNotFound Code = "TRANSACTION_NOT_FOUND"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeConflict            Code = "CONFLICT"
	CodeAlreadyProcessed    Code = "ALREADY_PROCESSED"
	CodeIdempotencyConflict Code = "IDEMPOTENCY_CONFLICT"
	CodeInsufficientFunds   Code = "INSUFFICIENT_FUNDS"
	CodeInvalidRecipient    Code = "INVALID_RECIPIENT"
	CodeUserMismatch        Code = "USER_MISMATCH"
	CodeTypeMismatch        Code = "TYPE_MISMATCH"
	CodeAmountMismatch      Code = "AMOUNT_MISMATCH"
	CodeWalletSuspended     Code = "WALLET_SUSPENDED"
	CodeThrottled           Code = "THROTTLED"
	CodeUnavailable         Code = "UNAVAILABLE"
)

var (
	ErrInvalidInput        = New(CodeInvalidInput, "invalid input")
	ErrInvalidAmountFormat = New(CodeInvalidAmountFormat, "invalid amount format")
	ErrInvalidAmount       = New(CodeInvalidAmount, "amount must be greater than zero")
	ErrNotFound            = New(CodeNotFound, "not found")
	ErrWalletNotFound      = New(CodeWalletNotFound, "wallet not found")
	ErrTransactionNotFound = New(CodeTransactionNotFound, "transaction not found")
	ErrUnauthorized        = New(CodeUnauthorized, "unauthorized")
	ErrForbidden           = New(CodeForbidden, "forbidden")
	ErrConflict            = New(CodeConflict, "conflict")
	ErrAlreadyProcessed    = New(CodeAlreadyProcessed, "already processed")
	ErrIdempotencyConflict = New(CodeIdempotencyConflict, "idempotency key reused with a different payload")
	ErrInsufficientFunds   = New(CodeInsufficientFunds, "insufficient funds")
	ErrInvalidRecipient    = New(CodeInvalidRecipient, "invalid recipient")
	ErrUserMismatch        = New(CodeUserMismatch, "user does not match pending transaction")
	ErrTypeMismatch        = New(CodeTypeMismatch, "direction does not match pending transaction")
	ErrAmountMismatch      = New(CodeAmountMismatch, "amount does not match pending transaction")
	ErrWalletSuspended     = New(CodeWalletSuspended, "wallet suspended")
	ErrThrottled           = New(CodeThrottled, "too many requests")
	ErrUnavailable         = New(CodeUnavailable, "service unavailable")
)

// Error is a coded application error. Errors with equal codes match under errors.Is.
type Error struct {
	Code    Code              `json:"code"`
	Msg     string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy of e carrying an additional detail.
func (e *Error) With(key, value string) *Error {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value

	return &Error{Code: e.Code, Msg: e.Msg, Details: details}
}

// Detail returns detail value of the coded error in err chain.
func Detail(err error, key string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details[key]
	}
	return ""
}

// HTTPStatus maps err to a response status, unknown errors are internal.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}

	switch e.Code {
	case CodeInvalidInput, CodeInvalidAmountFormat, CodeInvalidAmount,
		CodeInsufficientFunds, CodeInvalidRecipient,
		CodeUserMismatch, CodeTypeMismatch, CodeAmountMismatch:
		return http.StatusBadRequest
	case CodeNotFound, CodeWalletNotFound, CodeTransactionNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict, CodeAlreadyProcessed, CodeIdempotencyConflict, CodeWalletSuspended:
		return http.StatusConflict
	case CodeThrottled:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}
