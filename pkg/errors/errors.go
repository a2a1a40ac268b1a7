package errors

import (
	"errors"
	"fmt"
	"net/http"

	"fulfillment/domain/payment"
	"fulfillment/domain/shared"
)

// ErrorCode is the machine-readable code carried in every error response.
type ErrorCode string

const (
	CodeInternal            ErrorCode = "INTERNAL"
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeTooManyRequest      ErrorCode = "TOO_MANY_REQUESTS"
	CodeInvalidState        ErrorCode = "INVALID_STATE"
	CodeConcurrentModify    ErrorCode = "CONCURRENT_MODIFICATION"
	CodeVerificationFailed  ErrorCode = "PAYMENT_VERIFICATION_FAILED"
	CodeInvalidSignature    ErrorCode = "INVALID_SIGNATURE"
	CodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeInvariantViolation  ErrorCode = "INVARIANT_VIOLATION"
)

// ErrInvalidSignature is returned for webhook payloads whose HMAC does not match.
var ErrInvalidSignature = errors.New("invalid signature")

// AppError is an error ready to be rendered by the API layer.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the HTTP status for the code.
func (e *AppError) HTTPStatusCode() int {
	switch e.Code {
	case CodeValidation, CodeInvalidState, CodeVerificationFailed:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeInvalidSignature:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeConcurrentModify:
		return http.StatusConflict
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func Validation(message string) *AppError      { return New(CodeValidation, message) }
func NotFound(message string) *AppError        { return New(CodeNotFound, message) }
func Internal(message string) *AppError        { return New(CodeInternal, message) }
func Unauthorized(message string) *AppError    { return New(CodeUnauthorized, message) }
func Forbidden(message string) *AppError       { return New(CodeForbidden, message) }
func Conflict(message string) *AppError        { return New(CodeConflict, message) }
func TooManyRequests(message string) *AppError { return New(CodeTooManyRequest, message) }

// Is checks the code of an AppError in err's chain.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FromDomainError maps a domain error onto an AppError by sentinel.
// Order matters: more specific sentinels are checked before the taxonomy
// they unwrap to.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	msg := err.Error()
	var field string
	var de *shared.DomainError
	if errors.As(err, &de) {
		msg = de.Message
		field = de.Field
	}

	var code ErrorCode
	switch {
	case errors.Is(err, ErrInvalidSignature):
		return Wrap(err, CodeInvalidSignature, "invalid signature")
	case errors.Is(err, payment.ErrVerificationFailed):
		code = CodeVerificationFailed
	case errors.Is(err, shared.ErrConcurrentModification):
		code = CodeConcurrentModify
	case errors.Is(err, shared.ErrInvalidState):
		code = CodeInvalidState
	case errors.Is(err, shared.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, shared.ErrInvalidInput):
		code = CodeValidation
	case errors.Is(err, shared.ErrForbidden):
		code = CodeForbidden
	case errors.Is(err, shared.ErrUnauthorized):
		code = CodeUnauthorized
	case errors.Is(err, shared.ErrConflict):
		code = CodeConflict
	case errors.Is(err, shared.ErrUpstreamUnavailable):
		code = CodeUpstreamUnavailable
	case errors.Is(err, shared.ErrInvariantViolation):
		code = CodeInvariantViolation
	default:
		return Wrap(err, CodeInternal, "internal server error")
	}
	return &AppError{Code: code, Message: msg, Field: field, Err: err}
}
