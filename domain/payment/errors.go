package payment

import (
	"fmt"

	"fulfillment/domain/shared"
)

var (
	ErrPaymentNotFound = shared.NewKind(shared.ErrNotFound, "payment not found")

	// ErrVerificationFailed is terminal for the payment intent; it is not retried.
	ErrVerificationFailed = shared.NewKind(shared.ErrInvalidInput, "payment verification failed")

	// ErrDuplicateIdempotencyKey is raised by the store when a second payment
	// claims a key that is already taken.
	ErrDuplicateIdempotencyKey = shared.NewKind(shared.ErrConflict, "idempotency key already used")

	ErrGatewayUnavailable     = shared.NewKind(shared.ErrUpstreamUnavailable, "payment gateway unavailable")
	ErrGatewayRejected        = shared.NewKind(shared.ErrUpstreamUnavailable, "payment gateway rejected the request")
	ErrInvalidStatus          = shared.NewKind(shared.ErrInvalidState, "invalid payment status")
	ErrConcurrentModification = shared.NewKind(shared.ErrConcurrentModification, "payment was modified by another transaction")
)

func NewPaymentNotFoundError(ref string) error {
	return shared.NewError(ErrPaymentNotFound, "payment", "payment not found: "+ref)
}

func NewVerificationFailedError() error {
	return shared.NewError(ErrVerificationFailed, "payment", "payment signature verification failed")
}

func NewDuplicateIdempotencyKeyError(key string) error {
	return shared.NewError(ErrDuplicateIdempotencyKey, "payment", "idempotency key already used: "+key)
}

func NewGatewayUnavailableError(op string, cause error) error {
	return shared.NewError(ErrGatewayUnavailable, "payment", "payment gateway unavailable during "+op).WithCause(cause)
}

func NewGatewayRejectedError(op, reason string) error {
	return shared.NewError(ErrGatewayRejected, "payment", fmt.Sprintf("payment gateway rejected %s: %s", op, reason))
}

func NewInvalidStateError(from, to Status) error {
	return shared.NewError(ErrInvalidStatus, "payment", fmt.Sprintf("cannot move payment from %s to %s", from, to))
}

func NewConcurrentModificationError(id string) error {
	return shared.NewError(ErrConcurrentModification, "payment", "payment "+id+" was modified by another transaction, please retry")
}
