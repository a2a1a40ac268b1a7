package refund

import (
	"fmt"

	"fulfillment/domain/shared"
)

var (
	ErrRefundNotFound         = shared.NewKind(shared.ErrNotFound, "refund not found")
	ErrAlreadyRefunded        = shared.NewKind(shared.ErrConflict, "payment already fully refunded")
	ErrActiveRefundExists     = shared.NewKind(shared.ErrConflict, "a refund is already in progress for this order")
	ErrNotRefundable          = shared.NewKind(shared.ErrInvalidState, "payment is not refundable")
	ErrAdminNoteRequired      = shared.NewKind(shared.ErrInvalidInput, "admin note is required")
	ErrInvalidTransition      = shared.NewKind(shared.ErrInvalidState, "invalid refund status transition")
	ErrConcurrentModification = shared.NewKind(shared.ErrConcurrentModification, "refund was modified by another transaction")
)

func NewRefundNotFoundError(ref string) error {
	return shared.NewError(ErrRefundNotFound, "refund", "refund not found: "+ref)
}

func NewAlreadyRefundedError(orderID string) error {
	return shared.NewError(ErrAlreadyRefunded, "refund", "nothing left to refund for order "+orderID)
}

func NewActiveRefundExistsError(orderID string) error {
	return shared.NewError(ErrActiveRefundExists, "refund", "a refund is already in progress for order "+orderID)
}

func NewNotRefundableError(status string) error {
	return shared.NewError(ErrNotRefundable, "refund", "payment in status "+status+" cannot be refunded")
}

func NewAdminNoteRequiredError() error {
	e := shared.NewError(ErrAdminNoteRequired, "refund", "admin note is required to reject a refund")
	e.Field = "admin_note"
	return e
}

func NewInvalidTransitionError(from, to Status) error {
	return shared.NewError(ErrInvalidTransition, "refund", fmt.Sprintf("cannot move refund from %s to %s", from, to))
}

func NewConcurrentModificationError(id string) error {
	return shared.NewError(ErrConcurrentModification, "refund", "refund "+id+" was modified by another transaction, please retry")
}
