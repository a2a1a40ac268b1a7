package order

import (
	"fmt"

	"fulfillment/domain/shared"
)

var (
	ErrOrderNotFound          = shared.NewKind(shared.ErrNotFound, "order not found")
	ErrEmptyCart              = shared.NewKind(shared.ErrInvalidInput, "cart is empty")
	ErrDeliveryUnavailable    = shared.NewKind(shared.ErrInvalidInput, "delivery is not available for this address")
	ErrInvalidQuantity        = shared.NewKind(shared.ErrInvalidInput, "quantity must be positive")
	ErrInvalidTransition      = shared.NewKind(shared.ErrInvalidState, "invalid order status transition")
	ErrConcurrentModification = shared.NewKind(shared.ErrConcurrentModification, "order was modified by another transaction")
)

func NewOrderNotFoundError(orderID string) error {
	return shared.NewError(ErrOrderNotFound, "order", "order not found: "+orderID)
}

func NewEmptyCartError() error {
	return shared.NewError(ErrEmptyCart, "order", "cart has no items")
}

func NewDeliveryUnavailableError(postcode string) error {
	return shared.NewError(ErrDeliveryUnavailable, "order", "no courier delivers to postal code "+postcode)
}

func NewInvalidTransitionError(from, to Status) error {
	return shared.NewError(ErrInvalidTransition, "order", fmt.Sprintf("cannot move order from %s to %s", from, to))
}

func NewConcurrentModificationError(orderID string) error {
	return shared.NewError(ErrConcurrentModification, "order", "order "+orderID+" was modified by another transaction, please retry")
}
