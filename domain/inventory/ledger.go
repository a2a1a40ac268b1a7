// Package inventory is the stock ledger port. Implementations decrement
// conditionally so concurrent reservations can never oversell.
package inventory

import (
	"context"
	"fmt"

	"fulfillment/domain/shared"
)

var (
	ErrInsufficientStock  = shared.NewKind(shared.ErrInvalidInput, "insufficient stock")
	ErrProductUnavailable = shared.NewKind(shared.ErrInvalidInput, "product unavailable")
)

type Ledger interface {
	// Reserve decrements stock by qty, or fails with ErrInsufficientStock when
	// qty exceeds stock or the product is inactive.
	Reserve(ctx context.Context, productID string, qty int) error

	// Release increments stock by qty.
	Release(ctx context.Context, productID string, qty int) error
}

func NewInsufficientStockError(productID string, requested int) error {
	return shared.NewError(ErrInsufficientStock, "product", fmt.Sprintf("insufficient stock for product %s (requested %d)", productID, requested))
}

func NewProductUnavailableError(productID string) error {
	return shared.NewError(ErrProductUnavailable, "product", "product "+productID+" is not available")
}

// ValidateQuantity rejects non-positive quantities before they reach storage.
func ValidateQuantity(productID string, qty int) error {
	if qty <= 0 {
		return shared.NewInvariantViolationError("product", fmt.Sprintf("stock movement of %d for product %s", qty, productID))
	}
	return nil
}
