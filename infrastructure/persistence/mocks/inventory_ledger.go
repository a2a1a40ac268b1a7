package mocks

import (
	"context"

	"fulfillment/domain/inventory"
)

// InventoryLedger checks and moves stock under the store lock, the in-memory
// counterpart of the conditional UPDATE.
type InventoryLedger struct {
	store *Store
}

func NewInventoryLedger(store *Store) *InventoryLedger {
	return &InventoryLedger{store: store}
}

func (l *InventoryLedger) Reserve(ctx context.Context, productID string, qty int) error {
	if err := inventory.ValidateQuantity(productID, qty); err != nil {
		return err
	}
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok || !p.Active || p.Stock < qty {
		return inventory.NewInsufficientStockError(productID, qty)
	}
	p.Stock -= qty
	s.products[productID] = p
	return nil
}

func (l *InventoryLedger) Release(ctx context.Context, productID string, qty int) error {
	if err := inventory.ValidateQuantity(productID, qty); err != nil {
		return err
	}
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return inventory.NewProductUnavailableError(productID)
	}
	p.Stock += qty
	s.products[productID] = p
	return nil
}

var _ inventory.Ledger = (*InventoryLedger)(nil)
