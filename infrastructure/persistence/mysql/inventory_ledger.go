package mysql

import (
	"context"

	"fulfillment/domain/inventory"
	"fulfillment/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// InventoryLedger moves stock with single conditional UPDATE statements, so
// concurrent reservations are serialized by the row lock and never oversell.
type InventoryLedger struct {
	db *gorm.DB
}

func NewInventoryLedger(db *gorm.DB) *InventoryLedger {
	return &InventoryLedger{db: db}
}

func (l *InventoryLedger) Reserve(ctx context.Context, productID string, qty int) error {
	if err := inventory.ValidateQuantity(productID, qty); err != nil {
		return err
	}
	result := getDB(ctx, l.db).Model(&po.ProductPO{}).
		Where("id = ? AND active = ? AND stock >= ?", productID, true, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventory.NewInsufficientStockError(productID, qty)
	}
	return nil
}

func (l *InventoryLedger) Release(ctx context.Context, productID string, qty int) error {
	if err := inventory.ValidateQuantity(productID, qty); err != nil {
		return err
	}
	result := getDB(ctx, l.db).Model(&po.ProductPO{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventory.NewProductUnavailableError(productID)
	}
	return nil
}

var _ inventory.Ledger = (*InventoryLedger)(nil)
