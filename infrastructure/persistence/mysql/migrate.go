package mysql

import (
	"fmt"

	"fulfillment/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the fulfillment tables. Storefront tables are
// included so a standalone development database is usable.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&po.OrderPO{},
		&po.OrderItemPO{},
		&po.PaymentPO{},
		&po.ShippingDetailPO{},
		&po.RefundPO{},
		&po.OutboxEventPO{},
		&po.ProductPO{},
		&po.CartItemPO{},
		&po.AddressPO{},
		&po.CustomerPO{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
