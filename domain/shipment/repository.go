package shipment

import "context"

type Repository interface {
	// Save inserts or version-checked updates the detail. An order has at most one.
	Save(ctx context.Context, d *ShippingDetail) error

	FindByOrderID(ctx context.Context, orderID string) (*ShippingDetail, error)

	// FindByExternalRef matches the external shipment id or, failing that, the AWB code.
	FindByExternalRef(ctx context.Context, shipmentID, awbCode string) (*ShippingDetail, error)
}
