package po

import (
	"time"

	"fulfillment/domain/order"

	"github.com/shopspring/decimal"
)

// OrderPO Order persistence object
// Only used for database mapping. GORM associations are not defined here.
type OrderPO struct {
	ID               string          `gorm:"primaryKey;size:64"`
	UserID           string          `gorm:"size:64;index;not null"`
	Status           string          `gorm:"size:20;not null;index"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ShippingCost     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Address          order.Address   `gorm:"type:json;serializer:json;not null"`
	WeightKg         decimal.Decimal `gorm:"type:decimal(8,3);not null"`
	LengthCm         decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	BreadthCm        decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	HeightCm         decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	PickupPostcode   string          `gorm:"size:16"`
	DeliveryPostcode string          `gorm:"size:16;not null"`
	Version          int             `gorm:"default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (OrderPO) TableName() string {
	return "orders"
}

// OrderItemPO Order line persistence object. Written once with the order.
type OrderItemPO struct {
	ID          string          `gorm:"primaryKey;size:64"`
	OrderID     string          `gorm:"size:64;index;not null"`
	ProductID   string          `gorm:"size:64;not null"`
	ProductName string          `gorm:"size:255;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (OrderItemPO) TableName() string {
	return "order_items"
}

// FromOrderDomain Convert domain model to persistence objects
func FromOrderDomain(o *order.Order) (*OrderPO, []OrderItemPO) {
	dto := o.ToDTO()
	orderPO := &OrderPO{
		ID:               dto.ID,
		UserID:           dto.UserID,
		Status:           string(dto.Status),
		Subtotal:         dto.Subtotal,
		ShippingCost:     dto.ShippingCost,
		TotalAmount:      dto.TotalAmount,
		Address:          dto.Address,
		WeightKg:         dto.Parcel.WeightKg,
		LengthCm:         dto.Parcel.LengthCm,
		BreadthCm:        dto.Parcel.BreadthCm,
		HeightCm:         dto.Parcel.HeightCm,
		PickupPostcode:   dto.PickupPostcode,
		DeliveryPostcode: dto.DeliveryPostcode,
		Version:          dto.Version,
		CreatedAt:        dto.CreatedAt,
		UpdatedAt:        dto.UpdatedAt,
	}

	itemPOs := make([]OrderItemPO, len(dto.Items))
	for i, item := range dto.Items {
		itemPOs[i] = OrderItemPO{
			ID:          item.ID,
			OrderID:     dto.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return orderPO, itemPOs
}

// ToDomain Convert persistence objects to domain model
func (p *OrderPO) ToDomain(itemPOs []OrderItemPO) *order.Order {
	items := make([]order.ItemReconstructionDTO, len(itemPOs))
	for i, it := range itemPOs {
		items[i] = order.ItemReconstructionDTO{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return order.RebuildFromDTO(order.ReconstructionDTO{
		ID:           p.ID,
		UserID:       p.UserID,
		Items:        items,
		Subtotal:     p.Subtotal,
		ShippingCost: p.ShippingCost,
		TotalAmount:  p.TotalAmount,
		Status:       order.Status(p.Status),
		Address:      p.Address,
		Parcel: order.Parcel{
			WeightKg:  p.WeightKg,
			LengthCm:  p.LengthCm,
			BreadthCm: p.BreadthCm,
			HeightCm:  p.HeightCm,
		},
		PickupPostcode:   p.PickupPostcode,
		DeliveryPostcode: p.DeliveryPostcode,
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	})
}
