package po

import (
	"time"

	"fulfillment/domain/shipment"
)

// ShippingDetailPO stores the status history as a JSON column; the domain
// keeps it as a typed slice.
type ShippingDetailPO struct {
	ID                 string                  `gorm:"primaryKey;size:64"`
	OrderID            string                  `gorm:"size:64;uniqueIndex;not null"`
	ExternalOrderID    string                  `gorm:"size:64"`
	ExternalShipmentID string                  `gorm:"size:64;index;not null"`
	AWBCode            string                  `gorm:"column:awb_code;size:64;index"`
	CourierName        string                  `gorm:"size:128"`
	CourierPhone       string                  `gorm:"size:32"`
	TrackingURL        string                  `gorm:"size:512"`
	Status             string                  `gorm:"size:20;not null"`
	History            []shipment.HistoryEntry `gorm:"type:json;serializer:json"`
	ScheduledAt        *time.Time
	DispatchedAt       *time.Time
	DeliveredAt        *time.Time
	Version            int `gorm:"default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (ShippingDetailPO) TableName() string {
	return "shipping_details"
}

func FromShippingDetailDomain(d *shipment.ShippingDetail) *ShippingDetailPO {
	dto := d.ToDTO()
	return &ShippingDetailPO{
		ID:                 dto.ID,
		OrderID:            dto.OrderID,
		ExternalOrderID:    dto.ExternalOrderID,
		ExternalShipmentID: dto.ExternalShipmentID,
		AWBCode:            dto.AWBCode,
		CourierName:        dto.CourierName,
		CourierPhone:       dto.CourierPhone,
		TrackingURL:        dto.TrackingURL,
		Status:             string(dto.Status),
		History:            dto.History,
		ScheduledAt:        dto.ScheduledAt,
		DispatchedAt:       dto.DispatchedAt,
		DeliveredAt:        dto.DeliveredAt,
		Version:            dto.Version,
		CreatedAt:          dto.CreatedAt,
		UpdatedAt:          dto.UpdatedAt,
	}
}

func (p *ShippingDetailPO) ToDomain() *shipment.ShippingDetail {
	return shipment.RebuildFromDTO(shipment.ReconstructionDTO{
		ID:                 p.ID,
		OrderID:            p.OrderID,
		ExternalOrderID:    p.ExternalOrderID,
		ExternalShipmentID: p.ExternalShipmentID,
		AWBCode:            p.AWBCode,
		CourierName:        p.CourierName,
		CourierPhone:       p.CourierPhone,
		TrackingURL:        p.TrackingURL,
		Status:             shipment.Status(p.Status),
		History:            p.History,
		ScheduledAt:        p.ScheduledAt,
		DispatchedAt:       p.DispatchedAt,
		DeliveredAt:        p.DeliveredAt,
		Version:            p.Version,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	})
}
