/*
Package shipment holds the ShippingDetail booked with the logistics provider
after a payment is verified, and the port to that provider.

A ShippingDetail is optional: its absence never blocks payment success.
The status history is append-only.
*/
package shipment

import (
	"fmt"
	"time"

	"fulfillment/domain/shared"

	"github.com/google/uuid"
)

// HistoryEntry is one status push or admin change.
type HistoryEntry struct {
	Status            Status    `json:"status"`
	ProviderStatus    string    `json:"provider_status,omitempty"`
	ProviderTimestamp string    `json:"provider_timestamp,omitempty"`
	Location          string    `json:"location,omitempty"`
	Remark            string    `json:"remark,omitempty"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// BookingResult is what a successful booking chain produced.
type BookingResult struct {
	ExternalOrderID    string
	ExternalShipmentID string
	AWBCode            string
	CourierID          int
	CourierName        string
	CourierPhone       string
	TrackingURL        string
	PickupScheduledAt  *time.Time
}

type ShippingDetail struct {
	id                 string
	orderID            string
	externalOrderID    string
	externalShipmentID string
	awbCode            string
	courierName        string
	courierPhone       string
	trackingURL        string
	status             Status
	history            []HistoryEntry
	scheduledAt        *time.Time
	dispatchedAt       *time.Time
	deliveredAt        *time.Time
	version            int
	createdAt          time.Time
	updatedAt          time.Time

	shared.EventRecorder
	isNew bool
}

// NewShippingDetail records a booked shipment in PROCESSING.
func NewShippingDetail(orderID string, r BookingResult) (*ShippingDetail, error) {
	if r.ExternalShipmentID == "" {
		return nil, shared.NewValidationError("shipping_detail", "external_shipment_id", "shipment id is required")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate shipping detail ID: %w", err)
	}
	now := time.Now()
	d := &ShippingDetail{
		id:                 id.String(),
		orderID:            orderID,
		externalOrderID:    r.ExternalOrderID,
		externalShipmentID: r.ExternalShipmentID,
		awbCode:            r.AWBCode,
		courierName:        r.CourierName,
		courierPhone:       r.CourierPhone,
		trackingURL:        r.TrackingURL,
		status:             StatusProcessing,
		history: []HistoryEntry{{
			Status:     StatusProcessing,
			Remark:     "shipment booked",
			RecordedAt: now,
		}},
		scheduledAt: r.PickupScheduledAt,
		createdAt:   now,
		updatedAt:   now,
		isNew:       true,
	}
	d.Record(NewShipmentBookedEvent(d))
	return d, nil
}

// ProviderUpdate is a status push (webhook or tracking poll) from the provider.
type ProviderUpdate struct {
	AWBCode     string
	Status      string
	Timestamp   string
	Location    string
	Remark      string
	CourierName string
}

// RecordProviderUpdate appends the update to the history and moves the
// current status. An update already present in the history, keyed on
// provider status text and timestamp, is ignored and reports false.
func (d *ShippingDetail) RecordProviderUpdate(u ProviderUpdate) bool {
	for _, h := range d.history {
		if h.ProviderStatus == u.Status && h.ProviderTimestamp == u.Timestamp {
			return false
		}
	}
	now := time.Now()
	next := FromProviderText(u.Status)
	d.history = append(d.history, HistoryEntry{
		Status:            next,
		ProviderStatus:    u.Status,
		ProviderTimestamp: u.Timestamp,
		Location:          u.Location,
		Remark:            u.Remark,
		RecordedAt:        now,
	})
	if u.AWBCode != "" && d.awbCode == "" {
		d.awbCode = u.AWBCode
	}
	if u.CourierName != "" && d.courierName == "" {
		d.courierName = u.CourierName
	}
	d.setStatus(next, now)
	return true
}

// ApplyAdminStatus mirrors an admin-set order status onto the shipment.
func (d *ShippingDetail) ApplyAdminStatus(s Status, trackingID string) bool {
	if trackingID != "" {
		d.awbCode = trackingID
	}
	if d.status == s {
		return trackingID != ""
	}
	now := time.Now()
	d.history = append(d.history, HistoryEntry{Status: s, Remark: "status set by admin", RecordedAt: now})
	d.setStatus(s, now)
	return true
}

// Cancel marks the shipment cancelled locally.
func (d *ShippingDetail) Cancel(reason string) bool {
	if d.status == StatusCancelled || d.status == StatusDelivered {
		return false
	}
	now := time.Now()
	d.history = append(d.history, HistoryEntry{Status: StatusCancelled, Remark: reason, RecordedAt: now})
	d.setStatus(StatusCancelled, now)
	return true
}

func (d *ShippingDetail) setStatus(next Status, now time.Time) {
	from := d.status
	d.status = next
	d.updatedAt = now
	switch next {
	case StatusDispatched, StatusInTransit, StatusOutForDelivery:
		if d.dispatchedAt == nil {
			d.dispatchedAt = &now
		}
	case StatusDelivered:
		if d.dispatchedAt == nil {
			d.dispatchedAt = &now
		}
		d.deliveredAt = &now
	}
	if from != next {
		d.Record(NewShipmentStatusChangedEvent(d.orderID, d.id, from, next))
	}
}

func (d *ShippingDetail) IncrementVersionForSave() {
	d.version++
	d.isNew = false
}

func (d *ShippingDetail) ID() string                 { return d.id }
func (d *ShippingDetail) OrderID() string            { return d.orderID }
func (d *ShippingDetail) ExternalOrderID() string    { return d.externalOrderID }
func (d *ShippingDetail) ExternalShipmentID() string { return d.externalShipmentID }
func (d *ShippingDetail) AWBCode() string            { return d.awbCode }
func (d *ShippingDetail) CourierName() string        { return d.courierName }
func (d *ShippingDetail) CourierPhone() string       { return d.courierPhone }
func (d *ShippingDetail) TrackingURL() string        { return d.trackingURL }
func (d *ShippingDetail) Status() Status             { return d.status }
func (d *ShippingDetail) ScheduledAt() *time.Time    { return d.scheduledAt }
func (d *ShippingDetail) DispatchedAt() *time.Time   { return d.dispatchedAt }
func (d *ShippingDetail) DeliveredAt() *time.Time    { return d.deliveredAt }
func (d *ShippingDetail) Version() int               { return d.version }
func (d *ShippingDetail) CreatedAt() time.Time       { return d.createdAt }
func (d *ShippingDetail) UpdatedAt() time.Time       { return d.updatedAt }
func (d *ShippingDetail) IsNew() bool                { return d.isNew }

func (d *ShippingDetail) History() []HistoryEntry {
	h := make([]HistoryEntry, len(d.history))
	copy(h, d.history)
	return h
}

type ReconstructionDTO struct {
	ID                 string
	OrderID            string
	ExternalOrderID    string
	ExternalShipmentID string
	AWBCode            string
	CourierName        string
	CourierPhone       string
	TrackingURL        string
	Status             Status
	History            []HistoryEntry
	ScheduledAt        *time.Time
	DispatchedAt       *time.Time
	DeliveredAt        *time.Time
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func RebuildFromDTO(dto ReconstructionDTO) *ShippingDetail {
	return &ShippingDetail{
		id:                 dto.ID,
		orderID:            dto.OrderID,
		externalOrderID:    dto.ExternalOrderID,
		externalShipmentID: dto.ExternalShipmentID,
		awbCode:            dto.AWBCode,
		courierName:        dto.CourierName,
		courierPhone:       dto.CourierPhone,
		trackingURL:        dto.TrackingURL,
		status:             dto.Status,
		history:            dto.History,
		scheduledAt:        dto.ScheduledAt,
		dispatchedAt:       dto.DispatchedAt,
		deliveredAt:        dto.DeliveredAt,
		version:            dto.Version,
		createdAt:          dto.CreatedAt,
		updatedAt:          dto.UpdatedAt,
	}
}

func (d *ShippingDetail) ToDTO() ReconstructionDTO {
	return ReconstructionDTO{
		ID:                 d.id,
		OrderID:            d.orderID,
		ExternalOrderID:    d.externalOrderID,
		ExternalShipmentID: d.externalShipmentID,
		AWBCode:            d.awbCode,
		CourierName:        d.courierName,
		CourierPhone:       d.courierPhone,
		TrackingURL:        d.trackingURL,
		Status:             d.status,
		History:            d.History(),
		ScheduledAt:        d.scheduledAt,
		DispatchedAt:       d.dispatchedAt,
		DeliveredAt:        d.deliveredAt,
		Version:            d.version,
		CreatedAt:          d.createdAt,
		UpdatedAt:          d.updatedAt,
	}
}

var _ shared.AggregateRoot = (*ShippingDetail)(nil)
