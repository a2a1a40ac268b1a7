package shipment

import "time"

type ShipmentBookedEvent struct {
	orderID            string
	detailID           string
	externalShipmentID string
	awbCode            string
	courierName        string
	occurredOn         time.Time
}

func NewShipmentBookedEvent(d *ShippingDetail) *ShipmentBookedEvent {
	return &ShipmentBookedEvent{
		orderID:            d.orderID,
		detailID:           d.id,
		externalShipmentID: d.externalShipmentID,
		awbCode:            d.awbCode,
		courierName:        d.courierName,
		occurredOn:         time.Now(),
	}
}

func (e *ShipmentBookedEvent) EventName() string      { return "shipment.booked" }
func (e *ShipmentBookedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *ShipmentBookedEvent) GetAggregateID() string { return e.orderID }
func (e *ShipmentBookedEvent) Payload() map[string]any {
	return map[string]any{
		"order_id":             e.orderID,
		"shipping_detail_id":   e.detailID,
		"external_shipment_id": e.externalShipmentID,
		"awb_code":             e.awbCode,
		"courier_name":         e.courierName,
	}
}

type ShipmentStatusChangedEvent struct {
	orderID    string
	detailID   string
	from       Status
	to         Status
	occurredOn time.Time
}

func NewShipmentStatusChangedEvent(orderID, detailID string, from, to Status) *ShipmentStatusChangedEvent {
	return &ShipmentStatusChangedEvent{orderID: orderID, detailID: detailID, from: from, to: to, occurredOn: time.Now()}
}

func (e *ShipmentStatusChangedEvent) EventName() string      { return "shipment.status_changed" }
func (e *ShipmentStatusChangedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *ShipmentStatusChangedEvent) GetAggregateID() string { return e.orderID }
func (e *ShipmentStatusChangedEvent) Payload() map[string]any {
	return map[string]any{
		"order_id":           e.orderID,
		"shipping_detail_id": e.detailID,
		"from":               string(e.from),
		"to":                 string(e.to),
	}
}
