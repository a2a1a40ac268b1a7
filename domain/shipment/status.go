package shipment

import (
	"strings"

	"fulfillment/domain/order"
)

// Status is the internal shipment lifecycle.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusProcessing     Status = "PROCESSING"
	StatusDispatched     Status = "DISPATCHED"
	StatusInTransit      Status = "IN_TRANSIT"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
	StatusRTOInitiated   Status = "RTO_INITIATED"
	StatusRTODelivered   Status = "RTO_DELIVERED"
	StatusFailed         Status = "FAILED"
)

// FromProviderText maps the logistics provider's free-text status.
// Unrecognised text is treated as IN_TRANSIT.
func FromProviderText(text string) Status {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "new":
		return StatusPending
	case "pickup scheduled":
		return StatusProcessing
	case "picked up", "shipped":
		return StatusDispatched
	case "in transit":
		return StatusInTransit
	case "out for delivery":
		return StatusOutForDelivery
	case "delivered":
		return StatusDelivered
	case "cancelled", "canceled":
		return StatusCancelled
	case "rto initiated":
		return StatusRTOInitiated
	case "rto delivered":
		return StatusRTODelivered
	case "lost", "damaged":
		return StatusFailed
	default:
		return StatusInTransit
	}
}

// OrderStatus derives the order status implied by s. The second result is
// false when s carries no order-level meaning.
func (s Status) OrderStatus() (order.Status, bool) {
	switch s {
	case StatusProcessing:
		return order.StatusPaid, true
	case StatusDispatched, StatusInTransit, StatusOutForDelivery:
		return order.StatusShipped, true
	case StatusDelivered:
		return order.StatusDelivered, true
	case StatusCancelled:
		return order.StatusCancelled, true
	default:
		return "", false
	}
}

// ForOrderStatus is the shipment status mirrored onto a ShippingDetail when an
// admin sets the order status directly.
func ForOrderStatus(s order.Status) Status {
	switch s {
	case order.StatusPaid:
		return StatusProcessing
	case order.StatusShipped:
		return StatusDispatched
	case order.StatusDelivered:
		return StatusDelivered
	case order.StatusCancelled:
		return StatusCancelled
	default:
		return StatusPending
	}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDispatched, StatusInTransit, StatusOutForDelivery,
		StatusDelivered, StatusCancelled, StatusRTOInitiated, StatusRTODelivered, StatusFailed:
		return true
	}
	return false
}
