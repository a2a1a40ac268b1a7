package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderPlacedEvent struct {
	orderID      string
	userID       string
	subtotal     decimal.Decimal
	shippingCost decimal.Decimal
	totalAmount  decimal.Decimal
	itemCount    int
	occurredOn   time.Time
}

func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		orderID:      o.id,
		userID:       o.userID,
		subtotal:     o.subtotal,
		shippingCost: o.shippingCost,
		totalAmount:  o.totalAmount,
		itemCount:    len(o.items),
		occurredOn:   time.Now(),
	}
}

func (e *OrderPlacedEvent) EventName() string      { return "order.placed" }
func (e *OrderPlacedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderPlacedEvent) GetAggregateID() string { return e.orderID }
func (e *OrderPlacedEvent) Payload() map[string]any {
	return map[string]any{
		"order_id":      e.orderID,
		"user_id":       e.userID,
		"subtotal":      e.subtotal.StringFixed(2),
		"shipping_cost": e.shippingCost.StringFixed(2),
		"total_amount":  e.totalAmount.StringFixed(2),
		"item_count":    e.itemCount,
	}
}

type OrderPaidEvent struct {
	orderID     string
	totalAmount decimal.Decimal
	occurredOn  time.Time
}

func NewOrderPaidEvent(orderID string, total decimal.Decimal) *OrderPaidEvent {
	return &OrderPaidEvent{orderID: orderID, totalAmount: total, occurredOn: time.Now()}
}

func (e *OrderPaidEvent) EventName() string      { return "order.paid" }
func (e *OrderPaidEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderPaidEvent) GetAggregateID() string { return e.orderID }
func (e *OrderPaidEvent) Payload() map[string]any {
	return map[string]any{"order_id": e.orderID, "total_amount": e.totalAmount.StringFixed(2)}
}

type OrderCancelledEvent struct {
	orderID    string
	from       Status
	reason     string
	occurredOn time.Time
}

func NewOrderCancelledEvent(orderID string, from Status, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{orderID: orderID, from: from, reason: reason, occurredOn: time.Now()}
}

func (e *OrderCancelledEvent) EventName() string      { return "order.cancelled" }
func (e *OrderCancelledEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderCancelledEvent) GetAggregateID() string { return e.orderID }
func (e *OrderCancelledEvent) Payload() map[string]any {
	return map[string]any{"order_id": e.orderID, "from": string(e.from), "reason": e.reason}
}

type OrderStatusChangedEvent struct {
	orderID    string
	from       Status
	to         Status
	reason     string
	occurredOn time.Time
}

func NewOrderStatusChangedEvent(orderID string, from, to Status, reason string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{orderID: orderID, from: from, to: to, reason: reason, occurredOn: time.Now()}
}

func (e *OrderStatusChangedEvent) EventName() string      { return "order.status_changed" }
func (e *OrderStatusChangedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderStatusChangedEvent) GetAggregateID() string { return e.orderID }
func (e *OrderStatusChangedEvent) To() Status             { return e.to }
func (e *OrderStatusChangedEvent) Payload() map[string]any {
	return map[string]any{"order_id": e.orderID, "from": string(e.from), "to": string(e.to), "reason": e.reason}
}
