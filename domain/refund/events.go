package refund

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event covers every refund lifecycle event; name distinguishes them.
type Event struct {
	name       string
	refundID   string
	orderID    string
	amount     decimal.Decimal
	status     Status
	occurredOn time.Time
}

func newEvent(name string, r *Refund) *Event {
	return &Event{
		name:       name,
		refundID:   r.id,
		orderID:    r.orderID,
		amount:     r.amount,
		status:     r.status,
		occurredOn: time.Now(),
	}
}

func (e *Event) EventName() string      { return e.name }
func (e *Event) OccurredOn() time.Time  { return e.occurredOn }
func (e *Event) GetAggregateID() string { return e.refundID }
func (e *Event) Payload() map[string]any {
	return map[string]any{
		"refund_id": e.refundID,
		"order_id":  e.orderID,
		"amount":    e.amount.StringFixed(2),
		"status":    string(e.status),
	}
}
