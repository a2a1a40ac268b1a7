package shipment

import (
	"testing"

	"fulfillment/domain/order"

	"github.com/shopspring/decimal"
)

func TestFromProviderText(t *testing.T) {
	tests := []struct {
		text      string
		want      Status
		wantOrder order.Status
		changes   bool
	}{
		{"New", StatusPending, "", false},
		{"Pickup Scheduled", StatusProcessing, order.StatusPaid, true},
		{"Picked Up", StatusDispatched, order.StatusShipped, true},
		{"Shipped", StatusDispatched, order.StatusShipped, true},
		{"In Transit", StatusInTransit, order.StatusShipped, true},
		{"OUT FOR DELIVERY", StatusOutForDelivery, order.StatusShipped, true},
		{"Delivered", StatusDelivered, order.StatusDelivered, true},
		{"Cancelled", StatusCancelled, order.StatusCancelled, true},
		{"RTO Initiated", StatusRTOInitiated, "", false},
		{"RTO Delivered", StatusRTODelivered, "", false},
		{"Lost", StatusFailed, "", false},
		{"Damaged", StatusFailed, "", false},
		{"Reached hub 4", StatusInTransit, order.StatusShipped, true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := FromProviderText(tt.text)
			if got != tt.want {
				t.Fatalf("FromProviderText(%q) = %s, want %s", tt.text, got, tt.want)
			}
			derived, ok := got.OrderStatus()
			if ok != tt.changes || derived != tt.wantOrder {
				t.Errorf("OrderStatus() = (%s, %v), want (%s, %v)", derived, ok, tt.wantOrder, tt.changes)
			}
		})
	}
}

func TestSelectCheapestKeepsFirstOnTie(t *testing.T) {
	options := []CourierOption{
		{CourierID: 1, CourierName: "Slow", Rate: decimal.NewFromInt(80)},
		{CourierID: 2, CourierName: "First", Rate: decimal.NewFromInt(50)},
		{CourierID: 3, CourierName: "Second", Rate: decimal.NewFromInt(50)},
	}
	best, ok := SelectCheapest(options)
	if !ok || best.CourierID != 2 {
		t.Errorf("got %+v", best)
	}

	if s := NewServiceability(nil); s.Available {
		t.Error("no options must be unavailable")
	}
}

func TestRecordProviderUpdateDeduplicates(t *testing.T) {
	d, err := NewShippingDetail("order-1", BookingResult{ExternalShipmentID: "sh-1", AWBCode: "AWB1"})
	if err != nil {
		t.Fatalf("NewShippingDetail: %v", err)
	}
	u := ProviderUpdate{Status: "In Transit", Timestamp: "2026-01-02 10:00:00"}

	if !d.RecordProviderUpdate(u) {
		t.Fatal("first delivery should be recorded")
	}
	if d.RecordProviderUpdate(u) {
		t.Error("replayed delivery should be ignored")
	}
	if n := len(d.History()); n != 2 {
		t.Errorf("history length = %d, want 2", n)
	}
	if d.Status() != StatusInTransit || d.DispatchedAt() == nil {
		t.Errorf("status = %s dispatched=%v", d.Status(), d.DispatchedAt())
	}

	u.Timestamp = "2026-01-02 12:00:00"
	if !d.RecordProviderUpdate(u) {
		t.Error("new timestamp should be recorded")
	}
}
