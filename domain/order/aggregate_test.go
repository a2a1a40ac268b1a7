package order

import (
	"errors"
	"testing"

	"fulfillment/domain/shared"

	"github.com/shopspring/decimal"
)

func placeParams() PlaceParams {
	return PlaceParams{
		UserID: "user-1",
		Items: []ItemParams{
			{ProductID: "p-1", ProductName: "Kettle", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
			{ProductID: "p-2", ProductName: "Mug", Quantity: 1, UnitPrice: decimal.NewFromInt(400)},
		},
		ShippingCost:   decimal.NewFromInt(50),
		Address:        Address{Name: "A", Line1: "1 Road", City: "Delhi", PostalCode: "110002", Country: "IN"},
		PickupPostcode: "110001",
	}
}

func TestNewOrderTotals(t *testing.T) {
	o, err := NewOrder(placeParams())
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	if !o.Subtotal().Equal(decimal.NewFromInt(1400)) {
		t.Errorf("subtotal = %s, want 1400", o.Subtotal())
	}
	if !o.TotalAmount().Equal(decimal.NewFromInt(1450)) {
		t.Errorf("total = %s, want 1450", o.TotalAmount())
	}
	if o.Status() != StatusPending {
		t.Errorf("status = %s, want PENDING", o.Status())
	}
	if o.DeliveryPostcode() != "110002" {
		t.Errorf("delivery postcode = %s", o.DeliveryPostcode())
	}
	events := o.PullEvents()
	if len(events) != 1 || events[0].EventName() != "order.placed" {
		t.Errorf("expected order.placed event, got %v", events)
	}
}

func TestNewOrderRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PlaceParams)
		want   error
	}{
		{"empty cart", func(p *PlaceParams) { p.Items = nil }, ErrEmptyCart},
		{"zero quantity", func(p *PlaceParams) { p.Items[0].Quantity = 0 }, ErrInvalidQuantity},
		{"missing postcode", func(p *PlaceParams) { p.Address.PostalCode = "" }, shared.ErrInvalidInput},
		{"negative shipping", func(p *PlaceParams) { p.ShippingCost = decimal.NewFromInt(-1) }, shared.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := placeParams()
			tt.mutate(&p)
			_, err := NewOrder(p)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPaid, StatusShipped, true},
		{StatusPaid, StatusDelivered, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusPaid, StatusCancelled, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusShipped, StatusPaid, false},
		{StatusCancelled, StatusPaid, false},
		{StatusPaid, StatusPaid, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCancelShippedOrderIsConflict(t *testing.T) {
	o, _ := NewOrder(placeParams())
	if err := o.MarkPaid(); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if _, err := o.TransitionTo(StatusShipped, "dispatched"); err != nil {
		t.Fatalf("TransitionTo: %v", err)
	}

	err := o.Cancel("changed my mind")
	if !errors.Is(err, shared.ErrConflict) || !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected conflict, got %v", err)
	}
	if o.Status() != StatusShipped {
		t.Errorf("status changed to %s", o.Status())
	}
}

func TestTransitionToSameStatusIsNoop(t *testing.T) {
	o, _ := NewOrder(placeParams())
	o.PullEvents()

	changed, err := o.TransitionTo(StatusPending, "")
	if err != nil || changed {
		t.Errorf("changed=%v err=%v, want no-op", changed, err)
	}
	if len(o.PullEvents()) != 0 {
		t.Error("no-op transition must not record events")
	}
}

func TestRebuildRoundTripKeepsVersion(t *testing.T) {
	o, _ := NewOrder(placeParams())
	o.IncrementVersionForSave()

	rebuilt := RebuildFromDTO(o.ToDTO())
	if rebuilt.Version() != 1 || rebuilt.IsNew() {
		t.Errorf("version=%d isNew=%v", rebuilt.Version(), rebuilt.IsNew())
	}
	if len(rebuilt.Items()) != 2 || !rebuilt.TotalAmount().Equal(o.TotalAmount()) {
		t.Error("items or total lost in reconstruction")
	}
}
