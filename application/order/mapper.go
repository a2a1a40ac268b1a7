package order

import (
	"fulfillment/domain/order"
	"fulfillment/domain/payment"
	"fulfillment/domain/shipment"
)

func (s *ApplicationService) checkoutResponse(o *order.Order, p *payment.Payment, replayed bool) *CheckoutResponse {
	return &CheckoutResponse{
		Order: CheckoutOrder{
			ID:              o.ID(),
			ExternalOrderID: p.ExternalOrderID(),
			Subtotal:        o.Subtotal(),
			ShippingCost:    o.ShippingCost(),
			TotalAmount:     o.TotalAmount(),
			Currency:        p.Currency(),
			Status:          string(o.Status()),
		},
		GatewayPublicKey: s.gateway.PublicKey(),
		IdempotencyKey:   p.IdempotencyKey(),
		Replayed:         replayed,
	}
}

// toOrderResponse tolerates a nil payment.
func toOrderResponse(o *order.Order, p *payment.Payment) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, OrderItemResponse{
			ProductID:   it.ProductID(),
			ProductName: it.ProductName(),
			Quantity:    it.Quantity(),
			UnitPrice:   it.UnitPrice(),
			LineTotal:   it.LineTotal(),
		})
	}

	addr := o.Address()
	resp := &OrderResponse{
		ID:           o.ID(),
		UserID:       o.UserID(),
		Items:        items,
		Subtotal:     o.Subtotal(),
		ShippingCost: o.ShippingCost(),
		TotalAmount:  o.TotalAmount(),
		Status:       string(o.Status()),
		Address: AddressResponse{
			Name:       addr.Name,
			Phone:      addr.Phone,
			Line1:      addr.Line1,
			Line2:      addr.Line2,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
		},
		CreatedAt: o.CreatedAt(),
		UpdatedAt: o.UpdatedAt(),
	}
	if p != nil {
		resp.PaymentStatus = string(p.Status())
	}
	return resp
}

func toShippingResponse(d *shipment.ShippingDetail) *ShippingResponse {
	history := make([]ShippingHistoryEntry, 0, len(d.History()))
	for _, h := range d.History() {
		history = append(history, ShippingHistoryEntry{
			Status:         string(h.Status),
			ProviderStatus: h.ProviderStatus,
			Location:       h.Location,
			Remark:         h.Remark,
			RecordedAt:     h.RecordedAt,
		})
	}
	return &ShippingResponse{
		Status:             string(d.Status()),
		ExternalOrderID:    d.ExternalOrderID(),
		ExternalShipmentID: d.ExternalShipmentID(),
		AWBCode:            d.AWBCode(),
		CourierName:        d.CourierName(),
		TrackingURL:        d.TrackingURL(),
		ScheduledAt:        d.ScheduledAt(),
		DispatchedAt:       d.DispatchedAt(),
		DeliveredAt:        d.DeliveredAt(),
		History:            history,
	}
}

func toLiveTracking(t shipment.Tracking) *LiveTracking {
	activities := make([]TrackingActivity, 0, len(t.History))
	for _, h := range t.History {
		activities = append(activities, TrackingActivity{
			Status:    h.Status,
			Timestamp: h.Timestamp,
			Location:  h.Location,
			Remark:    h.Remark,
		})
	}
	return &LiveTracking{
		Status:      t.Status,
		ETA:         t.ETA,
		TrackingURL: t.TrackingURL,
		Activities:  activities,
	}
}
