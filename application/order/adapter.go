package order

import (
	"fulfillment/domain/order"
	"fulfillment/domain/shipment"
	"fulfillment/domain/storefront"
)

// buildShipmentRequest adapts a paid order to the provider's booking request.
// Customer contact details win over the address snapshot when present.
func buildShipmentRequest(o *order.Order, c *storefront.Customer, pickupLocation string) shipment.ShipmentRequest {
	addr := o.Address()
	name, email, phone := customerOrAddress(c, addr)

	items := make([]shipment.ShipmentItem, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, shipment.ShipmentItem{
			Name:  it.ProductName(),
			SKU:   it.ProductID(),
			Units: it.Quantity(),
			Price: it.UnitPrice(),
		})
	}

	parcel := o.Parcel()
	return shipment.ShipmentRequest{
		OrderID:        o.ID(),
		OrderDate:      o.CreatedAt(),
		PickupLocation: pickupLocation,
		CustomerName:   name,
		CustomerEmail:  email,
		CustomerPhone:  phone,
		AddressLine1:   addr.Line1,
		AddressLine2:   addr.Line2,
		City:           addr.City,
		State:          addr.State,
		Postcode:       addr.PostalCode,
		Country:        addr.Country,
		Items:          items,
		SubTotal:       o.Subtotal(),
		WeightKg:       parcel.WeightKg,
		LengthCm:       parcel.LengthCm,
		BreadthCm:      parcel.BreadthCm,
		HeightCm:       parcel.HeightCm,
	}
}
