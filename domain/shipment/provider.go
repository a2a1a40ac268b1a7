package shipment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ServiceabilityRequest struct {
	PickupPostcode   string
	DeliveryPostcode string
	WeightKg         decimal.Decimal
	CODAmount        decimal.Decimal
}

type CourierOption struct {
	CourierID   int
	CourierName string
	Rate        decimal.Decimal
	ETD         string
}

// Serviceability is the route quote. Available=false is a normal answer, not an error.
type Serviceability struct {
	Available    bool
	CheapestCost decimal.Decimal
	ETD          string
	CourierID    int
	CourierName  string
	Options      []CourierOption
}

// SelectCheapest returns the minimum-rate option; ties keep the provider's order.
func SelectCheapest(options []CourierOption) (CourierOption, bool) {
	if len(options) == 0 {
		return CourierOption{}, false
	}
	best := options[0]
	for _, o := range options[1:] {
		if o.Rate.LessThan(best.Rate) {
			best = o
		}
	}
	return best, true
}

// NewServiceability builds a quote from the options in provider order.
func NewServiceability(options []CourierOption) Serviceability {
	best, ok := SelectCheapest(options)
	if !ok {
		return Serviceability{Available: false}
	}
	return Serviceability{
		Available:    true,
		CheapestCost: best.Rate,
		ETD:          best.ETD,
		CourierID:    best.CourierID,
		CourierName:  best.CourierName,
		Options:      options,
	}
}

type ShipmentItem struct {
	Name  string
	SKU   string
	Units int
	Price decimal.Decimal
}

type ShipmentRequest struct {
	OrderID        string
	OrderDate      time.Time
	PickupLocation string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	AddressLine1   string
	AddressLine2   string
	City           string
	State          string
	Postcode       string
	Country        string
	Items          []ShipmentItem
	SubTotal       decimal.Decimal
	WeightKg       decimal.Decimal
	LengthCm       decimal.Decimal
	BreadthCm      decimal.Decimal
	HeightCm       decimal.Decimal
}

type CreatedShipment struct {
	ExternalOrderID    string
	ExternalShipmentID string
}

type Waybill struct {
	AWBCode     string
	CourierName string
}

type Tracking struct {
	Status      string
	History     []ProviderUpdate
	ETA         string
	TrackingURL string
}

// Provider is the port to the remote logistics provider. Every call fails
// closed on transport errors except AvailableCouriers, which returns an empty
// list so callers can fall back.
type Provider interface {
	CheckServiceability(ctx context.Context, req ServiceabilityRequest) (Serviceability, error)
	AvailableCouriers(ctx context.Context, req ServiceabilityRequest) []CourierOption
	CreateShipment(ctx context.Context, req ShipmentRequest) (CreatedShipment, error)
	AssignWaybill(ctx context.Context, shipmentID string, courierID int) (Waybill, error)
	RequestPickup(ctx context.Context, shipmentID string) (time.Time, error)
	TrackShipment(ctx context.Context, shipmentID string) (Tracking, error)
	CancelShipment(ctx context.Context, awbCodes []string) error
}
