package logistics

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fulfillment/domain/shipment"

	"github.com/shopspring/decimal"
)

// Sandbox is a local provider used when no base URL is configured. Postcodes
// starting with "99" are not serviceable.
type Sandbox struct {
	seq atomic.Int64

	mu        sync.Mutex
	shipments map[string]string
}

func NewSandbox() *Sandbox {
	return &Sandbox{shipments: make(map[string]string)}
}

func (s *Sandbox) quote(req shipment.ServiceabilityRequest) []shipment.CourierOption {
	if strings.HasPrefix(req.DeliveryPostcode, "99") {
		return nil
	}
	weight := req.WeightKg
	if !weight.IsPositive() {
		weight = decimal.NewFromFloat(0.5)
	}
	perKg := decimal.NewFromInt(40)
	return []shipment.CourierOption{
		{CourierID: 1, CourierName: "Sandbox Express", Rate: decimal.NewFromInt(60).Add(weight.Mul(perKg)).Round(2), ETD: "2 days"},
		{CourierID: 2, CourierName: "Sandbox Surface", Rate: decimal.NewFromInt(30).Add(weight.Mul(perKg)).Round(2), ETD: "5 days"},
	}
}

func (s *Sandbox) CheckServiceability(ctx context.Context, req shipment.ServiceabilityRequest) (shipment.Serviceability, error) {
	return shipment.NewServiceability(s.quote(req)), nil
}

func (s *Sandbox) AvailableCouriers(ctx context.Context, req shipment.ServiceabilityRequest) []shipment.CourierOption {
	return s.quote(req)
}

func (s *Sandbox) CreateShipment(ctx context.Context, req shipment.ShipmentRequest) (shipment.CreatedShipment, error) {
	if len(req.Items) == 0 {
		return shipment.CreatedShipment{}, shipment.NewShipmentCreateFailedError("order has no items")
	}
	n := s.seq.Add(1)
	id := fmt.Sprintf("SBX-SHP-%d", n)
	s.mu.Lock()
	s.shipments[id] = "NEW"
	s.mu.Unlock()
	return shipment.CreatedShipment{ExternalOrderID: fmt.Sprintf("SBX-ORD-%d", n), ExternalShipmentID: id}, nil
}

func (s *Sandbox) AssignWaybill(ctx context.Context, shipmentID string, courierID int) (shipment.Waybill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[shipmentID]; !ok {
		return shipment.Waybill{}, shipment.NewWaybillAssignFailedError(shipmentID, "unknown shipment")
	}
	s.shipments[shipmentID] = "AWB ASSIGNED"
	return shipment.Waybill{AWBCode: "AWB" + strings.TrimPrefix(shipmentID, "SBX-SHP-"), CourierName: "Sandbox Surface"}, nil
}

func (s *Sandbox) RequestPickup(ctx context.Context, shipmentID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[shipmentID]; !ok {
		return time.Time{}, shipment.NewProviderUnavailableError("request_pickup", fmt.Errorf("unknown shipment %s", shipmentID))
	}
	s.shipments[shipmentID] = "Pickup Scheduled"
	return time.Now().Add(24 * time.Hour).Truncate(time.Hour), nil
}

func (s *Sandbox) TrackShipment(ctx context.Context, shipmentID string) (shipment.Tracking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.shipments[shipmentID]
	if !ok {
		return shipment.Tracking{}, shipment.NewProviderUnavailableError("track", fmt.Errorf("unknown shipment %s", shipmentID))
	}
	return shipment.Tracking{Status: status}, nil
}

func (s *Sandbox) CancelShipment(ctx context.Context, awbCodes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, awb := range awbCodes {
		id := "SBX-SHP-" + strings.TrimPrefix(awb, "AWB")
		if _, ok := s.shipments[id]; ok {
			s.shipments[id] = "Cancelled"
		}
	}
	return nil
}

var _ shipment.Provider = (*Sandbox)(nil)
