package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fulfillment/domain/payment"
	"fulfillment/domain/shipment"
	"fulfillment/pkg/signature"

	"github.com/shopspring/decimal"
)

const testGatewaySecret = "test_secret"

func sign(externalOrderID, externalPaymentID string) string {
	return signature.Sign(testGatewaySecret, signature.PaymentPayload(externalOrderID, externalPaymentID))
}

type fakeGateway struct {
	mu        sync.Mutex
	intents   int
	createErr error
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return "", g.createErr
	}
	g.intents++
	return fmt.Sprintf("order_ext_%d", g.intents), nil
}

func (g *fakeGateway) VerifySignature(externalOrderID, externalPaymentID, sig string) bool {
	return signature.Verify(testGatewaySecret, signature.PaymentPayload(externalOrderID, externalPaymentID), sig)
}

func (g *fakeGateway) IssueRefund(ctx context.Context, externalPaymentID string, amountMinor int64, notes map[string]string) (payment.RefundReceipt, error) {
	return payment.RefundReceipt{}, errors.New("not used")
}

func (g *fakeGateway) FetchRefundStatus(ctx context.Context, externalPaymentID, externalRefundID string) (string, error) {
	return "", errors.New("not used")
}

func (g *fakeGateway) PublicKey() string { return "key_test" }

func (g *fakeGateway) intentCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.intents
}

type fakeProvider struct {
	mu sync.Mutex

	quote     shipment.Serviceability
	quoteErr  error
	createErr error
	assignErr error
	trackErr  error

	lastQuote  shipment.ServiceabilityRequest
	created    int
	assignedTo int
	cancelled  []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		quote: shipment.NewServiceability([]shipment.CourierOption{
			{CourierID: 7, CourierName: "Air", Rate: decimal.NewFromInt(80)},
			{CourierID: 3, CourierName: "Surface", Rate: decimal.NewFromInt(50)},
		}),
	}
}

func (p *fakeProvider) CheckServiceability(ctx context.Context, req shipment.ServiceabilityRequest) (shipment.Serviceability, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastQuote = req
	if p.quoteErr != nil {
		return shipment.Serviceability{}, p.quoteErr
	}
	return p.quote, nil
}

func (p *fakeProvider) AvailableCouriers(ctx context.Context, req shipment.ServiceabilityRequest) []shipment.CourierOption {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quote.Options
}

func (p *fakeProvider) CreateShipment(ctx context.Context, req shipment.ShipmentRequest) (shipment.CreatedShipment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return shipment.CreatedShipment{}, p.createErr
	}
	p.created++
	return shipment.CreatedShipment{
		ExternalOrderID:    fmt.Sprintf("LOG-%d", p.created),
		ExternalShipmentID: fmt.Sprintf("SHP-%d", p.created),
	}, nil
}

func (p *fakeProvider) AssignWaybill(ctx context.Context, shipmentID string, courierID int) (shipment.Waybill, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.assignErr != nil {
		return shipment.Waybill{}, p.assignErr
	}
	p.assignedTo = courierID
	return shipment.Waybill{AWBCode: "AWB-" + shipmentID}, nil
}

func (p *fakeProvider) RequestPickup(ctx context.Context, shipmentID string) (time.Time, error) {
	return time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC), nil
}

func (p *fakeProvider) TrackShipment(ctx context.Context, shipmentID string) (shipment.Tracking, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trackErr != nil {
		return shipment.Tracking{}, p.trackErr
	}
	return shipment.Tracking{
		Status:  "In Transit",
		History: []shipment.ProviderUpdate{{Status: "Picked Up", Timestamp: "2026-10-20 11:00:00"}},
	}, nil
}

func (p *fakeProvider) CancelShipment(ctx context.Context, awbCodes []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, awbCodes...)
	return nil
}

func (p *fakeProvider) set(fn func(p *fakeProvider)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

// pausingPayments holds the first FindByOrderID caller until resume is
// closed, after its read has been taken.
type pausingPayments struct {
	payment.Repository
	once   sync.Once
	paused chan struct{}
	resume chan struct{}
}

func newPausingPayments(inner payment.Repository) *pausingPayments {
	return &pausingPayments{Repository: inner, paused: make(chan struct{}), resume: make(chan struct{})}
}

func (r *pausingPayments) FindByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	p, err := r.Repository.FindByOrderID(ctx, orderID)
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.paused)
		<-r.resume
	}
	return p, err
}

var (
	_ payment.Repository = (*pausingPayments)(nil)
	_ payment.Gateway    = (*fakeGateway)(nil)
	_ shipment.Provider  = (*fakeProvider)(nil)
)
