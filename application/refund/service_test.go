package refund

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fulfillment/domain/order"
	"fulfillment/domain/payment"
	"fulfillment/domain/refund"
	"fulfillment/domain/shared"
	"fulfillment/infrastructure/persistence/mocks"
	"fulfillment/infrastructure/persistence/retry"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu       sync.Mutex
	issueErr error
	issued   []int64
	remote   map[string]string
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (string, error) {
	return "", errors.New("not used")
}

func (g *fakeGateway) VerifySignature(externalOrderID, externalPaymentID, sig string) bool { return false }

func (g *fakeGateway) IssueRefund(ctx context.Context, externalPaymentID string, amountMinor int64, notes map[string]string) (payment.RefundReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.issueErr != nil {
		return payment.RefundReceipt{}, g.issueErr
	}
	g.issued = append(g.issued, amountMinor)
	id := fmt.Sprintf("rfnd_%d", len(g.issued))
	g.remote[id] = payment.RemoteRefundPending
	return payment.RefundReceipt{ExternalRefundID: id, Status: payment.RemoteRefundPending}, nil
}

func (g *fakeGateway) FetchRefundStatus(ctx context.Context, externalPaymentID, externalRefundID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	status, ok := g.remote[externalRefundID]
	if !ok {
		return "", payment.NewGatewayRejectedError("fetch_refund", "unknown refund")
	}
	return status, nil
}

func (g *fakeGateway) PublicKey() string { return "key_test" }

type fixture struct {
	store   *mocks.Store
	gateway *fakeGateway
	svc     *ApplicationService
	order   *order.Order
	payment *payment.Payment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := mocks.NewStore()

	o, err := order.NewOrder(order.PlaceParams{
		UserID: "user-1",
		Items: []order.ItemParams{
			{ProductID: "p-lamp", ProductName: "Desk Lamp", Quantity: 2, UnitPrice: decimal.NewFromInt(700)},
		},
		ShippingCost: decimal.NewFromInt(50),
		Address:      order.Address{Name: "Asha Rao", PostalCode: "560001"},
	})
	require.NoError(t, err)
	require.NoError(t, o.MarkPaid())
	require.NoError(t, mocks.NewOrderRepository(store).Save(ctx, o))

	p, err := payment.NewPayment(o.ID(), "order_ext_1", "key-1", o.TotalAmount(), "INR")
	require.NoError(t, err)
	require.NoError(t, p.MarkSucceeded("pay_1", "sig"))
	require.NoError(t, mocks.NewPaymentRepository(store).Insert(ctx, p))

	gw := &fakeGateway{remote: make(map[string]string)}
	svc := NewApplicationService(
		mocks.NewRefundRepository(store),
		mocks.NewOrderRepository(store),
		mocks.NewPaymentRepository(store),
		gw,
		mocks.NewUnitOfWork(store, mocks.NewOutboxRecorder(), retry.Config{}),
	)
	return &fixture{store: store, gateway: gw, svc: svc, order: o, payment: p}
}

func (f *fixture) request(t *testing.T) *RefundResponse {
	t.Helper()
	resp, err := f.svc.Request(context.Background(), "user-1", RequestRefundRequest{OrderID: f.order.ID(), Reason: "damaged"})
	require.NoError(t, err)
	return resp
}

func (f *fixture) reloadPayment(t *testing.T) *payment.Payment {
	t.Helper()
	p, err := mocks.NewPaymentRepository(f.store).FindByID(context.Background(), f.payment.ID())
	require.NoError(t, err)
	return p
}

func TestRequestRefundsFullAmount(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t)

	assert.Equal(t, "REQUESTED", resp.Status)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(1450)))
	assert.Equal(t, f.payment.ID(), resp.PaymentID)

	_, err := f.svc.Request(context.Background(), "user-1", RequestRefundRequest{OrderID: f.order.ID(), Reason: "again"})
	assert.ErrorIs(t, err, refund.ErrActiveRefundExists)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestRequestRefundGuards(t *testing.T) {
	t.Run("another user's order", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Request(context.Background(), "user-2", RequestRefundRequest{OrderID: f.order.ID(), Reason: "x"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("payment not captured", func(t *testing.T) {
		f := newFixture(t)
		o, err := order.NewOrder(order.PlaceParams{
			UserID:       "user-1",
			Items:        []order.ItemParams{{ProductID: "p-lamp", ProductName: "Desk Lamp", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
			ShippingCost: decimal.Zero,
			Address:      order.Address{PostalCode: "560001"},
		})
		require.NoError(t, err)
		require.NoError(t, mocks.NewOrderRepository(f.store).Save(context.Background(), o))
		p, err := payment.NewPayment(o.ID(), "order_ext_2", "key-2", o.TotalAmount(), "INR")
		require.NoError(t, err)
		require.NoError(t, mocks.NewPaymentRepository(f.store).Insert(context.Background(), p))

		_, err = f.svc.Request(context.Background(), "user-1", RequestRefundRequest{OrderID: o.ID(), Reason: "x"})
		assert.ErrorIs(t, err, refund.ErrNotRefundable)
	})

	t.Run("reason required", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Request(context.Background(), "user-1", RequestRefundRequest{OrderID: f.order.ID(), Reason: "  "})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestApproveRefundsPayment(t *testing.T) {
	f := newFixture(t)
	req := f.request(t)

	resp, err := f.svc.Approve(context.Background(), "admin-1", req.ID, ApproveRefundRequest{AdminNote: "ok"})
	require.NoError(t, err)

	assert.Equal(t, "PROCESSING", resp.Status)
	assert.Equal(t, "rfnd_1", resp.ExternalRefundID)
	assert.Equal(t, "admin-1", resp.DecidedBy)
	assert.Equal(t, []int64{145000}, f.gateway.issued)

	p := f.reloadPayment(t)
	assert.Equal(t, payment.StatusRefunded, p.Status())
	assert.True(t, p.AmountRefunded().Equal(decimal.NewFromInt(1450)))

	_, err = f.svc.Approve(context.Background(), "admin-1", req.ID, ApproveRefundRequest{})
	assert.ErrorIs(t, err, refund.ErrInvalidTransition)
	assert.Len(t, f.gateway.issued, 1)
}

func TestApproveGatewayFailureLeavesPaymentUntouched(t *testing.T) {
	f := newFixture(t)
	req := f.request(t)
	f.gateway.issueErr = payment.NewGatewayRejectedError("issue_refund", "insufficient merchant balance")

	_, err := f.svc.Approve(context.Background(), "admin-1", req.ID, ApproveRefundRequest{})
	assert.ErrorIs(t, err, payment.ErrGatewayRejected)

	mine, err := f.svc.ListMine(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "FAILED", mine[0].Status)
	assert.Contains(t, mine[0].AdminNote, "insufficient merchant balance")

	p := f.reloadPayment(t)
	assert.Equal(t, payment.StatusSuccess, p.Status())
	assert.True(t, p.AmountRefunded().IsZero())

	// A failed refund is terminal, so the customer may ask again.
	f.gateway.issueErr = nil
	again := f.request(t)
	assert.Equal(t, "REQUESTED", again.Status)
}

func TestRejectRequiresAdminNote(t *testing.T) {
	f := newFixture(t)
	req := f.request(t)

	_, err := f.svc.Reject(context.Background(), "admin-1", req.ID, RejectRefundRequest{AdminNote: " "})
	assert.ErrorIs(t, err, refund.ErrAdminNoteRequired)

	resp, err := f.svc.Reject(context.Background(), "admin-1", req.ID, RejectRefundRequest{AdminNote: "outside return window"})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", resp.Status)
	assert.Equal(t, "outside return window", resp.AdminNote)

	_, err = f.svc.Approve(context.Background(), "admin-1", req.ID, ApproveRefundRequest{})
	assert.ErrorIs(t, err, refund.ErrInvalidTransition)
	assert.Empty(t, f.gateway.issued)
}

func TestCheckStatusCompletesProcessedRefund(t *testing.T) {
	f := newFixture(t)
	req := f.request(t)

	_, err := f.svc.CheckStatus(context.Background(), req.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.svc.Approve(context.Background(), "admin-1", req.ID, ApproveRefundRequest{})
	require.NoError(t, err)

	pending, err := f.svc.CheckStatus(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", pending.RemoteStatus)
	assert.Equal(t, "PROCESSING", pending.Refund.Status)

	f.gateway.remote["rfnd_1"] = payment.RemoteRefundProcessed
	done, err := f.svc.CheckStatus(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", done.Refund.Status)
	assert.NotNil(t, done.Refund.CompletedAt)

	again, err := f.svc.CheckStatus(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", again.Refund.Status)
}

func TestCompleteByExternalIDIsIdempotent(t *testing.T) {
	f := newFixture(t)
	req := f.request(t)
	_, err := f.svc.Approve(context.Background(), "admin-1", req.ID, ApproveRefundRequest{})
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkProcessingByExternalID(context.Background(), "rfnd_1"))

	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	changed, err := f.svc.CompleteByExternalID(context.Background(), "rfnd_1", at)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.svc.CompleteByExternalID(context.Background(), "rfnd_1", at)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = f.svc.CompleteByExternalID(context.Background(), "rfnd_unknown", at)
	assert.ErrorIs(t, err, refund.ErrRefundNotFound)
}

func TestListAllFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	req := f.request(t)
	_, err := f.svc.Reject(context.Background(), "admin-1", req.ID, RejectRefundRequest{AdminNote: "no"})
	require.NoError(t, err)
	f.request(t)

	all, err := f.svc.ListAll(context.Background(), ListRefundsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, 20, all.Limit)

	rejected, err := f.svc.ListAll(context.Background(), ListRefundsRequest{Status: "rejected", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rejected.Total)
	assert.Equal(t, 100, rejected.Limit)
	require.Len(t, rejected.Items, 1)
	assert.Equal(t, req.ID, rejected.Items[0].ID)

	_, err = f.svc.ListAll(context.Background(), ListRefundsRequest{Status: "LOST"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
