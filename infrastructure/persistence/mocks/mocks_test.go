package mocks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"fulfillment/domain/inventory"
	"fulfillment/domain/payment"
	"fulfillment/domain/refund"
	"fulfillment/domain/shared"
	"fulfillment/domain/storefront"
	"fulfillment/infrastructure/persistence/retry"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryLedgerNeverOversells(t *testing.T) {
	store := NewStore()
	store.PutProduct(storefront.Product{ID: "p1", Price: decimal.NewFromInt(10), Stock: 5, Active: true})
	ledger := NewInventoryLedger(store)

	var wg sync.WaitGroup
	var succeeded atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.Reserve(context.Background(), "p1", 1); err == nil {
				succeeded.Add(1)
			} else {
				assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), succeeded.Load())
	p, _ := store.Product("p1")
	assert.Equal(t, 0, p.Stock)
}

func TestInventoryLedgerRejectsInactiveProduct(t *testing.T) {
	store := NewStore()
	store.PutProduct(storefront.Product{ID: "p1", Stock: 5, Active: false})
	err := NewInventoryLedger(store).Reserve(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
}

func TestUnitOfWorkRollsBackStore(t *testing.T) {
	store := NewStore()
	store.PutProduct(storefront.Product{ID: "p1", Stock: 5, Active: true})
	store.PutCart("u1", storefront.CartItem{ProductID: "p1", Quantity: 2})
	outbox := NewOutboxRecorder()
	uow := NewUnitOfWork(store, outbox, retry.Config{Enabled: false})
	ledger := NewInventoryLedger(store)
	carts := NewCartStore(store)
	boom := errors.New("boom")

	err := uow.Execute(context.Background(), func(ctx context.Context) error {
		require.NoError(t, ledger.Reserve(ctx, "p1", 2))
		require.NoError(t, carts.Clear(ctx, "u1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, _ := store.Product("p1")
	assert.Equal(t, 5, p.Stock)
	cart, err := carts.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Empty(t, outbox.EventNames())
}

func TestUnitOfWorkCommitsEvents(t *testing.T) {
	store := NewStore()
	outbox := NewOutboxRecorder()
	uow := NewUnitOfWork(store, outbox, retry.DefaultConfig)
	refunds := NewRefundRepository(store)

	err := uow.Execute(context.Background(), func(ctx context.Context) error {
		rf, err := refund.NewRefund(refund.RequestParams{
			OrderID: "o1", PaymentID: "pay1", UserID: "u1",
			Amount: decimal.NewFromInt(100), Reason: "damaged",
		})
		if err != nil {
			return err
		}
		if err := refunds.Save(ctx, rf); err != nil {
			return err
		}
		uow.RegisterNew(ctx, rf)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"refund.requested"}, outbox.EventNames())
}

func TestPaymentRepositoryUniqueKeys(t *testing.T) {
	repo := NewPaymentRepository(NewStore())
	ctx := context.Background()

	first, err := payment.NewPayment("o1", "ext1", "key-1", decimal.NewFromInt(10), "INR")
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, first))
	assert.Equal(t, 1, first.Version())

	dup, err := payment.NewPayment("o2", "ext2", "key-1", decimal.NewFromInt(10), "INR")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Insert(ctx, dup), payment.ErrDuplicateIdempotencyKey)

	stale, err := repo.FindByIdempotencyKey(ctx, "key-1")
	require.NoError(t, err)
	fresh, err := repo.FindByID(ctx, first.ID())
	require.NoError(t, err)

	require.NoError(t, fresh.MarkSucceeded("pay_1", "sig"))
	require.NoError(t, repo.Update(ctx, fresh))

	require.NoError(t, stale.MarkFailed("pay_1"))
	assert.ErrorIs(t, repo.Update(ctx, stale), shared.ErrConcurrentModification)
}

func TestRefundRepositoryOneActivePerOrder(t *testing.T) {
	repo := NewRefundRepository(NewStore())
	ctx := context.Background()
	params := refund.RequestParams{
		OrderID: "o1", PaymentID: "pay1", UserID: "u1",
		Amount: decimal.NewFromInt(100), Reason: "damaged",
	}

	first, err := refund.NewRefund(params)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := refund.NewRefund(params)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, second), refund.ErrActiveRefundExists)

	require.NoError(t, first.Reject("admin", "not eligible"))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	page, total, err := repo.List(ctx, refund.ListFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, page, 1)
}
