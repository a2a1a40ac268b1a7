package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"fulfillment/domain/inventory"
	"fulfillment/domain/order"
	"fulfillment/domain/payment"
	"fulfillment/domain/shared"
	"fulfillment/infrastructure/persistence"
	"fulfillment/infrastructure/persistence/retry"

	"github.com/DATA-DOG/go-sqlmock"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func TestInventoryLedgerReserve(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewInventoryLedger(db)
	updateStock := regexp.QuoteMeta("UPDATE `products` SET `stock`=stock - ?")

	t.Run("enough stock", func(t *testing.T) {
		mock.ExpectExec(updateStock).WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, ledger.Reserve(context.Background(), "p1", 2))
	})

	t.Run("conditional update matched nothing", func(t *testing.T) {
		mock.ExpectExec(updateStock).WillReturnResult(sqlmock.NewResult(0, 0))
		err := ledger.Reserve(context.Background(), "p1", 50)
		assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("non-positive quantity never reaches the database", func(t *testing.T) {
		err := ledger.Reserve(context.Background(), "p1", 0)
		assert.ErrorIs(t, err, shared.ErrInvariantViolation)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryLedgerReleaseUnknownProduct(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewInventoryLedger(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `products` SET `stock`=stock + ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ledger.Release(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, inventory.ErrProductUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentInsertDuplicateIdempotencyKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	p, err := payment.NewPayment("order-1", "ext-1", "key-1", decimal.NewFromInt(1450), "INR")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `payments`")).
		WillReturnError(&mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry 'key-1' for key 'idempotency_key'"})

	err = repo.Insert(context.Background(), p)
	assert.ErrorIs(t, err, payment.ErrDuplicateIdempotencyKey)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.True(t, p.IsNew(), "failed insert must not advance the version")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentUpdateStaleVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	p := payment.RebuildFromDTO(payment.ReconstructionDTO{
		ID:              "pay-1",
		OrderID:         "order-1",
		ExternalOrderID: "ext-1",
		IdempotencyKey:  "key-1",
		Amount:          decimal.NewFromInt(100),
		Currency:        "INR",
		Status:          payment.StatusPending,
		Version:         1,
	})
	require.NoError(t, p.MarkSucceeded("pay_ext", "sig"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `payments` SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `payments`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	err := repo.Update(context.Background(), p)
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)
	assert.Equal(t, 1, p.Version())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkWritesEventsToOutbox(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUnitOfWork(db, retry.Config{Enabled: false})

	o, err := order.NewOrder(order.PlaceParams{
		UserID:       "user-1",
		Items:        []order.ItemParams{{ProductID: "p1", ProductName: "Mug", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		ShippingCost: decimal.NewFromInt(5),
		Address:      order.Address{PostalCode: "560001"},
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `outbox_events`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = uow.Execute(context.Background(), func(ctx context.Context) error {
		assert.NotNil(t, persistence.TxFromContext(ctx))
		uow.RegisterNew(ctx, o)
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, o.PullEvents())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUnitOfWork(db, retry.Config{Enabled: false})
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := uow.Execute(context.Background(), func(ctx context.Context) error {
		return uow.Execute(ctx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(&mysqlDriver.MySQLError{Number: 1062}))
	assert.True(t, isDuplicateKeyError(gorm.ErrDuplicatedKey))
	assert.False(t, isDuplicateKeyError(&mysqlDriver.MySQLError{Number: 1213}))
	assert.False(t, isDuplicateKeyError(nil))
}
