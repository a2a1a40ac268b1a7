package cmd

import (
	"context"
	"fmt"
	"net/http"

	"fulfillment/api"
	"fulfillment/api/health"
	apiorder "fulfillment/api/order"
	apirefund "fulfillment/api/refund"
	apiwebhook "fulfillment/api/webhook"
	orderapp "fulfillment/application/order"
	refundapp "fulfillment/application/refund"
	webhookapp "fulfillment/application/webhook"
	"fulfillment/config"
	"fulfillment/domain/inventory"
	"fulfillment/domain/order"
	"fulfillment/domain/payment"
	"fulfillment/domain/refund"
	"fulfillment/domain/shared"
	"fulfillment/domain/shipment"
	"fulfillment/domain/storefront"
	"fulfillment/infrastructure/cache"
	"fulfillment/infrastructure/gateway"
	"fulfillment/infrastructure/logistics"
	"fulfillment/infrastructure/persistence/mocks"
	"fulfillment/infrastructure/persistence/mysql"
	"fulfillment/infrastructure/persistence/retry"
	"fulfillment/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// storage groups every repository the services need, whichever backend
// provides them.
type storage struct {
	orders    order.Repository
	payments  payment.Repository
	shipments shipment.Repository
	refunds   refund.Repository
	ledger    inventory.Ledger
	carts     storefront.CartStore
	addresses storefront.AddressReader
	products  storefront.ProductReader
	customers storefront.CustomerReader
	uow       shared.UnitOfWork
}

// AppBuilder builds an App. Adapters left unset are chosen from config:
// an empty provider base URL selects the sandbox implementation.
type AppBuilder struct {
	cfg      *config.Config
	gateway  payment.Gateway
	provider shipment.Provider
}

func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

// WithGateway overrides the payment gateway adapter.
func (b *AppBuilder) WithGateway(g payment.Gateway) *AppBuilder {
	b.gateway = g
	return b
}

// WithProvider overrides the shipping provider adapter.
func (b *AppBuilder) WithProvider(p shipment.Provider) *AppBuilder {
	b.provider = p
	return b
}

// Build wires storage, adapters, services and controllers. The logger must
// already be initialised.
func (b *AppBuilder) Build() (*App, error) {
	app := &App{config: b.cfg}
	var probes []health.Probe

	var store storage
	switch b.cfg.Database.Type {
	case "mysql":
		db, err := b.openDatabase()
		if err != nil {
			return nil, err
		}
		app.db = db
		store = mysqlStorage(db, retry.FromAppConfig(b.cfg))
		probes = append(probes, health.Probe{Name: "database", Check: func(ctx context.Context) error {
			return mysql.Ping(ctx, db)
		}})
	case "mock", "":
		logger.Info("Using in-memory persistence with demo data")
		store = mockStorage(retry.FromAppConfig(b.cfg))
	default:
		return nil, fmt.Errorf("unsupported database type %q", b.cfg.Database.Type)
	}

	tokens := cache.TokenStore(cache.NewMemoryTokenStore())
	if b.cfg.Redis.Enabled {
		rdb, err := cache.InitRedis(&b.cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.redis = rdb
		tokens = cache.NewRedisTokenStore(rdb)
		probes = append(probes, health.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	gw := b.gateway
	if gw == nil {
		gw = b.newGateway()
	}
	provider := b.provider
	if provider == nil {
		provider = b.newProvider(tokens)
	}

	orderService := orderapp.NewApplicationService(orderapp.Dependencies{
		Orders:    store.orders,
		Payments:  store.payments,
		Shipments: store.shipments,
		Ledger:    store.ledger,
		Carts:     store.carts,
		Addresses: store.addresses,
		Products:  store.products,
		Customers: store.customers,
		Gateway:   gw,
		Provider:  provider,
		UoW:       store.uow,
	}, orderapp.SettingsFromConfig(b.cfg))

	refundService := refundapp.NewApplicationService(store.refunds, store.orders, store.payments, gw, store.uow)

	webhookService := webhookapp.NewService(
		store.shipments,
		store.orders,
		store.ledger,
		store.uow,
		orderService,
		refundService,
		webhookapp.Secrets{
			Shipping: b.cfg.Shipping.WebhookSecret,
			Payment:  b.cfg.Payment.WebhookSecret,
		},
	)

	router := api.NewRouter(
		b.cfg,
		health.NewController(b.cfg, probes...),
		apiorder.NewController(orderService),
		apirefund.NewController(refundService),
		apiwebhook.NewController(webhookService),
	)
	router.SetupRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}
	return app, nil
}

func (b *AppBuilder) openDatabase() (*gorm.DB, error) {
	logger.Info("Using MySQL/GORM persistence layer")

	db, err := mysql.ConfigFromApp(b.cfg).Connect()
	if err != nil {
		return nil, err
	}
	if err := mysql.Ping(context.Background(), db); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if b.cfg.Database.AutoMigrate {
		if err := mysql.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
	}
	return db, nil
}

func mysqlStorage(db *gorm.DB, rc retry.Config) storage {
	front := mysql.NewStorefrontRepository(db)
	return storage{
		orders:    mysql.NewOrderRepository(db),
		payments:  mysql.NewPaymentRepository(db),
		shipments: mysql.NewShippingDetailRepository(db),
		refunds:   mysql.NewRefundRepository(db),
		ledger:    mysql.NewInventoryLedger(db),
		carts:     front.Carts(),
		addresses: front.Addresses(),
		products:  front.Products(),
		customers: front.Customers(),
		uow:       mysql.NewUnitOfWork(db, rc),
	}
}

func mockStorage(rc retry.Config) storage {
	s := mocks.NewStore()
	mocks.SeedDemoData(s)
	return storage{
		orders:    mocks.NewOrderRepository(s),
		payments:  mocks.NewPaymentRepository(s),
		shipments: mocks.NewShippingDetailRepository(s),
		refunds:   mocks.NewRefundRepository(s),
		ledger:    mocks.NewInventoryLedger(s),
		carts:     mocks.NewCartStore(s),
		addresses: mocks.NewAddressReader(s),
		products:  mocks.NewProductReader(s),
		customers: mocks.NewCustomerReader(s),
		uow:       mocks.NewUnitOfWork(s, mocks.NewOutboxRecorder(), rc),
	}
}

func (b *AppBuilder) newGateway() payment.Gateway {
	if b.cfg.Payment.BaseURL == "" {
		logger.Warn("Payment base URL not set, using sandbox gateway")
		return gateway.NewSandbox(b.cfg.Payment.KeyID, b.cfg.Payment.KeySecret)
	}
	logger.Info("Using HTTP payment gateway", zap.String("base_url", b.cfg.Payment.BaseURL))
	return gateway.NewClient(&b.cfg.Payment)
}

func (b *AppBuilder) newProvider(tokens cache.TokenStore) shipment.Provider {
	if b.cfg.Shipping.BaseURL == "" {
		logger.Warn("Shipping base URL not set, using sandbox provider")
		return logistics.NewSandbox()
	}
	logger.Info("Using HTTP logistics provider", zap.String("base_url", b.cfg.Shipping.BaseURL))
	return logistics.NewClient(&b.cfg.Shipping, tokens)
}
