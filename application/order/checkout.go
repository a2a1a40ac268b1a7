package order

import (
	"context"
	"errors"
	"strings"

	"fulfillment/domain/inventory"
	"fulfillment/domain/order"
	"fulfillment/domain/payment"
	"fulfillment/domain/shared"
	"fulfillment/domain/shipment"
	"fulfillment/domain/storefront"
	"fulfillment/pkg/logger"
	"fulfillment/pkg/metrics"
	"fulfillment/pkg/tracing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Checkout converts the caller's cart into a PENDING order with a payment
// intent. A key that already resolved to a payment replays that order with no
// new charge and no stock movement.
func (s *ApplicationService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (resp *CheckoutResponse, err error) {
	ctx, span := tracing.Start(ctx, "order.Checkout", attribute.String("user.id", userID))
	defer func() {
		tracing.End(span, err)
		switch {
		case err != nil:
			metrics.RecordCheckout("failed")
		case resp.Replayed:
			metrics.RecordCheckout("replayed")
		default:
			metrics.RecordCheckout("created")
		}
	}()

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}

	if resp, err := s.replay(ctx, userID, key); err != nil || resp != nil {
		return resp, err
	}

	params, err := s.prepareOrder(ctx, userID, req.AddressID)
	if err != nil {
		// A concurrent request with the same key may have consumed the cart.
		if resp, rerr := s.replay(ctx, userID, key); rerr == nil && resp != nil {
			return resp, nil
		}
		return nil, err
	}

	// Built only to fix the total before the gateway is called; the stored
	// order is created again inside the transaction.
	draft, err := order.NewOrder(params)
	if err != nil {
		return nil, err
	}

	externalOrderID, err := s.gateway.CreateIntent(ctx, shared.ToMinorUnits(draft.TotalAmount()), s.settings.Currency, map[string]string{
		"receipt": key,
		"user_id": userID,
	})
	if err != nil {
		return nil, err
	}

	var (
		o *order.Order
		p *payment.Payment
	)
	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = order.NewOrder(params)
		if err != nil {
			return err
		}
		p, err = payment.NewPayment(o.ID(), externalOrderID, key, o.TotalAmount(), s.settings.Currency)
		if err != nil {
			return err
		}

		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		if err := s.payments.Insert(ctx, p); err != nil {
			return err
		}
		for _, item := range o.Items() {
			if err := s.ledger.Reserve(ctx, item.ProductID(), item.Quantity()); err != nil {
				return err
			}
		}
		if err := s.carts.Clear(ctx, userID); err != nil {
			return err
		}

		s.uow.RegisterNew(ctx, o)
		s.uow.RegisterNew(ctx, p)
		return nil
	})
	if errors.Is(err, payment.ErrDuplicateIdempotencyKey) {
		// A concurrent request with the same key won the unique index.
		if resp, rerr := s.replay(ctx, userID, key); rerr != nil || resp != nil {
			return resp, rerr
		}
	}
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info("order placed",
		zap.String("order_id", o.ID()),
		zap.String("external_order_id", externalOrderID),
		zap.String("total", o.TotalAmount().StringFixed(2)))
	return s.checkoutResponse(o, p, false), nil
}

// replay returns nil, nil when the key is unused.
func (s *ApplicationService) replay(ctx context.Context, userID, key string) (*CheckoutResponse, error) {
	p, err := s.payments.FindByIdempotencyKey(ctx, key)
	if errors.Is(err, payment.ErrPaymentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	o, err := s.orders.FindByID(ctx, p.OrderID())
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, payment.NewDuplicateIdempotencyKeyError(key)
	}

	logger.Ctx(ctx).Info("checkout replayed", zap.String("order_id", o.ID()))
	return s.checkoutResponse(o, p, true), nil
}

// prepareOrder resolves the address, cart, products and shipping quote.
// Nothing is written.
func (s *ApplicationService) prepareOrder(ctx context.Context, userID, addressID string) (order.PlaceParams, error) {
	addr, err := s.addresses.FindByID(ctx, addressID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return order.PlaceParams{}, err
	}
	if addr == nil || addr.UserID != userID {
		return order.PlaceParams{}, shared.NewValidationError("order", "address_id", "address not found")
	}

	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return order.PlaceParams{}, err
	}
	if len(cart.Items) == 0 {
		return order.PlaceParams{}, order.NewEmptyCartError()
	}

	ids := make([]string, 0, len(cart.Items))
	for _, line := range cart.Items {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return order.PlaceParams{}, err
	}

	items := make([]order.ItemParams, 0, len(cart.Items))
	weight := decimal.Zero
	for _, line := range cart.Items {
		prod, ok := products[line.ProductID]
		if !ok || !prod.Active {
			return order.PlaceParams{}, inventory.NewProductUnavailableError(line.ProductID)
		}
		if line.Quantity > prod.Stock {
			return order.PlaceParams{}, inventory.NewInsufficientStockError(line.ProductID, line.Quantity)
		}
		items = append(items, order.ItemParams{
			ProductID:   prod.ID,
			ProductName: prod.Name,
			Quantity:    line.Quantity,
			UnitPrice:   prod.UnitPrice(),
		})
		weight = weight.Add(prod.UnitWeight(s.settings.DefaultUnitWeightKg).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	cost, err := s.quoteShipping(ctx, addr.PostalCode, weight)
	if err != nil {
		return order.PlaceParams{}, err
	}

	return order.PlaceParams{
		UserID:       userID,
		Items:        items,
		ShippingCost: cost,
		Address:      snapshotAddress(addr),
		Parcel: order.Parcel{
			WeightKg:  weight,
			LengthCm:  s.settings.ParcelLengthCm,
			BreadthCm: s.settings.ParcelBreadthCm,
			HeightCm:  s.settings.ParcelHeightCm,
		},
		PickupPostcode: s.settings.PickupPostcode,
	}, nil
}

// quoteShipping returns the cheapest courier rate. A provider error falls back
// to the default cost; an unserviceable route aborts checkout.
func (s *ApplicationService) quoteShipping(ctx context.Context, postcode string, weight decimal.Decimal) (decimal.Decimal, error) {
	quote, err := s.provider.CheckServiceability(ctx, shipment.ServiceabilityRequest{
		PickupPostcode:   s.settings.PickupPostcode,
		DeliveryPostcode: postcode,
		WeightKg:         weight,
		CODAmount:        decimal.Zero,
	})
	if err != nil {
		logger.Ctx(ctx).Warn("shipping quote failed, using default cost",
			zap.String("postcode", postcode),
			zap.String("default_cost", s.settings.DefaultShippingCost.StringFixed(2)),
			zap.Error(err))
		return s.settings.DefaultShippingCost, nil
	}
	if !quote.Available {
		return decimal.Zero, order.NewDeliveryUnavailableError(postcode)
	}
	return quote.CheapestCost, nil
}

func snapshotAddress(a *storefront.Address) order.Address {
	return order.Address{
		Name:       a.Name,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
