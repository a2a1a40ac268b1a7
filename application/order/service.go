/*
Package order is the fulfillment orchestrator at the application layer.

It turns a cart into an order and a payment intent, verifies the payment,
books the shipment and serves the order reads and admin overrides.

All multi-record writes go through the UnitOfWork, which also collects the
domain events of registered aggregates into the outbox. Calls to the payment
gateway and the logistics provider are never made inside a transaction.
*/
package order

import (
	"context"
	"errors"
	"time"

	"fulfillment/config"
	"fulfillment/domain/inventory"
	"fulfillment/domain/order"
	"fulfillment/domain/payment"
	"fulfillment/domain/shared"
	"fulfillment/domain/shipment"
	"fulfillment/domain/storefront"
	"fulfillment/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultBookingTimeout = 30 * time.Second

// Dependencies are the ports the service orchestrates.
type Dependencies struct {
	Orders    order.Repository
	Payments  payment.Repository
	Shipments shipment.Repository
	Ledger    inventory.Ledger
	Carts     storefront.CartStore
	Addresses storefront.AddressReader
	Products  storefront.ProductReader
	Customers storefront.CustomerReader
	Gateway   payment.Gateway
	Provider  shipment.Provider
	UoW       shared.UnitOfWork
}

// Settings are the checkout and booking defaults.
type Settings struct {
	Currency            string
	PickupPostcode      string
	PickupLocation      string
	DefaultShippingCost decimal.Decimal
	DefaultUnitWeightKg decimal.Decimal
	ParcelLengthCm      decimal.Decimal
	ParcelBreadthCm     decimal.Decimal
	ParcelHeightCm      decimal.Decimal
	BookingTimeout      time.Duration
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Currency:            cfg.Payment.Currency,
		PickupPostcode:      cfg.Shipping.PickupPostcode,
		PickupLocation:      cfg.Shipping.PickupLocation,
		DefaultShippingCost: decimal.NewFromFloat(cfg.Shipping.DefaultCost),
		DefaultUnitWeightKg: decimal.NewFromFloat(cfg.Shipping.DefaultUnitWeightKg),
		ParcelLengthCm:      decimal.NewFromFloat(cfg.Shipping.ParcelLengthCm),
		ParcelBreadthCm:     decimal.NewFromFloat(cfg.Shipping.ParcelBreadthCm),
		ParcelHeightCm:      decimal.NewFromFloat(cfg.Shipping.ParcelHeightCm),
		BookingTimeout:      cfg.Shipping.BookingTimeout,
	}
}

// ApplicationService coordinates checkout, payment verification, shipment
// booking and the order lifecycle.
type ApplicationService struct {
	orders    order.Repository
	payments  payment.Repository
	shipments shipment.Repository
	ledger    inventory.Ledger
	carts     storefront.CartStore
	addresses storefront.AddressReader
	products  storefront.ProductReader
	customers storefront.CustomerReader
	gateway   payment.Gateway
	provider  shipment.Provider
	uow       shared.UnitOfWork
	settings  Settings
}

func NewApplicationService(deps Dependencies, settings Settings) *ApplicationService {
	if settings.BookingTimeout <= 0 {
		settings.BookingTimeout = defaultBookingTimeout
	}
	return &ApplicationService{
		orders:    deps.Orders,
		payments:  deps.Payments,
		shipments: deps.Shipments,
		ledger:    deps.Ledger,
		carts:     deps.Carts,
		addresses: deps.Addresses,
		products:  deps.Products,
		customers: deps.Customers,
		gateway:   deps.Gateway,
		provider:  deps.Provider,
		uow:       deps.UoW,
		settings:  settings,
	}
}

// GetOrder returns one of the caller's orders.
func (s *ApplicationService) GetOrder(ctx context.Context, userID, orderID string) (*OrderResponse, error) {
	o, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.orderResponse(ctx, o)
}

// ListOrders returns the caller's orders, newest first.
func (s *ApplicationService) ListOrders(ctx context.Context, userID string) ([]*OrderResponse, error) {
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp, err := s.orderResponse(ctx, o)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// TrackOrder returns the local shipping record and, when the shipment exists
// at the provider, live tracking. A provider failure degrades to local data.
func (s *ApplicationService) TrackOrder(ctx context.Context, userID, orderID string) (*TrackingResponse, error) {
	o, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	resp := &TrackingResponse{OrderID: o.ID(), OrderStatus: string(o.Status())}
	detail, err := s.findShippingDetail(ctx, o.ID())
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return resp, nil
	}
	resp.Shipping = toShippingResponse(detail)

	tracking, err := s.provider.TrackShipment(ctx, detail.ExternalShipmentID())
	if err != nil {
		logger.Ctx(ctx).Warn("live tracking unavailable",
			zap.String("order_id", o.ID()),
			zap.String("shipment_id", detail.ExternalShipmentID()),
			zap.Error(err))
		resp.LiveError = "live tracking is temporarily unavailable"
		return resp, nil
	}
	resp.Live = toLiveTracking(tracking)
	return resp, nil
}

// CancelOrder cancels one of the caller's PENDING or PAID orders, releases its
// stock and asks the provider to cancel any booked shipment.
func (s *ApplicationService) CancelOrder(ctx context.Context, userID, orderID string, req CancelOrderRequest) (*OrderResponse, error) {
	reason := req.Reason
	if reason == "" {
		reason = "cancelled by customer"
	}
	return s.cancel(ctx, userID, orderID, reason)
}

// UpdateStatus is the admin override. CANCELLED takes the same path as a
// customer cancellation; other targets must move the state machine forward.
// A booked shipment mirrors the new status.
func (s *ApplicationService) UpdateStatus(ctx context.Context, orderID string, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	target, ok := order.ParseStatus(req.Status)
	if !ok {
		return nil, shared.NewValidationError("order", "status", "unknown order status "+req.Status)
	}
	if target == order.StatusCancelled {
		return s.cancel(ctx, "", orderID, "cancelled by admin")
	}

	var o *order.Order
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		changed, err := o.TransitionTo(target, "status set by admin")
		if err != nil {
			return err
		}
		if changed {
			if err := s.orders.Save(ctx, o); err != nil {
				return err
			}
			s.uow.RegisterDirty(ctx, o)
		}

		detail, err := s.findShippingDetail(ctx, o.ID())
		if err != nil {
			return err
		}
		if detail != nil && detail.ApplyAdminStatus(shipment.ForOrderStatus(target), req.TrackingID) {
			if err := s.shipments.Save(ctx, detail); err != nil {
				return err
			}
			s.uow.RegisterDirty(ctx, detail)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info("order status set by admin",
		zap.String("order_id", orderID),
		zap.String("status", string(target)))
	return s.orderResponse(ctx, o)
}

// cancel is shared by the customer and admin paths. An empty userID skips
// the ownership check.
func (s *ApplicationService) cancel(ctx context.Context, userID, orderID, reason string) (*OrderResponse, error) {
	var (
		o   *order.Order
		awb string
	)
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		awb = ""
		var err error
		o, err = s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if userID != "" && !o.IsOwnedBy(userID) {
			return shared.NewForbiddenError("order", "order belongs to another user")
		}

		if err := o.Cancel(reason); err != nil {
			return err
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		s.uow.RegisterDirty(ctx, o)

		for _, item := range o.Items() {
			if err := s.ledger.Release(ctx, item.ProductID(), item.Quantity()); err != nil {
				return err
			}
		}

		detail, err := s.findShippingDetail(ctx, o.ID())
		if err != nil {
			return err
		}
		if detail != nil && detail.Cancel(reason) {
			if err := s.shipments.Save(ctx, detail); err != nil {
				return err
			}
			s.uow.RegisterDirty(ctx, detail)
			awb = detail.AWBCode()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if awb != "" {
		if err := s.provider.CancelShipment(ctx, []string{awb}); err != nil {
			logger.Ctx(ctx).Warn("remote shipment cancellation failed",
				zap.String("order_id", orderID),
				zap.String("awb", awb),
				zap.Error(err))
		}
	}

	logger.Ctx(ctx).Info("order cancelled", zap.String("order_id", orderID), zap.String("reason", reason))
	return s.orderResponse(ctx, o)
}

func (s *ApplicationService) ownedOrder(ctx context.Context, userID, orderID string) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, shared.NewForbiddenError("order", "order belongs to another user")
	}
	return o, nil
}

// findShippingDetail returns nil without error when the order has no shipment.
func (s *ApplicationService) findShippingDetail(ctx context.Context, orderID string) (*shipment.ShippingDetail, error) {
	detail, err := s.shipments.FindByOrderID(ctx, orderID)
	if errors.Is(err, shipment.ErrShippingDetailNotFound) {
		return nil, nil
	}
	return detail, err
}

func (s *ApplicationService) findPayment(ctx context.Context, orderID string) (*payment.Payment, error) {
	p, err := s.payments.FindByOrderID(ctx, orderID)
	if errors.Is(err, payment.ErrPaymentNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *ApplicationService) orderResponse(ctx context.Context, o *order.Order) (*OrderResponse, error) {
	p, err := s.findPayment(ctx, o.ID())
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o, p), nil
}
