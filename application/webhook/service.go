/*
Package webhook reconciles local state with status pushes from the payment
gateway and the logistics provider.

Both channels authenticate the raw body with an HMAC signature before any
parsing. Deliveries are at-least-once, so every handler is idempotent per
external identifier, and events for unknown records are acknowledged and
ignored rather than rejected.
*/
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fulfillment/domain/inventory"
	"fulfillment/domain/order"
	"fulfillment/domain/shared"
	"fulfillment/domain/shipment"
	apperrors "fulfillment/pkg/errors"
	"fulfillment/pkg/logger"
	"fulfillment/pkg/metrics"
	"fulfillment/pkg/signature"

	"go.uber.org/zap"
)

// ErrInvalidSignature is returned, with no state change, when the body does
// not match its signature.
var ErrInvalidSignature = apperrors.ErrInvalidSignature

const (
	ChannelShipping = "shipping"
	ChannelPayment  = "payment"
)

// Outcome tells the caller what a delivery did. Every outcome is acknowledged.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// Payment gateway event types.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundCreated   = "refund.created"
	EventRefundProcessed = "refund.processed"
)

// PaymentReconciler applies payment notifications to orders.
type PaymentReconciler interface {
	ConfirmCapturedPayment(ctx context.Context, externalOrderID, externalPaymentID string) (bool, error)
	MarkPaymentFailed(ctx context.Context, externalOrderID, externalPaymentID string) (bool, error)
}

// RefundReconciler applies refund notifications.
type RefundReconciler interface {
	MarkProcessingByExternalID(ctx context.Context, externalRefundID string) error
	CompleteByExternalID(ctx context.Context, externalRefundID string, at time.Time) (bool, error)
}

type Secrets struct {
	Shipping string
	Payment  string
}

type Service struct {
	shipments shipment.Repository
	orders    order.Repository
	ledger    inventory.Ledger
	uow       shared.UnitOfWork
	payments  PaymentReconciler
	refunds   RefundReconciler
	secrets   Secrets
}

func NewService(
	shipments shipment.Repository,
	orders order.Repository,
	ledger inventory.Ledger,
	uow shared.UnitOfWork,
	payments PaymentReconciler,
	refunds RefundReconciler,
	secrets Secrets,
) *Service {
	return &Service{
		shipments: shipments,
		orders:    orders,
		ledger:    ledger,
		uow:       uow,
		payments:  payments,
		refunds:   refunds,
		secrets:   secrets,
	}
}

// HandleShippingEvent appends the pushed status to the shipment history and
// moves the order forward when the mapped order status differs.
func (s *Service) HandleShippingEvent(ctx context.Context, body []byte, sig string) (outcome Outcome, err error) {
	defer func() { record(ChannelShipping, outcome, err) }()

	if !signature.Verify(s.secrets.Shipping, body, sig) {
		return "", ErrInvalidSignature
	}
	var event ShippingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return s.unreadable(ctx, ChannelShipping, err)
	}
	if event.ShipmentID == "" && event.AWB == "" {
		return s.unreadable(ctx, ChannelShipping, errors.New("shipment id or awb is required"))
	}

	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		outcome = ""
		d, err := s.shipments.FindByExternalRef(ctx, string(event.ShipmentID), event.AWB)
		if err != nil {
			return err
		}
		if !d.RecordProviderUpdate(shipment.ProviderUpdate{
			AWBCode:     event.AWB,
			Status:      event.CurrentStatus,
			Timestamp:   event.CurrentTimestamp,
			Location:    event.Location,
			Remark:      event.Remark,
			CourierName: event.CourierName,
		}) {
			outcome = OutcomeDuplicate
			return nil
		}
		if err := s.shipments.Save(ctx, d); err != nil {
			return err
		}
		s.uow.RegisterDirty(ctx, d)
		outcome = OutcomeApplied

		target, ok := d.Status().OrderStatus()
		if !ok {
			return nil
		}
		return s.advanceOrder(ctx, d.OrderID(), target)
	})
	if err != nil {
		return s.absorb(ctx, ChannelShipping, err)
	}

	logger.Ctx(ctx).Info("shipping webhook processed",
		zap.String("shipment_id", string(event.ShipmentID)),
		zap.String("awb", event.AWB),
		zap.String("provider_status", event.CurrentStatus),
		zap.String("outcome", string(outcome)))
	return outcome, nil
}

// advanceOrder applies target only when it is a legal forward move. A
// provider cancellation releases the reserved stock like a user cancellation.
func (s *Service) advanceOrder(ctx context.Context, orderID string, target order.Status) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status() == target {
		return nil
	}
	if !order.CanTransition(o.Status(), target) {
		logger.Ctx(ctx).Warn("ignoring out-of-order shipping status",
			zap.String("order_id", orderID),
			zap.String("from", string(o.Status())),
			zap.String("to", string(target)))
		return nil
	}

	if _, err := o.TransitionTo(target, "logistics provider update"); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}
	s.uow.RegisterDirty(ctx, o)

	if target == order.StatusCancelled {
		for _, item := range o.Items() {
			if err := s.ledger.Release(ctx, item.ProductID(), item.Quantity()); err != nil {
				return err
			}
		}
	}
	return nil
}

// HandlePaymentEvent dispatches on the event type. Unknown types are
// acknowledged and ignored.
func (s *Service) HandlePaymentEvent(ctx context.Context, body []byte, sig string) (outcome Outcome, err error) {
	defer func() { record(ChannelPayment, outcome, err) }()

	if !signature.Verify(s.secrets.Payment, body, sig) {
		return "", ErrInvalidSignature
	}
	var event PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return s.unreadable(ctx, ChannelPayment, err)
	}

	log := logger.Ctx(ctx).With(zap.String("event", event.Event))
	changed := false
	switch event.Event {
	case EventRefundCreated, EventRefundProcessed:
		if event.Payload.Refund == nil || event.Payload.Refund.Entity.ID == "" {
			log.Warn("refund event without refund entity")
			return OutcomeIgnored, nil
		}
		refundID := event.Payload.Refund.Entity.ID
		if event.Event == EventRefundCreated {
			err = s.refunds.MarkProcessingByExternalID(ctx, refundID)
			changed = err == nil
		} else {
			changed, err = s.refunds.CompleteByExternalID(ctx, refundID, eventTime(event.CreatedAt))
		}

	case EventPaymentCaptured, EventPaymentFailed:
		if event.Payload.Payment == nil || event.Payload.Payment.Entity.OrderID == "" {
			log.Warn("payment event without payment entity")
			return OutcomeIgnored, nil
		}
		entity := event.Payload.Payment.Entity
		if event.Event == EventPaymentCaptured {
			changed, err = s.payments.ConfirmCapturedPayment(ctx, entity.OrderID, entity.ID)
		} else {
			changed, err = s.payments.MarkPaymentFailed(ctx, entity.OrderID, entity.ID)
		}

	default:
		log.Info("ignoring unhandled payment event")
		return OutcomeIgnored, nil
	}

	if err != nil {
		return s.absorb(ctx, ChannelPayment, err)
	}
	if !changed {
		return OutcomeDuplicate, nil
	}
	log.Info("payment webhook processed")
	return OutcomeApplied, nil
}

// absorb acknowledges deliveries that can never apply: unknown records and
// moves the state machine forbids. Anything else is returned so the provider
// redelivers.
func (s *Service) absorb(ctx context.Context, channel string, err error) (Outcome, error) {
	if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrInvalidState) {
		logger.Ctx(ctx).Warn("webhook ignored",
			zap.String("channel", channel),
			zap.Error(err))
		return OutcomeIgnored, nil
	}
	return "", err
}

// unreadable acknowledges a signed payload that cannot be decoded. A
// redelivery would carry the same bytes.
func (s *Service) unreadable(ctx context.Context, channel string, err error) (Outcome, error) {
	logger.Ctx(ctx).Warn("webhook payload unreadable",
		zap.String("channel", channel),
		zap.Error(err))
	return OutcomeIgnored, nil
}

func eventTime(unix int64) time.Time {
	if unix <= 0 {
		return time.Now()
	}
	return time.Unix(unix, 0)
}

func record(channel string, outcome Outcome, err error) {
	switch {
	case errors.Is(err, ErrInvalidSignature):
		metrics.RecordWebhook(channel, "invalid_signature")
	case err != nil:
		metrics.RecordWebhook(channel, "error")
	default:
		metrics.RecordWebhook(channel, string(outcome))
	}
}
