package order

import (
	"context"

	"fulfillment/domain/order"
	"fulfillment/domain/payment"
	"fulfillment/domain/shared"
	"fulfillment/pkg/logger"
	"fulfillment/pkg/metrics"
	"fulfillment/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// VerifyPayment checks the gateway signature, flips Payment to SUCCESS and
// Order to PAID in one transaction, then books the shipment best-effort.
// A booking failure is reported in the response and never undoes the payment.
func (s *ApplicationService) VerifyPayment(ctx context.Context, userID string, req VerifyPaymentRequest) (resp *VerifyPaymentResponse, err error) {
	ctx, span := tracing.Start(ctx, "order.VerifyPayment", attribute.String("order.id", req.OrderID))
	defer func() { tracing.End(span, err) }()

	o, err := s.ownedOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	p, err := s.payments.FindByOrderID(ctx, o.ID())
	if err != nil {
		return nil, err
	}

	if p.Status() == payment.StatusSuccess {
		metrics.RecordPaymentVerification("replayed")
		return s.verificationResponse(ctx, o, p, BookingOutcome{})
	}
	if p.Status() != payment.StatusPending {
		return nil, payment.NewInvalidStateError(p.Status(), payment.StatusSuccess)
	}
	if p.ExternalOrderID() != req.ExternalOrderID {
		return nil, shared.NewValidationError("payment", "external_order_id", "external order id does not match this order")
	}

	if !s.gateway.VerifySignature(req.ExternalOrderID, req.ExternalPaymentID, req.Signature) {
		if _, err := s.failPayment(ctx, o.ID(), req.ExternalPaymentID); err != nil {
			return nil, err
		}
		metrics.RecordPaymentVerification("failed")
		logger.Ctx(ctx).Warn("payment signature mismatch",
			zap.String("order_id", o.ID()),
			zap.String("external_payment_id", req.ExternalPaymentID))
		return nil, payment.NewVerificationFailedError()
	}

	o, p, captured, err := s.capturePayment(ctx, o.ID(), req.ExternalPaymentID, req.Signature)
	if err != nil {
		return nil, err
	}
	if !captured {
		// A capture webhook got there first and owns the booking.
		metrics.RecordPaymentVerification("replayed")
		return s.verificationResponse(ctx, o, p, BookingOutcome{})
	}
	metrics.RecordPaymentVerification("verified")

	if o.Status() != order.StatusPaid {
		return s.verificationResponse(ctx, o, p, BookingOutcome{})
	}
	outcome := s.bookShipment(ctx, o)
	return s.verificationResponse(ctx, o, p, outcome)
}

// ConfirmCapturedPayment applies a gateway capture notification for a client
// that never called VerifyPayment. It reports false when the payment was
// already captured.
func (s *ApplicationService) ConfirmCapturedPayment(ctx context.Context, externalOrderID, externalPaymentID string) (bool, error) {
	p, err := s.payments.FindByExternalOrderID(ctx, externalOrderID)
	if err != nil {
		return false, err
	}
	if p.Status() == payment.StatusSuccess {
		return false, nil
	}

	o, _, captured, err := s.capturePayment(ctx, p.OrderID(), externalPaymentID, "")
	if err != nil || !captured {
		return captured, err
	}
	metrics.RecordPaymentVerification("captured")

	if o.Status() == order.StatusPaid {
		s.bookShipment(ctx, o)
	}
	return true, nil
}

// MarkPaymentFailed applies a gateway failure notification. Only a PENDING
// payment changes; anything else reports false.
func (s *ApplicationService) MarkPaymentFailed(ctx context.Context, externalOrderID, externalPaymentID string) (bool, error) {
	p, err := s.payments.FindByExternalOrderID(ctx, externalOrderID)
	if err != nil {
		return false, err
	}
	return s.failPayment(ctx, p.OrderID(), externalPaymentID)
}

// capturePayment reloads both records inside the transaction so a concurrent
// capture is seen. captured is false when the payment was already SUCCESS.
// Money that arrives for a cancelled order is still recorded as SUCCESS so the
// refund workflow can return it; the order stays CANCELLED.
func (s *ApplicationService) capturePayment(ctx context.Context, orderID, externalPaymentID, signature string) (o *order.Order, p *payment.Payment, captured bool, err error) {
	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		captured = false
		var err error
		if o, err = s.orders.FindByID(ctx, orderID); err != nil {
			return err
		}
		if p, err = s.payments.FindByOrderID(ctx, orderID); err != nil {
			return err
		}
		if p.Status() == payment.StatusSuccess {
			return nil
		}

		if err := p.MarkSucceeded(externalPaymentID, signature); err != nil {
			return err
		}
		if err := s.payments.Update(ctx, p); err != nil {
			return err
		}
		s.uow.RegisterDirty(ctx, p)
		if o.Status() != order.StatusCancelled {
			if err := o.MarkPaid(); err != nil {
				return err
			}
			if err := s.orders.Save(ctx, o); err != nil {
				return err
			}
			s.uow.RegisterDirty(ctx, o)
		}
		captured = true
		return nil
	})
	if err != nil {
		return nil, nil, false, err
	}
	if captured && o.Status() == order.StatusCancelled {
		logger.Ctx(ctx).Error("payment captured for cancelled order, refund required",
			zap.String("order_id", orderID),
			zap.String("external_payment_id", externalPaymentID),
			zap.String("amount", p.Amount().String()))
	} else if captured {
		logger.Ctx(ctx).Info("payment captured",
			zap.String("order_id", orderID),
			zap.String("external_payment_id", externalPaymentID))
	}
	return o, p, captured, nil
}

func (s *ApplicationService) failPayment(ctx context.Context, orderID, externalPaymentID string) (bool, error) {
	failed := false
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		failed = false
		p, err := s.payments.FindByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if p.Status() != payment.StatusPending {
			return nil
		}
		if err := p.MarkFailed(externalPaymentID); err != nil {
			return err
		}
		if err := s.payments.Update(ctx, p); err != nil {
			return err
		}
		s.uow.RegisterDirty(ctx, p)
		failed = true
		return nil
	})
	return failed, err
}

func (s *ApplicationService) verificationResponse(ctx context.Context, o *order.Order, p *payment.Payment, outcome BookingOutcome) (*VerifyPaymentResponse, error) {
	resp := &VerifyPaymentResponse{Order: toOrderResponse(o, p)}
	if outcome.Err != nil {
		resp.ShipmentError = outcome.Err.Error()
	}

	detail := outcome.Detail
	if detail == nil {
		var err error
		if detail, err = s.findShippingDetail(ctx, o.ID()); err != nil {
			return nil, err
		}
	}
	if detail != nil {
		resp.Shipping = toShippingResponse(detail)
	}
	return resp, nil
}
