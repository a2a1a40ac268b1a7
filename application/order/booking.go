package order

import (
	"context"
	"time"

	"fulfillment/domain/order"
	"fulfillment/domain/shared"
	"fulfillment/domain/shipment"
	"fulfillment/domain/storefront"
	"fulfillment/pkg/logger"
	"fulfillment/pkg/metrics"
	"fulfillment/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// BookingOutcome is the result of a best-effort shipment booking. Exactly one
// of Detail and Err is set once booking ran.
type BookingOutcome struct {
	Detail *shipment.ShippingDetail
	Err    error
}

func (b BookingOutcome) Booked() bool { return b.Detail != nil }

// RebookShipment retries booking for a PAID order that has no shipment yet.
func (s *ApplicationService) RebookShipment(ctx context.Context, orderID string) (*BookingResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status() != order.StatusPaid {
		return nil, shared.NewInvalidStateError("order", "only PAID orders can be booked, order is "+string(o.Status()))
	}
	existing, err := s.findShippingDetail(ctx, o.ID())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shipment.NewAlreadyBookedError(o.ID())
	}

	outcome := s.bookShipment(ctx, o)
	resp := &BookingResponse{Booked: outcome.Booked()}
	if outcome.Err != nil {
		resp.Error = outcome.Err.Error()
	} else {
		resp.Shipping = toShippingResponse(outcome.Detail)
	}
	return resp, nil
}

// bookShipment runs the booking chain under its own deadline, detached from
// the caller's cancellation. Failures are captured, logged and counted.
func (s *ApplicationService) bookShipment(ctx context.Context, o *order.Order) (outcome BookingOutcome) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.settings.BookingTimeout)
	defer cancel()

	ctx, span := tracing.Start(ctx, "order.BookShipment", attribute.String("order.id", o.ID()))
	defer func() { tracing.End(span, outcome.Err) }()

	detail, err := s.book(ctx, o)
	if err != nil {
		metrics.RecordShipmentBooking("failed")
		logger.Ctx(ctx).Warn("shipment booking failed, order stays PAID",
			zap.String("order_id", o.ID()),
			zap.Error(err))
		return BookingOutcome{Err: err}
	}

	metrics.RecordShipmentBooking("booked")
	logger.Ctx(ctx).Info("shipment booked",
		zap.String("order_id", o.ID()),
		zap.String("shipment_id", detail.ExternalShipmentID()),
		zap.String("awb", detail.AWBCode()))
	return BookingOutcome{Detail: detail}
}

// book is create shipment, pick the cheapest courier, assign a waybill and
// request pickup. An order that is already booked returns its detail.
func (s *ApplicationService) book(ctx context.Context, o *order.Order) (*shipment.ShippingDetail, error) {
	existing, err := s.findShippingDetail(ctx, o.ID())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	customer, err := s.customers.FindByID(ctx, o.UserID())
	if err != nil {
		logger.Ctx(ctx).Debug("customer lookup failed, labelling from address",
			zap.String("user_id", o.UserID()),
			zap.Error(err))
	}

	created, err := s.provider.CreateShipment(ctx, buildShipmentRequest(o, customer, s.settings.PickupLocation))
	if err != nil {
		return nil, err
	}

	couriers := s.provider.AvailableCouriers(ctx, shipment.ServiceabilityRequest{
		PickupPostcode:   o.PickupPostcode(),
		DeliveryPostcode: o.DeliveryPostcode(),
		WeightKg:         o.Parcel().WeightKg,
	})
	// With no courier list the provider assigns its own default.
	courier, _ := shipment.SelectCheapest(couriers)

	waybill, err := s.provider.AssignWaybill(ctx, created.ExternalShipmentID, courier.CourierID)
	if err != nil {
		return nil, err
	}

	var scheduledAt *time.Time
	if at, err := s.provider.RequestPickup(ctx, created.ExternalShipmentID); err != nil {
		logger.Ctx(ctx).Warn("pickup request failed",
			zap.String("order_id", o.ID()),
			zap.String("shipment_id", created.ExternalShipmentID),
			zap.Error(err))
	} else if !at.IsZero() {
		scheduledAt = &at
	}

	courierName := waybill.CourierName
	if courierName == "" {
		courierName = courier.CourierName
	}
	detail, err := shipment.NewShippingDetail(o.ID(), shipment.BookingResult{
		ExternalOrderID:    created.ExternalOrderID,
		ExternalShipmentID: created.ExternalShipmentID,
		AWBCode:            waybill.AWBCode,
		CourierID:          courier.CourierID,
		CourierName:        courierName,
		PickupScheduledAt:  scheduledAt,
	})
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		if err := s.shipments.Save(ctx, detail); err != nil {
			return err
		}
		s.uow.RegisterNew(ctx, detail)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func customerOrAddress(c *storefront.Customer, a order.Address) (name, email, phone string) {
	name, phone = a.Name, a.Phone
	if c == nil {
		return name, "", phone
	}
	if c.Name != "" {
		name = c.Name
	}
	if c.Phone != "" {
		phone = c.Phone
	}
	return name, c.Email, phone
}
