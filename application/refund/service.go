// Package refund runs the refund workflow: a customer request, an admin
// decision, the gateway refund call and its asynchronous completion.
package refund

import (
	"context"
	"errors"
	"time"

	"fulfillment/domain/order"
	"fulfillment/domain/payment"
	"fulfillment/domain/refund"
	"fulfillment/domain/shared"
	"fulfillment/pkg/logger"
	"fulfillment/pkg/metrics"
	"fulfillment/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type ApplicationService struct {
	refunds  refund.Repository
	orders   order.Repository
	payments payment.Repository
	gateway  payment.Gateway
	uow      shared.UnitOfWork
}

func NewApplicationService(
	refunds refund.Repository,
	orders order.Repository,
	payments payment.Repository,
	gateway payment.Gateway,
	uow shared.UnitOfWork,
) *ApplicationService {
	return &ApplicationService{
		refunds:  refunds,
		orders:   orders,
		payments: payments,
		gateway:  gateway,
		uow:      uow,
	}
}

// Request opens a refund for everything still refundable on the order's payment.
func (s *ApplicationService) Request(ctx context.Context, userID string, req RequestRefundRequest) (*RefundResponse, error) {
	o, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, shared.NewForbiddenError("order", "order belongs to another user")
	}

	var r *refund.Refund
	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		p, err := s.payments.FindByOrderID(ctx, o.ID())
		if err != nil {
			return err
		}
		if !p.Refundable().IsPositive() {
			return refund.NewAlreadyRefundedError(o.ID())
		}
		if !p.IsRefundable() {
			return refund.NewNotRefundableError(string(p.Status()))
		}

		active, err := s.refunds.FindActiveByOrderID(ctx, o.ID())
		if err != nil && !errors.Is(err, refund.ErrRefundNotFound) {
			return err
		}
		if active != nil {
			return refund.NewActiveRefundExistsError(o.ID())
		}

		r, err = refund.NewRefund(refund.RequestParams{
			OrderID:   o.ID(),
			PaymentID: p.ID(),
			UserID:    userID,
			Amount:    p.Refundable(),
			Reason:    req.Reason,
			UserNote:  req.UserNote,
		})
		if err != nil {
			return err
		}
		// The store's unique index on active refunds is the final arbiter.
		if err := s.refunds.Save(ctx, r); err != nil {
			return err
		}
		s.uow.RegisterNew(ctx, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRefund(string(refund.StatusRequested))
	logger.Ctx(ctx).Info("refund requested",
		zap.String("refund_id", r.ID()),
		zap.String("order_id", r.OrderID()),
		zap.String("amount", r.Amount().StringFixed(2)))
	return toRefundResponse(r), nil
}

// ListMine returns the caller's refunds, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, userID string) ([]*RefundResponse, error) {
	refunds, err := s.refunds.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toRefundResponses(refunds), nil
}

func (s *ApplicationService) ListAll(ctx context.Context, req ListRefundsRequest) (*RefundListResponse, error) {
	filter := refund.ListFilter{Page: req.Page, Limit: req.Limit}
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if req.Status != "" {
		status, ok := refund.ParseStatus(req.Status)
		if !ok {
			return nil, shared.NewValidationError("refund", "status", "unknown refund status "+req.Status)
		}
		filter.Status = &status
	}

	refunds, total, err := s.refunds.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &RefundListResponse{
		Items: toRefundResponses(refunds),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Approve claims the refund as APPROVED, then calls the gateway outside any
// transaction. On success the refund moves to PROCESSING and the payment
// books the refunded amount together. On failure the refund is FAILED with the
// gateway error in its admin note, the payment is untouched and the error is
// returned.
func (s *ApplicationService) Approve(ctx context.Context, adminID, refundID string, req ApproveRefundRequest) (resp *RefundResponse, err error) {
	ctx, span := tracing.Start(ctx, "refund.Approve", attribute.String("refund.id", refundID))
	defer func() { tracing.End(span, err) }()

	var (
		r *refund.Refund
		p *payment.Payment
	)
	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		if r, err = s.refunds.FindByID(ctx, refundID); err != nil {
			return err
		}
		if p, err = s.payments.FindByID(ctx, r.PaymentID()); err != nil {
			return err
		}
		if err := r.Approve(adminID, req.AdminNote); err != nil {
			return err
		}
		if r.Amount().GreaterThan(p.Refundable()) {
			return refund.NewAlreadyRefundedError(r.OrderID())
		}
		if err := s.refunds.Save(ctx, r); err != nil {
			return err
		}
		s.uow.RegisterDirty(ctx, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	receipt, gwErr := s.gateway.IssueRefund(ctx, p.ExternalPaymentID(), shared.ToMinorUnits(r.Amount()), map[string]string{
		"refund_id": r.ID(),
		"order_id":  r.OrderID(),
		"reason":    r.Reason(),
	})
	if gwErr != nil {
		if err := s.recordGatewayFailure(ctx, refundID, gwErr); err != nil {
			logger.Ctx(ctx).Error("failed to record refund failure",
				zap.String("refund_id", refundID),
				zap.Error(err))
		}
		metrics.RecordRefund(string(refund.StatusFailed))
		return nil, gwErr
	}

	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		if r, err = s.refunds.FindByID(ctx, refundID); err != nil {
			return err
		}
		if p, err = s.payments.FindByID(ctx, r.PaymentID()); err != nil {
			return err
		}
		if err := r.MarkProcessing(receipt.ExternalRefundID); err != nil {
			return err
		}
		if receipt.Status == payment.RemoteRefundProcessed {
			if _, err := r.Complete(time.Now()); err != nil {
				return err
			}
		}
		if err := p.ApplyRefund(r.Amount()); err != nil {
			return err
		}
		if err := s.refunds.Save(ctx, r); err != nil {
			return err
		}
		if err := s.payments.Update(ctx, p); err != nil {
			return err
		}
		s.uow.RegisterDirty(ctx, r)
		s.uow.RegisterDirty(ctx, p)
		return nil
	})
	if err != nil {
		// The gateway has the refund; reconciliation needs the external id.
		logger.Ctx(ctx).Error("refund issued but local state not updated",
			zap.String("refund_id", refundID),
			zap.String("external_refund_id", receipt.ExternalRefundID),
			zap.Error(err))
		return nil, err
	}

	metrics.RecordRefund(string(r.Status()))
	logger.Ctx(ctx).Info("refund approved",
		zap.String("refund_id", r.ID()),
		zap.String("external_refund_id", receipt.ExternalRefundID),
		zap.String("admin_id", adminID))
	return toRefundResponse(r), nil
}

func (s *ApplicationService) recordGatewayFailure(ctx context.Context, refundID string, gwErr error) error {
	return s.uow.Execute(ctx, func(ctx context.Context) error {
		r, err := s.refunds.FindByID(ctx, refundID)
		if err != nil {
			return err
		}
		if err := r.MarkFailed(gwErr.Error()); err != nil {
			return err
		}
		if err := s.refunds.Save(ctx, r); err != nil {
			return err
		}
		s.uow.RegisterDirty(ctx, r)
		return nil
	})
}

// Reject closes a REQUESTED refund. The admin note is mandatory.
func (s *ApplicationService) Reject(ctx context.Context, adminID, refundID string, req RejectRefundRequest) (*RefundResponse, error) {
	var r *refund.Refund
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		if r, err = s.refunds.FindByID(ctx, refundID); err != nil {
			return err
		}
		if err := r.Reject(adminID, req.AdminNote); err != nil {
			return err
		}
		if err := s.refunds.Save(ctx, r); err != nil {
			return err
		}
		s.uow.RegisterDirty(ctx, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRefund(string(refund.StatusRejected))
	return toRefundResponse(r), nil
}

// CheckStatus polls the gateway and completes the refund when it reports
// processed. It is the manual path for a lost webhook.
func (s *ApplicationService) CheckStatus(ctx context.Context, refundID string) (*RefundStatusResponse, error) {
	r, err := s.refunds.FindByID(ctx, refundID)
	if err != nil {
		return nil, err
	}
	if r.ExternalRefundID() == "" {
		return nil, shared.NewInvalidStateError("refund", "refund "+refundID+" has not been issued at the gateway")
	}
	p, err := s.payments.FindByID(ctx, r.PaymentID())
	if err != nil {
		return nil, err
	}

	remote, err := s.gateway.FetchRefundStatus(ctx, p.ExternalPaymentID(), r.ExternalRefundID())
	if err != nil {
		return nil, err
	}

	if remote == payment.RemoteRefundProcessed && r.Status() != refund.StatusCompleted {
		if r, _, err = s.complete(ctx, refundID, time.Now()); err != nil {
			return nil, err
		}
	}
	return &RefundStatusResponse{Refund: toRefundResponse(r), RemoteStatus: remote}, nil
}

// MarkProcessingByExternalID applies the gateway's refund.created notification.
func (s *ApplicationService) MarkProcessingByExternalID(ctx context.Context, externalRefundID string) error {
	return s.uow.Execute(ctx, func(ctx context.Context) error {
		r, err := s.refunds.FindByExternalRefundID(ctx, externalRefundID)
		if err != nil {
			return err
		}
		if r.Status() != refund.StatusApproved {
			return nil
		}
		if err := r.MarkProcessing(externalRefundID); err != nil {
			return err
		}
		if err := s.refunds.Save(ctx, r); err != nil {
			return err
		}
		s.uow.RegisterDirty(ctx, r)
		return nil
	})
}

// CompleteByExternalID applies the gateway's refund.processed notification.
// It reports false when the refund was already complete.
func (s *ApplicationService) CompleteByExternalID(ctx context.Context, externalRefundID string, at time.Time) (bool, error) {
	r, err := s.refunds.FindByExternalRefundID(ctx, externalRefundID)
	if err != nil {
		return false, err
	}
	_, changed, err := s.complete(ctx, r.ID(), at)
	return changed, err
}

func (s *ApplicationService) complete(ctx context.Context, refundID string, at time.Time) (r *refund.Refund, changed bool, err error) {
	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		if r, err = s.refunds.FindByID(ctx, refundID); err != nil {
			return err
		}
		if changed, err = r.Complete(at); err != nil || !changed {
			return err
		}
		if err := s.refunds.Save(ctx, r); err != nil {
			return err
		}
		s.uow.RegisterDirty(ctx, r)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if changed {
		metrics.RecordRefund(string(refund.StatusCompleted))
		logger.Ctx(ctx).Info("refund completed", zap.String("refund_id", refundID))
	}
	return r, changed, nil
}
