package refund

import "fulfillment/domain/refund"

func toRefundResponse(r *refund.Refund) *RefundResponse {
	return &RefundResponse{
		ID:               r.ID(),
		OrderID:          r.OrderID(),
		PaymentID:        r.PaymentID(),
		UserID:           r.UserID(),
		ExternalRefundID: r.ExternalRefundID(),
		Amount:           r.Amount(),
		Reason:           r.Reason(),
		UserNote:         r.UserNote(),
		AdminNote:        r.AdminNote(),
		Status:           string(r.Status()),
		DecidedBy:        r.DecidedBy(),
		RequestedAt:      r.RequestedAt(),
		DecidedAt:        r.DecidedAt(),
		ProcessedAt:      r.ProcessedAt(),
		CompletedAt:      r.CompletedAt(),
	}
}

func toRefundResponses(refunds []*refund.Refund) []*RefundResponse {
	out := make([]*RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, toRefundResponse(r))
	}
	return out
}
