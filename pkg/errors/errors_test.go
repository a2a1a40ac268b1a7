package errors

import (
	"fmt"
	"net/http"
	"testing"

	"fulfillment/domain/order"
	"fulfillment/domain/payment"
	"fulfillment/domain/refund"
	"fulfillment/domain/shared"
)

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"not found", order.NewOrderNotFoundError("o-1"), CodeNotFound, http.StatusNotFound},
		{"empty cart", order.NewEmptyCartError(), CodeValidation, http.StatusBadRequest},
		{"forbidden", shared.NewForbiddenError("order", "not your order"), CodeForbidden, http.StatusForbidden},
		{"invalid transition", order.NewInvalidTransitionError(order.StatusShipped, order.StatusCancelled), CodeInvalidState, http.StatusBadRequest},
		{"active refund", refund.NewActiveRefundExistsError("o-1"), CodeConflict, http.StatusConflict},
		{"verification", payment.NewVerificationFailedError(), CodeVerificationFailed, http.StatusBadRequest},
		{"gateway", payment.NewGatewayUnavailableError("create intent", fmt.Errorf("timeout")), CodeUpstreamUnavailable, http.StatusBadGateway},
		{"invariant", shared.NewInvariantViolationError("payment", "negative refund"), CodeInvariantViolation, http.StatusInternalServerError},
		{"stale version", order.NewConcurrentModificationError("o-1"), CodeConcurrentModify, http.StatusConflict},
		{"signature", fmt.Errorf("webhook: %w", ErrInvalidSignature), CodeInvalidSignature, http.StatusUnauthorized},
		{"plain", fmt.Errorf("boom"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomainError(tt.err)
			if appErr.Code != tt.code {
				t.Errorf("code = %s, want %s", appErr.Code, tt.code)
			}
			if appErr.HTTPStatusCode() != tt.status {
				t.Errorf("status = %d, want %d", appErr.HTTPStatusCode(), tt.status)
			}
		})
	}
}

func TestFromDomainErrorKeepsMessageAndField(t *testing.T) {
	appErr := FromDomainError(refund.NewAdminNoteRequiredError())
	if appErr.Message != "admin note is required to reject a refund" || appErr.Field != "admin_note" {
		t.Errorf("got %+v", appErr)
	}
	if FromDomainError(nil) != nil {
		t.Error("nil in, nil out")
	}
}
