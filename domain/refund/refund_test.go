package refund

import (
	"errors"
	"testing"
	"time"

	"fulfillment/domain/shared"

	"github.com/shopspring/decimal"
)

func newRequested(t *testing.T) *Refund {
	t.Helper()
	r, err := NewRefund(RequestParams{OrderID: "o-1", PaymentID: "p-1", UserID: "u-1", Amount: decimal.NewFromInt(1450), Reason: "damaged"})
	if err != nil {
		t.Fatalf("NewRefund: %v", err)
	}
	return r
}

func TestRefundHappyPath(t *testing.T) {
	r := newRequested(t)
	if !r.Status().IsActive() {
		t.Fatal("requested refund should be active")
	}
	if err := r.Approve("admin-1", ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := r.MarkProcessing("rfnd_1"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	changed, err := r.Complete(time.Time{})
	if err != nil || !changed {
		t.Fatalf("Complete: changed=%v err=%v", changed, err)
	}
	if r.Status().IsActive() || r.CompletedAt() == nil {
		t.Errorf("status=%s completedAt=%v", r.Status(), r.CompletedAt())
	}

	changed, err = r.Complete(time.Now())
	if err != nil || changed {
		t.Errorf("second Complete: changed=%v err=%v", changed, err)
	}
}

func TestRejectRequiresNote(t *testing.T) {
	r := newRequested(t)
	if err := r.Reject("admin-1", "  "); !errors.Is(err, ErrAdminNoteRequired) {
		t.Errorf("expected admin note required, got %v", err)
	}
	if err := r.Reject("admin-1", "outside return window"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if err := r.Approve("admin-1", ""); !errors.Is(err, shared.ErrInvalidState) {
		t.Errorf("approve after reject: %v", err)
	}
}

func TestMarkFailedKeepsGatewayError(t *testing.T) {
	r := newRequested(t)
	_ = r.Approve("admin-1", "ok")
	if err := r.MarkFailed("insufficient balance"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if r.Status() != StatusFailed || r.AdminNote() != "ok\ngateway error: insufficient balance" {
		t.Errorf("status=%s note=%q", r.Status(), r.AdminNote())
	}
}

func TestNewRefundWithNothingLeft(t *testing.T) {
	_, err := NewRefund(RequestParams{OrderID: "o-1", Amount: decimal.Zero, Reason: "x"})
	if !errors.Is(err, ErrAlreadyRefunded) {
		t.Errorf("got %v", err)
	}
}
