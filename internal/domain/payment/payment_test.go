package payment

import (
	"errors"
	"testing"
	"time"

	"innkeep/internal/domain/shared/money"
)

func completedPayment(t *testing.T, id PaymentID, satang int64) *Payment {
	t.Helper()
	now := time.Date(2025, 12, 10, 10, 0, 0, 0, time.UTC)
	p, err := New(CreateParams{
		ID:            id,
		BookingID:     "bk-1",
		BookingNumber: "BK202512100001",
		Amount:        money.THB(satang),
		Method:        MethodPromptPay,
		Provider:      ProviderBank,
		Now:           now,
	})
	if err != nil {
		t.Fatalf("new payment: %v", err)
	}
	if err := p.MarkCompleted("txn-"+string(id), now, now); err != nil {
		t.Fatalf("complete: %v", err)
	}
	return p
}

func TestNew_RejectsBadInput(t *testing.T) {
	now := time.Now()
	if _, err := New(CreateParams{Amount: money.THB(0), Method: MethodPromptPay, Now: now}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := New(CreateParams{Amount: money.THB(100), Method: Method("CASH_UNDER_TABLE"), Now: now}); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("bad method: expected ErrUnknownMethod, got %v", err)
	}
}

func TestMarkCompleted_OnlyFromPending(t *testing.T) {
	p := completedPayment(t, "pm-1", 50000)
	if err := p.MarkCompleted("txn-again", time.Now(), time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double completion must fail, got %v", err)
	}
	if p.ProviderRef != "txn-pm-1" {
		t.Fatalf("provider ref overwritten: %s", p.ProviderRef)
	}
}

func TestMarkFailed_OnlyFromPending(t *testing.T) {
	p := completedPayment(t, "pm-1", 50000)
	if err := p.MarkFailed("txn-x", time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("failing a settled payment must be rejected, got %v", err)
	}
}

func TestSumCompleted_CountsSettledAndRefunded(t *testing.T) {
	now := time.Now()
	pending, err := New(CreateParams{
		ID: "pm-3", BookingID: "bk-1", BookingNumber: "BK202512100001",
		Amount: money.THB(99999), Method: MethodCreditCard, Provider: ProviderCard, Now: now,
	})
	if err != nil {
		t.Fatalf("new payment: %v", err)
	}
	refunded := completedPayment(t, "pm-2", 30000)
	if err := refunded.MarkRefunded(now); err != nil {
		t.Fatalf("refund: %v", err)
	}

	total := SumCompleted([]*Payment{completedPayment(t, "pm-1", 50000), refunded, pending}, "THB")
	if total.Amount != 80000 {
		t.Fatalf("expected 80000 satang settled, got %d", total.Amount)
	}
}

func TestSumCompleted_SkipsForeignCurrency(t *testing.T) {
	usd := completedPayment(t, "pm-1", 50000)
	usd.Amount.Currency = "USD"
	total := SumCompleted([]*Payment{usd}, "THB")
	if total.Amount != 0 {
		t.Fatalf("foreign currency must be skipped, got %d", total.Amount)
	}
}

func TestNewRefund_ZeroAmountMeansFull(t *testing.T) {
	parent := completedPayment(t, "pm-1", 75000)
	r, err := NewRefund("rf-1", parent, money.Money{}, time.Now())
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if r.Amount.Amount != 75000 || r.Amount.Currency != "THB" {
		t.Fatalf("expected full amount, got %+v", r.Amount)
	}
	if r.Status != RefundPending {
		t.Fatalf("expected PENDING refund, got %s", r.Status)
	}
}

func TestNewRefund_TooLargeRejected(t *testing.T) {
	parent := completedPayment(t, "pm-1", 75000)
	if _, err := NewRefund("rf-1", parent, money.THB(75001), time.Now()); !errors.Is(err, ErrRefundTooLarge) {
		t.Fatalf("expected ErrRefundTooLarge, got %v", err)
	}
}

func TestNewRefund_RequiresCompletedParent(t *testing.T) {
	parent, err := New(CreateParams{
		ID: "pm-1", BookingID: "bk-1", BookingNumber: "BK202512100001",
		Amount: money.THB(75000), Method: MethodPromptPay, Provider: ProviderBank, Now: time.Now(),
	})
	if err != nil {
		t.Fatalf("new payment: %v", err)
	}
	if _, err := NewRefund("rf-1", parent, money.Money{}, time.Now()); !errors.Is(err, ErrRefundNotAllowed) {
		t.Fatalf("expected ErrRefundNotAllowed, got %v", err)
	}
}
