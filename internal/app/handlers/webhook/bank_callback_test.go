package webhook

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	domainbooking "innkeep/internal/domain/booking"
	"innkeep/internal/domain/guest"
	domainpayment "innkeep/internal/domain/payment"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/infra/storage/memory"
)

func seedBookingAwaitingPayment(t *testing.T, factory memory.Factory) (*domainbooking.Booking, *domainpayment.Payment) {
	t.Helper()
	ctx := context.Background()
	dr, err := daterange.New(
		time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	price, err := pricing.QuotePricing{}.Calculate(pricing.Input{
		NightlyRate: money.THB(250000),
		Nights:      dr.Nights(),
		Rooms:       1,
	})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	now := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:      "bk-1",
		Number:  domainbooking.FormatNumber(now, 1),
		GuestID: guest.GuestID("g-1"),
		Range:   dr,
		Adults:  2,
		Price:   price,
		Now:     now,
	})
	if err != nil {
		t.Fatalf("new booking: %v", err)
	}
	b.ClearEvents()
	if err := factory.BookingRepo.Save(ctx, b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	p, err := domainpayment.New(domainpayment.CreateParams{
		ID:            "pm-1",
		BookingID:     b.ID,
		BookingNumber: b.Number,
		Amount:        b.Price.Final,
		Method:        domainpayment.MethodPromptPay,
		Provider:      domainpayment.ProviderBank,
		Now:           now,
	})
	if err != nil {
		t.Fatalf("new payment: %v", err)
	}
	if err := factory.PaymentRepo.Save(ctx, p); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return b, p
}

func TestBankCallback_SettlesAndConfirms(t *testing.T) {
	factory := memory.NewFactory()
	b, _ := seedBookingAwaitingPayment(t, factory)
	handler := &BankCallbackHandler{UoWFactory: factory}

	res, err := handler.Handle(context.Background(), BankCallbackCommand{
		TransactionID: "txn-1",
		BookingNumber: string(b.Number),
		Amount:        b.Price.Final.Amount,
		Status:        "success",
		PaidAt:        time.Date(2025, 12, 2, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if res.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed outcome, got %s", res.Outcome)
	}
	if res.BookingStatus != string(domainbooking.StatusConfirmed) {
		t.Fatalf("full settlement must confirm the booking, got %s", res.BookingStatus)
	}

	p, err := factory.PaymentRepo.ByID(context.Background(), "pm-1")
	if err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if p.Status != domainpayment.StatusCompleted || p.ProviderRef != "txn-1" {
		t.Fatalf("payment not settled: %s ref=%s", p.Status, p.ProviderRef)
	}
}

func TestBankCallback_DuplicateDeliveryIsNoOp(t *testing.T) {
	factory := memory.NewFactory()
	b, _ := seedBookingAwaitingPayment(t, factory)
	handler := &BankCallbackHandler{UoWFactory: factory}

	cmd := BankCallbackCommand{
		TransactionID: "txn-1",
		BookingNumber: string(b.Number),
		Amount:        b.Price.Final.Amount,
		Status:        "success",
	}
	if _, err := handler.Handle(context.Background(), cmd); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	res, err := handler.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second delivery must not error: %v", err)
	}
	if res.Outcome != OutcomeNoPendingPayment {
		t.Fatalf("expected no_pending_payment, got %s", res.Outcome)
	}

	payments, err := factory.PaymentRepo.ListByBooking(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 || payments[0].Status != domainpayment.StatusCompleted {
		t.Fatalf("exactly one settled payment expected, got %+v", payments)
	}
}

func TestBankCallback_UnknownBookingAcknowledged(t *testing.T) {
	factory := memory.NewFactory()
	handler := &BankCallbackHandler{UoWFactory: factory}

	res, err := handler.Handle(context.Background(), BankCallbackCommand{
		TransactionID: "txn-1",
		BookingNumber: "BK209901010001",
		Status:        "success",
	})
	if err != nil {
		t.Fatalf("unknown booking must not error: %v", err)
	}
	if res.Outcome != OutcomeBookingNotFound {
		t.Fatalf("expected booking_not_found, got %s", res.Outcome)
	}
}

func TestBankCallback_FailureKeepsBookingPending(t *testing.T) {
	factory := memory.NewFactory()
	b, _ := seedBookingAwaitingPayment(t, factory)
	handler := &BankCallbackHandler{UoWFactory: factory}

	res, err := handler.Handle(context.Background(), BankCallbackCommand{
		TransactionID: "txn-1",
		BookingNumber: string(b.Number),
		Status:        "declined",
	})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if res.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %s", res.Outcome)
	}

	p, err := factory.PaymentRepo.ByID(context.Background(), "pm-1")
	if err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if p.Status != domainpayment.StatusFailed {
		t.Fatalf("expected FAILED payment, got %s", p.Status)
	}
	reloaded, err := factory.BookingRepo.ByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if reloaded.Status != domainbooking.StatusPending {
		t.Fatalf("booking must stay PENDING, got %s", reloaded.Status)
	}
}

func TestBankCallback_AmountMismatchSettlesAtRecordedAmount(t *testing.T) {
	factory := memory.NewFactory()
	b, seeded := seedBookingAwaitingPayment(t, factory)
	var logBuf bytes.Buffer
	handler := &BankCallbackHandler{
		UoWFactory: factory,
		Logger:     slog.New(slog.NewTextHandler(&logBuf, nil)),
	}

	res, err := handler.Handle(context.Background(), BankCallbackCommand{
		TransactionID: "txn-1",
		BookingNumber: string(b.Number),
		Amount:        seeded.Amount.Amount + 5000,
		Status:        "success",
	})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if res.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed outcome, got %s", res.Outcome)
	}

	p, err := factory.PaymentRepo.ByID(context.Background(), "pm-1")
	if err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if p.Status != domainpayment.StatusCompleted {
		t.Fatalf("expected COMPLETED payment, got %s", p.Status)
	}
	if p.Amount.Amount != seeded.Amount.Amount {
		t.Fatalf("settlement must keep the recorded amount, got %d", p.Amount.Amount)
	}
	if !strings.Contains(logBuf.String(), "amount differs from pending payment") {
		t.Fatalf("expected a reconciliation anomaly in the log, got: %s", logBuf.String())
	}
}
