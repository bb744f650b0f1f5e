package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"innkeep/internal/app/policies"
	domainbooking "innkeep/internal/domain/booking"
	"innkeep/internal/domain/guest"
	domainpayment "innkeep/internal/domain/payment"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/infra/storage/memory"
)

// fakeGateway accepts every charge and records what it was asked for.
type fakeGateway struct {
	provider domainpayment.Provider
	lastReq  money.Money
	err      error
}

func (g *fakeGateway) Provider() domainpayment.Provider { return g.provider }

func (g *fakeGateway) CreatePayment(_ context.Context, number domainbooking.Number, amount money.Money, _ domainpayment.Method) (policies.CreatePaymentResult, error) {
	if g.err != nil {
		return policies.CreatePaymentResult{}, g.err
	}
	g.lastReq = amount
	return policies.CreatePaymentResult{
		ProviderRef:         "ref-" + string(number),
		PresentationPayload: "qr-data",
		ExpiresIn:           15 * time.Minute,
	}, nil
}

func (g *fakeGateway) RequestRefund(_ context.Context, providerRef string, amount money.Money) (policies.RefundResult, error) {
	if g.err != nil {
		return policies.RefundResult{}, g.err
	}
	return policies.RefundResult{ProviderRef: "rf-" + providerRef}, nil
}

func seedBooking(t *testing.T, factory memory.Factory) *domainbooking.Booking {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	price, err := pricing.QuotePricing{}.Calculate(pricing.Input{
		NightlyRate: money.THB(100000),
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
	if err := factory.BookingRepo.Save(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func newHandler(factory memory.Factory, bank *fakeGateway) *CreatePaymentHandler {
	return &CreatePaymentHandler{
		UoWFactory: factory,
		Gateways:   policies.GatewayRouter{Bank: bank},
	}
}

func TestCreatePayment_ZeroAmountChargesRemaining(t *testing.T) {
	factory := memory.NewFactory()
	b := seedBooking(t, factory)
	bank := &fakeGateway{provider: domainpayment.ProviderBank}
	handler := newHandler(factory, bank)

	res, err := handler.Handle(context.Background(), CreatePaymentCommand{
		CommandID: "pm-1",
		BookingID: string(b.ID),
		Amount:    0,
		Method:    string(domainpayment.MethodPromptPay),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Status != string(domainpayment.StatusPending) {
		t.Fatalf("expected PENDING, got %s", res.Status)
	}
	if bank.lastReq.Amount != b.Price.Final.Amount {
		t.Fatalf("gateway must be asked for the full remaining amount, got %d", bank.lastReq.Amount)
	}
	if res.PresentationPayload != "qr-data" || res.ExpiresInSeconds != 900 {
		t.Fatalf("presentation payload not passed through: %+v", res)
	}
}

func TestCreatePayment_OverpaymentRejected(t *testing.T) {
	factory := memory.NewFactory()
	b := seedBooking(t, factory)
	bank := &fakeGateway{provider: domainpayment.ProviderBank}
	handler := newHandler(factory, bank)

	_, err := handler.Handle(context.Background(), CreatePaymentCommand{
		CommandID: "pm-1",
		BookingID: string(b.ID),
		Amount:    b.Price.Final.Amount + 1,
		Method:    string(domainpayment.MethodPromptPay),
	})
	if !errors.Is(err, domainpayment.ErrOverpayment) {
		t.Fatalf("expected ErrOverpayment, got %v", err)
	}
}

func TestCreatePayment_SettledSumCountsTowardCap(t *testing.T) {
	factory := memory.NewFactory()
	b := seedBooking(t, factory)
	half := b.Price.Final.Amount / 2
	prior, err := domainpayment.New(domainpayment.CreateParams{
		ID: "pm-0", BookingID: b.ID, BookingNumber: b.Number,
		Amount: money.THB(half), Method: domainpayment.MethodPromptPay,
		Provider: domainpayment.ProviderBank, Now: time.Now(),
	})
	if err != nil {
		t.Fatalf("prior payment: %v", err)
	}
	if err := prior.MarkCompleted("txn-0", time.Now(), time.Now()); err != nil {
		t.Fatalf("settle prior: %v", err)
	}
	if err := factory.PaymentRepo.Save(context.Background(), prior); err != nil {
		t.Fatalf("save prior: %v", err)
	}

	bank := &fakeGateway{provider: domainpayment.ProviderBank}
	handler := newHandler(factory, bank)
	_, err = handler.Handle(context.Background(), CreatePaymentCommand{
		CommandID: "pm-1",
		BookingID: string(b.ID),
		Amount:    b.Price.Final.Amount,
		Method:    string(domainpayment.MethodPromptPay),
	})
	if !errors.Is(err, domainpayment.ErrOverpayment) {
		t.Fatalf("partial settlement plus full charge must overflow, got %v", err)
	}

	if _, err := handler.Handle(context.Background(), CreatePaymentCommand{
		CommandID: "pm-2",
		BookingID: string(b.ID),
		Amount:    0,
		Method:    string(domainpayment.MethodPromptPay),
	}); err != nil {
		t.Fatalf("charging the remainder must pass: %v", err)
	}
	if bank.lastReq.Amount != b.Price.Final.Amount-half {
		t.Fatalf("remainder should be %d, gateway saw %d", b.Price.Final.Amount-half, bank.lastReq.Amount)
	}
}

func TestCreatePayment_TerminalBookingRejected(t *testing.T) {
	factory := memory.NewFactory()
	b := seedBooking(t, factory)
	_ = b.Cancel("guest withdrew", time.Now())
	if err := factory.BookingRepo.Save(context.Background(), b); err != nil {
		t.Fatalf("save: %v", err)
	}

	handler := newHandler(factory, &fakeGateway{provider: domainpayment.ProviderBank})
	_, err := handler.Handle(context.Background(), CreatePaymentCommand{
		CommandID: "pm-1",
		BookingID: string(b.ID),
		Method:    string(domainpayment.MethodPromptPay),
	})
	if !errors.Is(err, ErrBookingNotPayable) {
		t.Fatalf("expected ErrBookingNotPayable, got %v", err)
	}
}

func TestCreatePayment_GatewayFailureLeavesNoRecord(t *testing.T) {
	factory := memory.NewFactory()
	b := seedBooking(t, factory)
	bank := &fakeGateway{provider: domainpayment.ProviderBank, err: policies.ErrGateway}
	handler := newHandler(factory, bank)

	_, err := handler.Handle(context.Background(), CreatePaymentCommand{
		CommandID: "pm-1",
		BookingID: string(b.ID),
		Method:    string(domainpayment.MethodPromptPay),
	})
	if !errors.Is(err, policies.ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
	payments, err := factory.PaymentRepo.ListByBooking(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("no payment row may exist after a provider failure, got %d", len(payments))
	}
}

func TestCreatePayment_UnroutableMethodRejected(t *testing.T) {
	factory := memory.NewFactory()
	b := seedBooking(t, factory)
	handler := newHandler(factory, &fakeGateway{provider: domainpayment.ProviderBank})

	_, err := handler.Handle(context.Background(), CreatePaymentCommand{
		CommandID: "pm-1",
		BookingID: string(b.ID),
		Method:    string(domainpayment.MethodCreditCard),
	})
	if !errors.Is(err, policies.ErrNoGateway) {
		t.Fatalf("expected ErrNoGateway, got %v", err)
	}
}
