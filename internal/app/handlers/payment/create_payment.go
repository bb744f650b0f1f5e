package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/middleware"
	"innkeep/internal/app/policies"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	domainpayment "innkeep/internal/domain/payment"
	"innkeep/internal/domain/shared/money"
)

const createPaymentKey = "payment.create"

var ErrBookingNotPayable = errors.New("payment: booking is not in a payable state")

// CreatePaymentCommand registers a charge with the routed provider and
// records it PENDING. Settlement arrives later over the provider webhook.
// Amount zero means "whatever is still owed on the booking".
type CreatePaymentCommand struct {
	CommandID       string
	BookingID       string
	Amount          int64
	Method          string
	IdempotencyKeyV string
}

func (c CreatePaymentCommand) Key() string { return createPaymentKey }

func (c CreatePaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreatePaymentCommand) ResultPrototype() any { return &CreatePaymentResult{} }

type CreatePaymentResult struct {
	PaymentID           string `json:"payment_id"`
	Status              string `json:"status"`
	ProviderRef         string `json:"provider_ref"`
	PresentationPayload string `json:"presentation_payload,omitempty"`
	ExpiresInSeconds    int64  `json:"expires_in_seconds,omitempty"`
}

type CreatePaymentHandler struct {
	UoWFactory uow.UoWFactory
	Gateways   policies.GatewayRouter
}

func (h *CreatePaymentHandler) Handle(ctx context.Context, cmd CreatePaymentCommand) (*CreatePaymentResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if domainbooking.Terminal(b.Status) {
		return nil, ErrBookingNotPayable
	}

	method := domainpayment.Method(cmd.Method)
	gateway, err := h.Gateways.ForMethod(method)
	if err != nil {
		return nil, err
	}

	existing, err := unit.Payments().ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	paid := domainpayment.SumCompleted(existing, b.Price.Final.Currency)

	amount := money.Money{Amount: cmd.Amount, Currency: b.Price.Final.Currency}
	if amount.Amount == 0 {
		remaining, err := b.Price.Final.Sub(paid)
		if err != nil {
			return nil, err
		}
		amount = remaining
	}
	total, err := paid.Add(amount)
	if err != nil {
		return nil, err
	}
	if total.Amount > b.Price.Final.Amount {
		return nil, domainpayment.ErrOverpayment
	}

	now := time.Now().UTC()
	p, err := domainpayment.New(domainpayment.CreateParams{
		ID:            domainpayment.PaymentID(paymentID(cmd.CommandID)),
		BookingID:     b.ID,
		BookingNumber: b.Number,
		Amount:        amount,
		Method:        method,
		Provider:      gateway.Provider(),
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	created, err := gateway.CreatePayment(ctx, b.Number, amount, method)
	if err != nil {
		return nil, err
	}
	p.ProviderRef = created.ProviderRef
	p.Gateway = created.Audit

	if err := unit.Payments().Save(ctx, p); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return &CreatePaymentResult{
		PaymentID:           string(p.ID),
		Status:              string(p.Status),
		ProviderRef:         p.ProviderRef,
		PresentationPayload: created.PresentationPayload,
		ExpiresInSeconds:    int64(created.ExpiresIn / time.Second),
	}, nil
}

func paymentID(commandID string) string {
	if commandID != "" {
		return commandID
	}
	return uuid.NewString()
}

var _ commands.Handler[CreatePaymentCommand, *CreatePaymentResult] = (*CreatePaymentHandler)(nil)
var _ middleware.IdempotentCommand = (*CreatePaymentCommand)(nil)
