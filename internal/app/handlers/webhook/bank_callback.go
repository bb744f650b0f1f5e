package webhook

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	domainpayment "innkeep/internal/domain/payment"
)

const bankCallbackKey = "webhook.bank_callback"

const (
	OutcomeCompleted        = "completed"
	OutcomeFailed           = "failed"
	OutcomeBookingNotFound  = "booking_not_found"
	OutcomeNoPendingPayment = "no_pending_payment"
)

// BankCallbackCommand is one delivery of the bank gateway's payment
// notification. Deliveries are unordered and may repeat; the handler is a
// no-op on anything but the first delivery that finds a pending payment.
type BankCallbackCommand struct {
	TransactionID string
	BookingNumber string
	Amount        int64
	Status        string
	PaidAt        time.Time
}

func (c BankCallbackCommand) Key() string { return bankCallbackKey }

// BankCallbackResult is always a success at the transport level. Business
// anomalies ride in Outcome so the HTTP layer can acknowledge the provider
// without triggering its retry loop.
type BankCallbackResult struct {
	Outcome       string `json:"outcome"`
	PaymentID     string `json:"payment_id,omitempty"`
	BookingStatus string `json:"booking_status,omitempty"`
}

type BankCallbackHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *BankCallbackHandler) Handle(ctx context.Context, cmd BankCallbackCommand) (*BankCallbackResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByNumber(ctx, domainbooking.Number(cmd.BookingNumber))
	if errors.Is(err, domainbooking.ErrNotFound) {
		h.logger().WarnContext(ctx, "bank callback for unknown booking",
			slog.String("booking_number", cmd.BookingNumber),
			slog.String("transaction_id", cmd.TransactionID))
		return &BankCallbackResult{Outcome: OutcomeBookingNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	p, err := unit.Payments().FirstPendingByBooking(ctx, b.ID)
	if errors.Is(err, domainpayment.ErrNoPending) {
		h.logger().InfoContext(ctx, "bank callback with no pending payment, likely duplicate delivery",
			slog.String("booking_number", cmd.BookingNumber),
			slog.String("transaction_id", cmd.TransactionID))
		return &BankCallbackResult{Outcome: OutcomeNoPendingPayment}, nil
	}
	if err != nil {
		return nil, err
	}

	if cmd.Amount != 0 && cmd.Amount != p.Amount.Amount {
		h.logger().WarnContext(ctx, "bank callback amount differs from pending payment, settling at recorded amount",
			slog.String("payment_id", string(p.ID)),
			slog.Int64("callback_amount", cmd.Amount),
			slog.Int64("recorded_amount", p.Amount.Amount))
	}

	now := time.Now().UTC()
	outcome, err := Reconcile(ctx, unit, b, p, ReconcileInput{
		Succeeded:   cmd.Status == "success",
		ProviderRef: cmd.TransactionID,
		PaidAt:      cmd.PaidAt,
		Now:         now,
	}, h.Outbox, h.Encoder)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return &BankCallbackResult{
		Outcome:       outcome,
		PaymentID:     string(p.ID),
		BookingStatus: string(b.Status),
	}, nil
}

func (h *BankCallbackHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[BankCallbackCommand, *BankCallbackResult] = (*BankCallbackHandler)(nil)
