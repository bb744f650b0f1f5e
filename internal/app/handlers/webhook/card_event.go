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

const cardEventKey = "webhook.card_event"

const (
	EventPaymentSucceeded = "payment-succeeded"
	EventPaymentFailed    = "payment-failed"
	EventPaymentCanceled  = "payment-canceled"
	EventChargeRefunded   = "charge-refunded"
	EventDisputeCreated   = "dispute-created"
)

const (
	OutcomeCancelled = "cancelled"
	OutcomeRefunded  = "refunded"
	OutcomeIgnored   = "ignored"
)

// CardEventCommand is one event from the card/wallet provider's envelope.
// BookingNumber and ProviderRef both appear in provider payloads; either
// resolves the payment.
type CardEventCommand struct {
	EventID       string
	Type          string
	ProviderRef   string
	BookingNumber string
	Amount        int64
	PaidAt        time.Time
}

func (c CardEventCommand) Key() string { return cardEventKey }

type CardEventResult struct {
	Outcome   string `json:"outcome"`
	PaymentID string `json:"payment_id,omitempty"`
}

type CardEventHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CardEventHandler) Handle(ctx context.Context, cmd CardEventCommand) (*CardEventResult, error) {
	switch cmd.Type {
	case EventPaymentSucceeded, EventPaymentFailed, EventPaymentCanceled, EventChargeRefunded:
	case EventDisputeCreated:
		h.logger().WarnContext(ctx, "payment dispute opened",
			slog.String("event_id", cmd.EventID),
			slog.String("provider_ref", cmd.ProviderRef))
		return &CardEventResult{Outcome: OutcomeIgnored}, nil
	default:
		return &CardEventResult{Outcome: OutcomeIgnored}, nil
	}

	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	now := time.Now().UTC()

	if cmd.Type == EventChargeRefunded {
		return h.settleRefund(ctx, unit, cmd, now)
	}

	b, p, outcome, err := h.resolve(ctx, unit, cmd)
	if err != nil {
		return nil, err
	}
	if outcome != "" {
		return &CardEventResult{Outcome: outcome}, nil
	}

	if cmd.Type == EventPaymentCanceled {
		if err := p.MarkCancelled(now); err != nil {
			return nil, err
		}
		if err := unit.Payments().Save(ctx, p); err != nil {
			return nil, err
		}
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		return &CardEventResult{Outcome: OutcomeCancelled, PaymentID: string(p.ID)}, nil
	}

	if cmd.Amount != 0 && cmd.Amount != p.Amount.Amount {
		h.logger().WarnContext(ctx, "card event amount differs from pending payment, settling at recorded amount",
			slog.String("event_id", cmd.EventID),
			slog.Int64("event_amount", cmd.Amount),
			slog.Int64("recorded_amount", p.Amount.Amount))
	}

	outcome, err = Reconcile(ctx, unit, b, p, ReconcileInput{
		Succeeded:   cmd.Type == EventPaymentSucceeded,
		ProviderRef: cmd.ProviderRef,
		PaidAt:      cmd.PaidAt,
		Now:         now,
	}, h.Outbox, h.Encoder)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return &CardEventResult{Outcome: outcome, PaymentID: string(p.ID)}, nil
}

// resolve finds the target booking and its outstanding payment. A non-empty
// outcome means a soft miss that must still be acknowledged to the provider.
func (h *CardEventHandler) resolve(ctx context.Context, unit *support.WriteUnit, cmd CardEventCommand) (*domainbooking.Booking, *domainpayment.Payment, string, error) {
	b, err := unit.Bookings().ByNumber(ctx, domainbooking.Number(cmd.BookingNumber))
	if errors.Is(err, domainbooking.ErrNotFound) {
		h.logger().WarnContext(ctx, "card event for unknown booking",
			slog.String("event_id", cmd.EventID),
			slog.String("booking_number", cmd.BookingNumber))
		return nil, nil, OutcomeBookingNotFound, nil
	}
	if err != nil {
		return nil, nil, "", err
	}
	p, err := unit.Payments().FirstPendingByBooking(ctx, b.ID)
	if errors.Is(err, domainpayment.ErrNoPending) {
		h.logger().InfoContext(ctx, "card event with no pending payment, likely duplicate delivery",
			slog.String("event_id", cmd.EventID),
			slog.String("booking_number", cmd.BookingNumber))
		return nil, nil, OutcomeNoPendingPayment, nil
	}
	if err != nil {
		return nil, nil, "", err
	}
	return b, p, "", nil
}

func (h *CardEventHandler) settleRefund(ctx context.Context, unit *support.WriteUnit, cmd CardEventCommand, now time.Time) (*CardEventResult, error) {
	p, err := unit.Payments().ByProviderRef(ctx, cmd.ProviderRef)
	if errors.Is(err, domainpayment.ErrNotFound) {
		h.logger().WarnContext(ctx, "refund event for unknown charge",
			slog.String("event_id", cmd.EventID),
			slog.String("provider_ref", cmd.ProviderRef))
		return &CardEventResult{Outcome: OutcomeNoPendingPayment}, nil
	}
	if err != nil {
		return nil, err
	}

	refunds, err := unit.Refunds().ListByPayment(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	settled := false
	refunded := int64(0)
	for _, r := range refunds {
		if r.Status == domainpayment.RefundPending && !settled {
			if err := r.MarkCompleted(cmd.ProviderRef, now); err != nil {
				return nil, err
			}
			if err := unit.Refunds().Save(ctx, r); err != nil {
				return nil, err
			}
			settled = true
		}
		if r.Status == domainpayment.RefundCompleted {
			refunded += r.Amount.Amount
		}
	}
	if !settled {
		return &CardEventResult{Outcome: OutcomeNoPendingPayment, PaymentID: string(p.ID)}, nil
	}
	if refunded >= p.Amount.Amount && p.Status == domainpayment.StatusCompleted {
		if err := p.MarkRefunded(now); err != nil {
			return nil, err
		}
		if err := unit.Payments().Save(ctx, p); err != nil {
			return nil, err
		}
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return &CardEventResult{Outcome: OutcomeRefunded, PaymentID: string(p.ID)}, nil
}

func (h *CardEventHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[CardEventCommand, *CardEventResult] = (*CardEventHandler)(nil)
