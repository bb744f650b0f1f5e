package webhook

import (
	"context"
	"time"

	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/outbox"
	domainbooking "innkeep/internal/domain/booking"
	domainpayment "innkeep/internal/domain/payment"
)

// ReconcileInput is the provider-neutral core of a settlement event.
type ReconcileInput struct {
	Succeeded   bool
	ProviderRef string
	PaidAt      time.Time
	Now         time.Time
}

// Reconcile applies one settlement to a pending payment and, when the paid
// sum covers the booking's final amount, confirms the booking. Correctness
// under duplicated and reordered delivery comes from the status guards on
// the payment and the booking, never from timestamps.
func Reconcile(ctx context.Context, unit *support.WriteUnit, b *domainbooking.Booking, p *domainpayment.Payment, in ReconcileInput, box outbox.Outbox, encoder outbox.EventEncoder) (string, error) {
	if !in.Succeeded {
		if err := p.MarkFailed(in.ProviderRef, in.Now); err != nil {
			return "", err
		}
		if err := unit.Payments().Save(ctx, p); err != nil {
			return "", err
		}
		if err := support.RecordEvents(ctx, box, encoder, p); err != nil {
			return "", err
		}
		return OutcomeFailed, nil
	}

	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = in.Now
	}
	if err := p.MarkCompleted(in.ProviderRef, paidAt, in.Now); err != nil {
		return "", err
	}
	if err := unit.Payments().Save(ctx, p); err != nil {
		return "", err
	}

	payments, err := unit.Payments().ListByBooking(ctx, b.ID)
	if err != nil {
		return "", err
	}
	paid := domainpayment.SumCompleted(payments, b.Price.Final.Currency)
	if paid.Amount >= b.Price.Final.Amount && b.Status == domainbooking.StatusPending {
		if err := b.Confirm(in.Now); err != nil {
			return "", err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return "", err
		}
	}
	if err := support.RecordEvents(ctx, box, encoder, p, b); err != nil {
		return "", err
	}
	return OutcomeCompleted, nil
}
