package booking

import (
	"context"
	"time"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
)

const noShowKey = "booking.no_show"

// NoShowCommand is a staff action against a guest who never arrived. Room
// claims are released the same way a cancellation releases them.
type NoShowCommand struct {
	BookingID string
}

func (c NoShowCommand) Key() string { return noShowKey }

type NoShowResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type NoShowHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *NoShowHandler) Handle(ctx context.Context, cmd NoShowCommand) (*NoShowResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := b.MarkNoShow(now); err != nil {
		return nil, err
	}

	assignments, err := unit.Assignments().ByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		if !a.Status.Active() {
			continue
		}
		if err := a.Cancel(now); err != nil {
			return nil, err
		}
		if err := unit.Assignments().Save(ctx, a); err != nil {
			return nil, err
		}
		if err := releaseRoom(ctx, unit, a.RoomID, now); err != nil {
			return nil, err
		}
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, b); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return &NoShowResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

var _ commands.Handler[NoShowCommand, *NoShowResult] = (*NoShowHandler)(nil)
