package booking

import (
	"context"
	"time"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	"innkeep/internal/domain/room"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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
	if err := b.Cancel(cmd.Reason, now); err != nil {
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
	return &CancelBookingResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

// releaseRoom flips the room back to AVAILABLE unless some other booking's
// active assignment covers the room right now.
func releaseRoom(ctx context.Context, unit *support.WriteUnit, id room.RoomID, now time.Time) error {
	occupied, err := unit.Assignments().ActiveForRoomAt(ctx, id, now)
	if err != nil {
		return err
	}
	if len(occupied) > 0 {
		return nil
	}
	return setRoomStatus(ctx, unit, id, room.StatusAvailable, now)
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
