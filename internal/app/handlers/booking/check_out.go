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

const checkOutKey = "booking.check_out"

type CheckOutCommand struct {
	BookingID string
}

func (c CheckOutCommand) Key() string { return checkOutKey }

type CheckOutResult struct {
	BookingID      string    `json:"booking_id"`
	Status         string    `json:"status"`
	ActualCheckOut time.Time `json:"actual_check_out"`
}

type CheckOutHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CheckOutHandler) Handle(ctx context.Context, cmd CheckOutCommand) (*CheckOutResult, error) {
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
	if err := b.CheckOut(now); err != nil {
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
		if err := a.MarkCheckedOut(now); err != nil {
			return nil, err
		}
		if err := unit.Assignments().Save(ctx, a); err != nil {
			return nil, err
		}
		if err := setRoomStatus(ctx, unit, a.RoomID, room.StatusCleaning, now); err != nil {
			return nil, err
		}
	}

	g, err := unit.Guests().ByID(ctx, b.GuestID)
	if err != nil {
		return nil, err
	}
	if err := g.RecordStay(b.Price.Final, now); err != nil {
		return nil, err
	}
	if err := unit.Guests().Save(ctx, g); err != nil {
		return nil, err
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
	return &CheckOutResult{
		BookingID:      string(b.ID),
		Status:         string(b.Status),
		ActualCheckOut: *b.ActualCheckOut,
	}, nil
}

var _ commands.Handler[CheckOutCommand, *CheckOutResult] = (*CheckOutHandler)(nil)
