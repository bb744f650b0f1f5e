package booking

import (
	"context"
	"time"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	"innkeep/internal/domain/occupancy"
	"innkeep/internal/domain/room"
)

const checkInKey = "booking.check_in"

type CheckInCommand struct {
	BookingID string
}

func (c CheckInCommand) Key() string { return checkInKey }

type CheckInResult struct {
	BookingID     string    `json:"booking_id"`
	Status        string    `json:"status"`
	ActualCheckIn time.Time `json:"actual_check_in"`
}

type CheckInHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CheckInHandler) Handle(ctx context.Context, cmd CheckInCommand) (*CheckInResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}

	assignments, err := unit.Assignments().ByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	active := activeAssignments(assignments)
	if len(active) == 0 {
		return nil, domainbooking.ErrNoActiveRooms
	}

	now := time.Now().UTC()
	if err := b.CheckIn(now); err != nil {
		return nil, err
	}

	for _, a := range active {
		if err := a.MarkCheckedIn(now); err != nil {
			return nil, err
		}
		if err := unit.Assignments().Save(ctx, a); err != nil {
			return nil, err
		}
		if err := setRoomStatus(ctx, unit, a.RoomID, room.StatusOccupied, now); err != nil {
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
	return &CheckInResult{
		BookingID:     string(b.ID),
		Status:        string(b.Status),
		ActualCheckIn: *b.ActualCheckIn,
	}, nil
}

func activeAssignments(assignments []*occupancy.Assignment) []*occupancy.Assignment {
	active := make([]*occupancy.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.Status.Active() {
			active = append(active, a)
		}
	}
	return active
}

func setRoomStatus(ctx context.Context, unit *support.WriteUnit, id room.RoomID, status room.Status, now time.Time) error {
	rm, err := unit.Rooms().ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := rm.SetStatus(status, now); err != nil {
		return err
	}
	return unit.Rooms().Save(ctx, rm)
}

var _ commands.Handler[CheckInCommand, *CheckInResult] = (*CheckInHandler)(nil)
