package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	domainbooking "innkeep/internal/domain/booking"
	"innkeep/internal/domain/occupancy"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/infra/storage/memory"
)

// futureStay builds a range offset from today so check-in validation passes.
func futureStay(t *testing.T, offsetDays, nights int) daterange.DateRange {
	t.Helper()
	start := daterange.Normalize(time.Now().UTC()).AddDate(0, 0, 30+offsetDays)
	dr, err := daterange.New(start, start.AddDate(0, 0, nights))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return dr
}

func confirmWithRoom(t *testing.T, factory memory.Factory, bookingID, roomID string, dr daterange.DateRange) *domainbooking.Booking {
	t.Helper()
	b := seedPendingBooking(t, factory, bookingID, 1, dr)
	assign := &AssignRoomsHandler{UoWFactory: factory}
	if _, err := assign.Handle(context.Background(), AssignRoomsCommand{
		BookingID: bookingID,
		RoomIDs:   []string{roomID},
	}); err != nil {
		t.Fatalf("assign %s: %v", bookingID, err)
	}
	return b
}

func TestEditDates_OwnAssignmentNeverConflicts(t *testing.T) {
	factory := memory.NewFactory()
	seedRooms(t, factory, room101())
	dr := futureStay(t, 0, 3)
	b := confirmWithRoom(t, factory, "bk-1", "room-101", dr)

	// Shift by one night into a range overlapping the current claim.
	next := futureStay(t, 1, 3)
	handler := &EditDatesHandler{UoWFactory: factory}
	res, err := handler.Handle(context.Background(), EditDatesCommand{
		BookingID: "bk-1",
		CheckIn:   next.CheckIn,
		CheckOut:  next.CheckOut,
	})
	if err != nil {
		t.Fatalf("edit dates: %v", err)
	}
	if !res.CheckIn.Equal(next.CheckIn) || !res.CheckOut.Equal(next.CheckOut) {
		t.Fatalf("range not moved: %+v", res)
	}

	assignments, err := factory.AssignmentRepo.ByBooking(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(assignments) != 1 || !assignments[0].Range.CheckIn.Equal(next.CheckIn) {
		t.Fatalf("assignment must follow the booking: %+v", assignments)
	}
}

func TestEditDates_RepricesWithStoredMode(t *testing.T) {
	factory := memory.NewFactory()
	seedRooms(t, factory, room101())
	b := confirmWithRoom(t, factory, "bk-1", "room-101", futureStay(t, 0, 3))
	perNight := b.Price.Final.Amount / 3

	longer := futureStay(t, 0, 5)
	handler := &EditDatesHandler{UoWFactory: factory}
	res, err := handler.Handle(context.Background(), EditDatesCommand{
		BookingID: "bk-1",
		CheckIn:   longer.CheckIn,
		CheckOut:  longer.CheckOut,
	})
	if err != nil {
		t.Fatalf("edit dates: %v", err)
	}
	if res.Final != perNight*5 {
		t.Fatalf("expected %d for 5 nights, got %d", perNight*5, res.Final)
	}
}

func TestEditDates_OtherBookingBlocksMove(t *testing.T) {
	factory := memory.NewFactory()
	seedRooms(t, factory, room101())
	confirmWithRoom(t, factory, "bk-1", "room-101", futureStay(t, 0, 3))
	confirmWithRoom(t, factory, "bk-2", "room-101", futureStay(t, 3, 3))

	handler := &EditDatesHandler{UoWFactory: factory}
	_, err := handler.Handle(context.Background(), EditDatesCommand{
		BookingID: "bk-1",
		CheckIn:   futureStay(t, 2, 3).CheckIn,
		CheckOut:  futureStay(t, 2, 3).CheckOut,
	})
	var conflict *occupancy.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	b, err := factory.BookingRepo.ByID(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !b.Range.CheckIn.Equal(futureStay(t, 0, 3).CheckIn) {
		t.Fatalf("failed edit must not move the booking: %+v", b.Range)
	}
}

func TestEditDates_PastCheckInRejected(t *testing.T) {
	factory := memory.NewFactory()
	seedRooms(t, factory, room101())
	confirmWithRoom(t, factory, "bk-1", "room-101", futureStay(t, 0, 3))

	handler := &EditDatesHandler{UoWFactory: factory}
	yesterday := daterange.Normalize(time.Now().UTC()).AddDate(0, 0, -1)
	_, err := handler.Handle(context.Background(), EditDatesCommand{
		BookingID: "bk-1",
		CheckIn:   yesterday,
		CheckOut:  yesterday.AddDate(0, 0, 2),
	})
	if !errors.Is(err, domainbooking.ErrCheckInInPast) {
		t.Fatalf("expected ErrCheckInInPast, got %v", err)
	}
}
