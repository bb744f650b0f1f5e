package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	domainbooking "innkeep/internal/domain/booking"
	"innkeep/internal/domain/guest"
	"innkeep/internal/domain/occupancy"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/room"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/infra/storage/memory"
)

func seedRooms(t *testing.T, factory memory.Factory, rooms ...*room.Room) {
	t.Helper()
	ctx := context.Background()
	if err := factory.RoomRepo.SaveType(ctx, &room.RoomType{
		ID:          "deluxe",
		Name:        room.BilingualText{EN: "Deluxe", TH: "ดีลักซ์"},
		NightlyRate: money.THB(250000),
		Capacity:    2,
	}); err != nil {
		t.Fatalf("seed room type: %v", err)
	}
	for _, rm := range rooms {
		rm.TypeID = "deluxe"
		rm.Status = room.StatusAvailable
		if err := factory.RoomRepo.Save(ctx, rm); err != nil {
			t.Fatalf("seed room %s: %v", rm.Number, err)
		}
	}
}

func room101() *room.Room {
	return &room.Room{ID: "room-101", Number: "101", Floor: 1}
}

var bookingSeq int

func seedPendingBooking(t *testing.T, factory memory.Factory, id string, roomCount int, dr daterange.DateRange) *domainbooking.Booking {
	t.Helper()
	bookingSeq++
	price, err := pricing.DirectBookingPricing{}.Calculate(pricing.Input{
		NightlyRate: money.THB(250000),
		Nights:      dr.Nights(),
		Rooms:       roomCount,
	})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	now := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:      domainbooking.BookingID(id),
		Number:  domainbooking.FormatNumber(now, bookingSeq),
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

func decemberStay(t *testing.T, fromDay, toDay int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2025, 12, fromDay, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, toDay, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return dr
}

func TestAssignRooms_ConfirmsBooking(t *testing.T) {
	factory := memory.NewFactory()
	seedRooms(t, factory,
		&room.Room{ID: "room-101", Number: "101", Floor: 1},
		&room.Room{ID: "room-102", Number: "102", Floor: 1},
	)
	seedPendingBooking(t, factory, "bk-1", 2, decemberStay(t, 20, 23))

	handler := &AssignRoomsHandler{UoWFactory: factory}
	res, err := handler.Handle(context.Background(), AssignRoomsCommand{
		BookingID: "bk-1",
		RoomIDs:   []string{"room-101", "room-102"},
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if res.Status != string(domainbooking.StatusConfirmed) {
		t.Fatalf("expected CONFIRMED, got %s", res.Status)
	}
	if len(res.Rooms) != 2 {
		t.Fatalf("expected 2 assigned rooms, got %v", res.Rooms)
	}

	assignments, err := factory.AssignmentRepo.ByBooking(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(assignments))
	}
	for _, a := range assignments {
		if a.Status != occupancy.StatusAssigned {
			t.Fatalf("expected ASSIGNED, got %s", a.Status)
		}
		if a.Rate.Amount != 250000 {
			t.Fatalf("rate must be copied from the room type, got %d", a.Rate.Amount)
		}
	}
}

func TestAssignRooms_AllOrNothingOnConflict(t *testing.T) {
	factory := memory.NewFactory()
	seedRooms(t, factory,
		&room.Room{ID: "room-101", Number: "101", Floor: 1},
		&room.Room{ID: "room-102", Number: "102", Floor: 1},
	)
	blocker := seedPendingBooking(t, factory, "bk-prior", 1, decemberStay(t, 20, 23))
	handler := &AssignRoomsHandler{UoWFactory: factory}
	if _, err := handler.Handle(context.Background(), AssignRoomsCommand{
		BookingID: string(blocker.ID),
		RoomIDs:   []string{"room-102"},
	}); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	seedPendingBooking(t, factory, "bk-2", 2, decemberStay(t, 22, 25))
	_, err := handler.Handle(context.Background(), AssignRoomsCommand{
		BookingID: "bk-2",
		RoomIDs:   []string{"room-101", "room-102"},
	})
	var conflict *occupancy.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(conflict.Conflicts) != 1 || conflict.Conflicts[0].RoomNumber != "102" {
		t.Fatalf("conflict must name room 102: %+v", conflict.Conflicts)
	}

	assignments, err := factory.AssignmentRepo.ByBooking(context.Background(), "bk-2")
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(assignments) != 0 {
		t.Fatalf("no rows may be written on a failed claim, got %d", len(assignments))
	}
	b, err := factory.BookingRepo.ByID(context.Background(), "bk-2")
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if b.Status != domainbooking.StatusPending {
		t.Fatalf("booking must stay PENDING, got %s", b.Status)
	}
}

func TestAssignRooms_PaymentConfirmedBookingAccepted(t *testing.T) {
	factory := memory.NewFactory()
	seedRooms(t, factory, room101())
	b := seedPendingBooking(t, factory, "bk-1", 1, decemberStay(t, 20, 23))
	if err := b.Confirm(time.Now()); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	b.ClearEvents()
	if err := factory.BookingRepo.Save(context.Background(), b); err != nil {
		t.Fatalf("save: %v", err)
	}

	handler := &AssignRoomsHandler{UoWFactory: factory}
	res, err := handler.Handle(context.Background(), AssignRoomsCommand{
		BookingID: "bk-1",
		RoomIDs:   []string{"room-101"},
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if res.Status != string(domainbooking.StatusConfirmed) {
		t.Fatalf("status must stay CONFIRMED, got %s", res.Status)
	}
}

func TestAssignRooms_SecondAssignmentRejected(t *testing.T) {
	factory := memory.NewFactory()
	seedRooms(t, factory, room101())
	seedPendingBooking(t, factory, "bk-1", 1, decemberStay(t, 20, 23))

	handler := &AssignRoomsHandler{UoWFactory: factory}
	cmd := AssignRoomsCommand{BookingID: "bk-1", RoomIDs: []string{"room-101"}}
	if _, err := handler.Handle(context.Background(), cmd); err != nil {
		t.Fatalf("first assignment: %v", err)
	}
	if _, err := handler.Handle(context.Background(), cmd); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
}

func TestAssignRooms_RejectsTerminalBooking(t *testing.T) {
	factory := memory.NewFactory()
	seedRooms(t, factory, room101())
	b := seedPendingBooking(t, factory, "bk-1", 1, decemberStay(t, 20, 23))
	_ = b.Cancel("guest withdrew", time.Now())
	if err := factory.BookingRepo.Save(context.Background(), b); err != nil {
		t.Fatalf("save: %v", err)
	}

	handler := &AssignRoomsHandler{UoWFactory: factory}
	_, err := handler.Handle(context.Background(), AssignRoomsCommand{
		BookingID: "bk-1",
		RoomIDs:   []string{"room-101"},
	})
	if !errors.Is(err, domainbooking.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestAssignRooms_RoomCountMustMatchPrice(t *testing.T) {
	factory := memory.NewFactory()
	seedRooms(t, factory, room101())
	seedPendingBooking(t, factory, "bk-1", 2, decemberStay(t, 20, 23))

	handler := &AssignRoomsHandler{UoWFactory: factory}
	_, err := handler.Handle(context.Background(), AssignRoomsCommand{
		BookingID: "bk-1",
		RoomIDs:   []string{"room-101"},
	})
	if !errors.Is(err, ErrRoomCountMismatch) {
		t.Fatalf("expected ErrRoomCountMismatch, got %v", err)
	}
}
