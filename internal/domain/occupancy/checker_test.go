package occupancy

import (
	"context"
	"errors"
	"testing"
	"time"

	"innkeep/internal/domain/booking"
	"innkeep/internal/domain/room"
	"innkeep/internal/domain/shared/daterange"
)

// fakeLedger is an in-memory Repository good enough for checker tests.
type fakeLedger struct {
	assignments []*Assignment
}

func (f *fakeLedger) ByBooking(_ context.Context, id booking.BookingID) ([]*Assignment, error) {
	var out []*Assignment
	for _, a := range f.assignments {
		if a.BookingID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeLedger) ActiveOverlapping(_ context.Context, roomIDs []room.RoomID, dr daterange.DateRange, exclude booking.BookingID) ([]*Assignment, error) {
	rooms := make(map[room.RoomID]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		rooms[id] = struct{}{}
	}
	var out []*Assignment
	for _, a := range f.assignments {
		if _, ok := rooms[a.RoomID]; !ok {
			continue
		}
		if exclude != "" && a.BookingID == exclude {
			continue
		}
		if a.Status.Active() && a.Range.Overlaps(dr) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeLedger) ActiveForRoomAt(_ context.Context, roomID room.RoomID, at time.Time) ([]*Assignment, error) {
	var out []*Assignment
	for _, a := range f.assignments {
		if a.RoomID == roomID && a.Status.Active() && a.Range.ContainsDate(at) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeLedger) Save(_ context.Context, a *Assignment) error {
	f.assignments = append(f.assignments, a)
	return nil
}

func stay(t *testing.T, fromDay, toDay int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2025, 12, fromDay, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, toDay, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("range %d-%d: %v", fromDay, toDay, err)
	}
	return dr
}

func assignedRoom101(t *testing.T, status Status) *Assignment {
	t.Helper()
	a := &Assignment{
		ID:         "as-1",
		RoomID:     "room-101",
		RoomNumber: "101",
		BookingID:  "bk-prior",
		Range:      stay(t, 20, 23),
		Status:     status,
	}
	return a
}

func TestEnsureAvailable_OverlapRejected(t *testing.T) {
	ledger := &fakeLedger{assignments: []*Assignment{assignedRoom101(t, StatusAssigned)}}
	checker := Checker{Assignments: ledger}

	err := checker.EnsureAvailable(context.Background(), []room.RoomID{"room-101"}, stay(t, 22, 25), "")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(conflict.Conflicts) != 1 || conflict.Conflicts[0].RoomNumber != "101" {
		t.Fatalf("conflict must name room 101: %+v", conflict.Conflicts)
	}
	if conflict.Error() != "room 101 is not available for the selected dates" {
		t.Fatalf("unexpected message: %s", conflict.Error())
	}
}

func TestEnsureAvailable_BackToBackStaysAllowed(t *testing.T) {
	ledger := &fakeLedger{assignments: []*Assignment{assignedRoom101(t, StatusAssigned)}}
	checker := Checker{Assignments: ledger}

	if err := checker.EnsureAvailable(context.Background(), []room.RoomID{"room-101"}, stay(t, 23, 25), ""); err != nil {
		t.Fatalf("checkout day must be bookable: %v", err)
	}
}

func TestEnsureAvailable_CancelledAssignmentIgnored(t *testing.T) {
	ledger := &fakeLedger{assignments: []*Assignment{assignedRoom101(t, StatusCancelled)}}
	checker := Checker{Assignments: ledger}

	if err := checker.EnsureAvailable(context.Background(), []room.RoomID{"room-101"}, stay(t, 21, 24), ""); err != nil {
		t.Fatalf("cancelled assignments must not block: %v", err)
	}
}

func TestEnsureAvailable_ExcludesOwnBooking(t *testing.T) {
	ledger := &fakeLedger{assignments: []*Assignment{assignedRoom101(t, StatusAssigned)}}
	checker := Checker{Assignments: ledger}

	if err := checker.EnsureAvailable(context.Background(), []room.RoomID{"room-101"}, stay(t, 21, 26), "bk-prior"); err != nil {
		t.Fatalf("own assignments must be excluded during a date edit: %v", err)
	}
}

func TestEnsureAvailable_ReportsEveryConflictingRoom(t *testing.T) {
	second := assignedRoom101(t, StatusAssigned)
	second.ID = "as-2"
	second.RoomID = "room-102"
	second.RoomNumber = "102"
	ledger := &fakeLedger{assignments: []*Assignment{assignedRoom101(t, StatusAssigned), second}}
	checker := Checker{Assignments: ledger}

	err := checker.EnsureAvailable(context.Background(), []room.RoomID{"room-101", "room-102"}, stay(t, 20, 22), "")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(conflict.Conflicts) != 2 {
		t.Fatalf("expected both rooms reported, got %d", len(conflict.Conflicts))
	}
}
