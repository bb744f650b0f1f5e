package occupancy

import (
	"context"
	"fmt"
	"strings"

	"innkeep/internal/domain/booking"
	"innkeep/internal/domain/room"
	"innkeep/internal/domain/shared/daterange"
)

// Conflict names one room-date collision in caller-presentable terms.
type Conflict struct {
	RoomID     room.RoomID
	RoomNumber string
	BookingID  booking.BookingID
	Range      daterange.DateRange
}

// ConflictError reports every room that could not be claimed for the
// requested range.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "occupancy: rooms not available for the selected dates"
	}
	numbers := make([]string, 0, len(e.Conflicts))
	seen := make(map[string]struct{}, len(e.Conflicts))
	for _, c := range e.Conflicts {
		if _, ok := seen[c.RoomNumber]; ok {
			continue
		}
		seen[c.RoomNumber] = struct{}{}
		numbers = append(numbers, c.RoomNumber)
	}
	if len(numbers) == 1 {
		return fmt.Sprintf("room %s is not available for the selected dates", numbers[0])
	}
	return fmt.Sprintf("rooms %s are not available for the selected dates", strings.Join(numbers, ", "))
}

// Checker is the sole authority on room-date conflicts. It must be invoked
// inside the same transaction as the assignment write; two concurrent
// attempts on the same room and range must not both pass.
type Checker struct {
	Assignments Repository
}

// EnsureAvailable returns a *ConflictError when any of the rooms has an
// active assignment overlapping dr. Assignments of the excluded booking are
// ignored, which lets a date edit revalidate against everyone but itself.
func (c Checker) EnsureAvailable(ctx context.Context, roomIDs []room.RoomID, dr daterange.DateRange, exclude booking.BookingID) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	if len(roomIDs) == 0 {
		return nil
	}
	overlapping, err := c.Assignments.ActiveOverlapping(ctx, roomIDs, dr, exclude)
	if err != nil {
		return err
	}
	if len(overlapping) == 0 {
		return nil
	}
	conflicts := make([]Conflict, 0, len(overlapping))
	for _, a := range overlapping {
		conflicts = append(conflicts, Conflict{
			RoomID:     a.RoomID,
			RoomNumber: a.RoomNumber,
			BookingID:  a.BookingID,
			Range:      a.Range,
		})
	}
	return &ConflictError{Conflicts: conflicts}
}
