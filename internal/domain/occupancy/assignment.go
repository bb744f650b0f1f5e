package occupancy

import (
	"context"
	"errors"
	"time"

	"innkeep/internal/domain/booking"
	"innkeep/internal/domain/room"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/money"
)

var (
	ErrNotFound     = errors.New("occupancy: assignment not found")
	ErrInvalidState = errors.New("occupancy: invalid assignment transition")
)

type AssignmentID string

type Status string

const (
	StatusAssigned   Status = "ASSIGNED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
)

// Active reports whether the assignment blocks the room for its range.
// Cancelled and checked-out assignments never conflict.
func (s Status) Active() bool {
	return s == StatusAssigned || s == StatusCheckedIn
}

// Assignment links one room to one booking for a date sub-range. The rate
// and the room number are copied at assignment time so historical bookings
// are immune to later catalog changes. Assignments are never deleted, only
// cancelled.
type Assignment struct {
	ID         AssignmentID
	RoomID     room.RoomID
	RoomNumber string
	BookingID  booking.BookingID
	Range      daterange.DateRange
	Rate       money.Money
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository is the ledger: the sole authority on room-date occupancy.
type Repository interface {
	ByBooking(ctx context.Context, id booking.BookingID) ([]*Assignment, error)
	// ActiveOverlapping returns active assignments for any of the rooms whose
	// range intersects dr. Assignments belonging to exclude are skipped; pass
	// an empty id to exclude nothing. Implementations must run this inside
	// the caller's transaction so the check and the subsequent write are
	// atomic.
	ActiveOverlapping(ctx context.Context, roomIDs []room.RoomID, dr daterange.DateRange, exclude booking.BookingID) ([]*Assignment, error)
	// ActiveForRoomAt returns active assignments for the room whose range
	// covers the given instant.
	ActiveForRoomAt(ctx context.Context, roomID room.RoomID, at time.Time) ([]*Assignment, error)
	Save(ctx context.Context, a *Assignment) error
}

type NewAssignmentParams struct {
	ID        AssignmentID
	Room      *room.Room
	BookingID booking.BookingID
	Range     daterange.DateRange
	Rate      money.Money
	Now       time.Time
}

func NewAssignment(params NewAssignmentParams) (*Assignment, error) {
	if params.Room == nil {
		return nil, errors.New("occupancy: room required")
	}
	if params.BookingID == "" {
		return nil, errors.New("occupancy: booking id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	return &Assignment{
		ID:         params.ID,
		RoomID:     params.Room.ID,
		RoomNumber: params.Room.Number,
		BookingID:  params.BookingID,
		Range:      params.Range,
		Rate:       params.Rate,
		Status:     StatusAssigned,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (a *Assignment) MarkCheckedIn(now time.Time) error {
	if a.Status != StatusAssigned {
		return ErrInvalidState
	}
	a.Status = StatusCheckedIn
	a.UpdatedAt = now.UTC()
	return nil
}

func (a *Assignment) MarkCheckedOut(now time.Time) error {
	if a.Status != StatusCheckedIn {
		return ErrInvalidState
	}
	a.Status = StatusCheckedOut
	a.UpdatedAt = now.UTC()
	return nil
}

// Cancel releases the room-date claim. Allowed from any active status.
func (a *Assignment) Cancel(now time.Time) error {
	if !a.Status.Active() {
		return ErrInvalidState
	}
	a.Status = StatusCancelled
	a.UpdatedAt = now.UTC()
	return nil
}
