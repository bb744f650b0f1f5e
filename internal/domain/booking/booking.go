package booking

import (
	"context"
	"errors"
	"time"

	"innkeep/internal/domain/guest"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/events"
)

var (
	ErrNotFound      = errors.New("booking: not found")
	ErrInvalidState  = errors.New("booking: invalid state transition")
	ErrInvalidGuests = errors.New("booking: adult count must be positive")
	ErrCheckInInPast = errors.New("booking: check-in date is in the past")
	ErrNoActiveRooms = errors.New("booking: no active room assignment")
)

type BookingID string

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

// Terminal reports whether no further transition is allowed from s.
func Terminal(s Status) bool {
	switch s {
	case StatusCheckedOut, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Booking is the reservation aggregate. It is never deleted; cancellation is
// a terminal status, not removal.
type Booking struct {
	ID              BookingID
	Number          Number
	GuestID         guest.GuestID
	Range           daterange.DateRange
	Adults          int
	Children        int
	Price           pricing.Breakdown
	Status          Status
	ActualCheckIn   *time.Time
	ActualCheckOut  *time.Time
	Notes           string
	SpecialRequests string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ByNumber(ctx context.Context, number Number) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	ListByGuest(ctx context.Context, guestID guest.GuestID) ([]*Booking, error)
	// NextSequence hands out the next daily counter for booking numbers.
	NextSequence(ctx context.Context, day time.Time) (int, error)
}

type CreateParams struct {
	ID              BookingID
	Number          Number
	GuestID         guest.GuestID
	Range           daterange.DateRange
	Adults          int
	Children        int
	Price           pricing.Breakdown
	Notes           string
	SpecialRequests string
	Now             time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.Adults <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, errors.New("booking: guest id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if err := params.Number.Validate(); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	b := &Booking{
		ID:              params.ID,
		Number:          params.Number,
		GuestID:         params.GuestID,
		Range:           params.Range,
		Adults:          params.Adults,
		Children:        params.Children,
		Price:           params.Price,
		Status:          StatusPending,
		Notes:           params.Notes,
		SpecialRequests: params.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.Record(Created{BookingID: b.ID, Number: b.Number, GuestID: b.GuestID, Range: b.Range, Final: b.Price.Final, At: now})
	return b, nil
}

// ValidateCheckIn rejects stays starting before today.
func ValidateCheckIn(dr daterange.DateRange, now time.Time) error {
	if dr.CheckIn.Before(daterange.Normalize(now)) {
		return ErrCheckInInPast
	}
	return nil
}

// Confirm marks the booking room-assigned. Callers run the availability gate
// first; this method only enforces the state machine.
func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(Confirmed{BookingID: b.ID, Number: b.Number, Range: b.Range, Final: b.Price.Final, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckIn(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	at := now.UTC()
	b.Status = StatusCheckedIn
	b.ActualCheckIn = &at
	b.UpdatedAt = at
	b.Record(CheckedIn{BookingID: b.ID, Number: b.Number, At: at})
	return nil
}

func (b *Booking) CheckOut(now time.Time) error {
	if b.Status != StatusCheckedIn {
		return ErrInvalidState
	}
	at := now.UTC()
	b.Status = StatusCheckedOut
	b.ActualCheckOut = &at
	b.UpdatedAt = at
	b.Record(CheckedOut{BookingID: b.ID, Number: b.Number, Spent: b.Price.Final, At: at})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(Cancelled{BookingID: b.ID, Number: b.Number, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) MarkNoShow(now time.Time) error {
	if Terminal(b.Status) {
		return ErrInvalidState
	}
	b.Status = StatusNoShow
	b.UpdatedAt = now.UTC()
	b.Record(NoShowRecorded{BookingID: b.ID, Number: b.Number, At: b.UpdatedAt})
	return nil
}

// ChangeDates swaps the stay range and the recomputed price. The caller must
// have re-run the availability check, excluding this booking's own
// assignments, before committing.
func (b *Booking) ChangeDates(dr daterange.DateRange, price pricing.Breakdown, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidState
	}
	if err := dr.Validate(); err != nil {
		return err
	}
	b.Range = dr
	b.Price = price
	b.UpdatedAt = now.UTC()
	b.Record(DatesChanged{BookingID: b.ID, Number: b.Number, Range: dr, Final: price.Final, At: b.UpdatedAt})
	return nil
}

// ExpectedRooms infers the room count from the price when the assignment
// request does not state one. Fragile under rounding and kept only as a
// fallback for older clients; prefer the explicit field.
func (b *Booking) ExpectedRooms() int {
	nights := int64(b.Price.Nights)
	if nights <= 0 || b.Price.NightlyRate.Amount <= 0 {
		return 0
	}
	perRoom := b.Price.NightlyRate.Amount * nights
	if perRoom <= 0 {
		return 0
	}
	return int(b.Price.Subtotal.Amount / perRoom)
}
