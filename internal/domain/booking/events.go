package booking

import (
	"time"

	"innkeep/internal/domain/guest"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/money"
)

type Created struct {
	BookingID BookingID
	Number    Number
	GuestID   guest.GuestID
	Range     daterange.DateRange
	Final     money.Money
	At        time.Time
}

func (e Created) EventName() string     { return "booking.created" }
func (e Created) AggregateID() string   { return string(e.BookingID) }
func (e Created) OccurredAt() time.Time { return e.At }

type Confirmed struct {
	BookingID BookingID
	Number    Number
	Range     daterange.DateRange
	Final     money.Money
	At        time.Time
}

func (e Confirmed) EventName() string     { return "booking.confirmed" }
func (e Confirmed) AggregateID() string   { return string(e.BookingID) }
func (e Confirmed) OccurredAt() time.Time { return e.At }

type CheckedIn struct {
	BookingID BookingID
	Number    Number
	At        time.Time
}

func (e CheckedIn) EventName() string     { return "booking.checked_in" }
func (e CheckedIn) AggregateID() string   { return string(e.BookingID) }
func (e CheckedIn) OccurredAt() time.Time { return e.At }

type CheckedOut struct {
	BookingID BookingID
	Number    Number
	Spent     money.Money
	At        time.Time
}

func (e CheckedOut) EventName() string     { return "booking.checked_out" }
func (e CheckedOut) AggregateID() string   { return string(e.BookingID) }
func (e CheckedOut) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID BookingID
	Number    Number
	Reason    string
	At        time.Time
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.BookingID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }

type NoShowRecorded struct {
	BookingID BookingID
	Number    Number
	At        time.Time
}

func (e NoShowRecorded) EventName() string     { return "booking.no_show" }
func (e NoShowRecorded) AggregateID() string   { return string(e.BookingID) }
func (e NoShowRecorded) OccurredAt() time.Time { return e.At }

type DatesChanged struct {
	BookingID BookingID
	Number    Number
	Range     daterange.DateRange
	Final     money.Money
	At        time.Time
}

func (e DatesChanged) EventName() string     { return "booking.dates_changed" }
func (e DatesChanged) AggregateID() string   { return string(e.BookingID) }
func (e DatesChanged) OccurredAt() time.Time { return e.At }
