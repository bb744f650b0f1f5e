package booking

import (
	"errors"
	"testing"
	"time"

	"innkeep/internal/domain/guest"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/money"
)

func testBooking(t *testing.T) *Booking {
	t.Helper()
	now := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	dr, err := daterange.New(
		time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	price, err := pricing.DirectBookingPricing{}.Calculate(pricing.Input{
		NightlyRate: money.THB(250000),
		Nights:      dr.Nights(),
		Rooms:       1,
	})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	b, err := New(CreateParams{
		ID:      "bk-1",
		Number:  FormatNumber(now, 1),
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
	return b
}

func TestFormatNumber(t *testing.T) {
	n := FormatNumber(time.Date(2025, 12, 20, 23, 59, 0, 0, time.UTC), 7)
	if n != "BK202512200007" {
		t.Fatalf("expected BK202512200007, got %s", n)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("formatted number must validate: %v", err)
	}
}

func TestNumberValidate_Malformed(t *testing.T) {
	for _, n := range []Number{"", "BK2025", "XX202512200007", "BK20251320ABCD", "BK999913200001"} {
		if err := n.Validate(); !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("%q: expected ErrInvalidNumber, got %v", n, err)
		}
	}
}

func TestNew_StartsPending(t *testing.T) {
	b := testBooking(t)
	if b.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", b.Status)
	}
}

func TestNew_RequiresAdults(t *testing.T) {
	dr, _ := daterange.New(
		time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC),
	)
	_, err := New(CreateParams{
		ID:      "bk-2",
		Number:  FormatNumber(time.Now(), 1),
		GuestID: guest.GuestID("g-1"),
		Range:   dr,
		Adults:  0,
		Now:     time.Now(),
	})
	if !errors.Is(err, ErrInvalidGuests) {
		t.Fatalf("expected ErrInvalidGuests, got %v", err)
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	b := testBooking(t)
	now := time.Date(2025, 12, 20, 14, 0, 0, 0, time.UTC)

	if err := b.Confirm(now); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := b.CheckIn(now); err != nil {
		t.Fatalf("check in: %v", err)
	}
	if b.ActualCheckIn == nil || !b.ActualCheckIn.Equal(now) {
		t.Fatalf("actual check-in not recorded")
	}
	out := now.Add(72 * time.Hour)
	if err := b.CheckOut(out); err != nil {
		t.Fatalf("check out: %v", err)
	}
	if b.Status != StatusCheckedOut {
		t.Fatalf("expected CHECKED_OUT, got %s", b.Status)
	}
	if len(b.PendingEvents()) != 3 {
		t.Fatalf("expected 3 recorded events, got %d", len(b.PendingEvents()))
	}
}

func TestCheckIn_RequiresConfirmed(t *testing.T) {
	b := testBooking(t)
	if err := b.CheckIn(time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("check-in from PENDING must fail, got %v", err)
	}
}

func TestCheckOut_RequiresCheckedIn(t *testing.T) {
	b := testBooking(t)
	_ = b.Confirm(time.Now())
	if err := b.CheckOut(time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("check-out from CONFIRMED must fail, got %v", err)
	}
}

func TestCancel_TerminalStatesRejected(t *testing.T) {
	b := testBooking(t)
	now := time.Now()
	_ = b.Confirm(now)
	_ = b.CheckIn(now)
	_ = b.CheckOut(now)
	if err := b.Cancel("change of plans", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel after check-out must fail, got %v", err)
	}
}

func TestCancel_CheckedInRejected(t *testing.T) {
	b := testBooking(t)
	now := time.Now()
	_ = b.Confirm(now)
	_ = b.CheckIn(now)
	if err := b.Cancel("oops", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel of an in-house stay must fail, got %v", err)
	}
}

func TestMarkNoShow_TerminalRejected(t *testing.T) {
	b := testBooking(t)
	now := time.Now()
	_ = b.Cancel("gone", now)
	if err := b.MarkNoShow(now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("no-show after cancellation must fail, got %v", err)
	}
}

func TestChangeDates_AfterCheckInRejected(t *testing.T) {
	b := testBooking(t)
	now := time.Now()
	_ = b.Confirm(now)
	_ = b.CheckIn(now)
	dr, _ := daterange.New(
		time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC),
	)
	if err := b.ChangeDates(dr, b.Price, now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("date edit after check-in must fail, got %v", err)
	}
}

func TestValidateCheckIn_PastDateRejected(t *testing.T) {
	now := time.Date(2025, 12, 20, 12, 0, 0, 0, time.UTC)
	dr, _ := daterange.New(
		time.Date(2025, 12, 19, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC),
	)
	if err := ValidateCheckIn(dr, now); !errors.Is(err, ErrCheckInInPast) {
		t.Fatalf("expected ErrCheckInInPast, got %v", err)
	}
	sameDay, _ := daterange.New(
		time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC),
	)
	if err := ValidateCheckIn(sameDay, now); err != nil {
		t.Fatalf("same-day check-in must pass, got %v", err)
	}
}
