package daterange

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_RejectsInvertedRange(t *testing.T) {
	_, err := New(day(2025, 12, 23), day(2025, 12, 20))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestNew_RejectsZeroNights(t *testing.T) {
	_, err := New(day(2025, 12, 20), day(2025, 12, 20))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestNew_NormalizesTimeOfDay(t *testing.T) {
	dr, err := New(
		time.Date(2025, 12, 20, 15, 30, 0, 0, time.UTC),
		time.Date(2025, 12, 23, 11, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dr.CheckIn.Equal(day(2025, 12, 20)) || !dr.CheckOut.Equal(day(2025, 12, 23)) {
		t.Fatalf("expected midnight bounds, got %v / %v", dr.CheckIn, dr.CheckOut)
	}
	if dr.Nights() != 3 {
		t.Fatalf("expected 3 nights, got %d", dr.Nights())
	}
}

func TestOverlaps_TouchingBoundariesDoNotConflict(t *testing.T) {
	a, _ := New(day(2025, 12, 20), day(2025, 12, 23))
	b, _ := New(day(2025, 12, 23), day(2025, 12, 25))
	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatalf("checkout day must be free for a same-day checkin")
	}
}

func TestOverlaps_PartialIntersection(t *testing.T) {
	a, _ := New(day(2025, 12, 20), day(2025, 12, 23))
	b, _ := New(day(2025, 12, 22), day(2025, 12, 25))
	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatalf("ranges sharing the night of the 22nd must conflict")
	}
}

func TestOverlaps_Containment(t *testing.T) {
	outer, _ := New(day(2025, 12, 1), day(2025, 12, 31))
	inner, _ := New(day(2025, 12, 10), day(2025, 12, 12))
	if !outer.Overlaps(inner) || !inner.Overlaps(outer) {
		t.Fatalf("contained range must conflict in both directions")
	}
}

func TestContainsDate(t *testing.T) {
	dr, _ := New(day(2025, 12, 20), day(2025, 12, 23))
	if !dr.ContainsDate(day(2025, 12, 20)) {
		t.Fatalf("check-in day is inside the interval")
	}
	if !dr.ContainsDate(day(2025, 12, 22)) {
		t.Fatalf("last night is inside the interval")
	}
	if dr.ContainsDate(day(2025, 12, 23)) {
		t.Fatalf("checkout day is outside the half-open interval")
	}
}
