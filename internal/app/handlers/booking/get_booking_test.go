package booking

import (
	"context"
	"testing"
	"time"

	"innkeep/internal/domain/guest"
	"innkeep/internal/infra/storage/memory"
)

func TestGetBooking_IncludesGuestProfile(t *testing.T) {
	factory := memory.NewFactory()
	b := seedPendingBooking(t, factory, "bk-1", 1, decemberStay(t, 20, 23))
	g, err := guest.New(guest.CreateParams{
		ID:        b.GuestID,
		FirstName: "Malee",
		LastName:  "Srisuk",
		Email:     "malee@example.com",
		Phone:     "+66811112222",
		Now:       time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("new guest: %v", err)
	}
	if err := factory.GuestRepo.Save(context.Background(), g); err != nil {
		t.Fatalf("seed guest: %v", err)
	}

	handler := &GetBookingHandler{UoWFactory: factory}
	res, err := handler.Handle(context.Background(), GetBookingQuery{BookingID: "bk-1"})
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if res.Guest == nil {
		t.Fatal("expected the guest profile on the booking view")
	}
	if res.Guest.FirstName != "Malee" || res.Guest.LastName != "Srisuk" {
		t.Fatalf("guest profile not mapped: %+v", res.Guest)
	}
	if res.Guest.Email != "malee@example.com" {
		t.Fatalf("guest email not mapped: %+v", res.Guest)
	}
}

func TestGetBooking_MissingGuestProfileOmitted(t *testing.T) {
	factory := memory.NewFactory()
	seedPendingBooking(t, factory, "bk-1", 1, decemberStay(t, 20, 23))

	handler := &GetBookingHandler{UoWFactory: factory}
	res, err := handler.Handle(context.Background(), GetBookingQuery{BookingID: "bk-1"})
	if err != nil {
		t.Fatalf("a booking without a guest profile must still resolve: %v", err)
	}
	if res.Guest != nil {
		t.Fatalf("expected no guest profile, got %+v", res.Guest)
	}
}
