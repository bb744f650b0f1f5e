package pricing

import (
	"errors"
	"testing"

	"innkeep/internal/domain/shared/money"
)

func TestDirectPricing_AddsTaxAndServiceOnTop(t *testing.T) {
	// 2,500 THB a night for 3 nights, one room.
	in := Input{
		NightlyRate: money.THB(250000),
		Nights:      3,
		Rooms:       1,
	}
	bd, err := DirectBookingPricing{}.Calculate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.Subtotal.Amount != 750000 {
		t.Fatalf("expected subtotal 750000 satang, got %d", bd.Subtotal.Amount)
	}
	if bd.Tax.Amount != 75000 {
		t.Fatalf("expected 10%% tax of 75000, got %d", bd.Tax.Amount)
	}
	if bd.ServiceCharge.Amount != 52500 {
		t.Fatalf("expected 7%% service charge of 52500, got %d", bd.ServiceCharge.Amount)
	}
	if bd.Final.Amount != 877500 {
		t.Fatalf("expected final 877500, got %d", bd.Final.Amount)
	}
}

func TestDirectPricing_DiscountReducesFinal(t *testing.T) {
	in := Input{
		NightlyRate: money.THB(250000),
		Nights:      3,
		Rooms:       1,
		Discount:    money.THB(77500),
	}
	bd, err := DirectBookingPricing{}.Calculate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.Final.Amount != 800000 {
		t.Fatalf("expected discounted final 800000, got %d", bd.Final.Amount)
	}
	if bd.Subtotal.Amount != 750000 {
		t.Fatalf("discount must not touch the subtotal, got %d", bd.Subtotal.Amount)
	}
}

func TestQuotePricing_FinalEqualsQuote(t *testing.T) {
	in := Input{
		NightlyRate: money.THB(100000),
		Nights:      2,
		Rooms:       2,
	}
	bd, err := QuotePricing{}.Calculate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.Subtotal.Amount != 400000 {
		t.Fatalf("expected subtotal 400000, got %d", bd.Subtotal.Amount)
	}
	if bd.Final.Amount != bd.Subtotal.Amount {
		t.Fatalf("quoted price is the final price, got %d", bd.Final.Amount)
	}
	if bd.Tax.Amount != 4000 || bd.VAT.Amount != 28000 {
		t.Fatalf("expected 1%%/7%% carve-out, got tax=%d vat=%d", bd.Tax.Amount, bd.VAT.Amount)
	}
	if bd.Net.Amount != 368000 {
		t.Fatalf("expected net 368000, got %d", bd.Net.Amount)
	}
}

func TestPricing_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want error
	}{
		{"zero nights", Input{NightlyRate: money.THB(1000), Rooms: 1}, ErrInvalidNights},
		{"zero rooms", Input{NightlyRate: money.THB(1000), Nights: 1}, ErrInvalidRooms},
		{"zero rate", Input{Nights: 1, Rooms: 1}, ErrInvalidRate},
		{"negative discount", Input{NightlyRate: money.THB(1000), Nights: 1, Rooms: 1, Discount: money.Money{Amount: -1, Currency: "THB"}}, ErrInvalidDiscount},
	}
	for _, tc := range cases {
		if _, err := (DirectBookingPricing{}).Calculate(tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestForMode_UnknownMode(t *testing.T) {
	if _, err := ForMode("SEASONAL"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}
