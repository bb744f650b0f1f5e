package dto

import (
	"time"

	domainbooking "innkeep/internal/domain/booking"
	domainguest "innkeep/internal/domain/guest"
	domainoccupancy "innkeep/internal/domain/occupancy"
	domainpricing "innkeep/internal/domain/pricing"
	"innkeep/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type PriceBreakdownDTO struct {
	Mode          string   `json:"mode"`
	NightlyRate   MoneyDTO `json:"nightly_rate"`
	Nights        int      `json:"nights"`
	Rooms         int      `json:"rooms"`
	Subtotal      MoneyDTO `json:"subtotal"`
	Tax           MoneyDTO `json:"tax"`
	VAT           MoneyDTO `json:"vat"`
	ServiceCharge MoneyDTO `json:"service_charge"`
	Discount      MoneyDTO `json:"discount"`
	Net           MoneyDTO `json:"net"`
	Final         MoneyDTO `json:"final"`
}

type RoomAssignmentDTO struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Rate       MoneyDTO  `json:"rate"`
	Status     string    `json:"status"`
}

type BookingDTO struct {
	ID              string              `json:"id"`
	Number          string              `json:"number"`
	GuestID         string              `json:"guest_id"`
	CheckIn         time.Time           `json:"check_in"`
	CheckOut        time.Time           `json:"check_out"`
	Adults          int                 `json:"adults"`
	Children        int                 `json:"children"`
	Status          string              `json:"status"`
	Price           PriceBreakdownDTO   `json:"price"`
	ActualCheckIn   *time.Time          `json:"actual_check_in,omitempty"`
	ActualCheckOut  *time.Time          `json:"actual_check_out,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	SpecialRequests string              `json:"special_requests,omitempty"`
	Rooms           []RoomAssignmentDTO `json:"rooms"`
	Guest           *GuestProfileDTO    `json:"guest,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingDTO `json:"items"`
	Total int          `json:"total"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

func MapBreakdown(p domainpricing.Breakdown) PriceBreakdownDTO {
	return PriceBreakdownDTO{
		Mode:          string(p.Mode),
		NightlyRate:   MapMoney(p.NightlyRate),
		Nights:        p.Nights,
		Rooms:         p.Rooms,
		Subtotal:      MapMoney(p.Subtotal),
		Tax:           MapMoney(p.Tax),
		VAT:           MapMoney(p.VAT),
		ServiceCharge: MapMoney(p.ServiceCharge),
		Discount:      MapMoney(p.Discount),
		Net:           MapMoney(p.Net),
		Final:         MapMoney(p.Final),
	}
}

func MapAssignment(a *domainoccupancy.Assignment) RoomAssignmentDTO {
	return RoomAssignmentDTO{
		ID:         string(a.ID),
		RoomID:     string(a.RoomID),
		RoomNumber: a.RoomNumber,
		CheckIn:    a.Range.CheckIn,
		CheckOut:   a.Range.CheckOut,
		Rate:       MapMoney(a.Rate),
		Status:     string(a.Status),
	}
}

func MapBooking(b *domainbooking.Booking, assignments []*domainoccupancy.Assignment) BookingDTO {
	rooms := make([]RoomAssignmentDTO, 0, len(assignments))
	for _, a := range assignments {
		rooms = append(rooms, MapAssignment(a))
	}
	return BookingDTO{
		ID:              string(b.ID),
		Number:          string(b.Number),
		GuestID:         string(b.GuestID),
		CheckIn:         b.Range.CheckIn,
		CheckOut:        b.Range.CheckOut,
		Adults:          b.Adults,
		Children:        b.Children,
		Status:          string(b.Status),
		Price:           MapBreakdown(b.Price),
		ActualCheckIn:   b.ActualCheckIn,
		ActualCheckOut:  b.ActualCheckOut,
		Notes:           b.Notes,
		SpecialRequests: b.SpecialRequests,
		Rooms:           rooms,
		CreatedAt:       b.CreatedAt,
	}
}

// MapBookingWithGuest attaches the guest profile to the booking view; the
// desk's detail endpoint uses it so staff see who is staying. A nil guest is
// simply omitted from the response.
func MapBookingWithGuest(b *domainbooking.Booking, assignments []*domainoccupancy.Assignment, g *domainguest.Guest) BookingDTO {
	out := MapBooking(b, assignments)
	out.Guest = MapGuestProfile(g)
	return out
}
