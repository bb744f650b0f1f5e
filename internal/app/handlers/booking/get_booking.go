package booking

import (
	"context"
	"errors"
	"strings"

	"innkeep/internal/app/dto"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/queries"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	domainguest "innkeep/internal/domain/guest"
)

const (
	getBookingKey    = "booking.get"
	guestBookingsKey = "booking.list_by_guest"
)

// GetBookingQuery resolves a booking by id, or by its human-readable number
// when Number is set.
type GetBookingQuery struct {
	BookingID string
	Number    string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.BookingDTO, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var b *domainbooking.Booking
	if number := strings.TrimSpace(q.Number); number != "" {
		b, err = unit.Bookings().ByNumber(execCtx, domainbooking.Number(number))
	} else {
		b, err = unit.Bookings().ByID(execCtx, domainbooking.BookingID(q.BookingID))
	}
	if err != nil {
		return dto.BookingDTO{}, err
	}

	assignments, err := unit.Assignments().ByBooking(execCtx, b.ID)
	if err != nil {
		return dto.BookingDTO{}, err
	}

	g, err := unit.Guests().ByID(execCtx, b.GuestID)
	if err != nil {
		if !errors.Is(err, domainguest.ErrNotFound) {
			return dto.BookingDTO{}, err
		}
		g = nil
	}
	return dto.MapBookingWithGuest(b, assignments, g), nil
}

var _ queries.Handler[GetBookingQuery, dto.BookingDTO] = (*GetBookingHandler)(nil)
