package booking

import (
	"context"
	"errors"
	"sort"
	"strings"

	"innkeep/internal/app/dto"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/queries"
	"innkeep/internal/app/uow"
	"innkeep/internal/domain/guest"
)

const allStatusesFilterValue = "ALL"

type GuestBookingsQuery struct {
	GuestID string
	Status  string
}

func (q GuestBookingsQuery) Key() string { return guestBookingsKey }

type GuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GuestBookingsHandler) Handle(ctx context.Context, q GuestBookingsQuery) (dto.BookingCollection, error) {
	guestID := strings.TrimSpace(q.GuestID)
	if guestID == "" {
		return dto.BookingCollection{}, errors.New("guest id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByGuest(execCtx, guest.GuestID(guestID))
	if err != nil {
		return dto.BookingCollection{}, err
	}

	statusFilter := strings.ToUpper(strings.TrimSpace(q.Status))
	allStatuses := statusFilter == "" || statusFilter == allStatusesFilterValue

	items := make([]dto.BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		if !allStatuses && string(b.Status) != statusFilter {
			continue
		}
		assignments, err := unit.Assignments().ByBooking(execCtx, b.ID)
		if err != nil {
			return dto.BookingCollection{}, err
		}
		items = append(items, dto.MapBooking(b, assignments))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return dto.BookingCollection{Items: items, Total: len(items)}, nil
}

var _ queries.Handler[GuestBookingsQuery, dto.BookingCollection] = (*GuestBookingsHandler)(nil)
