package booking

import (
	"context"
	"time"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	"innkeep/internal/domain/occupancy"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/room"
	domainrange "innkeep/internal/domain/shared/daterange"
)

const editDatesKey = "booking.edit_dates"

// EditDatesCommand moves a booking to a new date range. The availability
// gate re-runs against every other booking; the booking's own prior claims
// never conflict with themselves.
type EditDatesCommand struct {
	BookingID string
	CheckIn   time.Time
	CheckOut  time.Time
}

func (c EditDatesCommand) Key() string { return editDatesKey }

type EditDatesResult struct {
	BookingID string    `json:"booking_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Final     int64     `json:"final_amount"`
}

type EditDatesHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *EditDatesHandler) Handle(ctx context.Context, cmd EditDatesCommand) (*EditDatesResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory, uow.TxOptions{Serializable: true})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := domainbooking.ValidateCheckIn(dr, now); err != nil {
		return nil, err
	}

	assignments, err := unit.Assignments().ByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	active := activeAssignments(assignments)
	roomIDs := make([]room.RoomID, 0, len(active))
	for _, a := range active {
		roomIDs = append(roomIDs, a.RoomID)
	}

	checker := occupancy.Checker{Assignments: unit.Assignments()}
	if err := checker.EnsureAvailable(ctx, roomIDs, dr, b.ID); err != nil {
		return nil, err
	}

	calc, err := pricing.ForMode(b.Price.Mode)
	if err != nil {
		return nil, err
	}
	price, err := calc.Calculate(pricing.Input{
		NightlyRate: b.Price.NightlyRate,
		Nights:      dr.Nights(),
		Rooms:       b.Price.Rooms,
		Discount:    b.Price.Discount,
	})
	if err != nil {
		return nil, err
	}

	if err := b.ChangeDates(dr, price, now); err != nil {
		return nil, err
	}

	for _, a := range active {
		a.Range = dr
		a.UpdatedAt = now
		if err := unit.Assignments().Save(ctx, a); err != nil {
			return nil, err
		}
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, b); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return &EditDatesResult{
		BookingID: string(b.ID),
		CheckIn:   b.Range.CheckIn,
		CheckOut:  b.Range.CheckOut,
		Final:     b.Price.Final.Amount,
	}, nil
}

var _ commands.Handler[EditDatesCommand, *EditDatesResult] = (*EditDatesHandler)(nil)
