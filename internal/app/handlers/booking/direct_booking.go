package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/middleware"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	"innkeep/internal/domain/occupancy"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/room"
	domainrange "innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/money"
)

const directBookingKey = "booking.direct"

var (
	ErrRoomsRequired   = errors.New("booking: at least one room is required")
	ErrMixedRoomTypes  = errors.New("booking: all rooms in one booking must share a room type")
	ErrRoomNotBookable = errors.New("booking: room is not bookable")
)

// DirectBookingCommand is the front-desk walk-in path: the booking is
// created, priced with itemized taxes, assigned its rooms and confirmed in
// a single transaction.
type DirectBookingCommand struct {
	CommandID       string
	GuestID         string
	GuestFirstName  string
	GuestLastName   string
	GuestEmail      string
	GuestPhone      string
	RoomIDs         []string
	CheckIn         time.Time
	CheckOut        time.Time
	Adults          int
	Children        int
	Discount        int64
	Notes           string
	SpecialRequests string
	IdempotencyKeyV string
}

func (c DirectBookingCommand) Key() string { return directBookingKey }

func (c DirectBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c DirectBookingCommand) ResultPrototype() any { return &DirectBookingResult{} }

type DirectBookingResult struct {
	BookingID string   `json:"booking_id"`
	Number    string   `json:"number"`
	Rooms     []string `json:"rooms"`
}

type DirectBookingHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    pricing.Calculator
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *DirectBookingHandler) Handle(ctx context.Context, cmd DirectBookingCommand) (*DirectBookingResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory, uow.TxOptions{Serializable: true})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := domainbooking.ValidateCheckIn(dr, now); err != nil {
		return nil, err
	}
	if len(cmd.RoomIDs) == 0 {
		return nil, ErrRoomsRequired
	}

	roomIDs := make([]room.RoomID, 0, len(cmd.RoomIDs))
	for _, id := range cmd.RoomIDs {
		roomIDs = append(roomIDs, room.RoomID(id))
	}
	rooms, err := unit.Rooms().ByIDs(ctx, roomIDs)
	if err != nil {
		return nil, err
	}
	roomType, err := sharedRoomType(ctx, unit, rooms)
	if err != nil {
		return nil, err
	}

	checker := occupancy.Checker{Assignments: unit.Assignments()}
	if err := checker.EnsureAvailable(ctx, roomIDs, dr, ""); err != nil {
		return nil, err
	}

	createCmd := CreateBookingCommand{
		GuestID:        cmd.GuestID,
		GuestFirstName: cmd.GuestFirstName,
		GuestLastName:  cmd.GuestLastName,
		GuestEmail:     cmd.GuestEmail,
		GuestPhone:     cmd.GuestPhone,
	}
	guestID, err := resolveGuest(ctx, unit, createCmd, now)
	if err != nil {
		return nil, err
	}

	price, err := h.calculator().Calculate(pricing.Input{
		NightlyRate: roomType.NightlyRate,
		Nights:      dr.Nights(),
		Rooms:       len(rooms),
		Discount:    money.THB(cmd.Discount),
	})
	if err != nil {
		return nil, err
	}

	seq, err := unit.Bookings().NextSequence(ctx, now)
	if err != nil {
		return nil, err
	}
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:              domainbooking.BookingID(cmd.CommandID),
		Number:          domainbooking.FormatNumber(now, seq),
		GuestID:         guestID,
		Range:           dr,
		Adults:          cmd.Adults,
		Children:        cmd.Children,
		Price:           price,
		Notes:           cmd.Notes,
		SpecialRequests: cmd.SpecialRequests,
		Now:             now,
	})
	if err != nil {
		return nil, err
	}

	roomNumbers := make([]string, 0, len(rooms))
	for _, rm := range rooms {
		assignment, err := occupancy.NewAssignment(occupancy.NewAssignmentParams{
			ID:        occupancy.AssignmentID(uuid.NewString()),
			Room:      rm,
			BookingID: b.ID,
			Range:     dr,
			Rate:      roomType.NightlyRate,
			Now:       now,
		})
		if err != nil {
			return nil, err
		}
		if err := unit.Assignments().Save(ctx, assignment); err != nil {
			return nil, err
		}
		roomNumbers = append(roomNumbers, rm.Number)
	}
	if err := b.Confirm(now); err != nil {
		return nil, err
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
	return &DirectBookingResult{BookingID: string(b.ID), Number: string(b.Number), Rooms: roomNumbers}, nil
}

func (h *DirectBookingHandler) calculator() pricing.Calculator {
	if h.Pricing != nil {
		return h.Pricing
	}
	return pricing.DirectBookingPricing{}
}

// sharedRoomType resolves the single room type behind a selection. The
// pricing model carries one nightly rate per booking, so mixed-type
// selections are rejected.
func sharedRoomType(ctx context.Context, unit *support.WriteUnit, rooms []*room.Room) (*room.RoomType, error) {
	if len(rooms) == 0 {
		return nil, ErrRoomsRequired
	}
	typeID := rooms[0].TypeID
	for _, rm := range rooms {
		if rm.TypeID != typeID {
			return nil, ErrMixedRoomTypes
		}
		if rm.Status == room.StatusMaintenance || rm.Status == room.StatusOutOfOrder {
			return nil, ErrRoomNotBookable
		}
	}
	return unit.Rooms().TypeByID(ctx, typeID)
}

var _ commands.Handler[DirectBookingCommand, *DirectBookingResult] = (*DirectBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*DirectBookingCommand)(nil)
