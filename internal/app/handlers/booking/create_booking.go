package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/middleware"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	"innkeep/internal/domain/guest"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/room"
	domainrange "innkeep/internal/domain/shared/daterange"
)

const createBookingKey = "booking.create"

var ErrRoomCountRequired = errors.New("booking: room count must be positive")

// CreateBookingCommand opens a guest-facing reservation request. No rooms
// are held yet; the price is a quote with taxes absorbed into the nightly
// rate.
type CreateBookingCommand struct {
	CommandID       string
	GuestID         string
	GuestFirstName  string
	GuestLastName   string
	GuestEmail      string
	GuestPhone      string
	RoomTypeID      string
	Rooms           int
	CheckIn         time.Time
	CheckOut        time.Time
	Adults          int
	Children        int
	Notes           string
	SpecialRequests string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID string `json:"booking_id"`
	Number    string `json:"number"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    pricing.Calculator
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory, uow.TxOptions{})
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
	if cmd.Rooms <= 0 {
		return nil, ErrRoomCountRequired
	}

	roomType, err := unit.Rooms().TypeByID(ctx, room.TypeID(cmd.RoomTypeID))
	if err != nil {
		return nil, err
	}

	guestID, err := resolveGuest(ctx, unit, cmd, now)
	if err != nil {
		return nil, err
	}

	price, err := h.calculator().Calculate(pricing.Input{
		NightlyRate: roomType.NightlyRate,
		Nights:      dr.Nights(),
		Rooms:       cmd.Rooms,
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

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, b); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return &CreateBookingResult{BookingID: string(b.ID), Number: string(b.Number)}, nil
}

func (h *CreateBookingHandler) calculator() pricing.Calculator {
	if h.Pricing != nil {
		return h.Pricing
	}
	return pricing.QuotePricing{}
}

func resolveGuest(ctx context.Context, unit *support.WriteUnit, cmd CreateBookingCommand, now time.Time) (guest.GuestID, error) {
	if id := strings.TrimSpace(cmd.GuestID); id != "" {
		g, err := unit.Guests().ByID(ctx, guest.GuestID(id))
		if err != nil {
			return "", err
		}
		return g.ID, nil
	}
	g, err := guest.New(guest.CreateParams{
		ID:        guest.GuestID(uuid.NewString()),
		FirstName: cmd.GuestFirstName,
		LastName:  cmd.GuestLastName,
		Email:     cmd.GuestEmail,
		Phone:     cmd.GuestPhone,
		Now:       now,
	})
	if err != nil {
		return "", err
	}
	if err := unit.Guests().Save(ctx, g); err != nil {
		return "", err
	}
	return g.ID, nil
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
