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
	"innkeep/internal/domain/room"
)

const assignRoomsKey = "booking.assign_rooms"

var (
	ErrRoomCountMismatch = errors.New("booking: selected rooms do not match the booked room count")
	ErrAlreadyAssigned   = errors.New("booking: rooms are already assigned to this booking")
)

// AssignRoomsCommand claims concrete rooms for a booking. The claim is
// all-or-nothing: one unavailable room fails the whole command and no
// assignment rows are written.
type AssignRoomsCommand struct {
	BookingID       string
	RoomIDs         []string
	IdempotencyKeyV string
}

func (c AssignRoomsCommand) Key() string { return assignRoomsKey }

func (c AssignRoomsCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c AssignRoomsCommand) ResultPrototype() any { return &AssignRoomsResult{} }

type AssignRoomsResult struct {
	BookingID string   `json:"booking_id"`
	Status    string   `json:"status"`
	Rooms     []string `json:"rooms"`
}

type AssignRoomsHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *AssignRoomsHandler) Handle(ctx context.Context, cmd AssignRoomsCommand) (*AssignRoomsResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory, uow.TxOptions{Serializable: true})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case domainbooking.StatusPending, domainbooking.StatusConfirmed:
	default:
		return nil, domainbooking.ErrInvalidState
	}
	if len(cmd.RoomIDs) == 0 {
		return nil, ErrRoomsRequired
	}
	prior, err := unit.Assignments().ByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if len(activeAssignments(prior)) > 0 {
		return nil, ErrAlreadyAssigned
	}
	if expected := b.ExpectedRooms(); expected > 0 && len(cmd.RoomIDs) != expected {
		return nil, ErrRoomCountMismatch
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
	if err := checker.EnsureAvailable(ctx, roomIDs, b.Range, b.ID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	roomNumbers := make([]string, 0, len(rooms))
	for _, rm := range rooms {
		assignment, err := occupancy.NewAssignment(occupancy.NewAssignmentParams{
			ID:        occupancy.AssignmentID(uuid.NewString()),
			Room:      rm,
			BookingID: b.ID,
			Range:     b.Range,
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

	// A booking already confirmed by full payment keeps its status; rooms
	// attach to it without a second transition.
	if b.Status == domainbooking.StatusPending {
		if err := b.Confirm(now); err != nil {
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
	return &AssignRoomsResult{
		BookingID: string(b.ID),
		Status:    string(b.Status),
		Rooms:     roomNumbers,
	}, nil
}

var _ commands.Handler[AssignRoomsCommand, *AssignRoomsResult] = (*AssignRoomsHandler)(nil)
var _ middleware.IdempotentCommand = (*AssignRoomsCommand)(nil)
