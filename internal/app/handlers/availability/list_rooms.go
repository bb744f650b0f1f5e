package availability

import (
	"context"
	"time"

	"innkeep/internal/app/dto"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/queries"
	"innkeep/internal/app/uow"
	"innkeep/internal/domain/room"
	domainrange "innkeep/internal/domain/shared/daterange"
)

const availableRoomsKey = "availability.list_rooms"

// AvailableRoomsQuery lists rooms free for the whole requested range.
// Rooms in MAINTENANCE or OUT_OF_ORDER never appear regardless of the
// ledger.
type AvailableRoomsQuery struct {
	CheckIn    time.Time
	CheckOut   time.Time
	RoomTypeID string
}

func (q AvailableRoomsQuery) Key() string { return availableRoomsKey }

type AvailableRoomsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *AvailableRoomsHandler) Handle(ctx context.Context, q AvailableRoomsQuery) (dto.AvailabilityCollection, error) {
	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.AvailabilityCollection{}, err
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AvailabilityCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rooms, err := unit.Rooms().List(execCtx)
	if err != nil {
		return dto.AvailabilityCollection{}, err
	}

	candidates := make([]*room.Room, 0, len(rooms))
	ids := make([]room.RoomID, 0, len(rooms))
	for _, rm := range rooms {
		if q.RoomTypeID != "" && rm.TypeID != room.TypeID(q.RoomTypeID) {
			continue
		}
		if rm.Status == room.StatusMaintenance || rm.Status == room.StatusOutOfOrder {
			continue
		}
		candidates = append(candidates, rm)
		ids = append(ids, rm.ID)
	}

	blocked := make(map[room.RoomID]struct{})
	if len(ids) > 0 {
		overlapping, err := unit.Assignments().ActiveOverlapping(execCtx, ids, dr, "")
		if err != nil {
			return dto.AvailabilityCollection{}, err
		}
		for _, a := range overlapping {
			blocked[a.RoomID] = struct{}{}
		}
	}

	types := make(map[room.TypeID]*dto.RoomTypeDTO)
	items := make([]dto.RoomAvailabilityDTO, 0, len(candidates))
	for _, rm := range candidates {
		if _, ok := blocked[rm.ID]; ok {
			continue
		}
		typeDTO, ok := types[rm.TypeID]
		if !ok {
			rt, err := unit.Rooms().TypeByID(execCtx, rm.TypeID)
			if err == nil {
				mapped := dto.MapRoomType(rt)
				typeDTO = &mapped
			}
			types[rm.TypeID] = typeDTO
		}
		items = append(items, dto.RoomAvailabilityDTO{Room: dto.MapRoom(rm), Type: typeDTO})
	}
	return dto.AvailabilityCollection{Items: items, Total: len(items)}, nil
}

var _ queries.Handler[AvailableRoomsQuery, dto.AvailabilityCollection] = (*AvailableRoomsHandler)(nil)
