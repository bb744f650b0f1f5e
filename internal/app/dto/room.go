package dto

import (
	domainroom "innkeep/internal/domain/room"
)

type BilingualTextDTO struct {
	EN string `json:"en"`
	TH string `json:"th"`
}

type RoomTypeDTO struct {
	ID          string           `json:"id"`
	Name        BilingualTextDTO `json:"name"`
	Description BilingualTextDTO `json:"description"`
	NightlyRate MoneyDTO         `json:"nightly_rate"`
	Capacity    int              `json:"capacity"`
	BedCount    int              `json:"bed_count"`
	BedKind     string           `json:"bed_kind,omitempty"`
}

type RoomDTO struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Floor  int    `json:"floor"`
	TypeID string `json:"type_id"`
	Status string `json:"status"`
}

type RoomAvailabilityDTO struct {
	Room RoomDTO      `json:"room"`
	Type *RoomTypeDTO `json:"type,omitempty"`
}

type AvailabilityCollection struct {
	Items []RoomAvailabilityDTO `json:"items"`
	Total int                   `json:"total"`
}

func MapBilingual(t domainroom.BilingualText) BilingualTextDTO {
	return BilingualTextDTO{EN: t.EN, TH: t.TH}
}

func MapRoomType(t *domainroom.RoomType) RoomTypeDTO {
	return RoomTypeDTO{
		ID:          string(t.ID),
		Name:        MapBilingual(t.Name),
		Description: MapBilingual(t.Description),
		NightlyRate: MapMoney(t.NightlyRate),
		Capacity:    t.Capacity,
		BedCount:    t.BedCount,
		BedKind:     t.BedKind,
	}
}

func MapRoom(r *domainroom.Room) RoomDTO {
	return RoomDTO{
		ID:     string(r.ID),
		Number: r.Number,
		Floor:  r.Floor,
		TypeID: string(r.TypeID),
		Status: string(r.Status),
	}
}
