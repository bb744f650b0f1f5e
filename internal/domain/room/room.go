package room

import (
	"context"
	"errors"
	"time"

	"innkeep/internal/domain/shared/money"
)

var (
	ErrNotFound      = errors.New("room: not found")
	ErrTypeNotFound  = errors.New("room: room type not found")
	ErrNumberTaken   = errors.New("room: room number already in use")
	ErrInvalidStatus = errors.New("room: unknown room status")
)

type RoomID string

type TypeID string

// Status is a current-moment convenience flag maintained at booking
// transitions. The assignment ledger, not this field, answers whether a
// room is free on a given date.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusOccupied    Status = "OCCUPIED"
	StatusMaintenance Status = "MAINTENANCE"
	StatusOutOfOrder  Status = "OUT_OF_ORDER"
	StatusCleaning    Status = "CLEANING"
)

// BilingualText carries guest-facing copy in both languages the property
// serves.
type BilingualText struct {
	EN string
	TH string
}

type RoomType struct {
	ID          TypeID
	Name        BilingualText
	Description BilingualText
	NightlyRate money.Money
	Capacity    int
	BedCount    int
	BedKind     string
}

type Room struct {
	ID        RoomID
	Number    string
	Floor     int
	TypeID    TypeID
	Status    Status
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id RoomID) (*Room, error)
	ByIDs(ctx context.Context, ids []RoomID) ([]*Room, error)
	List(ctx context.Context) ([]*Room, error)
	Save(ctx context.Context, r *Room) error
	TypeByID(ctx context.Context, id TypeID) (*RoomType, error)
	SaveType(ctx context.Context, t *RoomType) error
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusMaintenance, StatusOutOfOrder, StatusCleaning:
		return true
	}
	return false
}

// SetStatus flips the coarse flag; callers persist through the repository.
func (r *Room) SetStatus(s Status, now time.Time) error {
	if !ValidStatus(s) {
		return ErrInvalidStatus
	}
	r.Status = s
	r.UpdatedAt = now.UTC()
	return nil
}
