package guest

import (
	"context"
	"errors"
	"strings"
	"time"

	"innkeep/internal/domain/shared/money"
)

var (
	ErrNotFound     = errors.New("guest: not found")
	ErrNameRequired = errors.New("guest: name is required")
)

type GuestID string

// Guest is the hotel's profile of a person who stays, independent of any
// login account. Lifetime stats accumulate at check-out.
type Guest struct {
	ID          GuestID
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	IDNumber    string
	Nationality string
	StayCount   int
	TotalSpent  money.Money
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository interface {
	ByID(ctx context.Context, id GuestID) (*Guest, error)
	Save(ctx context.Context, g *Guest) error
}

type CreateParams struct {
	ID        GuestID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Now       time.Time
}

func New(params CreateParams) (*Guest, error) {
	first := strings.TrimSpace(params.FirstName)
	last := strings.TrimSpace(params.LastName)
	if first == "" && last == "" {
		return nil, ErrNameRequired
	}
	now := params.Now.UTC()
	return &Guest{
		ID:         params.ID,
		FirstName:  first,
		LastName:   last,
		Email:      strings.TrimSpace(strings.ToLower(params.Email)),
		Phone:      strings.TrimSpace(params.Phone),
		TotalSpent: money.THB(0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// RecordStay bumps the lifetime counters after a completed stay.
func (g *Guest) RecordStay(spent money.Money, now time.Time) error {
	total, err := g.TotalSpent.Add(spent)
	if err != nil {
		return err
	}
	g.StayCount++
	g.TotalSpent = total
	g.UpdatedAt = now.UTC()
	return nil
}
