package memory

import (
	"context"
	"errors"

	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	domainguest "innkeep/internal/domain/guest"
	domainoccupancy "innkeep/internal/domain/occupancy"
	domainpayment "innkeep/internal/domain/payment"
	domainroom "innkeep/internal/domain/room"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	BookingRepo    domainbooking.Repository
	RoomRepo       domainroom.Repository
	AssignmentRepo domainoccupancy.Repository
	PaymentRepo    domainpayment.Repository
	RefundRepo     domainpayment.RefundRepository
	GuestRepo      domainguest.Repository
}

// NewFactory builds a factory with fresh empty repositories.
func NewFactory() Factory {
	return Factory{
		BookingRepo:    NewBookingRepository(),
		RoomRepo:       NewRoomRepository(),
		AssignmentRepo: NewAssignmentRepository(),
		PaymentRepo:    NewPaymentRepository(),
		RefundRepo:     NewRefundRepository(),
		GuestRepo:      NewGuestRepository(),
	}
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.BookingRepo == nil || f.RoomRepo == nil || f.AssignmentRepo == nil ||
		f.PaymentRepo == nil || f.RefundRepo == nil || f.GuestRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		bookings:    f.BookingRepo,
		rooms:       f.RoomRepo,
		assignments: f.AssignmentRepo,
		payments:    f.PaymentRepo,
		refunds:     f.RefundRepo,
		guests:      f.GuestRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	bookings    domainbooking.Repository
	rooms       domainroom.Repository
	assignments domainoccupancy.Repository
	payments    domainpayment.Repository
	refunds     domainpayment.RefundRepository
	guests      domainguest.Repository
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Rooms() domainroom.Repository {
	return u.rooms
}

func (u *Unit) Assignments() domainoccupancy.Repository {
	return u.assignments
}

func (u *Unit) Payments() domainpayment.Repository {
	return u.payments
}

func (u *Unit) Refunds() domainpayment.RefundRepository {
	return u.refunds
}

func (u *Unit) Guests() domainguest.Repository {
	return u.guests
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
