package uow

import (
	"context"

	domainbooking "innkeep/internal/domain/booking"
	domainguest "innkeep/internal/domain/guest"
	domainoccupancy "innkeep/internal/domain/occupancy"
	domainpayment "innkeep/internal/domain/payment"
	domainroom "innkeep/internal/domain/room"
)

// UnitOfWork coordinates repositories inside a transaction boundary. Every
// multi-entity mutation (booking + assignments + room status, payment +
// booking) runs against one unit so partial writes never become visible.
type UnitOfWork interface {
	Bookings() domainbooking.Repository
	Rooms() domainroom.Repository
	Assignments() domainoccupancy.Repository
	Payments() domainpayment.Repository
	Refunds() domainpayment.RefundRepository
	Guests() domainguest.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
	// Serializable requests the strongest isolation the store offers; the
	// room-assignment write path sets it so one of two conflicting
	// concurrent assignments fails instead of both committing.
	Serializable bool
}
