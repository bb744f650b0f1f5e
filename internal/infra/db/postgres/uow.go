package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	domainguest "innkeep/internal/domain/guest"
	domainoccupancy "innkeep/internal/domain/occupancy"
	domainpayment "innkeep/internal/domain/payment"
	domainroom "innkeep/internal/domain/room"
)

var ErrNilDB = errors.New("postgres: nil database handle")

// Factory opens one transaction per unit of work. Repositories created by
// the unit all run against that transaction, so the availability check and
// the assignment writes share a snapshot.
type Factory struct {
	DB *gorm.DB
}

func NewFactory(db *gorm.DB) Factory {
	return Factory{DB: db}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrNilDB
	}
	txOpts := &sql.TxOptions{ReadOnly: opts.ReadOnly}
	if opts.Serializable {
		txOpts.Isolation = sql.LevelSerializable
	}
	tx := f.DB.WithContext(ctx).Begin(txOpts)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Unit{tx: tx}, nil
}

type Unit struct {
	tx   *gorm.DB
	done bool
}

func (u *Unit) Bookings() domainbooking.Repository { return NewBookingRepository(u.tx) }

func (u *Unit) Rooms() domainroom.Repository { return NewRoomRepository(u.tx) }

func (u *Unit) Assignments() domainoccupancy.Repository { return NewAssignmentRepository(u.tx) }

func (u *Unit) Payments() domainpayment.Repository { return NewPaymentRepository(u.tx) }

func (u *Unit) Refunds() domainpayment.RefundRepository { return NewRefundRepository(u.tx) }

func (u *Unit) Guests() domainguest.Repository { return NewGuestRepository(u.tx) }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Commit().Error
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Rollback().Error
}

// Tx exposes the transaction so outbox writes can join it.
func (u *Unit) Tx() *gorm.DB { return u.tx }

var _ uow.UoWFactory = Factory{}
