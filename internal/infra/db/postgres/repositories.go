package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainbooking "innkeep/internal/domain/booking"
	domainguest "innkeep/internal/domain/guest"
	domainoccupancy "innkeep/internal/domain/occupancy"
	domainpayment "innkeep/internal/domain/payment"
	domainroom "innkeep/internal/domain/room"
	domainrange "innkeep/internal/domain/shared/daterange"
)

const dayLayout = "20060102"

var activeAssignmentStatuses = []string{
	string(domainoccupancy.StatusAssigned),
	string(domainoccupancy.StatusCheckedIn),
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainbooking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromBookingModel(m), nil
}

func (r *BookingRepository) ByNumber(ctx context.Context, number domainbooking.Number) (*domainbooking.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).First(&m, "number = ?", string(number)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainbooking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromBookingModel(m), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	m := toBookingModel(b)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID domainguest.GuestID) ([]*domainbooking.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", string(guestID)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, fromBookingModel(m))
	}
	return out, nil
}

func (r *BookingRepository) NextSequence(ctx context.Context, day time.Time) (int, error) {
	var value int
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO booking_sequences (day, value) VALUES (?, 1)
		 ON CONFLICT (day) DO UPDATE SET value = booking_sequences.value + 1
		 RETURNING value`,
		day.UTC().Format(dayLayout),
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainroom.RoomID) (*domainroom.Room, error) {
	var m roomModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainroom.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRoomModel(m), nil
}

func (r *RoomRepository) ByIDs(ctx context.Context, ids []domainroom.RoomID) ([]*domainroom.Room, error) {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	var rows []roomModel
	err := r.db.WithContext(ctx).Where("id IN ?", raw).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) != len(ids) {
		return nil, domainroom.ErrNotFound
	}
	out := make([]*domainroom.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, fromRoomModel(m))
	}
	return out, nil
}

func (r *RoomRepository) List(ctx context.Context) ([]*domainroom.Room, error) {
	var rows []roomModel
	err := r.db.WithContext(ctx).Order("number ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domainroom.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, fromRoomModel(m))
	}
	return out, nil
}

func (r *RoomRepository) Save(ctx context.Context, rm *domainroom.Room) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&roomModel{}).
		Where("number = ? AND id <> ?", rm.Number, string(rm.ID)).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return domainroom.ErrNumberTaken
	}
	m := toRoomModel(rm)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

func (r *RoomRepository) TypeByID(ctx context.Context, id domainroom.TypeID) (*domainroom.RoomType, error) {
	var m roomTypeModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainroom.ErrTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRoomTypeModel(m), nil
}

func (r *RoomRepository) SaveType(ctx context.Context, t *domainroom.RoomType) error {
	m, err := toRoomTypeModel(t)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) ByBooking(ctx context.Context, id domainbooking.BookingID) ([]*domainoccupancy.Assignment, error) {
	var rows []assignmentModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", string(id)).
		Order("room_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapAssignments(rows), nil
}

func (r *AssignmentRepository) ActiveOverlapping(ctx context.Context, roomIDs []domainroom.RoomID, dr domainrange.DateRange, exclude domainbooking.BookingID) ([]*domainoccupancy.Assignment, error) {
	raw := make([]string, 0, len(roomIDs))
	for _, id := range roomIDs {
		raw = append(raw, string(id))
	}
	q := r.db.WithContext(ctx).
		Where("room_id IN ?", raw).
		Where("status IN ?", activeAssignmentStatuses).
		Where("check_in < ? AND ? < check_out", dr.CheckOut, dr.CheckIn)
	if exclude != "" {
		q = q.Where("booking_id <> ?", string(exclude))
	}
	var rows []assignmentModel
	if err := q.Order("room_number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapAssignments(rows), nil
}

func (r *AssignmentRepository) ActiveForRoomAt(ctx context.Context, roomID domainroom.RoomID, at time.Time) ([]*domainoccupancy.Assignment, error) {
	var rows []assignmentModel
	err := r.db.WithContext(ctx).
		Where("room_id = ?", string(roomID)).
		Where("status IN ?", activeAssignmentStatuses).
		Where("check_in <= ? AND ? < check_out", at, at).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapAssignments(rows), nil
}

func (r *AssignmentRepository) Save(ctx context.Context, a *domainoccupancy.Assignment) error {
	m := toAssignmentModel(a)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

func mapAssignments(rows []assignmentModel) []*domainoccupancy.Assignment {
	out := make([]*domainoccupancy.Assignment, 0, len(rows))
	for _, m := range rows {
		out = append(out, fromAssignmentModel(m))
	}
	return out
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.PaymentID) (*domainpayment.Payment, error) {
	var m paymentModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainpayment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromPaymentModel(m), nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	m, err := toPaymentModel(p)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, id domainbooking.BookingID) ([]*domainpayment.Payment, error) {
	var rows []paymentModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", string(id)).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domainpayment.Payment, 0, len(rows))
	for _, m := range rows {
		out = append(out, fromPaymentModel(m))
	}
	return out, nil
}

func (r *PaymentRepository) FirstPendingByBooking(ctx context.Context, id domainbooking.BookingID) (*domainpayment.Payment, error) {
	var m paymentModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status = ?", string(id), string(domainpayment.StatusPending)).
		Order("created_at ASC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainpayment.ErrNoPending
	}
	if err != nil {
		return nil, err
	}
	return fromPaymentModel(m), nil
}

func (r *PaymentRepository) ByProviderRef(ctx context.Context, ref string) (*domainpayment.Payment, error) {
	var m paymentModel
	err := r.db.WithContext(ctx).First(&m, "provider_ref = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainpayment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromPaymentModel(m), nil
}

type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) ByID(ctx context.Context, id domainpayment.RefundID) (*domainpayment.Refund, error) {
	var m refundModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainpayment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRefundModel(m), nil
}

func (r *RefundRepository) Save(ctx context.Context, rf *domainpayment.Refund) error {
	m := toRefundModel(rf)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

func (r *RefundRepository) ListByPayment(ctx context.Context, id domainpayment.PaymentID) ([]*domainpayment.Refund, error) {
	var rows []refundModel
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", string(id)).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domainpayment.Refund, 0, len(rows))
	for _, m := range rows {
		out = append(out, fromRefundModel(m))
	}
	return out, nil
}

type GuestRepository struct {
	db *gorm.DB
}

func NewGuestRepository(db *gorm.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

func (r *GuestRepository) ByID(ctx context.Context, id domainguest.GuestID) (*domainguest.Guest, error) {
	var m guestModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainguest.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromGuestModel(m), nil
}

func (r *GuestRepository) Save(ctx context.Context, g *domainguest.Guest) error {
	m := toGuestModel(g)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

var (
	_ domainbooking.Repository       = (*BookingRepository)(nil)
	_ domainroom.Repository          = (*RoomRepository)(nil)
	_ domainoccupancy.Repository     = (*AssignmentRepository)(nil)
	_ domainpayment.Repository       = (*PaymentRepository)(nil)
	_ domainpayment.RefundRepository = (*RefundRepository)(nil)
	_ domainguest.Repository         = (*GuestRepository)(nil)
)
