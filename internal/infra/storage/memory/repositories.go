package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainbooking "innkeep/internal/domain/booking"
	domainguest "innkeep/internal/domain/guest"
	domainoccupancy "innkeep/internal/domain/occupancy"
	domainpayment "innkeep/internal/domain/payment"
	domainroom "innkeep/internal/domain/room"
	domainrange "innkeep/internal/domain/shared/daterange"
)

// BookingRepository keeps bookings in memory. The daily number sequence is
// a plain counter map, adequate for tests and demos.
type BookingRepository struct {
	mu        sync.RWMutex
	byID      map[domainbooking.BookingID]*domainbooking.Booking
	byNumber  map[domainbooking.Number]domainbooking.BookingID
	sequences map[string]int
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		byID:      make(map[domainbooking.BookingID]*domainbooking.Booking),
		byNumber:  make(map[domainbooking.Number]domainbooking.BookingID),
		sequences: make(map[string]int),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) ByNumber(ctx context.Context, number domainbooking.Number) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	b, ok := r.byID[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[b.ID] = cloneBooking(b)
	r.byNumber[b.Number] = b.ID
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID domainguest.GuestID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.byID {
		if b.GuestID == guestID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *BookingRepository) NextSequence(ctx context.Context, day time.Time) (int, error) {
	key := day.UTC().Format("20060102")
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequences[key]++
	return r.sequences[key], nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	if b == nil {
		return nil
	}
	out := *b
	if b.ActualCheckIn != nil {
		t := *b.ActualCheckIn
		out.ActualCheckIn = &t
	}
	if b.ActualCheckOut != nil {
		t := *b.ActualCheckOut
		out.ActualCheckOut = &t
	}
	return &out
}

// RoomRepository stores the physical room catalog and its types.
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[domainroom.RoomID]*domainroom.Room
	types map[domainroom.TypeID]*domainroom.RoomType
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{
		rooms: make(map[domainroom.RoomID]*domainroom.Room),
		types: make(map[domainroom.TypeID]*domainroom.RoomType),
	}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainroom.RoomID) (*domainroom.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[id]
	if !ok {
		return nil, domainroom.ErrNotFound
	}
	out := *rm
	return &out, nil
}

func (r *RoomRepository) ByIDs(ctx context.Context, ids []domainroom.RoomID) ([]*domainroom.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainroom.Room, 0, len(ids))
	for _, id := range ids {
		rm, ok := r.rooms[id]
		if !ok {
			return nil, domainroom.ErrNotFound
		}
		tmp := *rm
		out = append(out, &tmp)
	}
	return out, nil
}

func (r *RoomRepository) List(ctx context.Context) ([]*domainroom.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainroom.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		tmp := *rm
		out = append(out, &tmp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *RoomRepository) Save(ctx context.Context, rm *domainroom.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rooms {
		if existing.Number == rm.Number && existing.ID != rm.ID {
			return domainroom.ErrNumberTaken
		}
	}
	tmp := *rm
	r.rooms[rm.ID] = &tmp
	return nil
}

func (r *RoomRepository) TypeByID(ctx context.Context, id domainroom.TypeID) (*domainroom.RoomType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	if !ok {
		return nil, domainroom.ErrTypeNotFound
	}
	out := *t
	return &out, nil
}

func (r *RoomRepository) SaveType(ctx context.Context, t *domainroom.RoomType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tmp := *t
	r.types[t.ID] = &tmp
	return nil
}

// AssignmentRepository is the in-memory occupancy ledger.
type AssignmentRepository struct {
	mu    sync.RWMutex
	items map[domainoccupancy.AssignmentID]*domainoccupancy.Assignment
}

func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{items: make(map[domainoccupancy.AssignmentID]*domainoccupancy.Assignment)}
}

func (r *AssignmentRepository) ByBooking(ctx context.Context, id domainbooking.BookingID) ([]*domainoccupancy.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainoccupancy.Assignment, 0)
	for _, a := range r.items {
		if a.BookingID == id {
			tmp := *a
			out = append(out, &tmp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (r *AssignmentRepository) ActiveOverlapping(ctx context.Context, roomIDs []domainroom.RoomID, dr domainrange.DateRange, exclude domainbooking.BookingID) ([]*domainoccupancy.Assignment, error) {
	wanted := make(map[domainroom.RoomID]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		wanted[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainoccupancy.Assignment, 0)
	for _, a := range r.items {
		if !a.Status.Active() {
			continue
		}
		if exclude != "" && a.BookingID == exclude {
			continue
		}
		if _, ok := wanted[a.RoomID]; !ok {
			continue
		}
		if a.Range.Overlaps(dr) {
			tmp := *a
			out = append(out, &tmp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (r *AssignmentRepository) ActiveForRoomAt(ctx context.Context, roomID domainroom.RoomID, at time.Time) ([]*domainoccupancy.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainoccupancy.Assignment, 0)
	for _, a := range r.items {
		if !a.Status.Active() || a.RoomID != roomID {
			continue
		}
		if a.Range.ContainsDate(at) {
			tmp := *a
			out = append(out, &tmp)
		}
	}
	return out, nil
}

func (r *AssignmentRepository) Save(ctx context.Context, a *domainoccupancy.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tmp := *a
	r.items[a.ID] = &tmp
	return nil
}

// PaymentRepository keeps payments and their provider references.
type PaymentRepository struct {
	mu    sync.RWMutex
	items map[domainpayment.PaymentID]*domainpayment.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{items: make(map[domainpayment.PaymentID]*domainpayment.Payment)}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.PaymentID) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainpayment.ErrNotFound
	}
	return clonePayment(p), nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = clonePayment(p)
	return nil
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, id domainbooking.BookingID) ([]*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainpayment.Payment, 0)
	for _, p := range r.items {
		if p.BookingID == id {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentRepository) FirstPendingByBooking(ctx context.Context, id domainbooking.BookingID) (*domainpayment.Payment, error) {
	payments, err := r.ListByBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if p.Status == domainpayment.StatusPending {
			return p, nil
		}
	}
	return nil, domainpayment.ErrNoPending
}

func (r *PaymentRepository) ByProviderRef(ctx context.Context, ref string) (*domainpayment.Payment, error) {
	if ref == "" {
		return nil, domainpayment.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.ProviderRef == ref {
			return clonePayment(p), nil
		}
	}
	return nil, domainpayment.ErrNotFound
}

func clonePayment(p *domainpayment.Payment) *domainpayment.Payment {
	if p == nil {
		return nil
	}
	out := *p
	if p.PaidAt != nil {
		t := *p.PaidAt
		out.PaidAt = &t
	}
	return &out
}

// RefundRepository keeps refunds keyed by id.
type RefundRepository struct {
	mu    sync.RWMutex
	items map[domainpayment.RefundID]*domainpayment.Refund
}

func NewRefundRepository() *RefundRepository {
	return &RefundRepository{items: make(map[domainpayment.RefundID]*domainpayment.Refund)}
}

func (r *RefundRepository) ByID(ctx context.Context, id domainpayment.RefundID) (*domainpayment.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.items[id]
	if !ok {
		return nil, domainpayment.ErrNotFound
	}
	out := *ref
	return &out, nil
}

func (r *RefundRepository) Save(ctx context.Context, ref *domainpayment.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tmp := *ref
	r.items[ref.ID] = &tmp
	return nil
}

func (r *RefundRepository) ListByPayment(ctx context.Context, id domainpayment.PaymentID) ([]*domainpayment.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainpayment.Refund, 0)
	for _, ref := range r.items {
		if ref.PaymentID == id {
			tmp := *ref
			out = append(out, &tmp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// GuestRepository keeps guest profiles.
type GuestRepository struct {
	mu    sync.RWMutex
	items map[domainguest.GuestID]*domainguest.Guest
}

func NewGuestRepository() *GuestRepository {
	return &GuestRepository{items: make(map[domainguest.GuestID]*domainguest.Guest)}
}

func (r *GuestRepository) ByID(ctx context.Context, id domainguest.GuestID) (*domainguest.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.items[id]
	if !ok {
		return nil, domainguest.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (r *GuestRepository) Save(ctx context.Context, g *domainguest.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tmp := *g
	r.items[g.ID] = &tmp
	return nil
}
