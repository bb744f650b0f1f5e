package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	domainbooking "innkeep/internal/domain/booking"
	domainguest "innkeep/internal/domain/guest"
	domainoccupancy "innkeep/internal/domain/occupancy"
	domainpayment "innkeep/internal/domain/payment"
	domainpricing "innkeep/internal/domain/pricing"
	domainroom "innkeep/internal/domain/room"
	domainrange "innkeep/internal/domain/shared/daterange"
	domainuser "innkeep/internal/domain/user"
	"innkeep/internal/domain/shared/money"
)

type bookingModel struct {
	ID              string `gorm:"primaryKey"`
	Number          string `gorm:"uniqueIndex"`
	GuestID         string `gorm:"index"`
	CheckIn         time.Time
	CheckOut        time.Time
	Adults          int
	Children        int
	Status          string `gorm:"index"`
	PriceMode       string
	NightlyRate     int64
	Nights          int
	RoomCount       int
	Subtotal        int64
	Tax             int64
	VAT             int64
	ServiceCharge   int64
	Discount        int64
	Net             int64
	Final           int64
	Currency        string
	ActualCheckIn   *time.Time
	ActualCheckOut  *time.Time
	Notes           string
	SpecialRequests string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (bookingModel) TableName() string { return "bookings" }

type bookingSequenceModel struct {
	Day   string `gorm:"primaryKey;size:8"`
	Value int
}

func (bookingSequenceModel) TableName() string { return "booking_sequences" }

type bilingualJSON struct {
	EN string `json:"en"`
	TH string `json:"th"`
}

type roomTypeModel struct {
	ID          string `gorm:"primaryKey"`
	Name        datatypes.JSON
	Description datatypes.JSON
	NightlyRate int64
	Currency    string
	Capacity    int
	BedCount    int
	BedKind     string
}

func (roomTypeModel) TableName() string { return "room_types" }

type roomModel struct {
	ID        string `gorm:"primaryKey"`
	Number    string `gorm:"uniqueIndex"`
	Floor     int
	TypeID    string `gorm:"index"`
	Status    string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (roomModel) TableName() string { return "rooms" }

type assignmentModel struct {
	ID         string `gorm:"primaryKey"`
	RoomID     string `gorm:"index:idx_assignments_room_range"`
	RoomNumber string
	BookingID  string `gorm:"index"`
	CheckIn    time.Time `gorm:"index:idx_assignments_room_range"`
	CheckOut   time.Time
	Rate       int64
	Currency   string
	Status     string `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (assignmentModel) TableName() string { return "room_assignments" }

type paymentModel struct {
	ID            string `gorm:"primaryKey"`
	BookingID     string `gorm:"index"`
	BookingNumber string `gorm:"index"`
	Amount        int64
	Currency      string
	Method        string
	Provider      string
	Status        string `gorm:"index"`
	ProviderRef   string `gorm:"index"`
	PaidAt        *time.Time
	Gateway       datatypes.JSON
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (paymentModel) TableName() string { return "payments" }

type refundModel struct {
	ID          string `gorm:"primaryKey"`
	PaymentID   string `gorm:"index"`
	Amount      int64
	Currency    string
	Status      string
	ProviderRef string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (refundModel) TableName() string { return "refunds" }

type guestModel struct {
	ID          string `gorm:"primaryKey"`
	FirstName   string
	LastName    string
	Email       string `gorm:"index"`
	Phone       string
	IDNumber    string
	Nationality string
	StayCount   int
	TotalSpent  int64
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (guestModel) TableName() string { return "guests" }

type userModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	Name         string
	PasswordHash string
	Roles        datatypes.JSON
	Blocked      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

type outboxModel struct {
	ID         string `gorm:"primaryKey"`
	Name       string
	Payload    datatypes.JSON
	Headers    datatypes.JSON
	Aggregate  string
	OccurredAt time.Time
	Status     string `gorm:"index"`
	Attempts   int
	ClaimedBy  string
	RetryAt    *time.Time
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (outboxModel) TableName() string { return "outbox_events" }

func toBookingModel(b *domainbooking.Booking) bookingModel {
	return bookingModel{
		ID:              string(b.ID),
		Number:          string(b.Number),
		GuestID:         string(b.GuestID),
		CheckIn:         b.Range.CheckIn,
		CheckOut:        b.Range.CheckOut,
		Adults:          b.Adults,
		Children:        b.Children,
		Status:          string(b.Status),
		PriceMode:       string(b.Price.Mode),
		NightlyRate:     b.Price.NightlyRate.Amount,
		Nights:          b.Price.Nights,
		RoomCount:       b.Price.Rooms,
		Subtotal:        b.Price.Subtotal.Amount,
		Tax:             b.Price.Tax.Amount,
		VAT:             b.Price.VAT.Amount,
		ServiceCharge:   b.Price.ServiceCharge.Amount,
		Discount:        b.Price.Discount.Amount,
		Net:             b.Price.Net.Amount,
		Final:           b.Price.Final.Amount,
		Currency:        b.Price.Final.Currency,
		ActualCheckIn:   b.ActualCheckIn,
		ActualCheckOut:  b.ActualCheckOut,
		Notes:           b.Notes,
		SpecialRequests: b.SpecialRequests,
		Version:         b.Version,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func fromBookingModel(m bookingModel) *domainbooking.Booking {
	cur := m.Currency
	return &domainbooking.Booking{
		ID:      domainbooking.BookingID(m.ID),
		Number:  domainbooking.Number(m.Number),
		GuestID: domainguest.GuestID(m.GuestID),
		Range: domainrange.DateRange{
			CheckIn:  m.CheckIn.UTC(),
			CheckOut: m.CheckOut.UTC(),
		},
		Adults:   m.Adults,
		Children: m.Children,
		Status:   domainbooking.Status(m.Status),
		Price: domainpricing.Breakdown{
			Mode:          domainpricing.Mode(m.PriceMode),
			NightlyRate:   money.Money{Amount: m.NightlyRate, Currency: cur},
			Nights:        m.Nights,
			Rooms:         m.RoomCount,
			Subtotal:      money.Money{Amount: m.Subtotal, Currency: cur},
			Tax:           money.Money{Amount: m.Tax, Currency: cur},
			VAT:           money.Money{Amount: m.VAT, Currency: cur},
			ServiceCharge: money.Money{Amount: m.ServiceCharge, Currency: cur},
			Discount:      money.Money{Amount: m.Discount, Currency: cur},
			Net:           money.Money{Amount: m.Net, Currency: cur},
			Final:         money.Money{Amount: m.Final, Currency: cur},
		},
		ActualCheckIn:   m.ActualCheckIn,
		ActualCheckOut:  m.ActualCheckOut,
		Notes:           m.Notes,
		SpecialRequests: m.SpecialRequests,
		Version:         m.Version,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toRoomModel(r *domainroom.Room) roomModel {
	return roomModel{
		ID:        string(r.ID),
		Number:    r.Number,
		Floor:     r.Floor,
		TypeID:    string(r.TypeID),
		Status:    string(r.Status),
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromRoomModel(m roomModel) *domainroom.Room {
	return &domainroom.Room{
		ID:        domainroom.RoomID(m.ID),
		Number:    m.Number,
		Floor:     m.Floor,
		TypeID:    domainroom.TypeID(m.TypeID),
		Status:    domainroom.Status(m.Status),
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toRoomTypeModel(t *domainroom.RoomType) (roomTypeModel, error) {
	name, err := json.Marshal(bilingualJSON{EN: t.Name.EN, TH: t.Name.TH})
	if err != nil {
		return roomTypeModel{}, err
	}
	desc, err := json.Marshal(bilingualJSON{EN: t.Description.EN, TH: t.Description.TH})
	if err != nil {
		return roomTypeModel{}, err
	}
	return roomTypeModel{
		ID:          string(t.ID),
		Name:        datatypes.JSON(name),
		Description: datatypes.JSON(desc),
		NightlyRate: t.NightlyRate.Amount,
		Currency:    t.NightlyRate.Currency,
		Capacity:    t.Capacity,
		BedCount:    t.BedCount,
		BedKind:     t.BedKind,
	}, nil
}

func fromRoomTypeModel(m roomTypeModel) *domainroom.RoomType {
	var name, desc bilingualJSON
	_ = json.Unmarshal(m.Name, &name)
	_ = json.Unmarshal(m.Description, &desc)
	return &domainroom.RoomType{
		ID:          domainroom.TypeID(m.ID),
		Name:        domainroom.BilingualText{EN: name.EN, TH: name.TH},
		Description: domainroom.BilingualText{EN: desc.EN, TH: desc.TH},
		NightlyRate: money.Money{Amount: m.NightlyRate, Currency: m.Currency},
		Capacity:    m.Capacity,
		BedCount:    m.BedCount,
		BedKind:     m.BedKind,
	}
}

func toAssignmentModel(a *domainoccupancy.Assignment) assignmentModel {
	return assignmentModel{
		ID:         string(a.ID),
		RoomID:     string(a.RoomID),
		RoomNumber: a.RoomNumber,
		BookingID:  string(a.BookingID),
		CheckIn:    a.Range.CheckIn,
		CheckOut:   a.Range.CheckOut,
		Rate:       a.Rate.Amount,
		Currency:   a.Rate.Currency,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func fromAssignmentModel(m assignmentModel) *domainoccupancy.Assignment {
	return &domainoccupancy.Assignment{
		ID:         domainoccupancy.AssignmentID(m.ID),
		RoomID:     domainroom.RoomID(m.RoomID),
		RoomNumber: m.RoomNumber,
		BookingID:  domainbooking.BookingID(m.BookingID),
		Range: domainrange.DateRange{
			CheckIn:  m.CheckIn.UTC(),
			CheckOut: m.CheckOut.UTC(),
		},
		Rate:      money.Money{Amount: m.Rate, Currency: m.Currency},
		Status:    domainoccupancy.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toPaymentModel(p *domainpayment.Payment) (paymentModel, error) {
	audit, err := json.Marshal(p.Gateway)
	if err != nil {
		return paymentModel{}, err
	}
	return paymentModel{
		ID:            string(p.ID),
		BookingID:     string(p.BookingID),
		BookingNumber: string(p.BookingNumber),
		Amount:        p.Amount.Amount,
		Currency:      p.Amount.Currency,
		Method:        string(p.Method),
		Provider:      string(p.Provider),
		Status:        string(p.Status),
		ProviderRef:   p.ProviderRef,
		PaidAt:        p.PaidAt,
		Gateway:       datatypes.JSON(audit),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func fromPaymentModel(m paymentModel) *domainpayment.Payment {
	var audit domainpayment.GatewayResponse
	_ = json.Unmarshal(m.Gateway, &audit)
	return &domainpayment.Payment{
		ID:            domainpayment.PaymentID(m.ID),
		BookingID:     domainbooking.BookingID(m.BookingID),
		BookingNumber: domainbooking.Number(m.BookingNumber),
		Amount:        money.Money{Amount: m.Amount, Currency: m.Currency},
		Method:        domainpayment.Method(m.Method),
		Provider:      domainpayment.Provider(m.Provider),
		Status:        domainpayment.Status(m.Status),
		ProviderRef:   m.ProviderRef,
		PaidAt:        m.PaidAt,
		Gateway:       audit,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toRefundModel(r *domainpayment.Refund) refundModel {
	return refundModel{
		ID:          string(r.ID),
		PaymentID:   string(r.PaymentID),
		Amount:      r.Amount.Amount,
		Currency:    r.Amount.Currency,
		Status:      string(r.Status),
		ProviderRef: r.ProviderRef,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromRefundModel(m refundModel) *domainpayment.Refund {
	return &domainpayment.Refund{
		ID:          domainpayment.RefundID(m.ID),
		PaymentID:   domainpayment.PaymentID(m.PaymentID),
		Amount:      money.Money{Amount: m.Amount, Currency: m.Currency},
		Status:      domainpayment.RefundStatus(m.Status),
		ProviderRef: m.ProviderRef,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toGuestModel(g *domainguest.Guest) guestModel {
	return guestModel{
		ID:          string(g.ID),
		FirstName:   g.FirstName,
		LastName:    g.LastName,
		Email:       g.Email,
		Phone:       g.Phone,
		IDNumber:    g.IDNumber,
		Nationality: g.Nationality,
		StayCount:   g.StayCount,
		TotalSpent:  g.TotalSpent.Amount,
		Currency:    g.TotalSpent.Currency,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func fromGuestModel(m guestModel) *domainguest.Guest {
	return &domainguest.Guest{
		ID:          domainguest.GuestID(m.ID),
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		Phone:       m.Phone,
		IDNumber:    m.IDNumber,
		Nationality: m.Nationality,
		StayCount:   m.StayCount,
		TotalSpent:  money.Money{Amount: m.TotalSpent, Currency: m.Currency},
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toUserModel(u *domainuser.User) (userModel, error) {
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return userModel{}, err
	}
	return userModel{
		ID:           string(u.ID),
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Roles:        datatypes.JSON(roles),
		Blocked:      u.Blocked,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

func fromUserModel(m userModel) *domainuser.User {
	var roles []domainuser.Role
	_ = json.Unmarshal(m.Roles, &roles)
	return &domainuser.User{
		ID:           domainuser.ID(m.ID),
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Roles:        roles,
		Blocked:      m.Blocked,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
